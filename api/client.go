// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/channel"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/crypto/ed25519"
)

type JSONRPCClient struct {
	requester rpc.EndpointRequester

	chainID ids.ID
	rules   chain.Rules
}

// NewJSONRPCClient connects to the service mounted on the node at [uri].
func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += Path
	return &JSONRPCClient{requester: rpc.NewEndpointRequester(uri)}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		Name+".ping",
		nil,
		resp,
	)
	return resp.Success, err
}

// Network returns the ledger chain ID and channel rules. Both are cached
// after the first successful call.
func (cli *JSONRPCClient) Network(ctx context.Context) (ids.ID, chain.Rules, error) {
	if cli.chainID != ids.Empty {
		return cli.chainID, cli.rules, nil
	}

	resp := new(NetworkReply)
	err := cli.requester.SendRequest(
		ctx,
		Name+".network",
		nil,
		resp,
	)
	if err != nil {
		return ids.Empty, chain.Rules{}, err
	}
	cli.chainID = resp.ChainID
	cli.rules = resp.Rules
	return resp.ChainID, resp.Rules, nil
}

func (cli *JSONRPCClient) Account(ctx context.Context, addr codec.Address, channelID *ids.ID) (*account.Account, error) {
	resp := new(AccountReply)
	err := cli.requester.SendRequest(
		ctx,
		Name+".account",
		&AccountArgs{Address: addr, Channel: channelID},
		resp,
	)
	return resp.Account, err
}

func (cli *JSONRPCClient) OpenChannel(
	ctx context.Context,
	keys []ed25519.PrivateKey,
	lockedAccounts []codec.Address,
) (*OpenChannelReply, error) {
	args := &OpenChannelArgs{
		PrivateKeys:    make([]string, len(keys)),
		LockedAccounts: lockedAccounts,
	}
	for i, k := range keys {
		args.PrivateKeys[i] = k.Hex()
	}
	resp := new(OpenChannelReply)
	if err := cli.requester.SendRequest(ctx, Name+".openChannel", args, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) Transfer(ctx context.Context, channelID ids.ID, req *channel.TransferRequest) (*TxReply, error) {
	resp := new(TxReply)
	err := cli.requester.SendRequest(
		ctx,
		Name+".transfer",
		&TransferArgs{Channel: channelID, TransferRequest: *req},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) SubmitTx(ctx context.Context, channelID ids.ID, tx *chain.Transaction) (*TxReply, error) {
	resp := new(TxReply)
	err := cli.requester.SendRequest(
		ctx,
		Name+".submitTx",
		&SubmitTxArgs{Channel: channelID, Tx: tx.Bytes()},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) CloseChannel(ctx context.Context, channelID ids.ID) (*CloseChannelReply, error) {
	resp := new(CloseChannelReply)
	err := cli.requester.SendRequest(
		ctx,
		Name+".closeChannel",
		&ChannelArgs{Channel: channelID},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) ChannelStatus(ctx context.Context, channelID ids.ID) (*ChannelStatusReply, error) {
	resp := new(ChannelStatusReply)
	err := cli.requester.SendRequest(
		ctx,
		Name+".channelStatus",
		&ChannelArgs{Channel: channelID},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) Channels(ctx context.Context) ([]ids.ID, error) {
	resp := new(ChannelsReply)
	err := cli.requester.SendRequest(
		ctx,
		Name+".channels",
		nil,
		resp,
	)
	return resp.Channels, err
}
