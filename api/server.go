// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/auth"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/channel"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/crypto/ed25519"
	"github.com/ava-labs/paytube/ledger"
	"github.com/ava-labs/paytube/processor"
	"github.com/ava-labs/paytube/settlement"
)

var ErrNoSigners = errors.New("no signing keys provided")

type JSONRPCServer struct {
	log     logging.Logger
	manager *channel.Manager
}

func NewJSONRPCServer(log logging.Logger, manager *channel.Manager) *JSONRPCServer {
	return &JSONRPCServer{log: log, manager: manager}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) error {
	j.log.Info("ping")
	reply.Success = true
	return nil
}

type NetworkReply struct {
	ChainID ids.ID      `json:"chainId"`
	Rules   chain.Rules `json:"rules"`
}

func (j *JSONRPCServer) Network(_ *http.Request, _ *struct{}, reply *NetworkReply) error {
	reply.ChainID = j.manager.Ledger().ChainID()
	reply.Rules = j.manager.Rules()
	return nil
}

type AccountArgs struct {
	Address codec.Address `json:"address"`

	// Channel reads the account from an open channel instead of the
	// ledger when set.
	Channel *ids.ID `json:"channel,omitempty"`
}

type AccountReply struct {
	Account *account.Account `json:"account"`
}

func (j *JSONRPCServer) Account(req *http.Request, args *AccountArgs, reply *AccountReply) error {
	ctx := req.Context()
	if args.Channel == nil {
		a, err := j.manager.Ledger().ReadAccount(ctx, args.Address)
		if err != nil {
			return err
		}
		reply.Account = a
		return nil
	}
	c, err := j.manager.Get(*args.Channel)
	if err != nil {
		return err
	}
	a, err := c.Account(ctx, args.Address)
	if err != nil {
		return err
	}
	reply.Account = a
	return nil
}

type OpenChannelArgs struct {
	// PrivateKeys are hex encoded ed25519 keys of the participants. The
	// channel signs its settlement with them.
	PrivateKeys    []string        `json:"privateKeys"`
	LockedAccounts []codec.Address `json:"lockedAccounts"`
}

type OpenChannelReply struct {
	Channel ids.ID                             `json:"channel"`
	Locked  []codec.Address                    `json:"locked"`
	Opening map[codec.Address]*account.Account `json:"opening"`
}

func (j *JSONRPCServer) OpenChannel(req *http.Request, args *OpenChannelArgs, reply *OpenChannelReply) error {
	if len(args.PrivateKeys) == 0 {
		return ErrNoSigners
	}
	signers := make([]auth.Signer, len(args.PrivateKeys))
	for i, s := range args.PrivateKeys {
		pk, err := ed25519.HexToPrivateKey(s)
		if err != nil {
			return fmt.Errorf("invalid private key %d: %w", i, err)
		}
		signers[i] = auth.NewED25519Factory(pk)
	}
	c, err := j.manager.Open(req.Context(), signers, args.LockedAccounts)
	if err != nil {
		return err
	}
	reply.Channel = c.ID()
	reply.Locked = c.Locked()
	reply.Opening = c.Opening()
	return nil
}

type TxReply struct {
	TxID              ids.ID   `json:"txId"`
	Success           bool     `json:"success"`
	Error             string   `json:"error,omitempty"`
	FailedInstruction int      `json:"failedInstruction"`
	Logs              []string `json:"logs"`
	ComputeUnits      uint64   `json:"computeUnits"`
}

func (r *TxReply) set(res *processor.Result) {
	r.TxID = res.TxID
	r.Success = res.Success
	r.Error = res.ErrorMessage()
	r.FailedInstruction = res.FailedInstruction
	r.Logs = res.Logs
	r.ComputeUnits = res.ComputeUnits
}

type TransferArgs struct {
	Channel ids.ID `json:"channel"`
	channel.TransferRequest
}

// Transfer builds, signs, and executes a single transfer inside a channel.
// A transfer that executes and fails is reported in the reply, not as an
// error.
func (j *JSONRPCServer) Transfer(req *http.Request, args *TransferArgs, reply *TxReply) error {
	c, err := j.manager.Get(args.Channel)
	if err != nil {
		return err
	}
	entry, err := c.Submit(req.Context(), &args.TransferRequest)
	if err != nil {
		return err
	}
	reply.set(entry.Result)
	return nil
}

type SubmitTxArgs struct {
	Channel ids.ID `json:"channel"`
	Tx      []byte `json:"tx"`
}

func (j *JSONRPCServer) SubmitTx(req *http.Request, args *SubmitTxArgs, reply *TxReply) error {
	c, err := j.manager.Get(args.Channel)
	if err != nil {
		return err
	}
	tx, err := chain.ParseTx(args.Tx)
	if err != nil {
		return err
	}
	entry, err := c.SubmitTransaction(req.Context(), tx)
	if err != nil {
		return err
	}
	reply.set(entry.Result)
	return nil
}

type ChannelArgs struct {
	Channel ids.ID `json:"channel"`
}

type CloseChannelReply struct {
	Transfers    []*settlement.NetTransfer `json:"transfers"`
	TxID         ids.ID                    `json:"txId"`
	Confirmation *ledger.Confirmation      `json:"confirmation,omitempty"`
}

func (j *JSONRPCServer) CloseChannel(req *http.Request, args *ChannelArgs, reply *CloseChannelReply) error {
	s, err := j.manager.Close(req.Context(), args.Channel)
	if err != nil {
		j.log.Warn("failed to close channel",
			zap.Stringer("channel", args.Channel),
			zap.Error(err),
		)
		return err
	}
	reply.Transfers = s.Transfers
	if s.Tx != nil {
		reply.TxID = s.Tx.ID()
	}
	reply.Confirmation = s.Confirmation
	return nil
}

type ChannelStatusReply struct {
	State        channel.State                      `json:"state"`
	Locked       []codec.Address                    `json:"locked"`
	Balances     map[codec.Address]*account.Account `json:"balances,omitempty"`
	Transactions []ids.ID                           `json:"transactions"`
}

// ChannelStatus reports the state of a channel. Balances are omitted once
// the channel has closed.
func (j *JSONRPCServer) ChannelStatus(req *http.Request, args *ChannelArgs, reply *ChannelStatusReply) error {
	c, err := j.manager.Get(args.Channel)
	if err != nil {
		return err
	}
	reply.State = c.State()
	reply.Locked = c.Locked()
	if reply.State != channel.StateClosed {
		balances, err := c.Balances(req.Context())
		if err != nil {
			return err
		}
		reply.Balances = balances
	}
	entries := c.Transactions()
	reply.Transactions = make([]ids.ID, len(entries))
	for i, e := range entries {
		reply.Transactions[i] = e.Tx.ID()
	}
	return nil
}

type ChannelsReply struct {
	Channels []ids.ID `json:"channels"`
}

func (j *JSONRPCServer) Channels(_ *http.Request, _ *struct{}, reply *ChannelsReply) error {
	reply.Channels = j.manager.Channels()
	return nil
}
