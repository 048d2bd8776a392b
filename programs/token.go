// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package programs

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/hashing"
	smath "github.com/ava-labs/avalanchego/utils/math"
	"github.com/near/borsh-go"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/consts"
)

const (
	TokenComputeUnits = 4_500

	MintLen         = codec.AddressLen + consts.Uint64Len + consts.ByteLen + consts.BoolLen
	TokenAccountLen = 2*codec.AddressLen + consts.Uint64Len + consts.ByteLen
)

const (
	TokenInitializeMint byte = iota
	TokenInitializeAccount
	TokenTransfer
	TokenMintTo
)

const (
	TokenAccountUninitialized uint8 = iota
	TokenAccountInitialized
)

// Mint is the data layout of a token mint account.
type Mint struct {
	MintAuthority codec.Address
	Supply        uint64
	Decimals      uint8
	Initialized   bool
}

// TokenAccount is the data layout of an account holding a balance of one
// mint on behalf of Owner.
type TokenAccount struct {
	Mint   codec.Address
	Owner  codec.Address
	Amount uint64
	State  uint8
}

type InitializeMint struct {
	Decimals      uint8
	MintAuthority codec.Address
}

type TokenAmount struct {
	Amount uint64
}

const ataPrefix = "paytube/ata"

// AssociatedTokenAddress is the canonical token account of [owner] for
// [mint].
func AssociatedTokenAddress(owner, mint codec.Address) codec.Address {
	preimage := make([]byte, 0, len(ataPrefix)+2*codec.AddressLen)
	preimage = append(preimage, ataPrefix...)
	preimage = append(preimage, owner[:]...)
	preimage = append(preimage, mint[:]...)
	return codec.Address(hashing.ComputeHash256Array(preimage))
}

// NewMintAccount returns an initialized mint account holding [balance]
// native units.
func NewMintAccount(authority codec.Address, supply uint64, decimals uint8, balance uint64) *account.Account {
	return &account.Account{
		Balance: balance,
		Owner:   TokenProgramID,
		Data:    mustSerialize(&Mint{MintAuthority: authority, Supply: supply, Decimals: decimals, Initialized: true}),
	}
}

// NewTokenAccount returns an initialized token account holding [balance]
// native units.
func NewTokenAccount(mint, owner codec.Address, amount uint64, balance uint64) *account.Account {
	return &account.Account{
		Balance: balance,
		Owner:   TokenProgramID,
		Data:    mustSerialize(&TokenAccount{Mint: mint, Owner: owner, Amount: amount, State: TokenAccountInitialized}),
	}
}

func unpackMint(a *account.Account) (*Mint, error) {
	if len(a.Data) != MintLen {
		return nil, fmt.Errorf("%w: mint data is %d bytes", ErrInvalidAccountData, len(a.Data))
	}
	var m Mint
	if err := borsh.Deserialize(&m, a.Data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	return &m, nil
}

func unpackTokenAccount(a *account.Account) (*TokenAccount, error) {
	if len(a.Data) != TokenAccountLen {
		return nil, fmt.Errorf("%w: token account data is %d bytes", ErrInvalidAccountData, len(a.Data))
	}
	var t TokenAccount
	if err := borsh.Deserialize(&t, a.Data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	return &t, nil
}

// ReadTokenAccount decodes [a] if it is an initialized token account.
func ReadTokenAccount(a *account.Account) (*TokenAccount, error) {
	if a == nil || a.Owner != TokenProgramID {
		return nil, ErrInvalidOwner
	}
	t, err := unpackTokenAccount(a)
	if err != nil {
		return nil, err
	}
	if t.State != TokenAccountInitialized {
		return nil, ErrUninitializedAccount
	}
	return t, nil
}

// ReadMint decodes [a] if it is an initialized mint.
func ReadMint(a *account.Account) (*Mint, error) {
	if a == nil || a.Owner != TokenProgramID {
		return nil, ErrInvalidOwner
	}
	m, err := unpackMint(a)
	if err != nil {
		return nil, err
	}
	if !m.Initialized {
		return nil, ErrUninitializedAccount
	}
	return m, nil
}

func NewInitializeMintInstruction(mint, authority codec.Address, decimals uint8) *chain.Instruction {
	return &chain.Instruction{
		ProgramID: TokenProgramID,
		Accounts:  []*chain.AccountMeta{{Address: mint, IsWritable: true}},
		Data:      encode(TokenInitializeMint, &InitializeMint{Decimals: decimals, MintAuthority: authority}),
	}
}

func NewInitializeAccountInstruction(tokenAccount, mint, owner codec.Address) *chain.Instruction {
	return &chain.Instruction{
		ProgramID: TokenProgramID,
		Accounts: []*chain.AccountMeta{
			{Address: tokenAccount, IsWritable: true},
			{Address: mint},
			{Address: owner},
		},
		Data: []byte{TokenInitializeAccount},
	}
}

// NewTokenTransferInstruction moves [amount] of a mint between two token
// accounts. [authority] must own [source] and sign.
func NewTokenTransferInstruction(source, destination, authority codec.Address, amount uint64) *chain.Instruction {
	return &chain.Instruction{
		ProgramID: TokenProgramID,
		Accounts: []*chain.AccountMeta{
			{Address: source, IsWritable: true},
			{Address: destination, IsWritable: true},
			{Address: authority, IsSigner: true},
		},
		Data: encode(TokenTransfer, &TokenAmount{Amount: amount}),
	}
}

func NewMintToInstruction(mint, destination, authority codec.Address, amount uint64) *chain.Instruction {
	return &chain.Instruction{
		ProgramID: TokenProgramID,
		Accounts: []*chain.AccountMeta{
			{Address: mint, IsWritable: true},
			{Address: destination, IsWritable: true},
			{Address: authority, IsSigner: true},
		},
		Data: encode(TokenMintTo, &TokenAmount{Amount: amount}),
	}
}

// DecodeTokenTransfer returns the amount of a token transfer, or false if
// [data] is any other token instruction.
func DecodeTokenTransfer(data []byte) (uint64, bool) {
	tag, payload, err := decodeTag(data)
	if err != nil || tag != TokenTransfer {
		return 0, false
	}
	var t TokenAmount
	if err := decodeStrict(payload, &t); err != nil {
		return 0, false
	}
	return t.Amount, true
}

func validTokenData(data []byte) error {
	tag, _, err := decodeTag(data)
	if err != nil {
		return err
	}
	if tag > TokenMintTo {
		return fmt.Errorf("%w: unknown token instruction %d", ErrInvalidInstructionData, tag)
	}
	return nil
}

func dispatchToken(accounts []*InstructionAccount, data []byte) (*Output, error) {
	tag, payload, err := decodeTag(data)
	if err != nil {
		return nil, err
	}
	out := &Output{ComputeUnits: TokenComputeUnits}
	switch tag {
	case TokenInitializeMint:
		var ix InitializeMint
		if err := decodeStrict(payload, &ix); err != nil {
			return nil, err
		}
		err = initializeMint(out, accounts, &ix)
	case TokenInitializeAccount:
		if len(payload) != 0 {
			return nil, fmt.Errorf("%w: unexpected payload", ErrInvalidInstructionData)
		}
		err = initializeAccount(out, accounts)
	case TokenTransfer:
		var ix TokenAmount
		if err := decodeStrict(payload, &ix); err != nil {
			return nil, err
		}
		err = transferToken(out, accounts, ix.Amount)
	case TokenMintTo:
		var ix TokenAmount
		if err := decodeStrict(payload, &ix); err != nil {
			return nil, err
		}
		err = mintTo(out, accounts, ix.Amount)
	default:
		err = fmt.Errorf("%w: unknown token instruction %d", ErrInvalidInstructionData, tag)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// tokenOwned checks that [a] exists and belongs to the token program.
func tokenOwned(a *InstructionAccount) error {
	if a.Account == nil {
		return fmt.Errorf("%w: %s does not exist", ErrUninitializedAccount, a.Address)
	}
	if a.Account.Owner != TokenProgramID {
		return fmt.Errorf("%w: %s is owned by %s", ErrInvalidOwner, a.Address, a.Account.Owner)
	}
	return nil
}

func loadTokenAccount(a *InstructionAccount) (*TokenAccount, error) {
	if err := tokenOwned(a); err != nil {
		return nil, err
	}
	t, err := unpackTokenAccount(a.Account)
	if err != nil {
		return nil, err
	}
	if t.State != TokenAccountInitialized {
		return nil, fmt.Errorf("%w: %s", ErrUninitializedAccount, a.Address)
	}
	return t, nil
}

func loadMint(a *InstructionAccount) (*Mint, error) {
	if err := tokenOwned(a); err != nil {
		return nil, err
	}
	m, err := unpackMint(a.Account)
	if err != nil {
		return nil, err
	}
	if !m.Initialized {
		return nil, fmt.Errorf("%w: %s", ErrUninitializedAccount, a.Address)
	}
	return m, nil
}

func initializeMint(out *Output, accounts []*InstructionAccount, ix *InitializeMint) error {
	if err := checkAccounts(accounts, 1); err != nil {
		return err
	}
	a := accounts[0]
	out.log("Instruction: InitializeMint")
	if err := tokenOwned(a); err != nil {
		return err
	}
	m, err := unpackMint(a.Account)
	if err != nil {
		return err
	}
	if m.Initialized {
		return fmt.Errorf("%w: mint %s", ErrAccountAlreadyExists, a.Address)
	}
	a.Account.Data = mustSerialize(&Mint{MintAuthority: ix.MintAuthority, Decimals: ix.Decimals, Initialized: true})
	out.set(a)
	return nil
}

func initializeAccount(out *Output, accounts []*InstructionAccount) error {
	if err := checkAccounts(accounts, 3); err != nil {
		return err
	}
	a, mint, owner := accounts[0], accounts[1], accounts[2]
	out.log("Instruction: InitializeAccount")
	if err := tokenOwned(a); err != nil {
		return err
	}
	t, err := unpackTokenAccount(a.Account)
	if err != nil {
		return err
	}
	if t.State != TokenAccountUninitialized {
		return fmt.Errorf("%w: token account %s", ErrAccountAlreadyExists, a.Address)
	}
	if _, err := loadMint(mint); err != nil {
		return err
	}
	a.Account.Data = mustSerialize(&TokenAccount{
		Mint:  mint.Address,
		Owner: owner.Address,
		State: TokenAccountInitialized,
	})
	out.set(a)
	return nil
}

func transferToken(out *Output, accounts []*InstructionAccount, amount uint64) error {
	if err := checkAccounts(accounts, 3); err != nil {
		return err
	}
	src, dst, authority := accounts[0], accounts[1], accounts[2]
	out.log("Instruction: Transfer")
	from, err := loadTokenAccount(src)
	if err != nil {
		return err
	}
	to, err := loadTokenAccount(dst)
	if err != nil {
		return err
	}
	if from.Mint != to.Mint {
		return fmt.Errorf("%w: %s != %s", ErrMintMismatch, from.Mint, to.Mint)
	}
	if from.Owner != authority.Address {
		return fmt.Errorf("%w: %s is owned by %s", ErrOwnerMismatch, src.Address, from.Owner)
	}
	if err := checkSigner(authority); err != nil {
		return err
	}
	remaining, err := smath.Sub(from.Amount, amount)
	if err != nil {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFunds, src.Address, from.Amount, amount)
	}
	if src.Address == dst.Address {
		return nil
	}
	received, err := smath.Add(to.Amount, amount)
	if err != nil {
		return fmt.Errorf("%w: crediting %s", ErrArithmeticOverflow, dst.Address)
	}
	from.Amount = remaining
	to.Amount = received
	src.Account.Data = mustSerialize(from)
	dst.Account.Data = mustSerialize(to)
	out.set(src)
	out.set(dst)
	return nil
}

func mintTo(out *Output, accounts []*InstructionAccount, amount uint64) error {
	if err := checkAccounts(accounts, 3); err != nil {
		return err
	}
	mintAcct, dst, authority := accounts[0], accounts[1], accounts[2]
	out.log("Instruction: MintTo")
	m, err := loadMint(mintAcct)
	if err != nil {
		return err
	}
	to, err := loadTokenAccount(dst)
	if err != nil {
		return err
	}
	if to.Mint != mintAcct.Address {
		return fmt.Errorf("%w: %s != %s", ErrMintMismatch, to.Mint, mintAcct.Address)
	}
	if m.MintAuthority != authority.Address {
		return fmt.Errorf("%w: mint authority is %s", ErrOwnerMismatch, m.MintAuthority)
	}
	if err := checkSigner(authority); err != nil {
		return err
	}
	supply, err := smath.Add(m.Supply, amount)
	if err != nil {
		return fmt.Errorf("%w: supply", ErrArithmeticOverflow)
	}
	received, err := smath.Add(to.Amount, amount)
	if err != nil {
		return fmt.Errorf("%w: crediting %s", ErrArithmeticOverflow, dst.Address)
	}
	m.Supply = supply
	to.Amount = received
	mintAcct.Account.Data = mustSerialize(m)
	dst.Account.Data = mustSerialize(to)
	out.set(mintAcct)
	out.set(dst)
	return nil
}
