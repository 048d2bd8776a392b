// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package programs

import (
	"fmt"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/codec"
)

const SystemComputeUnits = 150

const (
	SystemCreateAccount byte = iota
	SystemAssign
	SystemTransfer
	SystemAllocate
)

type CreateAccount struct {
	Lamports uint64
	Space    uint64
	Owner    codec.Address
}

type Assign struct {
	Owner codec.Address
}

type Transfer struct {
	Lamports uint64
}

type Allocate struct {
	Space uint64
}

// NewCreateAccountInstruction funds [to] from [from] and assigns it to
// [owner] with [space] bytes of zeroed data. Both accounts must sign.
func NewCreateAccountInstruction(from, to codec.Address, lamports, space uint64, owner codec.Address) *chain.Instruction {
	return &chain.Instruction{
		ProgramID: SystemProgramID,
		Accounts: []*chain.AccountMeta{
			{Address: from, IsSigner: true, IsWritable: true},
			{Address: to, IsSigner: true, IsWritable: true},
		},
		Data: encode(SystemCreateAccount, &CreateAccount{Lamports: lamports, Space: space, Owner: owner}),
	}
}

func NewAssignInstruction(addr, owner codec.Address) *chain.Instruction {
	return &chain.Instruction{
		ProgramID: SystemProgramID,
		Accounts:  []*chain.AccountMeta{{Address: addr, IsSigner: true, IsWritable: true}},
		Data:      encode(SystemAssign, &Assign{Owner: owner}),
	}
}

// NewTransferInstruction moves native balance. [to] is created if it does
// not exist.
func NewTransferInstruction(from, to codec.Address, lamports uint64) *chain.Instruction {
	return &chain.Instruction{
		ProgramID: SystemProgramID,
		Accounts: []*chain.AccountMeta{
			{Address: from, IsSigner: true, IsWritable: true},
			{Address: to, IsWritable: true},
		},
		Data: encode(SystemTransfer, &Transfer{Lamports: lamports}),
	}
}

func NewAllocateInstruction(addr codec.Address, space uint64) *chain.Instruction {
	return &chain.Instruction{
		ProgramID: SystemProgramID,
		Accounts:  []*chain.AccountMeta{{Address: addr, IsSigner: true, IsWritable: true}},
		Data:      encode(SystemAllocate, &Allocate{Space: space}),
	}
}

// DecodeSystemTransfer returns the lamports of a system transfer, or false
// if [data] is any other system instruction.
func DecodeSystemTransfer(data []byte) (uint64, bool) {
	tag, payload, err := decodeTag(data)
	if err != nil || tag != SystemTransfer {
		return 0, false
	}
	var t Transfer
	if err := decodeStrict(payload, &t); err != nil {
		return 0, false
	}
	return t.Lamports, true
}

func systemCreatable(data []byte) ([]int, error) {
	tag, _, err := decodeTag(data)
	if err != nil {
		return nil, err
	}
	switch tag {
	case SystemCreateAccount, SystemTransfer:
		return []int{1}, nil
	case SystemAssign, SystemAllocate:
		return []int{0}, nil
	default:
		return nil, fmt.Errorf("%w: unknown system instruction %d", ErrInvalidInstructionData, tag)
	}
}

// inUse reports whether the system program considers [a] taken.
func inUse(a *account.Account) bool {
	return a != nil && (a.Balance > 0 || len(a.Data) > 0 || a.Owner != SystemProgramID)
}

// checkSystemFunder ensures [a] can pay lamports out through the system
// program.
func checkSystemFunder(a *InstructionAccount) error {
	if a.Account == nil {
		return fmt.Errorf("%w: %s does not exist", ErrInsufficientFunds, a.Address)
	}
	if a.Account.Owner != SystemProgramID {
		return fmt.Errorf("%w: %s is owned by %s", ErrInvalidOwner, a.Address, a.Account.Owner)
	}
	if len(a.Account.Data) > 0 {
		return fmt.Errorf("%w: %s carries data", ErrInvalidAccountData, a.Address)
	}
	return nil
}

func debit(a *InstructionAccount, amount uint64) error {
	balance, err := smath.Sub(a.Account.Balance, amount)
	if err != nil {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, a.Address, a.Account.Balance, amount)
	}
	a.Account.Balance = balance
	return nil
}

func credit(a *InstructionAccount, amount uint64) error {
	balance, err := smath.Add(a.Account.Balance, amount)
	if err != nil {
		return fmt.Errorf("%w: crediting %s", ErrArithmeticOverflow, a.Address)
	}
	a.Account.Balance = balance
	return nil
}

func dispatchSystem(accounts []*InstructionAccount, data []byte) (*Output, error) {
	tag, payload, err := decodeTag(data)
	if err != nil {
		return nil, err
	}
	out := &Output{ComputeUnits: SystemComputeUnits}
	switch tag {
	case SystemCreateAccount:
		var ix CreateAccount
		if err := decodeStrict(payload, &ix); err != nil {
			return nil, err
		}
		err = createAccount(out, accounts, &ix)
	case SystemAssign:
		var ix Assign
		if err := decodeStrict(payload, &ix); err != nil {
			return nil, err
		}
		err = assign(out, accounts, &ix)
	case SystemTransfer:
		var ix Transfer
		if err := decodeStrict(payload, &ix); err != nil {
			return nil, err
		}
		err = transfer(out, accounts, &ix)
	case SystemAllocate:
		var ix Allocate
		if err := decodeStrict(payload, &ix); err != nil {
			return nil, err
		}
		err = allocate(out, accounts, &ix)
	default:
		err = fmt.Errorf("%w: unknown system instruction %d", ErrInvalidInstructionData, tag)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func createAccount(out *Output, accounts []*InstructionAccount, ix *CreateAccount) error {
	if err := checkAccounts(accounts, 2); err != nil {
		return err
	}
	from, to := accounts[0], accounts[1]
	out.log("Instruction: CreateAccount")
	if err := checkSigner(from); err != nil {
		return err
	}
	if err := checkSigner(to); err != nil {
		return err
	}
	if from.Address == to.Address || inUse(to.Account) {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyExists, to.Address)
	}
	if ix.Space > account.MaxDataLen {
		return fmt.Errorf("%w: space %d", ErrInvalidInstructionData, ix.Space)
	}
	if err := checkSystemFunder(from); err != nil {
		return err
	}
	if err := debit(from, ix.Lamports); err != nil {
		return err
	}
	to.Account = account.New(ix.Lamports, int(ix.Space), ix.Owner)
	out.set(from)
	out.set(to)
	return nil
}

func assign(out *Output, accounts []*InstructionAccount, ix *Assign) error {
	if err := checkAccounts(accounts, 1); err != nil {
		return err
	}
	a := accounts[0]
	out.log("Instruction: Assign")
	if err := checkSigner(a); err != nil {
		return err
	}
	if a.Account == nil {
		a.Account = account.New(0, 0, SystemProgramID)
	}
	if a.Account.Owner == ix.Owner {
		return nil
	}
	if a.Account.Owner != SystemProgramID {
		return fmt.Errorf("%w: %s is owned by %s", ErrInvalidOwner, a.Address, a.Account.Owner)
	}
	a.Account.Owner = ix.Owner
	out.set(a)
	return nil
}

func transfer(out *Output, accounts []*InstructionAccount, ix *Transfer) error {
	if err := checkAccounts(accounts, 2); err != nil {
		return err
	}
	from, to := accounts[0], accounts[1]
	out.log("Instruction: Transfer")
	if err := checkSigner(from); err != nil {
		return err
	}
	if err := checkSystemFunder(from); err != nil {
		return err
	}
	if from.Address == to.Address {
		if from.Account.Balance < ix.Lamports {
			return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from.Address, from.Account.Balance, ix.Lamports)
		}
		return nil
	}
	if err := debit(from, ix.Lamports); err != nil {
		return err
	}
	if to.Account == nil {
		to.Account = account.New(0, 0, SystemProgramID)
	}
	if err := credit(to, ix.Lamports); err != nil {
		return err
	}
	out.set(from)
	out.set(to)
	return nil
}

func allocate(out *Output, accounts []*InstructionAccount, ix *Allocate) error {
	if err := checkAccounts(accounts, 1); err != nil {
		return err
	}
	a := accounts[0]
	out.log("Instruction: Allocate")
	if err := checkSigner(a); err != nil {
		return err
	}
	if a.Account != nil && (len(a.Account.Data) > 0 || a.Account.Owner != SystemProgramID) {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyExists, a.Address)
	}
	if ix.Space > account.MaxDataLen {
		return fmt.Errorf("%w: space %d", ErrInvalidInstructionData, ix.Space)
	}
	if a.Account == nil {
		a.Account = account.New(0, 0, SystemProgramID)
	}
	a.Account.Data = make([]byte, ix.Space)
	out.set(a)
	return nil
}
