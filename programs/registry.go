// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package programs

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/state"
)

var (
	SystemProgramID = ProgramAddress("system")
	TokenProgramID  = ProgramAddress("token")
)

// ProgramAddress derives the address of a built-in program from its name.
func ProgramAddress(name string) codec.Address {
	return codec.Address(hashing.ComputeHash256Array([]byte("paytube/program/" + name)))
}

// Kind tags each built-in program. The set is closed: dispatch is a switch
// over Kind rather than a lookup of arbitrary handlers.
type Kind uint8

const (
	KindSystem Kind = iota + 1
	KindToken
)

func (k Kind) String() string {
	switch k {
	case KindSystem:
		return "system"
	case KindToken:
		return "token"
	default:
		return "unknown"
	}
}

// InstructionAccount is an account as handed to a program: its reference
// flags plus a private copy of its current state. Account is nil when the
// address does not exist yet.
type InstructionAccount struct {
	Address    codec.Address
	IsSigner   bool
	IsWritable bool
	Account    *account.Account
}

// AccountDelta is the post-instruction state of one account.
type AccountDelta struct {
	Address codec.Address
	Account *account.Account
}

// Output is everything a handler produces on success.
type Output struct {
	Deltas       []AccountDelta
	Logs         []string
	ComputeUnits uint64
}

func (o *Output) set(a *InstructionAccount) {
	o.Deltas = append(o.Deltas, AccountDelta{Address: a.Address, Account: a.Account})
}

func (o *Output) log(format string, args ...any) {
	o.Logs = append(o.Logs, fmt.Sprintf(format, args...))
}

// Registry resolves program IDs to their Kind.
type Registry struct {
	programs map[codec.Address]Kind
}

// NewRegistry returns a Registry with the built-in system and token
// programs.
func NewRegistry() *Registry {
	return &Registry{
		programs: map[codec.Address]Kind{
			SystemProgramID: KindSystem,
			TokenProgramID:  KindToken,
		},
	}
}

func (r *Registry) Kind(programID codec.Address) (Kind, error) {
	k, ok := r.programs[programID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownProgram, programID)
	}
	return k, nil
}

// StateKeys returns the permissions [ix] needs on each of its accounts.
// Accounts the instruction may create carry Allocate.
func (r *Registry) StateKeys(ix *chain.Instruction) (state.Keys, error) {
	kind, err := r.Kind(ix.ProgramID)
	if err != nil {
		return nil, err
	}
	var creatable []int
	switch kind {
	case KindSystem:
		creatable, err = systemCreatable(ix.Data)
	case KindToken:
		err = validTokenData(ix.Data)
	}
	if err != nil {
		return nil, err
	}

	keys := make(state.Keys, len(ix.Accounts))
	for _, m := range ix.Accounts {
		if m.IsWritable {
			keys.Add(m.Address, state.Write)
		} else {
			keys.Add(m.Address, state.Read)
		}
	}
	for _, i := range creatable {
		if i < len(ix.Accounts) && ix.Accounts[i].IsWritable {
			keys.Add(ix.Accounts[i].Address, state.Allocate)
		}
	}
	return keys, nil
}

// Dispatch runs [data] through the handler of [programID]. Handlers are
// pure: they only read the accounts passed in and never keep references
// to them.
func (r *Registry) Dispatch(programID codec.Address, accounts []*InstructionAccount, data []byte) (*Output, error) {
	kind, err := r.Kind(programID)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindSystem:
		return dispatchSystem(accounts, data)
	case KindToken:
		return dispatchToken(accounts, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, kind)
	}
}

func checkAccounts(accounts []*InstructionAccount, n int) error {
	if len(accounts) < n {
		return fmt.Errorf("%w: need %d, found %d", ErrNotEnoughAccountKeys, n, len(accounts))
	}
	return nil
}

func checkSigner(a *InstructionAccount) error {
	if !a.IsSigner {
		return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, a.Address)
	}
	return nil
}
