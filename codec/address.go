// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/ava-labs/paytube/consts"
)

const AddressLen = 32

// Address identifies an account. For signer accounts it is the raw
// ed25519 public key. Program-derived accounts (mints, token accounts,
// program IDs) use a hash that is never a valid signing key.
type Address [AddressLen]byte

var EmptyAddress = Address{}

// ToAddress copies b into an Address. It returns ErrInvalidSize if b is
// not exactly AddressLen bytes.
func ToAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return a, fmt.Errorf("%w: address must be %d bytes (found %d)", ErrInvalidSize, AddressLen, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// AddressBech32 returns the bech32 encoding of a under [hrp].
func AddressBech32(hrp string, a Address) (string, error) {
	p, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, p)
}

// ParseAddressBech32 decodes a bech32 address and checks its hrp.
func ParseAddressBech32(hrp, saddr string) (Address, error) {
	phrp, p, err := bech32.Decode(saddr)
	if err != nil {
		return EmptyAddress, err
	}
	if phrp != hrp {
		return EmptyAddress, ErrIncorrectHRP
	}
	b, err := bech32.ConvertBits(p, 5, 8, false)
	if err != nil {
		return EmptyAddress, err
	}
	return ToAddress(b)
}

// MustAddressBech32 is AddressBech32 under the default hrp. Encoding a
// fixed-size value cannot fail.
func MustAddressBech32(a Address) string {
	s, err := AddressBech32(consts.HRP, a)
	if err != nil {
		panic(err)
	}
	return s
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return MustAddressBech32(a)
}

// Compare orders addresses by their raw bytes.
func (a Address) Compare(b Address) int {
	return bytes.Compare(a[:], b[:])
}

// MarshalText returns the bech32 representation of a.
func (a Address) MarshalText() ([]byte, error) {
	s, err := AddressBech32(consts.HRP, a)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalText parses a bech32-encoded address.
func (a *Address) UnmarshalText(input []byte) error {
	parsed, err := ParseAddressBech32(consts.HRP, string(input))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
