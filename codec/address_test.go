// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/paytube/consts"
)

func TestAddressBech32(t *testing.T) {
	require := require.New(t)

	var a Address
	for i := range a {
		a[i] = byte(i)
	}
	s, err := AddressBech32(consts.HRP, a)
	require.NoError(err)
	require.Equal(s, a.String())

	parsed, err := ParseAddressBech32(consts.HRP, s)
	require.NoError(err)
	require.Equal(a, parsed)

	_, err = ParseAddressBech32("other", s)
	require.ErrorIs(err, ErrIncorrectHRP)
}

func TestAddressJSON(t *testing.T) {
	require := require.New(t)

	type wrapper struct {
		Addr Address `json:"addr"`
	}
	w := wrapper{Addr: Address{1, 2, 3}}
	b, err := json.Marshal(w)
	require.NoError(err)

	var decoded wrapper
	require.NoError(json.Unmarshal(b, &decoded))
	require.Equal(w, decoded)
}

func TestToAddressInvalidSize(t *testing.T) {
	_, err := ToAddress([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestAddressCompare(t *testing.T) {
	require := require.New(t)

	a := Address{1}
	b := Address{2}
	require.Equal(-1, a.Compare(b))
	require.Equal(1, b.Compare(a))
	require.Zero(a.Compare(a))
}
