// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/paytube/consts"
)

func TestPackerRoundTrip(t *testing.T) {
	require := require.New(t)

	id := ids.GenerateTestID()
	addr := Address{9}
	wp := NewWriter(0, consts.NetworkSizeLimit)
	wp.PackID(id)
	wp.PackAddress(addr)
	wp.PackUint64(42)
	wp.PackInt64(-7)
	wp.PackBool(true)
	wp.PackBytes([]byte("data"))
	wp.PackString("log")
	require.NoError(wp.Err())

	rp := NewReader(wp.Bytes(), consts.NetworkSizeLimit)
	var (
		uid   ids.ID
		uaddr Address
		ub    []byte
	)
	rp.UnpackID(true, &uid)
	rp.UnpackAddress(&uaddr)
	require.Equal(uint64(42), rp.UnpackUint64(true))
	require.Equal(int64(-7), rp.UnpackInt64(true))
	require.True(rp.UnpackBool())
	rp.UnpackBytes(-1, true, &ub)
	require.Equal("log", rp.UnpackString(true))
	require.NoError(rp.Err())
	require.True(rp.Empty())
	require.Equal(id, uid)
	require.Equal(addr, uaddr)
	require.Equal([]byte("data"), ub)
}

func TestPackerRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		unpack func(*Packer)
	}{
		{
			name:   "id",
			unpack: func(p *Packer) { var id ids.ID; p.UnpackID(true, &id) },
		},
		{
			name:   "address",
			unpack: func(p *Packer) { var a Address; p.UnpackAddress(&a) },
		},
		{
			name:   "uint64",
			unpack: func(p *Packer) { p.UnpackUint64(true) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewReader(make([]byte, 64), consts.NetworkSizeLimit)
			tt.unpack(p)
			require.ErrorIs(t, p.Err(), ErrFieldNotPopulated)
		})
	}
}

func TestPackerInsufficientBytes(t *testing.T) {
	p := NewReader([]byte{1, 2}, consts.NetworkSizeLimit)
	p.UnpackUint64(false)
	require.Error(t, p.Err())
}
