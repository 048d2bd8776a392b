// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package programs

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/near/borsh-go"
)

// serialize borsh-encodes the value behind [v]. borsh treats pointers as
// optional values, so pointers to layouts are dereferenced first.
func serialize(v any) ([]byte, error) {
	return borsh.Serialize(reflect.Indirect(reflect.ValueOf(v)).Interface())
}

// mustSerialize encodes the fixed-size layouts of this package, which are
// built only from integers, bools and addresses and cannot fail to encode.
func mustSerialize(v any) []byte {
	b, err := serialize(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Instruction data is a one byte tag followed by the borsh encoding of the
// tagged payload.
func encode(tag byte, payload any) []byte {
	return append([]byte{tag}, mustSerialize(payload)...)
}

func decodeTag(data []byte) (byte, []byte, error) {
	if len(data) == 0 {
		return 0, nil, fmt.Errorf("%w: empty", ErrInvalidInstructionData)
	}
	return data[0], data[1:], nil
}

// decodeStrict fills [dest] from [b] and rejects encodings that do not
// round-trip, which includes any trailing bytes.
func decodeStrict(b []byte, dest any) error {
	if err := borsh.Deserialize(dest, b); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInstructionData, err)
	}
	canonical, err := serialize(dest)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInstructionData, err)
	}
	if !bytes.Equal(canonical, b) {
		return fmt.Errorf("%w: non-canonical payload", ErrInvalidInstructionData)
	}
	return nil
}
