// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package channel

import "errors"

var (
	ErrChannelNotOpen     = errors.New("channel not open")
	ErrChannelNotFound    = errors.New("channel not found")
	ErrUnknownState       = errors.New("unknown channel state")
	ErrNoParticipants     = errors.New("no participants")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrAccountNotLocked   = errors.New("account not locked by channel")
	ErrInvalidTransfer    = errors.New("invalid transfer")
	ErrSettlementFailed   = errors.New("settlement failed")
)
