// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package version

import (
	"fmt"

	"github.com/ava-labs/avalanchego/version"
	"github.com/spf13/cobra"
)

var Version = &version.Semantic{
	Major: 0,
	Minor: 1,
	Patch: 0,
}

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints out the version",
		RunE: func(*cobra.Command, []string) error {
			fmt.Printf("paytube@%s\n", Version)
			return nil
		},
	}
}
