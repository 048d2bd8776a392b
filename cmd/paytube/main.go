// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ava-labs/paytube/cmd/paytube/version"
)

var rootCmd = &cobra.Command{
	Use:        "paytube",
	Short:      "Payment channel node",
	SuggestFor: []string{"paytube"},
}

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SilenceUsage = true
	rootCmd.AddCommand(
		newRunCommand(),
		newGenesisCommand(),
		version.NewCommand(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "paytube failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
