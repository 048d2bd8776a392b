// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/paytube/chain"
)

func TestNewDefaults(t *testing.T) {
	require := require.New(t)

	c, err := New(nil)
	require.NoError(err)
	require.Equal(chain.DefaultRules(), c.Rules())
	level, err := c.Level()
	require.NoError(err)
	require.Equal(logging.Info, level)
	require.Equal("127.0.0.1:9650", c.Address())
	require.Equal(30*time.Second, c.GetSettlementTTL())
}

func TestNewOverrides(t *testing.T) {
	require := require.New(t)

	c, err := New([]byte(`{"logLevel":"debug","httpPort":8080,"maxComputeUnits":1000,"rent":{"lamportsPerByteYear":3,"exemptionThreshold":2}}`))
	require.NoError(err)
	level, err := c.Level()
	require.NoError(err)
	require.Equal(logging.Debug, level)
	require.Equal(uint16(8080), c.HTTPPort)

	rules := c.Rules()
	require.Equal(uint64(1000), rules.MaxComputeUnits)
	require.True(rules.Rent.Enabled())
	require.Equal(chain.DefaultRules().MaxInstructions, rules.MaxInstructions)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "log level", json: `{"logLevel":"loud"}`},
		{name: "validity window", json: `{"validityWindow":0}`},
		{name: "instructions", json: `{"maxInstructionsPerTx":-1}`},
		{name: "compute units", json: `{"maxComputeUnits":0}`},
		{name: "settlement ttl", json: `{"settlementTTL":120000}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]byte(tt.json))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(os.WriteFile(yamlPath, []byte("logLevel: warn\nhttpPort: 9000\nallowedOrigins:\n  - http://localhost\nrent:\n  lamportsPerByteYear: 1\n  exemptionThreshold: 2\n"), 0o600))
	c, err := Load(yamlPath)
	require.NoError(err)
	require.Equal("warn", c.LogLevel)
	require.Equal(uint16(9000), c.HTTPPort)
	require.Equal([]string{"http://localhost"}, c.AllowedOrigins)
	require.Equal(uint64(2), c.Rules().Rent.ExemptionThreshold)

	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(os.WriteFile(jsonPath, []byte(`{"genesisFile":"genesis.json"}`), 0o600))
	c, err = Load(jsonPath)
	require.NoError(err)
	require.Equal("genesis.json", c.GenesisFile)

	_, err = Load(filepath.Join(dir, "config.toml"))
	require.Error(err)
	tomlPath := filepath.Join(dir, "config.toml")
	require.NoError(os.WriteFile(tomlPath, nil, 0o600))
	_, err = Load(tomlPath)
	require.ErrorIs(err, ErrUnsupportedFormat)
}
