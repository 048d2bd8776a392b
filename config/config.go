// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/trace"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrInvalidConfig     = errors.New("invalid config")
)

type RentConfig struct {
	LamportsPerByteYear uint64 `json:"lamportsPerByteYear" yaml:"lamportsPerByteYear"`
	ExemptionThreshold  uint64 `json:"exemptionThreshold"  yaml:"exemptionThreshold"`
}

type Config struct {
	// Logging
	LogLevel string `json:"logLevel" yaml:"logLevel"`
	LogFile  string `json:"logFile"  yaml:"logFile"`

	// Tracing
	Trace trace.Config `json:"trace" yaml:"trace"`

	// API
	HTTPHost        string   `json:"httpHost"        yaml:"httpHost"`
	HTTPPort        uint16   `json:"httpPort"        yaml:"httpPort"`
	AllowedOrigins  []string `json:"allowedOrigins"  yaml:"allowedOrigins"`
	AllowedHosts    []string `json:"allowedHosts"    yaml:"allowedHosts"`
	ShutdownTimeout int64    `json:"shutdownTimeout" yaml:"shutdownTimeout"`

	// Channel execution
	ValidityWindow       int64      `json:"validityWindow"       yaml:"validityWindow"`
	MaxInstructionsPerTx int        `json:"maxInstructionsPerTx" yaml:"maxInstructionsPerTx"`
	MaxAccountsPerTx     int        `json:"maxAccountsPerTx"     yaml:"maxAccountsPerTx"`
	MaxComputeUnits      uint64     `json:"maxComputeUnits"      yaml:"maxComputeUnits"`
	Rent                 RentConfig `json:"rent"                 yaml:"rent"`
	SettlementTTL        int64      `json:"settlementTTL"        yaml:"settlementTTL"`

	// Ledger
	ChainID          ids.ID `json:"chainID"          yaml:"-"`
	AccountCacheSize int    `json:"accountCacheSize" yaml:"accountCacheSize"`
	GenesisFile      string `json:"genesisFile"      yaml:"genesisFile"`
}

func NewDefault() *Config {
	rules := chain.DefaultRules()
	return &Config{
		LogLevel:             logging.Info.String(),
		Trace:                trace.Config{TraceSampleRate: 0.1, Endpoint: trace.DefaultEndpoint},
		HTTPHost:             "127.0.0.1",
		HTTPPort:             9650,
		AllowedOrigins:       []string{"*"},
		AllowedHosts:         []string{"localhost"},
		ShutdownTimeout:      10_000,
		ValidityWindow:       rules.ValidityWindow,
		MaxInstructionsPerTx: rules.MaxInstructions,
		MaxAccountsPerTx:     rules.MaxAccounts,
		MaxComputeUnits:      rules.MaxComputeUnits,
		SettlementTTL:        30_000,
		AccountCacheSize:     1_024,
	}
}

// New parses a JSON config over the defaults.
func New(b []byte) (*Config, error) {
	c := NewDefault()
	if len(b) > 0 {
		if err := json.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", string(b), err)
		}
	}
	return c, c.Verify()
}

// Load reads a JSON or YAML config from [path], chosen by extension.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(path) {
	case ".json":
		return New(b)
	case ".yaml", ".yml":
		c := NewDefault()
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
		}
		return c, c.Verify()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func (c *Config) Verify() error {
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch {
	case c.ValidityWindow <= 0:
		return fmt.Errorf("%w: validityWindow must be positive", ErrInvalidConfig)
	case c.MaxInstructionsPerTx <= 0:
		return fmt.Errorf("%w: maxInstructionsPerTx must be positive", ErrInvalidConfig)
	case c.MaxAccountsPerTx <= 0:
		return fmt.Errorf("%w: maxAccountsPerTx must be positive", ErrInvalidConfig)
	case c.MaxComputeUnits == 0:
		return fmt.Errorf("%w: maxComputeUnits must be positive", ErrInvalidConfig)
	case c.SettlementTTL <= 0 || c.SettlementTTL > c.ValidityWindow:
		return fmt.Errorf("%w: settlementTTL must be within (0, validityWindow]", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) Level() (logging.Level, error) { return logging.ToLevel(c.LogLevel) }

func (c *Config) Address() string { return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort) }

func (c *Config) GetShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Millisecond
}

func (c *Config) GetSettlementTTL() time.Duration {
	return time.Duration(c.SettlementTTL) * time.Millisecond
}

// Rules returns the execution rules channels run under.
func (c *Config) Rules() chain.Rules {
	return chain.Rules{
		ValidityWindow:  c.ValidityWindow,
		MaxInstructions: c.MaxInstructionsPerTx,
		MaxAccounts:     c.MaxAccountsPerTx,
		MaxComputeUnits: c.MaxComputeUnits,
		Rent: account.Rent{
			LamportsPerByteYear: c.Rent.LamportsPerByteYear,
			ExemptionThreshold:  c.Rent.ExemptionThreshold,
		},
	}
}
