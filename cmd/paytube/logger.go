// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ava-labs/paytube/config"
)

// newLogger writes to stderr and, when a log file is configured, to a
// rotating JSON file.
func newLogger(cfg *config.Config) (logging.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	cores := []logging.WrappedCore{
		logging.NewWrappedCore(level, os.Stderr, logging.Colors.ConsoleEncoder()),
	}
	if len(cfg.LogFile) > 0 {
		rw := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    8, // megabytes
			MaxBackups: 7, // files
			Compress:   true,
		}
		cores = append(cores, logging.NewWrappedCore(level, rw, logging.JSON.FileEncoder()))
	}
	return logging.NewLogger("", cores...), nil
}
