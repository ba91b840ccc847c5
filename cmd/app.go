// Package cmd implements the tp command line application.
package cmd

import (
	"flag"

	"github.com/google/subcommands"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Commands lists the subcommands registered by the tp binary.
// A main package ranges over it and calls subcommands.Commander.Register.
var Commands = []subcommands.Command{
	&processCmd{},
	&reportCmd{},
	&generateCmd{},
}

// as a CLI application with a very short lifecycle, global flags are ok.

var verbose = flag.Bool("v", false, "enable debug logging on stderr")

// newLogger builds the process-wide structured logger. Logs go to stderr so
// stdout stays reserved for the output rows; the default level only surfaces
// errors, -v lowers it to debug.
func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	if *verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
