package cliutil

import "go.uber.org/zap"

// NewLogger builds the *zap.Logger each ffdb-* command constructs once and uses
// locally; it is never a package-level global, and library packages take none.
func NewLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
