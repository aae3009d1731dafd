package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide slog.Logger shared by the API server and
// the worker. LOG_FORMAT=json selects structured output for log shippers;
// anything else falls back to text for local runs.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
