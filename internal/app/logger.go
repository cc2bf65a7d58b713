package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide logger shared by the API and worker
// binaries. Production deployments emit JSON for the log collector;
// anything else gets readable text output. Source locations are always
// attached so shift-time incidents can be traced to a line.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
