// Package logging builds the phuslu/log logger used by the CLI and the HTTP
// server.
package logging

import (
	"io"

	"github.com/phuslu/log"

	"github.com/tsawler/docstruct/internal/config"
)

// New returns a logger writing to w at the configured level. The "text"
// format writes human-readable console lines; "json" writes one JSON object
// per line.
func New(cfg config.LoggingConfig, w io.Writer) *log.Logger {
	logger := &log.Logger{
		Level:      log.ParseLevel(cfg.Level),
		TimeFormat: "15:04:05",
	}
	if cfg.Format == "json" {
		logger.TimeFormat = ""
		logger.Writer = &log.IOWriter{Writer: w}
	} else {
		logger.Writer = &log.ConsoleWriter{
			Writer:         w,
			ColorOutput:    false,
			EndWithMessage: true,
		}
	}
	return logger
}
