// Command docstruct extracts the structure of DOCX files.
//
// Usage:
//
//	docstruct [flags] <file-or-folder>
//	docstruct [flags] serve
//
// A single file is written to standard output unless -out is given. A
// folder is walked recursively and every document in it is written under
// -out, mirroring the folder layout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuslu/log"

	"github.com/tsawler/docstruct/export"
	"github.com/tsawler/docstruct/internal/config"
	"github.com/tsawler/docstruct/internal/logging"
	"github.com/tsawler/docstruct/internal/server"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("docstruct", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("DOCSTRUCT_CONFIG"), "TOML configuration file")
	outDir := fs.String("out", "", "output directory")
	media := fs.Bool("media", false, "write images and object previews next to the output")
	workers := fs.Int("workers", 0, "concurrent parses in folder mode")
	timeout := fs.Duration("timeout", 0, "per-file parse budget")
	formatName := fs.String("format", "", "output format: json, text, markdown or html")
	addr := fs.String("addr", "", "listen address in serve mode")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: docstruct [flags] <file-or-folder>\n       docstruct [flags] serve\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// Flags override the file and the environment; validation waits until
	// they are applied.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.Output.Dir = *outDir
		case "media":
			cfg.Output.Media = *media
		case "workers":
			cfg.Batch.Workers = *workers
		case "timeout":
			cfg.Batch.Timeout = timeout.String()
		case "format":
			cfg.Output.Format = *formatName
		case "addr":
			cfg.Server.Addr = *addr
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	logger := logging.New(cfg.Logging, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if fs.Arg(0) == "serve" {
		if err := serve(ctx, cfg, logger); err != nil {
			logger.Error().Err(err).Msg("server error")
			return 1
		}
		return 0
	}

	format, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		logger.Error().Err(err).Msg("invalid format")
		return 2
	}

	b := &batch{
		cfg:    cfg,
		format: format,
		log:    logger,
		stdout: os.Stdout,
	}
	summary, err := b.run(ctx, fs.Arg(0))
	if err != nil {
		logger.Error().Err(err).Msg("batch failed")
		return 1
	}
	if summary.Failed > 0 {
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(cfg, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", cfg.Server.Addr).Msg("starting docstruct server")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
