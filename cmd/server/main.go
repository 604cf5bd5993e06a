package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tuannm99/novadoc"
	"github.com/tuannm99/novadoc/internal"
	"github.com/tuannm99/novadoc/server/docwire"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML config (empty = defaults + NOVADOC_* env)")
	addr := flag.String("addr", "", "listen address, overrides server.addr")
	uri := flag.String("storage", "", "storage URI, overrides storage.uri")
	flag.Parse()

	if err := run(*cfgPath, *addr, *uri); err != nil {
		fmt.Fprintf(os.Stderr, "novadoc: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, addr, uri string) error {
	cfg, err := internal.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if uri != "" {
		cfg.Storage.URI = uri
	}
	if cfg.Server.Debug {
		cfg.Log.Level = "debug"
	}
	logger := internal.NewLogger(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := novadoc.OpenConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := docwire.NewServer(db, docwire.ServerConfig{
		Addr: cfg.Server.Addr,
		Auth: docwire.AuthConfig{
			Enabled:   cfg.Auth.Enabled,
			JWTSecret: cfg.Auth.JWTSecret,
			Issuer:    cfg.Auth.Issuer,
		},
		Logger: logger,
	})
	serveErr := srv.ListenAndServe(ctx)

	logger.Info("novadoc: shutting down", "uri", cfg.Storage.URI)
	// ctx is already cancelled here; the final save must still run
	if err := db.Close(context.Background()); err != nil {
		logger.Error("novadoc: close", "err", err)
		if serveErr == nil {
			serveErr = err
		}
	}
	return serveErr
}
