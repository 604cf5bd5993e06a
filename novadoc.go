package novadoc

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tuannm99/novadoc/internal"
	"github.com/tuannm99/novadoc/internal/engine"
	"github.com/tuannm99/novadoc/internal/storage"
)

// Open opens a document with explicit options.
func Open(ctx context.Context, opts Options) (*Database, error) {
	return engine.Open(ctx, opts)
}

// OpenURI opens the document stored at uri with default options. A missing
// snapshot opens as an empty document.
func OpenURI(ctx context.Context, uri string, autoSave bool) (*Database, error) {
	store, err := storage.Open(ctx, uri, storage.Options{})
	if err != nil {
		return nil, err
	}
	return engine.Open(ctx, engine.Options{Store: store, AutoSave: autoSave})
}

// OpenConfig opens the document described by a config file (see internal.LoadConfig).
// A nil logger logs to stderr at the configured level.
func OpenConfig(ctx context.Context, cfg *internal.NovaDocConfig, logger *slog.Logger) (*Database, error) {
	if logger == nil {
		logger = internal.NewLogger(cfg.Log, os.Stderr)
	}
	store, err := storage.Open(ctx, cfg.Storage.URI, StorageOptions(cfg))
	if err != nil {
		return nil, err
	}
	codec, err := storage.CodecFor(cfg.Storage.Format, cfg.Storage.Pretty)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	db, err := engine.Open(ctx, engine.Options{
		Store:          store,
		Codec:          codec,
		AutoSave:       cfg.Storage.AutoSave,
		StatementCache: cfg.Server.StatementCache,
		Logger:         logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("novadoc: open %s: %w", cfg.Storage.URI, err)
	}
	return db, nil
}

// StorageOptions maps the s3 and git sections of the config to store options.
func StorageOptions(cfg *internal.NovaDocConfig) storage.Options {
	return storage.Options{
		S3: storage.S3Config{
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		},
		Git: storage.GitConfig{
			AuthorName:  cfg.Git.AuthorName,
			AuthorEmail: cfg.Git.AuthorEmail,
		},
	}
}
