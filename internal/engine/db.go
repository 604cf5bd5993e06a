// Package engine ties a table tree, its executor and a snapshot store into one
// document database.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tuannm99/novadoc/internal/catalog"
	"github.com/tuannm99/novadoc/internal/sql/executor"
	"github.com/tuannm99/novadoc/internal/sql/stmtcache"
	"github.com/tuannm99/novadoc/internal/storage"
)

var ErrDatabaseClosed = errors.New("novadoc: database is closed")

type Options struct {
	// Store is where snapshots are loaded from and saved to. Required.
	Store storage.Store
	// Codec encodes snapshots. Defaults to compact JSON.
	Codec storage.Codec
	// AutoSave flushes the document after every successful statement.
	AutoSave bool
	// StatementCache is the number of parsed statements to keep. 0 disables it.
	StatementCache int
	Logger         *slog.Logger
}

// Database is one document: a table tree loaded from a store.
//
// Database is not safe for concurrent use. Execute mutates the tree in place and
// assumes a single writer; callers sharing a Database must serialize every
// call, e.g. behind a mutex.
type Database struct {
	store    storage.Store
	codec    storage.Codec
	exec     *executor.Executor
	cache    *stmtcache.Cache
	autoSave bool
	log      *slog.Logger

	dirty  bool
	closed bool
}

// Open loads the snapshot from opts.Store. A store with no snapshot yet opens
// as an empty document.
func Open(ctx context.Context, opts Options) (*Database, error) {
	if opts.Store == nil {
		return nil, errors.New("engine: nil store")
	}
	if opts.Codec == nil {
		opts.Codec = storage.JSONCodec{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	tree, err := load(ctx, opts.Store, opts.Codec)
	if err != nil {
		return nil, err
	}

	if opts.AutoSave && storage.IsReadOnly(opts.Store) {
		opts.Logger.Info("engine: store is read-only, auto-save off", "uri", opts.Store.URI())
		opts.AutoSave = false
	}

	cache := stmtcache.New(opts.StatementCache)
	db := &Database{
		store:    opts.Store,
		codec:    opts.Codec,
		cache:    cache,
		autoSave: opts.AutoSave,
		log:      opts.Logger,
		exec: executor.NewExecutor(tree,
			executor.WithStatementCache(cache),
			executor.WithLogger(opts.Logger)),
	}
	db.log.Info("engine: document opened", "uri", opts.Store.URI(), "codec", opts.Codec.Name())
	return db, nil
}

func load(ctx context.Context, store storage.Store, codec storage.Codec) (*catalog.Tree, error) {
	data, err := store.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return catalog.NewTree(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("engine: load: %w", err)
	}
	doc, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("engine: decode %s: %w", store.URI(), err)
	}
	tree, err := catalog.Decode(doc)
	if err != nil {
		return nil, fmt.Errorf("engine: decode %s: %w", store.URI(), err)
	}
	return tree, nil
}

// Execute runs one statement. On failure the document is unchanged.
//
// With auto-save on, a successful statement is flushed before Execute returns;
// if that flush fails the statement stays applied in memory and the returned
// error wraps the save failure together with the result.
func (db *Database) Execute(ctx context.Context, statement string) (*executor.Result, error) {
	if db.closed {
		return nil, ErrDatabaseClosed
	}

	res, err := db.exec.Exec(statement)
	if err != nil {
		db.log.Debug("engine: statement failed", "statement", statement, "err", err)
		return nil, err
	}
	db.dirty = true

	if db.autoSave {
		if err := db.Save(ctx); err != nil {
			db.log.Error("engine: auto-save failed", "uri", db.store.URI(), "err", err)
			return res, fmt.Errorf("engine: auto-save: %w", err)
		}
	}
	return res, nil
}

// Save flushes the document to the store. A statement is durable only once
// Save (or the auto-save after it) has returned without error.
func (db *Database) Save(ctx context.Context) error {
	if db.closed {
		return ErrDatabaseClosed
	}
	doc, err := catalog.Encode(db.exec.Tree())
	if err != nil {
		return fmt.Errorf("engine: encode: %w", err)
	}
	data, err := db.codec.Encode(doc)
	if err != nil {
		return fmt.Errorf("engine: encode: %w", err)
	}
	if err := db.store.Save(ctx, data); err != nil {
		return err
	}
	db.dirty = false
	return nil
}

// Dirty reports whether statements ran since the last successful save.
func (db *Database) Dirty() bool { return db.dirty }

// Tree exposes the in-memory table tree for inspection.
func (db *Database) Tree() *catalog.Tree { return db.exec.Tree() }

func (db *Database) Store() storage.Store { return db.store }

func (db *Database) CacheStats() stmtcache.Stats { return db.cache.Stats() }

// Close saves pending changes when auto-save is on, then closes the store.
func (db *Database) Close(ctx context.Context) error {
	if db.closed {
		return ErrDatabaseClosed
	}
	var saveErr error
	if db.autoSave && db.dirty {
		saveErr = db.Save(ctx)
	}
	db.closed = true
	return errors.Join(saveErr, db.store.Close())
}
