// Package backend builds the storage stack from configuration. The
// sqlite backend is the production one; the memory backend exists for
// tests and for running the dashboard without a database file.
package backend

import (
	"fmt"

	"upilens/internal/amqp"
	"upilens/internal/config"
	"upilens/internal/log"
	"upilens/internal/memstore"
	"upilens/internal/ports"
	"upilens/internal/storage"
)

// Type selects the storage implementation.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string { return string(t) }

// IsValid returns true for a known backend type.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result bundles the store with its optional AMQP client and cleanup.
// AMQP is nil when no broker is configured; ingest then relies on the
// worker's periodic sweep instead of push messages.
type Result struct {
	Store   ports.Store
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Build creates the store described by cfg.
func Build(cfg *config.Config, logger *log.Logger) (*Result, error) {
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLiteBackend:
		return buildSQLite(cfg, logger)
	default:
		logger.Info("initialized memory backend")
		return &Result{Store: memstore.New()}, nil
	}
}

func buildSQLite(cfg *config.Config, logger *log.Logger) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite repository: %w", err)
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("amqp unavailable, indexing falls back to periodic sweep", log.FieldError, err)
			amqpClient = nil
		}
	}

	cleanup := func() error {
		var firstErr error
		if amqpClient != nil {
			firstErr = amqpClient.Close()
		}
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return firstErr
	}

	logger.Info("initialized sqlite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &Result{Store: repo, AMQP: amqpClient, Cleanup: cleanup}, nil
}
