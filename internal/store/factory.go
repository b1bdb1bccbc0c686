package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/lifeloom/lineage/internal/config"
)

// Open selects the RecordStore backend from configuration, mirroring the
// provider switch used for LLM clients.
func Open(ctx context.Context, cfg config.StoreConfig) (RecordStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryStore(), nil

	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "lineage.db"
		}
		return OpenSQLite(path)

	case "graph":
		return OpenGraph(ctx, cfg.GraphURI, cfg.GraphUser, cfg.GraphPassword)

	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}
