// Package store opens the types.Store selected by a types.Config.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/contextref/internal/memory"
	"github.com/mesh-intelligence/contextref/internal/mongo"
	"github.com/mesh-intelligence/contextref/internal/sqlite"
	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Exporter is implemented by stores that can dump their collections as
// JSONL files.
type Exporter interface {
	Export(ctx context.Context, dir string) ([]string, error)
}

// Importer is implemented by stores that can load collections from JSONL
// files written by Exporter.
type Importer interface {
	Import(ctx context.Context, dir string) (int, error)
}

// Open validates cfg and opens its backend. A nil log discards.
//
//	s, err := store.Open(ctx, types.Config{Backend: types.BackendSQLite, DataDir: ".contextref-db"}, nil)
//	defer s.Close(ctx)
func Open(ctx context.Context, cfg types.Config, log *zap.SugaredLogger) (types.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	switch cfg.Backend {
	case types.BackendMemory:
		return memory.NewStore(), nil
	case types.BackendSQLite:
		s, err := sqlite.Open(ctx, cfg.DataDir, sqlite.WithLogger(log))
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, nil
	case types.BackendMongo:
		s, err := mongo.Open(ctx, cfg.MongoURI, cfg.Database(), mongo.WithLogger(log))
		if err != nil {
			return nil, fmt.Errorf("opening mongo store: %w", err)
		}
		return s, nil
	default:
		return nil, types.ErrBackendUnknown
	}
}
