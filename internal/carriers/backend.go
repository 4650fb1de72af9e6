package carriers

import (
	"context"
	"fmt"

	"github.com/gestrans/gestrans-backend/pkg/config"
	"github.com/gestrans/gestrans-backend/pkg/db"
	"github.com/gestrans/gestrans-backend/pkg/logger"
	"github.com/gestrans/gestrans-backend/pkg/supabase"
)

// Backend is the store selected by GESTRANS_STORE_DRIVER plus the resources it holds.
type Backend struct {
	Driver string
	Store  Store
	// DB is set for the postgres driver only.
	DB *db.Client
}

// Close releases the backend resources.
func (b *Backend) Close() error {
	if b == nil || b.DB == nil {
		return nil
	}
	return b.DB.Close()
}

// OpenBackend builds the store named by cfg.Store.Driver.
func OpenBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	driver := cfg.Store.Normalized()
	switch driver {
	case config.StoreDriverSupabase:
		client, err := supabase.NewClient(
			cfg.Supabase.URL,
			cfg.Supabase.Key,
			supabase.WithTimeout(cfg.Supabase.Timeout),
			supabase.WithSchema(cfg.Supabase.Schema),
			supabase.WithClientInfo(cfg.Supabase.ClientInfo),
		)
		if err != nil {
			return nil, fmt.Errorf("building supabase client: %w", err)
		}
		store, err := NewRemoteStore(client, cfg.Supabase.Table)
		if err != nil {
			return nil, err
		}
		return &Backend{Driver: driver, Store: store}, nil

	case config.StoreDriverPostgres:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, err
		}
		return &Backend{Driver: driver, Store: NewRepository(client.DB()), DB: client}, nil

	case config.StoreDriverMemory:
		if logg != nil {
			logg.Warn(ctx, "using in-memory carrier store; records are lost on exit")
		}
		return &Backend{Driver: driver, Store: NewMemoryStore()}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
