package carriers

import (
	"context"
	"testing"

	"github.com/gestrans/gestrans-backend/pkg/config"
)

func TestOpenBackendMemory(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "Memory"}}
	backend, err := OpenBackend(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer backend.Close()

	if backend.Driver != config.StoreDriverMemory {
		t.Fatalf("unexpected driver %q", backend.Driver)
	}
	if _, ok := backend.Store.(*MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", backend.Store)
	}
	if backend.DB != nil {
		t.Fatal("memory backend should not hold a database")
	}
}

func TestOpenBackendSupabase(t *testing.T) {
	cfg := &config.Config{Supabase: config.SupabaseConfig{
		URL:   "https://example.supabase.co",
		Key:   "key",
		Table: "transportadores",
	}}
	backend, err := OpenBackend(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	if backend.Driver != config.StoreDriverSupabase {
		t.Fatalf("expected supabase as default driver, got %q", backend.Driver)
	}
	if _, ok := backend.Store.(*RemoteStore); !ok {
		t.Fatalf("expected remote store, got %T", backend.Store)
	}
}

func TestOpenBackendRejectsUnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "mongo"}}
	if _, err := OpenBackend(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected unknown driver to fail")
	}
	if _, err := OpenBackend(context.Background(), nil, nil); err == nil {
		t.Fatal("expected nil config to fail")
	}
}

func TestNilBackendClose(t *testing.T) {
	var b *Backend
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
