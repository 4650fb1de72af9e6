package carriers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps records in process. It applies the same row rules as the
// SQL schema so it can stand in for a real backend.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Carrier
	now     func() time.Time
}

// NewMemoryStore returns a store seeded with the given records.
func NewMemoryStore(seed ...Carrier) *MemoryStore {
	m := &MemoryStore{
		records: make(map[string]Carrier, len(seed)),
		now:     time.Now,
	}
	for _, rec := range seed {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		m.records[rec.ID] = rec.Clone()
	}
	return m
}

func (m *MemoryStore) ListAll(ctx context.Context) ([]Carrier, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError(OpList, "", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Carrier, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return ListedBefore(out[i], out[j])
	})
	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Carrier, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError(OpGet, id, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, notFoundError(OpGet, id)
	}
	out := rec.Clone()
	return &out, nil
}

func (m *MemoryStore) Insert(ctx context.Context, f Fields) (*Carrier, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError(OpInsert, "", err)
	}
	if err := checkServerRules(f); err != nil {
		return nil, rejectedError(OpInsert, "", err)
	}
	now := m.now().UTC()
	rec := Carrier{
		ID:        uuid.NewString(),
		Fields:    f.Clone(),
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	m.mu.Lock()
	m.records[rec.ID] = rec
	m.mu.Unlock()

	out := rec.Clone()
	return &out, nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, f Fields) (*Carrier, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError(OpUpdate, id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, notFoundError(OpUpdate, id)
	}
	if err := checkServerRules(f); err != nil {
		return nil, rejectedError(OpUpdate, id, err)
	}
	now := m.now().UTC()
	rec.Fields = f.Clone()
	rec.UpdatedAt = &now
	m.records[id] = rec

	out := rec.Clone()
	return &out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return transportError(OpDelete, id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return notFoundError(OpDelete, id)
	}
	delete(m.records, id)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return transportError(OpPing, "", err)
	}
	return nil
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
