package carriers

import (
	"context"
	"time"

	"github.com/gestrans/gestrans-backend/pkg/metrics"
)

// Instrumented records duration and outcome of every call to the wrapped store.
type Instrumented struct {
	next    Store
	metrics *metrics.StoreMetrics
	now     func() time.Time
}

// NewInstrumented wraps next. A nil recorder turns the wrapper into a pass-through.
func NewInstrumented(next Store, m *metrics.StoreMetrics) *Instrumented {
	return &Instrumented{next: next, metrics: m, now: time.Now}
}

func (s *Instrumented) ListAll(ctx context.Context) ([]Carrier, error) {
	start := s.now()
	out, err := s.next.ListAll(ctx)
	s.observe(OpList, start, err)
	return out, err
}

func (s *Instrumented) Get(ctx context.Context, id string) (*Carrier, error) {
	start := s.now()
	out, err := s.next.Get(ctx, id)
	s.observe(OpGet, start, err)
	return out, err
}

func (s *Instrumented) Insert(ctx context.Context, f Fields) (*Carrier, error) {
	start := s.now()
	out, err := s.next.Insert(ctx, f)
	s.observe(OpInsert, start, err)
	return out, err
}

func (s *Instrumented) Update(ctx context.Context, id string, f Fields) (*Carrier, error) {
	start := s.now()
	out, err := s.next.Update(ctx, id, f)
	s.observe(OpUpdate, start, err)
	return out, err
}

func (s *Instrumented) Delete(ctx context.Context, id string) error {
	start := s.now()
	err := s.next.Delete(ctx, id)
	s.observe(OpDelete, start, err)
	return err
}

func (s *Instrumented) Ping(ctx context.Context) error {
	start := s.now()
	err := s.next.Ping(ctx)
	s.observe(OpPing, start, err)
	return err
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	s.metrics.ObserveDuration(op, s.now().Sub(start))
	if err != nil {
		kind := KindOf(err)
		if kind == "" {
			kind = KindTransport
		}
		s.metrics.IncFailure(op, string(kind))
		return
	}
	s.metrics.IncSuccess(op)
}
