package carriers

import (
	"context"
	"strings"

	pkgerrors "github.com/gestrans/gestrans-backend/pkg/errors"
)

// Service exposes the carrier directory rules on top of a Store.
type Service interface {
	ListAll(ctx context.Context) ([]Carrier, error)
	List(ctx context.Context, c Criteria) ([]Carrier, error)
	Get(ctx context.Context, id string) (*Carrier, error)
	Create(ctx context.Context, f Fields) (*Carrier, error)
	Update(ctx context.Context, id string, f Fields) (*Carrier, error)
	Patch(ctx context.Context, id string, p Patch) (*Carrier, error)
	Deactivate(ctx context.Context, id string) (*Carrier, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type service struct {
	store Store
}

// NewService builds a carrier service over the given store.
func NewService(store Store) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "carrier store is required")
	}
	return &service{store: store}, nil
}

// ListAll returns every record, active or not, ordered by name.
func (s *service) ListAll(ctx context.Context) ([]Carrier, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, translate(err, "list carriers")
	}
	return records, nil
}

// List returns the active records matching c.
func (s *service) List(ctx context.Context, c Criteria) ([]Carrier, error) {
	records, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(records, c), nil
}

func (s *service) Get(ctx context.Context, id string) (*Carrier, error) {
	id, err := requireID(id)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "load carrier")
	}
	return rec, nil
}

// Create normalizes and validates f before the store is contacted.
func (s *service) Create(ctx context.Context, f Fields) (*Carrier, error) {
	f, err := prepare(f)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.Insert(ctx, f)
	if err != nil {
		return nil, translate(err, "create carrier")
	}
	return rec, nil
}

// Update replaces every caller-controlled field of the record.
func (s *service) Update(ctx context.Context, id string, f Fields) (*Carrier, error) {
	id, err := requireID(id)
	if err != nil {
		return nil, err
	}
	f, err = prepare(f)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.Update(ctx, id, f)
	if err != nil {
		return nil, translate(err, "update carrier")
	}
	return rec, nil
}

// Patch merges p onto the stored record and writes the full result.
func (s *service) Patch(ctx context.Context, id string, p Patch) (*Carrier, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return current, nil
	}
	return s.Update(ctx, current.ID, p.Apply(current.Fields))
}

// Deactivate soft-deletes the record by clearing ativo.
func (s *service) Deactivate(ctx context.Context, id string) (*Carrier, error) {
	inactive := false
	return s.Patch(ctx, id, Patch{Ativo: &inactive})
}

func (s *service) Delete(ctx context.Context, id string) error {
	id, err := requireID(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return translate(err, "delete carrier")
	}
	return nil
}

func (s *service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return translate(err, "ping carrier store")
	}
	return nil
}

func prepare(f Fields) (Fields, error) {
	f = Normalize(f)
	if err := Validate(f); err != nil {
		if fe, ok := AsFieldErrors(err); ok {
			return Fields{}, pkgerrors.Wrap(pkgerrors.CodeValidation, fe, "invalid carrier").WithDetails(fe)
		}
		return Fields{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate carrier")
	}
	return f, nil
}

func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "carrier id is required")
	}
	return id, nil
}

// translate maps store failures onto API error codes.
func translate(err error, msg string) error {
	switch KindOf(err) {
	case KindRejected:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "carrier rejected by store").
			WithDetails(map[string]string{"store": "the record was refused; check nome and nif"})
	case KindNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "carrier not found")
	case KindTransport:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
	}
}
