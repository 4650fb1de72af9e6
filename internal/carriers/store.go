package carriers

import (
	"context"
	"errors"
	"fmt"
)

// Store persists carrier records. Implementations must return *StoreError on failure.
type Store interface {
	ListAll(ctx context.Context) ([]Carrier, error)
	Get(ctx context.Context, id string) (*Carrier, error)
	Insert(ctx context.Context, f Fields) (*Carrier, error)
	Update(ctx context.Context, id string, f Fields) (*Carrier, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// ErrorKind classifies store failures.
type ErrorKind string

const (
	// KindTransport covers connectivity, authorization and server failures.
	KindTransport ErrorKind = "transport"
	// KindRejected means the store refused the row.
	KindRejected ErrorKind = "rejected"
	// KindNotFound means no row has the requested id.
	KindNotFound ErrorKind = "not_found"
)

// Store operation names, shared by errors, logs and metrics.
const (
	OpList   = "list"
	OpGet    = "get"
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
	OpPing   = "ping"
)

// StoreError is returned by every Store implementation.
type StoreError struct {
	Kind ErrorKind
	Op   string
	ID   string
	Err  error
}

func (e *StoreError) Error() string {
	if e == nil {
		return ""
	}
	target := e.Op
	if e.ID != "" {
		target = fmt.Sprintf("%s %s", e.Op, e.ID)
	}
	if e.Err == nil {
		return fmt.Sprintf("carrier store %s: %s", target, e.Kind)
	}
	return fmt.Sprintf("carrier store %s: %s: %v", target, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf returns the kind of the StoreError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsKind reports whether err carries a StoreError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

func transportError(op, id string, err error) *StoreError {
	return &StoreError{Kind: KindTransport, Op: op, ID: id, Err: err}
}

func rejectedError(op, id string, err error) *StoreError {
	return &StoreError{Kind: KindRejected, Op: op, ID: id, Err: err}
}

func notFoundError(op, id string) *StoreError {
	return &StoreError{Kind: KindNotFound, Op: op, ID: id}
}

// checkServerRules applies the constraints every backend enforces on stored rows.
func checkServerRules(f Fields) error {
	switch {
	case trimmed(f.Nome) == "":
		return errors.New("nome must not be blank")
	case !nifPattern.MatchString(f.NIF):
		return errors.New("nif must be 9 digits")
	}
	return nil
}
