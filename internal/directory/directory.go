package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/gestrans/gestrans-backend/internal/carriers"
	pkgerrors "github.com/gestrans/gestrans-backend/pkg/errors"
	"github.com/gestrans/gestrans-backend/pkg/logger"
)

// ModalKind names one of the two record forms.
type ModalKind string

const (
	ModalAdd  ModalKind = "add"
	ModalEdit ModalKind = "edit"
)

// ModalState is the lifecycle of a record form.
type ModalState int

const (
	Closed ModalState = iota
	Open
	Submitting
)

func (s ModalState) String() string {
	switch s {
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	default:
		return "closed"
	}
}

var (
	// ErrModalNotOpen is returned when an action targets a closed form.
	ErrModalNotOpen = pkgerrors.New(pkgerrors.CodeConflict, "form is not open")
	// ErrModalBusy is returned while a submission is in flight.
	ErrModalBusy = pkgerrors.New(pkgerrors.CodeConflict, "form is being submitted")
)

// ModalView is a snapshot of a record form.
type ModalView struct {
	Kind  ModalKind
	State ModalState
	// ID is the record under edit; empty for the add form.
	ID     string
	Draft  carriers.Fields
	Errors carriers.FieldErrors
	Err    error
}

type modal struct {
	state  ModalState
	id     string
	draft  carriers.Fields
	errors carriers.FieldErrors
	err    error
}

// Directory is the application state of the carrier screen: the loaded list,
// the active filter and the add/edit forms. It is safe for concurrent use.
type Directory struct {
	svc  carriers.Service
	logg *logger.Logger

	mu       sync.Mutex
	records  []carriers.Carrier
	criteria carriers.Criteria
	loading  bool
	loaded   bool
	modals   map[ModalKind]*modal
	loadErr  error
}

// New builds an empty directory over svc. logg may be nil.
func New(svc carriers.Service, logg *logger.Logger) (*Directory, error) {
	if svc == nil {
		return nil, fmt.Errorf("carrier service is required")
	}
	return &Directory{
		svc:      svc,
		logg:     logg,
		criteria: carriers.AllCriteria(),
		modals: map[ModalKind]*modal{
			ModalAdd:  {},
			ModalEdit: {},
		},
	}, nil
}

// Load fetches the full list. On failure the previous list is kept.
func (d *Directory) Load(ctx context.Context) error {
	d.mu.Lock()
	d.loading = true
	d.mu.Unlock()

	records, err := d.svc.ListAll(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	d.loadErr = err
	if err != nil {
		d.logError(ctx, "load carriers failed", err)
		return err
	}
	d.records = records
	d.loaded = true
	return nil
}

// Loading reports whether the initial fetch is in flight.
func (d *Directory) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// Loaded reports whether at least one fetch succeeded.
func (d *Directory) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

// LoadErr returns the error of the last fetch, if any.
func (d *Directory) LoadErr() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadErr
}

// SetCriteria replaces the filter. Empty members mean "Todos".
func (d *Directory) SetCriteria(c carriers.Criteria) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.criteria = c.Normalized()
}

func (d *Directory) Criteria() carriers.Criteria {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.criteria
}

// Visible returns the filtered view of the loaded list.
func (d *Directory) Visible() []carriers.Carrier {
	d.mu.Lock()
	defer d.mu.Unlock()
	return carriers.Filter(d.records, d.criteria)
}

// Records returns a copy of every loaded record, active or not.
func (d *Directory) Records() []carriers.Carrier {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]carriers.Carrier, 0, len(d.records))
	for _, rec := range d.records {
		out = append(out, rec.Clone())
	}
	return out
}

// OpenAdd opens the add form with a fresh draft.
func (d *Directory) OpenAdd() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	m := d.modals[ModalAdd]
	if m.state == Submitting {
		return ErrModalBusy
	}
	*m = modal{state: Open, draft: carriers.NewDraft()}
	return nil
}

// OpenEdit opens the edit form on a copy of the loaded record.
func (d *Directory) OpenEdit(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	m := d.modals[ModalEdit]
	if m.state == Submitting {
		return ErrModalBusy
	}
	idx := d.indexOf(id)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("carrier %s is not loaded", id))
	}
	*m = modal{state: Open, id: id, draft: d.records[idx].Fields.Clone()}
	return nil
}

// Close discards the form and its draft.
func (d *Directory) Close(kind ModalKind) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, err := d.modal(kind)
	if err != nil {
		return err
	}
	if m.state == Submitting {
		return ErrModalBusy
	}
	*m = modal{}
	return nil
}

// SetField writes a scalar field of the open draft.
func (d *Directory) SetField(kind ModalKind, field, value string) error {
	return d.editDraft(kind, field, func(f *carriers.Fields) error {
		return f.Set(field, value)
	})
}

// Toggle adds or removes value from a multi-select field of the open draft.
func (d *Directory) Toggle(kind ModalKind, field, value string, checked bool) error {
	return d.editDraft(kind, field, func(f *carriers.Fields) error {
		return f.Toggle(field, value, checked)
	})
}

// SetValues replaces a multi-select field of the open draft.
func (d *Directory) SetValues(kind ModalKind, field string, values []string) error {
	return d.editDraft(kind, field, func(f *carriers.Fields) error {
		return f.Replace(field, values)
	})
}

func (d *Directory) editDraft(kind ModalKind, field string, edit func(*carriers.Fields) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, err := d.openModal(kind)
	if err != nil {
		return err
	}
	if err := edit(&m.draft); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form input").
			WithDetails(carriers.FieldErrors{field: err.Error()})
	}
	delete(m.errors, field)
	return nil
}

// SubmitAdd creates the drafted record. On success the form closes and the
// record is spliced into the list; on failure the draft is kept and the error
// is recorded on the form.
func (d *Directory) SubmitAdd(ctx context.Context) (*carriers.Carrier, error) {
	draft, _, err := d.beginSubmit(ModalAdd)
	if err != nil {
		return nil, err
	}
	rec, err := d.svc.Create(ctx, draft)
	return d.finishSubmit(ctx, ModalAdd, rec, err)
}

// SubmitEdit writes the edited draft as one full-record update.
func (d *Directory) SubmitEdit(ctx context.Context) (*carriers.Carrier, error) {
	draft, id, err := d.beginSubmit(ModalEdit)
	if err != nil {
		return nil, err
	}
	ctx = d.withCarrier(ctx, id)
	rec, err := d.svc.Update(ctx, id, draft)
	return d.finishSubmit(ctx, ModalEdit, rec, err)
}

// Deactivate clears ativo on the record and replaces it in the list.
func (d *Directory) Deactivate(ctx context.Context, id string) (*carriers.Carrier, error) {
	ctx = d.withCarrier(ctx, id)
	rec, err := d.svc.Deactivate(ctx, id)
	if err != nil {
		d.logError(ctx, "deactivate carrier failed", err)
		return nil, err
	}
	d.mu.Lock()
	d.splice(*rec)
	d.mu.Unlock()
	return rec, nil
}

// Delete removes the record from the store and from the list.
func (d *Directory) Delete(ctx context.Context, id string) error {
	ctx = d.withCarrier(ctx, id)
	if err := d.svc.Delete(ctx, id); err != nil {
		d.logError(ctx, "delete carrier failed", err)
		return err
	}
	d.mu.Lock()
	if idx := d.indexOf(id); idx >= 0 {
		d.records = append(d.records[:idx], d.records[idx+1:]...)
	}
	d.mu.Unlock()
	return nil
}

// Modal returns a snapshot of the form.
func (d *Directory) Modal(kind ModalKind) ModalView {
	d.mu.Lock()
	defer d.mu.Unlock()
	view := ModalView{Kind: kind}
	m, ok := d.modals[kind]
	if !ok {
		return view
	}
	view.State = m.state
	view.ID = m.id
	view.Err = m.err
	if m.state != Closed {
		view.Draft = m.draft.Clone()
	}
	if len(m.errors) > 0 {
		view.Errors = make(carriers.FieldErrors, len(m.errors))
		for k, v := range m.errors {
			view.Errors[k] = v
		}
	}
	return view
}

func (d *Directory) beginSubmit(kind ModalKind) (carriers.Fields, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, err := d.openModal(kind)
	if err != nil {
		return carriers.Fields{}, "", err
	}
	m.state = Submitting
	m.errors = nil
	m.err = nil
	return m.draft.Clone(), m.id, nil
}

func (d *Directory) finishSubmit(ctx context.Context, kind ModalKind, rec *carriers.Carrier, err error) (*carriers.Carrier, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m := d.modals[kind]
	if err != nil {
		m.state = Open
		m.err = err
		if fe, ok := carriers.AsFieldErrors(err); ok {
			m.errors = fe
		}
		d.logError(ctx, fmt.Sprintf("%s carrier failed", kind), err)
		return nil, err
	}
	*m = modal{}
	d.splice(*rec)
	return rec, nil
}

func (d *Directory) modal(kind ModalKind) (*modal, error) {
	m, ok := d.modals[kind]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown form %q", kind))
	}
	return m, nil
}

func (d *Directory) openModal(kind ModalKind) (*modal, error) {
	m, err := d.modal(kind)
	if err != nil {
		return nil, err
	}
	switch m.state {
	case Closed:
		return nil, ErrModalNotOpen
	case Submitting:
		return nil, ErrModalBusy
	}
	return m, nil
}

// splice replaces rec in place when loaded, otherwise inserts it before the
// first record it is listed before.
func (d *Directory) splice(rec carriers.Carrier) {
	if idx := d.indexOf(rec.ID); idx >= 0 {
		d.records[idx] = rec.Clone()
		return
	}
	pos := len(d.records)
	for i, cur := range d.records {
		if carriers.ListedBefore(rec, cur) {
			pos = i
			break
		}
	}
	d.records = append(d.records, carriers.Carrier{})
	copy(d.records[pos+1:], d.records[pos:])
	d.records[pos] = rec.Clone()
}

func (d *Directory) indexOf(id string) int {
	for i, rec := range d.records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

func (d *Directory) withCarrier(ctx context.Context, id string) context.Context {
	if d.logg == nil {
		return ctx
	}
	return d.logg.WithCarrierID(ctx, id)
}

func (d *Directory) logError(ctx context.Context, msg string, err error) {
	if d.logg == nil {
		return
	}
	d.logg.Error(ctx, msg, err)
}
