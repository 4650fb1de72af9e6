package carriers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gestrans/gestrans-backend/pkg/supabase"
)

const (
	defaultRemoteTable = "transportadores"
	// PostgREST caps responses at max-rows, 1000 on hosted Supabase.
	remotePageSize = 1000
)

// RemoteStore keeps carriers in a Supabase table reached through PostgREST.
type RemoteStore struct {
	client   *supabase.Client
	table    string
	pageSize int
}

// NewRemoteStore binds a Supabase client to the given table.
func NewRemoteStore(client *supabase.Client, table string) (*RemoteStore, error) {
	if client == nil {
		return nil, fmt.Errorf("supabase client is required")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		table = defaultRemoteTable
	}
	return &RemoteStore{client: client, table: table, pageSize: remotePageSize}, nil
}

// ListAll reads the table page by page until a short page comes back.
func (s *RemoteStore) ListAll(ctx context.Context) ([]Carrier, error) {
	var all []remoteRow
	for offset := 0; ; offset += s.pageSize {
		var rows []remoteRow
		query := url.Values{
			"select": {"*"},
			"order":  {"nome.asc,id.asc"},
			"limit":  {strconv.Itoa(s.pageSize)},
			"offset": {strconv.Itoa(offset)},
		}
		if err := s.client.Select(ctx, s.table, query, &rows); err != nil {
			return nil, classifyRemote(OpList, "", err)
		}
		all = append(all, rows...)
		if len(rows) < s.pageSize {
			break
		}
	}
	out := toCarriers(all)
	sort.SliceStable(out, func(i, j int) bool { return ListedBefore(out[i], out[j]) })
	return out, nil
}

func (s *RemoteStore) Get(ctx context.Context, id string) (*Carrier, error) {
	var rows []remoteRow
	query := url.Values{"select": {"*"}, "id": {supabase.Eq(id)}}
	if err := s.client.Select(ctx, s.table, query, &rows); err != nil {
		return nil, classifyRemote(OpGet, id, err)
	}
	return single(OpGet, id, rows)
}

func (s *RemoteStore) Insert(ctx context.Context, f Fields) (*Carrier, error) {
	var rows []remoteRow
	if err := s.client.Insert(ctx, s.table, f, &rows); err != nil {
		return nil, classifyRemote(OpInsert, "", err)
	}
	if len(rows) == 0 {
		return nil, transportError(OpInsert, "", fmt.Errorf("insert returned no representation"))
	}
	out := rows[0].toCarrier()
	return &out, nil
}

func (s *RemoteStore) Update(ctx context.Context, id string, f Fields) (*Carrier, error) {
	var rows []remoteRow
	query := url.Values{"id": {supabase.Eq(id)}}
	if err := s.client.Update(ctx, s.table, query, f, &rows); err != nil {
		return nil, classifyRemote(OpUpdate, id, err)
	}
	return single(OpUpdate, id, rows)
}

func (s *RemoteStore) Delete(ctx context.Context, id string) error {
	var rows []remoteRow
	query := url.Values{"id": {supabase.Eq(id)}}
	if err := s.client.Delete(ctx, s.table, query, &rows); err != nil {
		return classifyRemote(OpDelete, id, err)
	}
	if len(rows) == 0 {
		return notFoundError(OpDelete, id)
	}
	return nil
}

// Ping performs a head count on the table.
func (s *RemoteStore) Ping(ctx context.Context) error {
	if _, err := s.client.Count(ctx, s.table); err != nil {
		return classifyRemote(OpPing, "", err)
	}
	return nil
}

func classifyRemote(op, id string, err error) error {
	apiErr, ok := supabase.AsAPIError(err)
	if !ok {
		return transportError(op, id, err)
	}
	switch {
	case id != "" && (apiErr.NoRows() || apiErr.SQLState() == sqlStateInvalidText):
		return notFoundError(op, id)
	case apiErr.Rejected():
		return rejectedError(op, id, err)
	default:
		return transportError(op, id, err)
	}
}

func single(op, id string, rows []remoteRow) (*Carrier, error) {
	if len(rows) == 0 {
		return nil, notFoundError(op, id)
	}
	out := rows[0].toCarrier()
	return &out, nil
}

func toCarriers(rows []remoteRow) []Carrier {
	out := make([]Carrier, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toCarrier())
	}
	return out
}

// remoteRow is a row as PostgREST returns it. Older tables still expose the
// camelCase set columns, which are folded into the canonical ones.
type remoteRow struct {
	ID remoteID `json:"id"`
	Fields
	LegacyTipoServico   []string   `json:"tipoServico"`
	LegacyTipoCarga     []string   `json:"tipoCarga"`
	LegacyZonaCobertura []string   `json:"zonaCobertura"`
	CreatedAt           *time.Time `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at"`
}

func (r remoteRow) toCarrier() Carrier {
	f := r.Fields.Clone()
	if len(f.TipoServico) == 0 && len(r.LegacyTipoServico) > 0 {
		f.TipoServico = cloneSet(r.LegacyTipoServico)
	}
	if len(f.TipoCarga) == 0 && len(r.LegacyTipoCarga) > 0 {
		f.TipoCarga = cloneSet(r.LegacyTipoCarga)
	}
	if len(f.ZonaCobertura) == 0 && len(r.LegacyZonaCobertura) > 0 {
		f.ZonaCobertura = cloneSet(r.LegacyZonaCobertura)
	}
	f.TipoCarga = MigrateCargoTypes(f.TipoCarga)
	return Carrier{
		ID:        string(r.ID),
		Fields:    f,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// remoteID accepts both numeric and string identifiers.
type remoteID string

func (id *remoteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = remoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("carrier id must be a string or number: %w", err)
	}
	*id = remoteID(n.String())
	return nil
}
