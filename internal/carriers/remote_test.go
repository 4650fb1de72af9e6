package carriers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gestrans/gestrans-backend/pkg/supabase"
)

// fakePostgREST serves the subset of PostgREST the remote store uses.
type fakePostgREST struct {
	mu     sync.Mutex
	nextID int
	lists  int
	rows   map[string]map[string]any
}

func newFakePostgREST() *fakePostgREST {
	return &fakePostgREST{rows: map[string]map[string]any{}}
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path != "/rest/v1/transportadores" {
		writePGError(w, http.StatusNotFound, "PGRST205", "relation does not exist")
		return
	}
	id := strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")

	switch r.Method {
	case http.MethodHead:
		w.Header().Set("Content-Range", "*/"+strconv.Itoa(len(f.rows)))
	case http.MethodGet:
		f.lists++
		writeJSON(w, http.StatusOK, page(f.matching(id), r.URL.Query()))
	case http.MethodPost:
		row, ok := f.decodeRow(w, r)
		if !ok {
			return
		}
		f.nextID++
		row["id"] = f.nextID
		key := strconv.Itoa(f.nextID)
		f.rows[key] = row
		writeJSON(w, http.StatusCreated, []map[string]any{row})
	case http.MethodPatch:
		row, ok := f.decodeRow(w, r)
		if !ok {
			return
		}
		existing, found := f.rows[id]
		if !found {
			writeJSON(w, http.StatusOK, []map[string]any{})
			return
		}
		for k, v := range row {
			existing[k] = v
		}
		writeJSON(w, http.StatusOK, []map[string]any{existing})
	case http.MethodDelete:
		existing, found := f.rows[id]
		if !found {
			writeJSON(w, http.StatusOK, []map[string]any{})
			return
		}
		delete(f.rows, id)
		writeJSON(w, http.StatusOK, []map[string]any{existing})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakePostgREST) matching(id string) []map[string]any {
	out := []map[string]any{}
	for key, row := range f.rows {
		if id == "" || key == id {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := out[i]["nome"].(string), out[j]["nome"].(string)
		if ni != nj {
			return ni < nj
		}
		return toInt(out[i]["id"]) < toInt(out[j]["id"])
	})
	return out
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

// page applies PostgREST limit and offset parameters.
func page(rows []map[string]any, q url.Values) []map[string]any {
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset >= len(rows) {
		return []map[string]any{}
	}
	rows = rows[offset:]
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func (f *fakePostgREST) decodeRow(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var row map[string]any
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writePGError(w, http.StatusBadRequest, "PGRST102", "invalid body")
		return nil, false
	}
	nome, _ := row["nome"].(string)
	nif, _ := row["nif"].(string)
	if strings.TrimSpace(nome) == "" || !nifPattern.MatchString(nif) {
		writePGError(w, http.StatusBadRequest, "23514", `new row for relation "transportadores" violates check constraint`)
		return nil, false
	}
	return row, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writePGError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"code": code, "message": msg})
}

func newRemoteTestStore(t *testing.T, handler http.Handler) *RemoteStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := supabase.NewClient(srv.URL, "test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	store, err := NewRemoteStore(client, "")
	if err != nil {
		t.Fatalf("new remote store: %v", err)
	}
	return store
}

func TestRemoteStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return newRemoteTestStore(t, newFakePostgREST())
	})
}

func TestRemoteStoreRequiresClient(t *testing.T) {
	if _, err := NewRemoteStore(nil, "transportadores"); err == nil {
		t.Fatal("expected error without client")
	}
}

func TestRemoteStoreErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		code   string
		op     func(Store) error
		kind   ErrorKind
	}{
		{"unauthorized list", http.StatusUnauthorized, "", func(s Store) error { _, err := s.ListAll(context.Background()); return err }, KindTransport},
		{"server error insert", http.StatusInternalServerError, "XX000", func(s Store) error { _, err := s.Insert(context.Background(), validFields("A")); return err }, KindTransport},
		{"not null insert", http.StatusBadRequest, "23502", func(s Store) error { _, err := s.Insert(context.Background(), validFields("A")); return err }, KindRejected},
		{"conflict insert", http.StatusConflict, "23505", func(s Store) error { _, err := s.Insert(context.Background(), validFields("A")); return err }, KindRejected},
		{"malformed id update", http.StatusBadRequest, "22P02", func(s Store) error { _, err := s.Update(context.Background(), "abc", validFields("A")); return err }, KindNotFound},
		{"no rows get", http.StatusNotAcceptable, "PGRST116", func(s Store) error { _, err := s.Get(context.Background(), "1"); return err }, KindTransport},
		{"forbidden ping", http.StatusForbidden, "42501", func(s Store) error { return s.Ping(context.Background()) }, KindTransport},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newRemoteTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writePGError(w, tc.status, tc.code, "boom")
			}))
			err := tc.op(store)
			if !IsKind(err, tc.kind) {
				t.Fatalf("expected %s, got %v", tc.kind, err)
			}
			if _, ok := supabase.AsAPIError(err); !ok {
				t.Fatalf("expected api error to stay in the chain: %v", err)
			}
		})
	}
}

func TestRemoteStoreUnreachableIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client, err := supabase.NewClient(srv.URL, "test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	srv.Close()
	store, _ := NewRemoteStore(client, "transportadores")

	if _, err := store.ListAll(context.Background()); !IsKind(err, KindTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestRemoteRowDecoding(t *testing.T) {
	payload := `[
		{"id": 12, "nome": "ALFA", "nif": "501234567", "tipo": "Transportador", "ativo": true,
		 "tiposervico": ["FTL"], "zonacobertura": null, "zonaCobertura": ["Portugal", "Espanha"]},
		{"id": "b7c1", "nome": "BETA", "nif": "501234568", "tipo": "Transitário", "ativo": false,
		 "tipoServico": ["LTL"], "tipocarga": ["Geral"], "created_at": "2025-03-01T10:00:00Z"}
	]`
	store := newRemoteTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("order"); got != "nome.asc,id.asc" {
			t.Errorf("expected nome ordering, got %q", got)
		}
		_, _ = io.WriteString(w, payload)
	}))

	all, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(all))
	}
	if all[0].ID != "12" || all[1].ID != "b7c1" {
		t.Fatalf("ids not decoded as opaque strings: %q %q", all[0].ID, all[1].ID)
	}
	if strings.Join(all[0].ZonaCobertura, ",") != "Portugal,Espanha" {
		t.Fatalf("legacy coverage column not folded: %v", all[0].ZonaCobertura)
	}
	if strings.Join(all[0].TipoServico, ",") != "FTL" {
		t.Fatalf("unexpected service types %v", all[0].TipoServico)
	}
	if strings.Join(all[1].TipoServico, ",") != "LTL" {
		t.Fatalf("legacy service type column not folded: %v", all[1].TipoServico)
	}
	if all[1].CreatedAt == nil || all[1].Ativo {
		t.Fatalf("unexpected second row %+v", all[1])
	}
	if all[0].Modalidades == nil {
		t.Fatal("missing sets should decode as empty sets")
	}
}

func TestRemoteIDRejectsObjects(t *testing.T) {
	var id remoteID
	if err := json.Unmarshal([]byte(`{"x":1}`), &id); err == nil {
		t.Fatal("expected error for object id")
	}
	if err := json.Unmarshal([]byte(`null`), &id); err != nil || id != "" {
		t.Fatalf("null id should decode as empty, got %q %v", id, err)
	}
}

func TestRemoteRowMigratesLegacyCargo(t *testing.T) {
	var row remoteRow
	if err := json.Unmarshal([]byte(`{"id": 3, "nome": "ALFA", "tipoCarga": ["Caixa", "Cargas líquidas", "Palete"]}`), &row); err != nil {
		t.Fatalf("decode: %v", err)
	}
	rec := row.toCarrier()
	if strings.Join(rec.TipoCarga, ",") != "Outros,Líquidos" {
		t.Fatalf("legacy cargo values not migrated: %v", rec.TipoCarga)
	}
}

func TestRemoteStoreListAllPages(t *testing.T) {
	fake := newFakePostgREST()
	store := newRemoteTestStore(t, fake)
	store.pageSize = 2
	ctx := context.Background()

	for _, nome := range []string{"DELTA", "ALFA", "ECO", "BETA", "GAMA"} {
		f := NewDraft()
		f.NIF = "501234567"
		f.Nome = nome
		if _, err := store.Insert(ctx, f); err != nil {
			t.Fatalf("insert %s: %v", nome, err)
		}
	}

	all, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, rec := range all {
		got = append(got, rec.Nome)
	}
	if strings.Join(got, ",") != "ALFA,BETA,DELTA,ECO,GAMA" {
		t.Fatalf("expected every row across pages, got %v", got)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.lists != 3 {
		t.Fatalf("expected 3 page requests, got %d", fake.lists)
	}
}
