package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/gestrans/gestrans-backend/internal/carriers"
	pkgAuth "github.com/gestrans/gestrans-backend/pkg/auth"
	"github.com/gestrans/gestrans-backend/pkg/config"
	"github.com/gestrans/gestrans-backend/pkg/enums"
	"github.com/gestrans/gestrans-backend/pkg/metrics"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type memoryIdempotency struct {
	data map[string]string
}

func (m *memoryIdempotency) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryIdempotency) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key], _ = value.(string)
	return true, nil
}

func (m *memoryIdempotency) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryIdempotency) IdempotencyKey(scope, id string) string {
	return scope + ":" + id
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testAPI struct {
	handler http.Handler
	cfg     *config.Config
	store   *carriers.MemoryStore
	idem    *memoryIdempotency
}

func newTestAPI(t *testing.T, jwtSecret string, seed ...carriers.Carrier) *testAPI {
	t.Helper()
	cfg := &config.Config{
		App:  config.AppConfig{Env: "dev"},
		JWT:  config.JWTConfig{Secret: jwtSecret, Issuer: "gestrans", ExpirationMinutes: 60},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
	store := carriers.NewMemoryStore(seed...)
	reg := prometheus.NewRegistry()
	svc, err := carriers.NewService(carriers.NewInstrumented(store, metrics.NewStoreMetrics(reg)))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	idem := &memoryIdempotency{data: map[string]string{}}
	handler := NewRouter(cfg, nil, Deps{
		Carriers:    svc,
		Store:       store,
		Idempotency: idem,
		Gatherer:    reg,
	})
	return &testAPI{handler: handler, cfg: cfg, store: store, idem: idem}
}

func (a *testAPI) token(t *testing.T, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(a.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{Subject: "ops@example.pt", Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", method+path+time.Now().String())
	}
	resp := httptest.NewRecorder()
	a.handler.ServeHTTP(resp, req)

	var env envelope
	if resp.Body.Len() > 0 && strings.HasPrefix(resp.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, resp.Body.String())
		}
	}
	return resp, env
}

func seedCarrier(nome, tipo string, ativo bool, service string, zones ...string) carriers.Carrier {
	f := carriers.NewDraft()
	f.NIF = "501234567"
	f.Nome = nome
	f.Tipo = tipo
	f.Ativo = ativo
	f.TipoServico = []string{service}
	f.ZonaCobertura = zones
	return carriers.Carrier{Fields: f}
}

func decodeCarriers(t *testing.T, raw json.RawMessage) []carriers.Carrier {
	t.Helper()
	var out []carriers.Carrier
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode carriers: %v", err)
	}
	return out
}

func decodeCarrier(t *testing.T, raw json.RawMessage) carriers.Carrier {
	t.Helper()
	var out carriers.Carrier
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode carrier: %v", err)
	}
	return out
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t, "")

	resp, _ := api.do(t, http.MethodGet, "/health/live", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("live: expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Gestrans-Env") != "dev" {
		t.Fatal("expected env header")
	}
	resp, _ = api.do(t, http.MethodGet, "/health/ready", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("ready: expected 200 got %d", resp.Code)
	}
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	handler := NewRouter(cfg, nil, Deps{
		Store: stubPinger{},
		Redis: stubPinger{err: errors.New("connection refused")},
	})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", resp.Code)
	}
}

func TestMetricsEndpointExposesStoreMetrics(t *testing.T) {
	api := newTestAPI(t, "", seedCarrier("ALFA", "Transportador", true, "FTL", "Portugal"))
	api.do(t, http.MethodGet, "/api/v1/carriers", "", nil)

	resp, _ := api.do(t, http.MethodGet, "/metrics", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `gestrans_store_operation_success_total{op="list"} 1`) {
		t.Fatalf("expected list counter in %s", resp.Body.String())
	}
}

func TestListFiltersByQuery(t *testing.T) {
	api := newTestAPI(t, "",
		seedCarrier("ALFA", "Transportador", true, "FTL", "Portugal", "Espanha"),
		seedCarrier("BETA", "Transitário", true, "LTL", "França"),
		seedCarrier("GAMA", "Transportador", false, "FTL", "Espanha"),
	)

	resp, env := api.do(t, http.MethodGet, "/api/v1/carriers", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := decodeCarriers(t, env.Data); len(got) != 2 {
		t.Fatalf("expected 2 active carriers, got %d", len(got))
	}

	_, env = api.do(t, http.MethodGet, "/api/v1/carriers?tipo=Transportador&origem=Espanha", "", nil)
	got := decodeCarriers(t, env.Data)
	if len(got) != 1 || got[0].Nome != "ALFA" {
		t.Fatalf("expected only ALFA, got %+v", got)
	}

	_, env = api.do(t, http.MethodGet, "/api/v1/carriers?tipo_servico=Todos&destino=Fran%C3%A7a", "", nil)
	got = decodeCarriers(t, env.Data)
	if len(got) != 1 || got[0].Nome != "BETA" {
		t.Fatalf("expected only BETA, got %+v", got)
	}

	_, env = api.do(t, http.MethodGet, "/api/v1/carriers?all=true", "", nil)
	if got := decodeCarriers(t, env.Data); len(got) != 3 {
		t.Fatalf("expected every record with all=true, got %d", len(got))
	}

	resp, _ = api.do(t, http.MethodGet, "/api/v1/carriers?all=maybe", "", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad bool, got %d", resp.Code)
	}
}

func TestOptionsEndpoint(t *testing.T) {
	api := newTestAPI(t, "")
	resp, env := api.do(t, http.MethodGet, "/api/v1/carriers/options", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var opts carriers.Options
	if err := json.Unmarshal(env.Data, &opts); err != nil {
		t.Fatalf("decode options: %v", err)
	}
	if opts.FilterAll != enums.FilterAll || len(opts.ZonaCobertura) == 0 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestCarrierLifecycle(t *testing.T) {
	api := newTestAPI(t, "secret")
	admin := api.token(t, enums.RoleAdmin)

	body := map[string]any{
		"nif":           "509999999",
		"nome":          "alfa transportes",
		"tiposervico":   []string{"FTL"},
		"zonacobertura": []string{"Portugal", "Espanha"},
	}
	resp, env := api.do(t, http.MethodPost, "/api/v1/carriers", admin, body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}
	created := decodeCarrier(t, env.Data)
	if created.ID == "" || created.Nome != "ALFA TRANSPORTES" || !created.Ativo || created.Pais != "PORTUGAL" {
		t.Fatalf("unexpected created carrier %+v", created)
	}
	path := "/api/v1/carriers/" + created.ID

	resp, env = api.do(t, http.MethodGet, path, admin, nil)
	if resp.Code != http.StatusOK || decodeCarrier(t, env.Data).ID != created.ID {
		t.Fatalf("get: unexpected %d %s", resp.Code, resp.Body.String())
	}

	resp, env = api.do(t, http.MethodPatch, path, admin, `{"tipo":"Transitário"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("patch: expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	patched := decodeCarrier(t, env.Data)
	if patched.Tipo != "Transitário" || strings.Join(patched.ZonaCobertura, ",") != "Portugal,Espanha" {
		t.Fatalf("patch should only change tipo, got %+v", patched)
	}

	full := body
	full["nome"] = "ALFA LDA"
	full["ativo"] = true
	resp, env = api.do(t, http.MethodPut, path, admin, full)
	if resp.Code != http.StatusOK {
		t.Fatalf("put: expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if got := decodeCarrier(t, env.Data); got.Nome != "ALFA LDA" || got.Tipo != "Transportador" {
		t.Fatalf("put should replace every field, got %+v", got)
	}

	resp, env = api.do(t, http.MethodPost, path+"/deactivate", admin, nil)
	if resp.Code != http.StatusOK || decodeCarrier(t, env.Data).Ativo {
		t.Fatalf("deactivate: unexpected %d %s", resp.Code, resp.Body.String())
	}
	_, env = api.do(t, http.MethodGet, "/api/v1/carriers", admin, nil)
	if got := decodeCarriers(t, env.Data); len(got) != 0 {
		t.Fatalf("deactivated carrier should be hidden, got %d", len(got))
	}

	resp, _ = api.do(t, http.MethodDelete, path, admin, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204 got %d", resp.Code)
	}
	resp, env = api.do(t, http.MethodGet, path, admin, nil)
	if resp.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected not found after delete, got %d %s", resp.Code, resp.Body.String())
	}
}

func TestCreateReturnsFieldErrors(t *testing.T) {
	api := newTestAPI(t, "")

	resp, env := api.do(t, http.MethodPost, "/api/v1/carriers", "", map[string]any{"nif": "12AB", "nome": " "})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if env.Error == nil || env.Error.Details["nif"] == "" || env.Error.Details["nome"] == "" {
		t.Fatalf("expected nif and nome details, got %s", resp.Body.String())
	}
	all, _ := api.store.ListAll(context.Background())
	if len(all) != 0 {
		t.Fatal("invalid carrier should not be stored")
	}
}

func TestUpdateRequiresAtivo(t *testing.T) {
	api := newTestAPI(t, "", seedCarrier("ALFA", "Transportador", false, "FTL", "Portugal"))
	all, _ := api.store.ListAll(context.Background())
	if len(all) != 1 {
		t.Fatalf("expected one seeded carrier, got %d", len(all))
	}
	path := "/api/v1/carriers/" + all[0].ID

	resp, env := api.do(t, http.MethodPut, path, "", map[string]any{
		"nif":           "501234567",
		"nome":          "ALFA LDA",
		"tiposervico":   []string{"FTL"},
		"zonacobertura": []string{"Portugal"},
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", resp.Code, resp.Body.String())
	}
	if env.Error == nil || env.Error.Details["ativo"] == "" {
		t.Fatalf("expected ativo detail, got %s", resp.Body.String())
	}
	rec, err := api.store.Get(context.Background(), all[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Ativo || rec.Nome != "ALFA" {
		t.Fatalf("rejected update must leave the record untouched, got %+v", rec)
	}
}

func TestCreateRejectsLegacyFieldNames(t *testing.T) {
	api := newTestAPI(t, "")
	resp, _ := api.do(t, http.MethodPost, "/api/v1/carriers", "", `{"nif":"509999999","nome":"ALFA","tipoServico":["FTL"]}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for camelCase field, got %d", resp.Code)
	}
}

func TestWritesRequireAdmin(t *testing.T) {
	api := newTestAPI(t, "secret", seedCarrier("ALFA", "Transportador", true, "FTL", "Portugal"))

	resp, _ := api.do(t, http.MethodGet, "/api/v1/carriers", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	viewer := api.token(t, enums.RoleViewer)
	resp, _ = api.do(t, http.MethodGet, "/api/v1/carriers", viewer, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("viewer should read, got %d", resp.Code)
	}
	resp, _ = api.do(t, http.MethodPost, "/api/v1/carriers", viewer, map[string]any{"nif": "509999999", "nome": "BETA"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("viewer should not write, got %d", resp.Code)
	}
}

func TestCreateReplaysIdempotentRequest(t *testing.T) {
	api := newTestAPI(t, "")
	body := `{"nif":"509999999","nome":"ALFA"}`

	var ids []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/carriers", strings.NewReader(body))
		req.Header.Set("Idempotency-Key", "create-alfa")
		resp := httptest.NewRecorder()
		api.handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected 201 got %d (%s)", i, resp.Code, resp.Body.String())
		}
		var env envelope
		if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		ids = append(ids, decodeCarrier(t, env.Data).ID)
	}
	if ids[0] != ids[1] {
		t.Fatalf("expected replayed response, got ids %v", ids)
	}
	all, _ := api.store.ListAll(context.Background())
	if len(all) != 1 {
		t.Fatalf("expected a single insert, got %d", len(all))
	}
}
