package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lanternworks/kinesis-core/internal/control"
	"github.com/lanternworks/kinesis-core/internal/infrastructure/config"
	"github.com/lanternworks/kinesis-core/internal/infrastructure/logging"
	"github.com/lanternworks/kinesis-core/internal/preset"
	"github.com/lanternworks/kinesis-core/internal/script"
)

const testOperatorKey = "test-operator-key"

// fakeEngine is a minimal Controller for handler tests.
type fakeEngine struct {
	presets []string
	stops   int
	scripts []script.Script
	status  control.StatusSnapshot
}

func (f *fakeEngine) ApplyPreset(name string) error {
	if name == "nonexistent" {
		return preset.ErrUnknownPreset
	}
	f.presets = append(f.presets, name)
	return nil
}

func (f *fakeEngine) RequestStop() { f.stops++ }

func (f *fakeEngine) LoadScript(s script.Script) error {
	if err := s.Validate(); err != nil {
		return err
	}
	f.scripts = append(f.scripts, s)
	return nil
}

func (f *fakeEngine) Status() control.StatusSnapshot { return f.status }

// testServer creates a Server wired to a fake engine and a fresh library.
func testServer(t *testing.T) (*Server, *fakeEngine) {
	t.Helper()

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	engine := &fakeEngine{
		status: control.StatusSnapshot{PresetName: "idle", StrobeMaxHz: 4, FadeMultiplier: 1},
	}

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host:     "127.0.0.1",
			Port:     0,
			Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 5},
		},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Security: config.SecurityConfig{
			JWT: config.JWTConfig{
				Secret:         "test-secret-key-at-least-32-characters-long",
				OperatorKey:    testOperatorKey,
				AccessTokenTTL: 15,
			},
		},
		Logger:  log,
		Engine:  engine,
		Library: preset.NewLibrary(),
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	srv.hub = NewHub(srv.wsCfg, log)
	return srv, engine
}

// doRequest runs one request through the full router.
func doRequest(t *testing.T, srv *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)
	return rec
}

// login obtains a valid operator token.
func login(t *testing.T, srv *Server) string {
	t.Helper()

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/auth/login",
		`{"operator_key":"`+testOperatorKey+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	return resp.AccessToken
}

func TestHealthNoAuth(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/health", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestStatusNoAuth(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/status", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var snap control.StatusSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if snap.StrobeMaxHz != 4 {
		t.Errorf("strobe max hz = %v, want 4", snap.StrobeMaxHz)
	}
}

func TestStopNeverRequiresAuth(t *testing.T) {
	srv, engine := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/stop", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stop status = %d, want 200", rec.Code)
	}
	if engine.stops != 1 {
		t.Errorf("stops = %d, want 1", engine.stops)
	}
}

func TestLoginRejectsWrongKey(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/auth/login",
		`{"operator_key":"wrong"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login status = %d, want 401", rec.Code)
	}
}

func TestApplyPresetRequiresAuth(t *testing.T) {
	srv, engine := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/presets/gamma_flash/apply", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated apply status = %d, want 401", rec.Code)
	}
	if len(engine.presets) != 0 {
		t.Error("unauthenticated request reached the engine")
	}

	token := login(t, srv)
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/presets/gamma_flash/apply", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated apply status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(engine.presets) != 1 || engine.presets[0] != "gamma_flash" {
		t.Errorf("presets applied = %v, want [gamma_flash]", engine.presets)
	}
}

func TestApplyUnknownPreset(t *testing.T) {
	srv, _ := testServer(t)
	token := login(t, srv)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/presets/nonexistent/apply", "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown preset status = %d, want 404", rec.Code)
	}
}

func TestAuthRejectsForgedToken(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/presets/gamma_flash/apply", "",
		"eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJmb3JnZWQifQ.invalid")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("forged token status = %d, want 401", rec.Code)
	}
}

func TestListPresets(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/presets", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}

	var resp struct {
		Presets []preset.Preset `json:"presets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding presets: %v", err)
	}
	if len(resp.Presets) < 4 {
		t.Errorf("listed %d presets, want at least the builtins", len(resp.Presets))
	}
}

func TestSaveAndDeleteCustomPreset(t *testing.T) {
	srv, _ := testServer(t)
	token := login(t, srv)

	body := `{"description":"test state","values":{"disk_speed":[1,2,3],"strobe_hz":2}}`
	rec := doRequest(t, srv, http.MethodPut, "/api/v1/presets/evening_wash/", body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body %s", rec.Code, rec.Body.String())
	}

	if _, err := srv.library.Resolve("evening_wash"); err != nil {
		t.Fatalf("saved preset not resolvable: %v", err)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/presets/evening_wash/", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestSavePresetCannotShadowBuiltin(t *testing.T) {
	srv, _ := testServer(t)
	token := login(t, srv)

	body := `{"values":{"strobe_hz":99}}`
	rec := doRequest(t, srv, http.MethodPut, "/api/v1/presets/first_light/", body, token)
	if rec.Code != http.StatusConflict {
		t.Errorf("shadow builtin status = %d, want 409", rec.Code)
	}
}

func TestSavePresetRejectsReservedNames(t *testing.T) {
	srv, _ := testServer(t)
	token := login(t, srv)

	for _, name := range []string{preset.SentinelIdle, preset.SentinelCustom} {
		rec := doRequest(t, srv, http.MethodPut, "/api/v1/presets/"+name+"/", `{"values":{"strobe_hz":2}}`, token)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("save %q status = %d, want 400", name, rec.Code)
		}
		if _, err := srv.library.Resolve(name); err == nil {
			t.Errorf("reserved name %q became resolvable", name)
		}
	}
}

func TestLoadScriptEndpoint(t *testing.T) {
	srv, engine := testServer(t)
	token := login(t, srv)

	body := `{"name":"ramp","steps":[{"values":{"strobe_hz":2},"duration_ms":500}]}`
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/script", body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("script status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(engine.scripts) != 1 {
		t.Errorf("scripts loaded = %d, want 1", len(engine.scripts))
	}

	// Invalid scripts are rejected with a 400.
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/script", `{"steps":[]}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty script status = %d, want 400", rec.Code)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	srv, _ := testServer(t)

	// Issue a token that is already expired.
	srv.secCfg.JWT.AccessTokenTTL = -1
	token := loginExpectOK(t, srv)
	srv.secCfg.JWT.AccessTokenTTL = 15

	time.Sleep(10 * time.Millisecond)
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/presets/gamma_flash/apply", "", token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expired token status = %d, want 401", rec.Code)
	}
}

func loginExpectOK(t *testing.T, srv *Server) string {
	t.Helper()
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/auth/login",
		`{"operator_key":"`+testOperatorKey+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	return resp.AccessToken
}
