package app

import (
	"bitwise74/devdoc-api/config"
	"bitwise74/devdoc-api/db"
	"bitwise74/devdoc-api/internal"
	"bitwise74/devdoc-api/internal/metrics"
	"bitwise74/devdoc-api/internal/service"
	"bitwise74/devdoc-api/internal/storage"
	"bitwise74/devdoc-api/pkg/security"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "development"
	cfg.App.LogLevel = "info"
	cfg.Host.CORS = []string{"http://localhost:5173"}
	cfg.Host.PublicURL = "https://vault.example"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = time.Hour
	cfg.Upload.MaxSize = 1 << 20
	cfg.Cache.Type = "memory"
	cfg.Cache.PublicTTL = time.Minute
	cfg.Security.RateLimitRequests = 10000
	cfg.Security.RateLimitWindow = time.Minute
	cfg.Security.JSONLimit = 1 << 20
	cfg.Metrics.Enabled = true

	return cfg
}

type server struct {
	t      *testing.T
	router *gin.Engine
	deps   *internal.Deps
	store  *storage.Local
}

func newServer(t *testing.T, cfg *config.Config) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.New("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	store := storage.NewLocal(afero.NewMemMapFs())
	argon := &security.ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

	d := &internal.Deps{
		Config:   cfg,
		DB:       conn,
		Storage:  store,
		Users:    service.NewUserService(conn, argon, security.NewTokenMaker(cfg.JWT.Secret, cfg.JWT.TTL)),
		Projects: service.NewProjectService(conn, store, cfg.Host.PublicURL),
		Files:    service.NewFileService(conn, store, cfg.Upload.MaxSize),
		Janitor:  service.NewJanitor(conn, store, time.Hour),
		Metrics:  metrics.New(),
		Cache:    persist.NewMemoryStore(time.Minute),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &server{t: t, router: NewRouter(ctx, d), deps: d, store: store}
}

// do sends body as JSON unless it is already a *bytes.Buffer
func (s *server) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case *bytes.Buffer:
		r = b
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}

// register creates a user and returns its token
func (s *server) register(email string) string {
	s.t.Helper()

	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": email, "password": "hunter22"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	return decode(s.t, w)["token"].(string)
}

func (s *server) createProject(token string, body gin.H) map[string]any {
	s.t.Helper()

	w := s.do(http.MethodPost, "/api/projects", token, body)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	return decode(s.t, w)
}

func (s *server) upload(token, projectID, name string, content []byte) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if name != "" {
		part, err := mw.CreateFormFile("file", name)
		require.NoError(s.t, err)

		_, err = part.Write(content)
		require.NoError(s.t, err)
	} else {
		require.NoError(s.t, mw.WriteField("note", "no file here"))
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+projectID+"/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()

	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
