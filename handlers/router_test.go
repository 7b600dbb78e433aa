package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SaranyaKannan28/summer-internship/auth"
	"github.com/SaranyaKannan28/summer-internship/database"
	"github.com/SaranyaKannan28/summer-internship/events"
	"github.com/SaranyaKannan28/summer-internship/metrics"
	"github.com/SaranyaKannan28/summer-internship/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router  *gin.Engine
	deps    Deps
	metrics *metrics.Metrics
}

type serverConfig struct {
	Deps
	publisher events.Publisher
}

type option func(*serverConfig)

func newTestServer(t *testing.T, opts ...option) *testServer {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite://:memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	cfg := serverConfig{
		Deps: Deps{
			Metrics: metrics.New(),
			Ping:    func(ctx context.Context) error { return database.Ping(ctx, db) },
			Log:     zerolog.Nop(),
		},
		publisher: events.Nop{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	tokens := auth.NewTokenService("test-secret", 24*time.Hour)
	deps := cfg.Deps
	deps.Auth = services.NewAuthService(database.NewUserStore(db), tokens, bcrypt.MinCost, zerolog.Nop(), deps.Metrics)
	deps.Salaries = services.NewSalaryService(database.NewSalaryStore(db), cfg.publisher, zerolog.Nop(), deps.Metrics)
	return &testServer{router: NewRouter(deps), deps: deps, metrics: deps.Metrics}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// signupAndLogin registers email with password secret123 and returns a token.
func (s *testServer) signupAndLogin(t *testing.T, email string) (uint, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Test", "email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var signup struct {
		UserID uint `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	return signup.UserID, login.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(s *testServer, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}
