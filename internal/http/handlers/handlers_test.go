package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"qrserve/internal/adapter/memory"
	"qrserve/internal/domain"
	"qrserve/internal/http/handlers"
	"qrserve/internal/http/httpapi"
	"qrserve/internal/infra"
	"qrserve/internal/middleware"
)

type fakeAttempts struct {
	allowed  bool
	wait     time.Duration
	recorded []string
	resets   []string
}

func newFakeAttempts() *fakeAttempts { return &fakeAttempts{allowed: true} }

func (f *fakeAttempts) Allow(ctx context.Context, scope, fp string) (bool, time.Duration, error) {
	return f.allowed, f.wait, nil
}

func (f *fakeAttempts) Record(ctx context.Context, scope, fp string) error {
	f.recorded = append(f.recorded, scope+"/"+fp)
	return nil
}

func (f *fakeAttempts) Reset(ctx context.Context, scope, fp string) error {
	f.resets = append(f.resets, scope+"/"+fp)
	return nil
}

type fakeSigner struct{}

func (fakeSigner) PresignPut(ctx context.Context, key string) (string, error) {
	return "https://storage.test/put/" + key, nil
}

func (fakeSigner) PresignGet(ctx context.Context, key string) (string, error) {
	return "https://storage.test/get/" + key, nil
}

type fakeCaptcha struct {
	ok  bool
	err error
}

func (f fakeCaptcha) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	return f.ok, f.err
}

type fakeGeo struct{ country string }

func (f fakeGeo) Country(ip string) (string, error) { return f.country, nil }

type env struct {
	store    *memory.Store
	app      *handlers.App
	router   http.Handler
	attempts *fakeAttempts
	cfg      *infra.Config
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := &infra.Config{
		AppEnv:          "test",
		PublicBaseURL:   "http://qr.test",
		JWTSecret:       "test-secret",
		JWTTTL:          time.Hour,
		RateLimitPerMin: 10000,
	}
	store := memory.NewStore()
	attempts := newFakeAttempts()
	app := &handlers.App{
		Users:      store.Users(),
		Codes:      store.Codes(),
		Ledger:     store.Ledger(),
		Scans:      store.Scans(),
		Proofs:     store.Proofs(),
		ProofStore: fakeSigner{},
		Captcha:    fakeCaptcha{ok: true},
		Attempts:   attempts,
		Geo:        fakeGeo{country: "DE"},
		Logger:     zerolog.Nop(),
		Cfg:        cfg,
	}
	return &env{
		store:    store,
		app:      app,
		router:   httpapi.NewRouter(app, cfg, zerolog.Nop()),
		attempts: attempts,
		cfg:      cfg,
	}
}

// addUser seeds an account straight into the store and returns it with a
// valid session token.
func (e *env) addUser(t *testing.T, email string, quota int, role domain.UserRole) (*domain.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Plan:         domain.PlanFree,
		Quota:        quota,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	token, err := middleware.SignToken(e.cfg.JWTSecret, u, time.Hour)
	require.NoError(t, err)
	return u, token
}

func (e *env) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
