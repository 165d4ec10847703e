// Package handlers implements the HTTP surface of the service.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"qrserve/internal/captcha"
	"qrserve/internal/domain"
	"qrserve/internal/infra"
	"qrserve/internal/infra/geoip"
	"qrserve/internal/middleware"
	"qrserve/internal/proofstore"
)

// App bundles the dependencies the handlers need. Everything is an interface
// or small struct so tests can run against the in-memory store.
type App struct {
	Users  domain.UserRepository
	Codes  domain.QRRepository
	Ledger domain.Ledger
	Scans  domain.ScanRepository
	Proofs domain.ProofRepository

	ProofStore proofstore.Signer
	Captcha    captcha.TokenVerifier
	Attempts   AttemptGate
	Geo        geoip.CountryResolver

	Logger infra.Logger
	Cfg    *infra.Config
}

// AttemptGate is the throttling contract satisfied by
// middleware.AttemptLimiter; tests substitute an in-memory fake.
type AttemptGate interface {
	Allow(ctx context.Context, scope, fingerprint string) (bool, time.Duration, error)
	Record(ctx context.Context, scope, fingerprint string) error
	Reset(ctx context.Context, scope, fingerprint string) error
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// pagination reads limit/offset query parameters with bounds applied.
func pagination(r *http.Request, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// fingerprint identifies the attempting device for throttling purposes. The
// client header wins; otherwise fall back to the remote IP.
func fingerprint(r *http.Request) string {
	if fp := r.Header.Get("X-Device-Fingerprint"); fp != "" {
		return fp
	}
	return middleware.ClientIP(r)
}
