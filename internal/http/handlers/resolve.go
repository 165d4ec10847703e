package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"qrserve/internal/dispatch"
	"qrserve/internal/domain"
	"qrserve/internal/gate"
	"qrserve/internal/middleware"
)

type resolveResponse struct {
	State            string           `json:"state"`
	CountdownSeconds int              `json:"countdown_seconds,omitempty"`
	Action           *dispatch.Action `json:"action,omitempty"`
}

// Resolve serves a scan of a dynamic record: it walks the access gates and,
// when they pass, records the visit and returns the hand-off action. Each
// request builds a fresh machine from freshly loaded state, so passwords are
// never remembered across reloads and a lapsed schedule re-blocks.
func (a *App) Resolve(w http.ResponseWriter, r *http.Request) {
	q, ok := a.resolvableCode(w, r)
	if !ok {
		return
	}

	m := gate.New(q)
	if m.Start() == gate.StatePasswordCheck {
		a.json(w, http.StatusOK, resolveResponse{State: "password_required"})
		return
	}
	a.finishResolve(w, r, q, m)
}

type passwordRequest struct {
	Password string `json:"password"`
}

// ResolvePassword submits the gate credential. Wrong guesses are unlimited at
// the gate, but each failure feeds the attempt limiter so a brute force pays
// an escalating cooldown.
func (a *App) ResolvePassword(w http.ResponseWriter, r *http.Request) {
	q, ok := a.resolvableCode(w, r)
	if !ok {
		return
	}

	fp := fingerprint(r)
	allowed, wait, err := a.Attempts.Allow(r.Context(), q.ID, fp)
	if err != nil {
		a.Logger.Error().Err(err).Msg("attempt limiter unavailable")
		a.error(w, http.StatusInternalServerError, "internal", "try again later")
		return
	}
	if !allowed {
		w.Header().Set("Retry-After", formatSeconds(wait))
		a.json(w, http.StatusTooManyRequests, map[string]any{
			"error":               errorBody{Code: "rate_limited", Message: "too many attempts"},
			"retry_after_seconds": int(wait.Seconds() + 0.5),
		})
		return
	}

	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	m := gate.New(q)
	if m.Start() != gate.StatePasswordCheck {
		a.error(w, http.StatusConflict, "no_password_pending", "record is not password protected")
		return
	}
	if _, err := m.SubmitPassword(req.Password); err != nil {
		if recErr := a.Attempts.Record(r.Context(), q.ID, fp); recErr != nil {
			a.Logger.Error().Err(recErr).Msg("record attempt failed")
		}
		a.error(w, http.StatusUnauthorized, "incorrect_password", "incorrect password")
		return
	}
	if err := a.Attempts.Reset(r.Context(), q.ID, fp); err != nil {
		a.Logger.Error().Err(err).Msg("reset attempts failed")
	}
	a.finishResolve(w, r, q, m)
}

// resolvableCode loads the dynamic record behind a short token. Static
// records never live behind /r, so they 404 like unknown tokens.
func (a *App) resolvableCode(w http.ResponseWriter, r *http.Request) (*domain.QRCode, bool) {
	q, err := a.Codes.GetByID(r.Context(), chi.URLParam(r, "token"))
	if err != nil || q.Type != domain.QRDynamic {
		a.error(w, http.StatusNotFound, "not_found", "record not found")
		return nil, false
	}
	return q, true
}

// finishResolve handles everything past the password gate: the schedule
// check, the optional countdown, the visit record and the dispatch action.
func (a *App) finishResolve(w http.ResponseWriter, r *http.Request, q *domain.QRCode, m *gate.Machine) {
	switch m.State() {
	case gate.StateBlocked:
		reason := "blocked"
		if errors.Is(m.BlockReason(), domain.ErrNotYetActive) {
			reason = "not_yet_active"
		} else if errors.Is(m.BlockReason(), domain.ErrExpired) {
			reason = "expired"
		}
		a.json(w, http.StatusForbidden, resolveResponse{State: reason})
		return
	case gate.StateCountdown, gate.StateDispatch:
	default:
		a.error(w, http.StatusInternalServerError, "internal", "unexpected gate state")
		return
	}

	seconds := 0
	if m.State() == gate.StateCountdown {
		// The countdown is a client-side delay; the action ships alongside
		// the remaining seconds so no second round-trip is needed.
		seconds = m.CountdownRemaining()
		m.Skip()
	}

	action, err := dispatch.Dispatch(q.Content)
	if err != nil {
		a.Logger.Error().Err(err).Str("qr_id", q.ID).Msg("dispatch failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to resolve record")
		return
	}

	now := time.Now()
	if _, err := a.Codes.RecordVisit(r.Context(), q.ID, now); err != nil {
		a.Logger.Error().Err(err).Str("qr_id", q.ID).Msg("record visit failed")
	}
	scan := &domain.Scan{QRID: q.ID, ScannedAt: now, Referer: r.Referer()}
	if a.Geo != nil {
		if country, err := a.Geo.Country(middleware.ClientIP(r)); err == nil {
			scan.Country = country
		}
	}
	if err := a.Scans.Insert(r.Context(), scan); err != nil {
		a.Logger.Error().Err(err).Str("qr_id", q.ID).Msg("insert scan failed")
	}
	m.Finish()

	resp := resolveResponse{State: "redirect", Action: &action}
	if seconds > 0 {
		resp.State = "countdown"
		resp.CountdownSeconds = seconds
	}
	a.json(w, http.StatusOK, resp)
}

func formatSeconds(d time.Duration) string {
	s := int(d.Seconds() + 0.5)
	if s < 1 {
		s = 1
	}
	return strconv.Itoa(s)
}
