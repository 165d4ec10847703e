package handlers

import (
	"net/http"

	"qrserve/internal/middleware"
)

// captchaScope namespaces captcha attempts in the shared limiter keyspace so
// they never collide with per-record password attempts.
const captchaScope = "captcha"

type captchaVerifyRequest struct {
	Token string `json:"token"`
}

// VerifyCaptcha checks a client-solved challenge token. Attempt counters live
// in redis keyed by device fingerprint, so repeated failures pay an
// escalating cooldown that survives restarts and is shared across instances.
func (a *App) VerifyCaptcha(w http.ResponseWriter, r *http.Request) {
	fp := fingerprint(r)

	allowed, wait, err := a.Attempts.Allow(r.Context(), captchaScope, fp)
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

	var req captchaVerifyRequest
	if err := decodeJSON(r, &req); err != nil || req.Token == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "token required")
		return
	}

	ok, err := a.Captcha.Verify(r.Context(), req.Token, middleware.ClientIP(r))
	if err != nil {
		a.Logger.Error().Err(err).Msg("captcha upstream failed")
		a.error(w, http.StatusBadGateway, "upstream", "verification unavailable")
		return
	}
	if !ok {
		if recErr := a.Attempts.Record(r.Context(), captchaScope, fp); recErr != nil {
			a.Logger.Error().Err(recErr).Msg("record attempt failed")
		}
		a.error(w, http.StatusUnauthorized, "captcha_failed", "verification failed")
		return
	}

	if err := a.Attempts.Reset(r.Context(), captchaScope, fp); err != nil {
		a.Logger.Error().Err(err).Msg("reset attempts failed")
	}
	a.json(w, http.StatusOK, map[string]bool{"success": true})
}
