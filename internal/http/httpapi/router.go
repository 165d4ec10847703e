// Package httpapi wires the handler set onto the chi router with the shared
// middleware chain.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"qrserve/internal/http/handlers"
	"qrserve/internal/infra"
	"qrserve/internal/middleware"
)

// NewRouter builds the full route table.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Locale("en"))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))

	// Public surface: health, pricing, scan resolution, captcha.
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/plans", app.ListPlans)
	r.Post("/v1/auth/register", app.Register)
	r.Post("/v1/auth/login", app.Login)
	r.Post("/v1/captcha/verify", app.VerifyCaptcha)
	r.Get("/r/{token}", app.Resolve)
	r.Post("/r/{token}/password", app.ResolvePassword)

	// Authenticated surface.
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.AuthJWT(cfg.JWTSecret))

		pr.Get("/v1/me", app.Me)

		pr.Post("/v1/qrcodes", app.CreateQRCode)
		pr.Get("/v1/qrcodes", app.ListQRCodes)
		pr.Get("/v1/qrcodes/{id}", app.GetQRCode)
		pr.Get("/v1/qrcodes/{id}/image", app.QRCodeImage)
		pr.Get("/v1/qrcodes/{id}/scans", app.ListScans)

		pr.Post("/v1/payments/proofs", app.SubmitProof)

		pr.Group(func(ar chi.Router) {
			ar.Use(middleware.RequireAdmin)
			ar.Get("/v1/admin/proofs", app.ListProofs)
			ar.Post("/v1/admin/proofs/{id}/review", app.ReviewProof)
		})
	})

	return r
}
