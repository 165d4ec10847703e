package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"qrserve/internal/domain"
	"qrserve/internal/middleware"
	"qrserve/internal/proofstore"
)

type submitProofRequest struct {
	Plan domain.Plan `json:"plan"`
}

type submitProofResponse struct {
	ID        string `json:"id"`
	Plan      string `json:"plan"`
	UploadURL string `json:"upload_url"`
	Status    string `json:"status"`
}

// SubmitProof registers a purchase claim and hands back a presigned upload
// URL for the proof image. The plan is applied only after admin approval.
func (a *App) SubmitProof(w http.ResponseWriter, r *http.Request) {
	var req submitProofRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	info, ok := domain.LookupPlan(req.Plan)
	if !ok || info.PriceCents == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown or free plan")
		return
	}

	key := proofstore.NewProofKey()
	uploadURL, err := a.ProofStore.PresignPut(r.Context(), key)
	if err != nil {
		a.Logger.Error().Err(err).Msg("presign upload failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to prepare upload")
		return
	}

	p := &domain.PaymentProof{
		ID:        uuid.NewString(),
		UserID:    middleware.UserIDFromContext(r.Context()),
		Plan:      req.Plan,
		ProofKey:  key,
		Status:    domain.ProofPending,
		CreatedAt: time.Now(),
	}
	if err := a.Proofs.Create(r.Context(), p); err != nil {
		a.Logger.Error().Err(err).Msg("create proof failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to register proof")
		return
	}

	a.json(w, http.StatusCreated, submitProofResponse{
		ID:        p.ID,
		Plan:      string(p.Plan),
		UploadURL: uploadURL,
		Status:    string(p.Status),
	})
}

type proofDTO struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Plan       string     `json:"plan"`
	Status     string     `json:"status"`
	ImageURL   string     `json:"image_url,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// ListProofs returns proofs awaiting review (or by explicit status), each
// with a presigned download URL for the image.
func (a *App) ListProofs(w http.ResponseWriter, r *http.Request) {
	status := domain.ProofStatus(r.URL.Query().Get("status"))
	switch status {
	case domain.ProofPending, domain.ProofApproved, domain.ProofRejected:
	case "":
		status = domain.ProofPending
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "unknown status")
		return
	}

	limit, _ := pagination(r, 50, 200)
	proofs, err := a.Proofs.ListByStatus(r.Context(), status, limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list proofs failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list proofs")
		return
	}

	out := make([]proofDTO, 0, len(proofs))
	for _, p := range proofs {
		dto := proofDTO{
			ID:         p.ID,
			UserID:     p.UserID,
			Plan:       string(p.Plan),
			Status:     string(p.Status),
			CreatedAt:  p.CreatedAt,
			ReviewedAt: p.ReviewedAt,
		}
		if url, err := a.ProofStore.PresignGet(r.Context(), p.ProofKey); err == nil {
			dto.ImageURL = url
		}
		out = append(out, dto)
	}
	a.json(w, http.StatusOK, map[string]any{"proofs": out})
}

type reviewProofRequest struct {
	Decision string `json:"decision"` // "approve" or "reject"
}

// ReviewProof settles a pending proof. Approval applies the purchased plan:
// the catalog quota is added to the user's balance and the subscription
// expiry is pushed out by the plan duration.
func (a *App) ReviewProof(w http.ResponseWriter, r *http.Request) {
	var req reviewProofRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Decision != "approve" && req.Decision != "reject" {
		a.error(w, http.StatusBadRequest, "bad_request", "decision must be approve or reject")
		return
	}

	p, err := a.Proofs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "proof not found")
		return
	}
	if p.Status != domain.ProofPending {
		a.error(w, http.StatusConflict, "conflict", "proof already reviewed")
		return
	}

	now := time.Now()
	status := domain.ProofRejected
	if req.Decision == "approve" {
		status = domain.ProofApproved
		info, ok := domain.LookupPlan(p.Plan)
		if !ok {
			a.error(w, http.StatusInternalServerError, "internal", "proof references unknown plan")
			return
		}
		expiry := now.AddDate(0, 0, info.DurationDays)
		if err := a.Users.ApplyPlan(r.Context(), p.UserID, p.Plan, info.Quota, &expiry); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				a.error(w, http.StatusConflict, "conflict", "proof user no longer exists")
				return
			}
			a.Logger.Error().Err(err).Msg("apply plan failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to apply plan")
			return
		}
	}

	if err := a.Proofs.SetStatus(r.Context(), p.ID, status, now); err != nil {
		a.Logger.Error().Err(err).Msg("set proof status failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update proof")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"id": p.ID, "status": string(status)})
}
