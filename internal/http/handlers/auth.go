package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"qrserve/internal/domain"
	"qrserve/internal/middleware"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type userDTO struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Role               string     `json:"role"`
	Plan               string     `json:"plan"`
	Quota              int        `json:"quota"`
	QRCodesGenerated   int        `json:"qr_codes_generated"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{
		ID:                 u.ID,
		Email:              u.Email,
		Role:               string(u.Role),
		Plan:               string(u.Plan),
		Quota:              u.Quota,
		QRCodesGenerated:   u.QRCodesGenerated,
		SubscriptionExpiry: u.SubscriptionExpiry,
		CreatedAt:          u.CreatedAt,
	}
}

const minPasswordLen = 8

// Register creates an account on the free plan and returns a session token.
func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid email")
		return
	}
	if len(req.Password) < minPasswordLen {
		a.error(w, http.StatusBadRequest, "bad_request", "password too short")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.Logger.Error().Err(err).Msg("hash password failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create account")
		return
	}

	free, _ := domain.LookupPlan(domain.PlanFree)
	now := time.Now()
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.UserRoleUser,
		Plan:         domain.PlanFree,
		Quota:        free.Quota,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.Users.Create(r.Context(), u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			a.error(w, http.StatusConflict, "conflict", "email already registered")
			return
		}
		a.Logger.Error().Err(err).Msg("create user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create account")
		return
	}

	a.session(w, u, http.StatusCreated)
}

// Login checks credentials and returns a session token.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	u, err := a.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		// Identical response for unknown email and wrong password.
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	a.session(w, u, http.StatusOK)
}

func (a *App) session(w http.ResponseWriter, u *domain.User, status int) {
	token, err := middleware.SignToken(a.Cfg.JWTSecret, u, a.Cfg.JWTTTL)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign token failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, status, sessionResponse{Token: token, User: toUserDTO(u)})
}

// Me returns the authenticated user's profile.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	u, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	a.json(w, http.StatusOK, toUserDTO(u))
}
