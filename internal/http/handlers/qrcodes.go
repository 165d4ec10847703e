package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"qrserve/internal/codec"
	"qrserve/internal/domain"
	"qrserve/internal/middleware"
	"qrserve/internal/render"
	"qrserve/internal/token"
)

type createQRRequest struct {
	Type        domain.QRType      `json:"type"`
	ContentType domain.ContentType `json:"content_type"`
	Content     json.RawMessage    `json:"content"`
	Design      *domain.Design     `json:"design"`

	PasswordEnabled  bool       `json:"password_enabled"`
	Password         string     `json:"password"`
	ScheduleEnabled  bool       `json:"schedule_enabled"`
	ScheduleStart    *time.Time `json:"schedule_start"`
	ScheduleEnd      *time.Time `json:"schedule_end"`
	DailyStart       string     `json:"daily_start"`
	DailyEnd         string     `json:"daily_end"`
	CountdownEnabled bool       `json:"countdown_enabled"`
	CountdownSeconds int        `json:"countdown_seconds"`
}

type qrCodeDTO struct {
	ID          string             `json:"id"`
	Type        domain.QRType      `json:"type"`
	ContentType domain.ContentType `json:"content_type"`
	Content     json.RawMessage    `json:"content"`
	Design      domain.Design      `json:"design"`

	PasswordEnabled  bool       `json:"password_enabled,omitempty"`
	ScheduleEnabled  bool       `json:"schedule_enabled,omitempty"`
	ScheduleStart    *time.Time `json:"schedule_start,omitempty"`
	ScheduleEnd      *time.Time `json:"schedule_end,omitempty"`
	DailyStart       string     `json:"daily_start,omitempty"`
	DailyEnd         string     `json:"daily_end,omitempty"`
	CountdownEnabled bool       `json:"countdown_enabled,omitempty"`
	CountdownSeconds int        `json:"countdown_seconds,omitempty"`

	Visits        int64      `json:"visits"`
	LastVisitedAt *time.Time `json:"last_visited_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ResolveURL    string     `json:"resolve_url,omitempty"`
}

func (a *App) toQRCodeDTO(q *domain.QRCode) (qrCodeDTO, error) {
	content, err := domain.MarshalContent(q.Content)
	if err != nil {
		return qrCodeDTO{}, err
	}
	dto := qrCodeDTO{
		ID:               q.ID,
		Type:             q.Type,
		ContentType:      q.ContentType,
		Content:          content,
		Design:           q.Design,
		PasswordEnabled:  q.PasswordEnabled,
		ScheduleEnabled:  q.ScheduleEnabled,
		ScheduleStart:    q.ScheduleStart,
		ScheduleEnd:      q.ScheduleEnd,
		DailyStart:       q.DailyStart,
		DailyEnd:         q.DailyEnd,
		CountdownEnabled: q.CountdownEnabled,
		CountdownSeconds: q.CountdownSeconds,
		Visits:           q.Visits,
		LastVisitedAt:    q.LastVisitedAt,
		CreatedAt:        q.CreatedAt,
	}
	if q.Type == domain.QRDynamic {
		dto.ResolveURL = a.Cfg.PublicBaseURL + "/r/" + q.ID
	}
	return dto, nil
}

type createQRResponse struct {
	QRCode         qrCodeDTO `json:"qr_code"`
	RemainingQuota int       `json:"remaining_quota"`
}

// CreateQRCode generates a record, spending one unit of quota atomically with
// the insert.
func (a *App) CreateQRCode(w http.ResponseWriter, r *http.Request) {
	var req createQRRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Type != domain.QRStatic && req.Type != domain.QRDynamic {
		a.error(w, http.StatusBadRequest, "bad_request", "type must be static or dynamic")
		return
	}

	content, err := domain.UnmarshalContent(req.ContentType, req.Content)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_content", err.Error())
		return
	}

	design := domain.DefaultDesign()
	if req.Design != nil {
		design = *req.Design
		if design.ECLevel == "" {
			design.ECLevel = domain.ECMedium
		}
	}

	q := &domain.QRCode{
		UserID:      middleware.UserIDFromContext(r.Context()),
		Type:        req.Type,
		ContentType: req.ContentType,
		Content:     content,
		Design:      design,
		CreatedAt:   time.Now(),
	}
	if req.Type == domain.QRDynamic {
		q.PasswordEnabled = req.PasswordEnabled
		q.Password = req.Password
		q.ScheduleEnabled = req.ScheduleEnabled
		q.ScheduleStart = req.ScheduleStart
		q.ScheduleEnd = req.ScheduleEnd
		q.DailyStart = req.DailyStart
		q.DailyEnd = req.DailyEnd
		q.CountdownEnabled = req.CountdownEnabled
		q.CountdownSeconds = req.CountdownSeconds
	}
	if err := q.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_content", err.Error())
		return
	}

	id, err := a.newRecordID(r, req.Type)
	if err != nil {
		a.Logger.Error().Err(err).Msg("allocate record id failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create record")
		return
	}
	q.ID = id

	remaining, err := a.Ledger.CreateWithQuota(r.Context(), q)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientQuota):
			a.error(w, http.StatusPaymentRequired, "quota_exhausted", "generation quota exhausted")
		case errors.Is(err, domain.ErrUserNotFound):
			a.error(w, http.StatusUnauthorized, "unauthorized", "unknown user")
		default:
			a.Logger.Error().Err(err).Msg("create record failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to create record")
		}
		return
	}

	dto, err := a.toQRCodeDTO(q)
	if err != nil {
		a.Logger.Error().Err(err).Msg("encode record failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to encode record")
		return
	}
	a.json(w, http.StatusCreated, createQRResponse{QRCode: dto, RemainingQuota: remaining})
}

// newRecordID allocates an identifier: a UUID for static records, a short
// public token for dynamic ones. Short tokens are checked against the store
// and regenerated on the rare collision; the primary key backstops the race.
func (a *App) newRecordID(r *http.Request, t domain.QRType) (string, error) {
	if t == domain.QRStatic {
		return token.NewStaticID(), nil
	}
	for i := 0; i < 5; i++ {
		id, err := token.NewShortToken()
		if err != nil {
			return "", err
		}
		if _, err := a.Codes.GetByID(r.Context(), id); errors.Is(err, domain.ErrNotFound) {
			return id, nil
		}
	}
	return "", errors.New("short token space congested")
}

// ListQRCodes returns the caller's records, newest first.
func (a *App) ListQRCodes(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 20, 100)
	codes, err := a.Codes.ListByUser(r.Context(), middleware.UserIDFromContext(r.Context()), limit, offset)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list records failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list records")
		return
	}
	out := make([]qrCodeDTO, 0, len(codes))
	for _, q := range codes {
		dto, err := a.toQRCodeDTO(q)
		if err != nil {
			a.Logger.Error().Err(err).Str("qr_id", q.ID).Msg("encode record failed")
			continue
		}
		out = append(out, dto)
	}
	a.json(w, http.StatusOK, map[string]any{"qr_codes": out})
}

// ownedCode loads a record and enforces ownership.
func (a *App) ownedCode(w http.ResponseWriter, r *http.Request) *domain.QRCode {
	q, err := a.Codes.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "record not found")
		return nil
	}
	if q.UserID != middleware.UserIDFromContext(r.Context()) {
		// Hide existence from non-owners.
		a.error(w, http.StatusNotFound, "not_found", "record not found")
		return nil
	}
	return q
}

// GetQRCode returns one of the caller's records.
func (a *App) GetQRCode(w http.ResponseWriter, r *http.Request) {
	q := a.ownedCode(w, r)
	if q == nil {
		return
	}
	dto, err := a.toQRCodeDTO(q)
	if err != nil {
		a.Logger.Error().Err(err).Msg("encode record failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to encode record")
		return
	}
	a.json(w, http.StatusOK, dto)
}

// QRCodeImage renders the record's PNG. Static records embed the encoded
// content; dynamic records embed the public resolve URL so the payload stays
// editable server-side.
func (a *App) QRCodeImage(w http.ResponseWriter, r *http.Request) {
	q := a.ownedCode(w, r)
	if q == nil {
		return
	}

	var wire string
	if q.Type == domain.QRDynamic {
		wire = a.Cfg.PublicBaseURL + "/r/" + q.ID
	} else {
		var err error
		wire, err = codec.Encode(q.Content)
		if err != nil {
			a.Logger.Error().Err(err).Str("qr_id", q.ID).Msg("encode wire string failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to render image")
			return
		}
	}

	size := render.DefaultSize
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && v >= 64 && v <= 2048 {
		size = v
	}

	png, err := render.Render(wire, q.Design, size)
	if err != nil {
		a.Logger.Error().Err(err).Str("qr_id", q.ID).Msg("render image failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to render image")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

type scanDTO struct {
	ScannedAt time.Time `json:"scanned_at"`
	Country   string    `json:"country,omitempty"`
	Referer   string    `json:"referer,omitempty"`
}

// ListScans returns the analytics rows for one of the caller's records.
func (a *App) ListScans(w http.ResponseWriter, r *http.Request) {
	q := a.ownedCode(w, r)
	if q == nil {
		return
	}
	limit, _ := pagination(r, 50, 500)
	scans, err := a.Scans.ListByCode(r.Context(), q.ID, limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list scans failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list scans")
		return
	}
	out := make([]scanDTO, 0, len(scans))
	for _, s := range scans {
		out = append(out, scanDTO{ScannedAt: s.ScannedAt, Country: s.Country, Referer: s.Referer})
	}
	a.json(w, http.StatusOK, map[string]any{"visits": q.Visits, "scans": out})
}
