package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qrserve/internal/domain"
)

// QRRepositoryPG implements domain.QRRepository backed by PostgreSQL.
type QRRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewQRRepository creates a new QRRepositoryPG.
func NewQRRepository(pool *pgxpool.Pool) *QRRepositoryPG {
	return &QRRepositoryPG{pool: pool}
}

const qrColumns = `id, user_id, qr_type, content_type, content, design,
password_enabled, password, schedule_enabled, schedule_start, schedule_end,
daily_start, daily_end, countdown_enabled, countdown_seconds,
visits, last_visited_at, created_at`

// GetByID fetches a record by identifier (UUID or short token).
func (r *QRRepositoryPG) GetByID(ctx context.Context, id string) (*domain.QRCode, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+qrColumns+` FROM qr_codes WHERE id = $1`, id)
	return scanQRCode(row)
}

// ListByUser returns the user's records, newest first.
func (r *QRRepositoryPG) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.QRCode, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+qrColumns+` FROM qr_codes
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []*domain.QRCode
	for rows.Next() {
		code, err := scanQRCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// RecordVisit increments the visit counter and stamps last_visited_at.
func (r *QRRepositoryPG) RecordVisit(ctx context.Context, id string, at time.Time) (int64, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE qr_codes
SET visits = visits + 1, last_visited_at = $2
WHERE id = $1
RETURNING visits`, id, at)

	var visits int64
	if err := row.Scan(&visits); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return visits, nil
}

func scanQRCode(row pgx.Row) (*domain.QRCode, error) {
	var (
		q           domain.QRCode
		contentJSON []byte
		designJSON  []byte
	)
	if err := row.Scan(&q.ID, &q.UserID, &q.Type, &q.ContentType, &contentJSON, &designJSON,
		&q.PasswordEnabled, &q.Password, &q.ScheduleEnabled, &q.ScheduleStart, &q.ScheduleEnd,
		&q.DailyStart, &q.DailyEnd, &q.CountdownEnabled, &q.CountdownSeconds,
		&q.Visits, &q.LastVisitedAt, &q.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	content, err := domain.UnmarshalContent(q.ContentType, contentJSON)
	if err != nil {
		return nil, err
	}
	q.Content = content
	if err := json.Unmarshal(designJSON, &q.Design); err != nil {
		return nil, err
	}
	return &q, nil
}
