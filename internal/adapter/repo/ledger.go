package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qrserve/internal/domain"
)

// LedgerPG implements domain.Ledger: quota decrement and record insert as one
// transaction. The row lock on the user serializes concurrent generation
// attempts, so two requests racing for the last unit of quota resolve to one
// winner.
type LedgerPG struct {
	pool *pgxpool.Pool
}

// NewLedger creates a new LedgerPG.
func NewLedger(pool *pgxpool.Pool) *LedgerPG {
	return &LedgerPG{pool: pool}
}

// CreateWithQuota consumes one unit of quota and persists the record.
func (l *LedgerPG) CreateWithQuota(ctx context.Context, code *domain.QRCode) (int, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin generation tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var quota int
	row := tx.QueryRow(ctx, `SELECT quota FROM users WHERE id = $1 FOR UPDATE`, code.UserID)
	if err := row.Scan(&quota); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}
	if quota < 1 {
		return 0, domain.ErrInsufficientQuota
	}

	if _, err := tx.Exec(ctx, `
UPDATE users
SET quota = quota - 1, qr_codes_generated = qr_codes_generated + 1, updated_at = NOW()
WHERE id = $1`, code.UserID); err != nil {
		return 0, err
	}

	contentJSON, err := domain.MarshalContent(code.Content)
	if err != nil {
		return 0, err
	}
	designJSON, err := json.Marshal(code.Design)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO qr_codes (
    id, user_id, qr_type, content_type, content, design,
    password_enabled, password, schedule_enabled, schedule_start, schedule_end,
    daily_start, daily_end, countdown_enabled, countdown_seconds, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		code.ID, code.UserID, code.Type, code.ContentType, contentJSON, designJSON,
		code.PasswordEnabled, code.Password, code.ScheduleEnabled, code.ScheduleStart, code.ScheduleEnd,
		code.DailyStart, code.DailyEnd, code.CountdownEnabled, code.CountdownSeconds, code.CreatedAt,
	); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit generation tx: %w", err)
	}
	return quota - 1, nil
}
