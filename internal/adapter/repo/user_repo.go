package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"qrserve/internal/domain"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

const userColumns = `id, email, password_hash, role, plan, quota, qr_codes_generated, subscription_expiry, created_at, updated_at`

// Create inserts a new account.
func (r *UserRepositoryPG) Create(ctx context.Context, u *domain.User) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO users (id, email, password_hash, role, plan, quota, qr_codes_generated)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.PasswordHash, u.Role, u.Plan, u.Quota, u.QRCodesGenerated,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrDuplicateEmail
	}
	return err
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail fetches a user by email.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// ApplyPlan sets the plan and adds quota; the approval path after a payment
// proof is accepted.
func (r *UserRepositoryPG) ApplyPlan(ctx context.Context, userID string, plan domain.Plan, quotaDelta int, expiry *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET plan = $2, quota = quota + $3, subscription_expiry = $4, updated_at = NOW()
WHERE id = $1`,
		userID, plan, quotaDelta, expiry,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Plan,
		&u.Quota, &u.QRCodesGenerated, &u.SubscriptionExpiry, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
