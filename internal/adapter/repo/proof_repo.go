package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qrserve/internal/domain"
)

// ProofRepositoryPG implements domain.ProofRepository using PostgreSQL.
type ProofRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewProofRepository constructs the repository.
func NewProofRepository(pool *pgxpool.Pool) *ProofRepositoryPG {
	return &ProofRepositoryPG{pool: pool}
}

const proofColumns = `id, user_id, plan, proof_key, status, created_at, reviewed_at`

// Create inserts a pending proof.
func (r *ProofRepositoryPG) Create(ctx context.Context, p *domain.PaymentProof) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO payment_proofs (id, user_id, plan, proof_key, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.UserID, p.Plan, p.ProofKey, p.Status, p.CreatedAt,
	)
	return err
}

// GetByID fetches a proof.
func (r *ProofRepositoryPG) GetByID(ctx context.Context, id string) (*domain.PaymentProof, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+proofColumns+` FROM payment_proofs WHERE id = $1`, id)
	return scanProof(row)
}

// ListByStatus returns proofs in a review state, oldest first.
func (r *ProofRepositoryPG) ListByStatus(ctx context.Context, status domain.ProofStatus, limit int) ([]*domain.PaymentProof, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+proofColumns+` FROM payment_proofs
WHERE status = $1
ORDER BY created_at ASC
LIMIT $2`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proofs []*domain.PaymentProof
	for rows.Next() {
		p, err := scanProof(rows)
		if err != nil {
			return nil, err
		}
		proofs = append(proofs, p)
	}
	return proofs, rows.Err()
}

// SetStatus records a review decision.
func (r *ProofRepositoryPG) SetStatus(ctx context.Context, id string, status domain.ProofStatus, reviewedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE payment_proofs SET status = $2, reviewed_at = $3 WHERE id = $1`,
		id, status, reviewedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProof(row pgx.Row) (*domain.PaymentProof, error) {
	var p domain.PaymentProof
	if err := row.Scan(&p.ID, &p.UserID, &p.Plan, &p.ProofKey, &p.Status, &p.CreatedAt, &p.ReviewedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
