package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"qrserve/internal/domain"
)

// ScanRepositoryPG implements domain.ScanRepository using PostgreSQL.
type ScanRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewScanRepository constructs the repository.
func NewScanRepository(pool *pgxpool.Pool) *ScanRepositoryPG {
	return &ScanRepositoryPG{pool: pool}
}

// Insert records one resolution. Best-effort from the caller's point of view;
// analytics never block a redirect.
func (r *ScanRepositoryPG) Insert(ctx context.Context, s *domain.Scan) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO qr_scans (qr_id, scanned_at, country, referer)
VALUES ($1, $2, $3, $4)`,
		s.QRID, s.ScannedAt, s.Country, s.Referer,
	)
	return err
}

// ListByCode returns the latest scans for a record.
func (r *ScanRepositoryPG) ListByCode(ctx context.Context, qrID string, limit int) ([]*domain.Scan, error) {
	rows, err := r.pool.Query(ctx, `
SELECT qr_id, scanned_at, country, referer
FROM qr_scans
WHERE qr_id = $1
ORDER BY scanned_at DESC
LIMIT $2`, qrID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []*domain.Scan
	for rows.Next() {
		var s domain.Scan
		if err := rows.Scan(&s.QRID, &s.ScannedAt, &s.Country, &s.Referer); err != nil {
			return nil, err
		}
		scans = append(scans, &s)
	}
	return scans, rows.Err()
}
