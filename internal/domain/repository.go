package domain

import (
	"context"
	"time"
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// ApplyPlan sets the plan, adds quotaDelta to the remaining quota and
	// stores the new expiry. The only path that increases quota.
	ApplyPlan(ctx context.Context, userID string, plan Plan, quotaDelta int, expiry *time.Time) error
}

// QRRepository reads generated codes. Creation goes through the Ledger so the
// insert and the quota decrement share one transaction.
type QRRepository interface {
	GetByID(ctx context.Context, id string) (*QRCode, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*QRCode, error)
	// RecordVisit increments the visit counter and stamps last_visited_at,
	// returning the new count.
	RecordVisit(ctx context.Context, id string, at time.Time) (int64, error)
}

// Ledger performs the atomic check-and-decrement generation step: at most one
// of two concurrent calls may win the last unit of quota, and the record
// insert is all-or-nothing with the decrement.
type Ledger interface {
	CreateWithQuota(ctx context.Context, code *QRCode) (remaining int, err error)
}

// ScanRepository stores per-resolution analytics rows.
type ScanRepository interface {
	Insert(ctx context.Context, s *Scan) error
	ListByCode(ctx context.Context, qrID string, limit int) ([]*Scan, error)
}

// ProofRepository persists payment proofs.
type ProofRepository interface {
	Create(ctx context.Context, p *PaymentProof) error
	GetByID(ctx context.Context, id string) (*PaymentProof, error)
	ListByStatus(ctx context.Context, status ProofStatus, limit int) ([]*PaymentProof, error)
	SetStatus(ctx context.Context, id string, status ProofStatus, reviewedAt time.Time) error
}
