// Package memory provides in-memory implementations of the repository
// contracts. It backs unit tests and keeps the ledger semantics honest
// without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"qrserve/internal/domain"
)

// Store holds all tables behind one mutex so the ledger sees users and codes
// in a single isolation boundary, matching the SQL transaction.
type Store struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	emails map[string]string
	codes  map[string]*domain.QRCode
	scans  map[string][]*domain.Scan
	proofs map[string]*domain.PaymentProof
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		users:  make(map[string]*domain.User),
		emails: make(map[string]string),
		codes:  make(map[string]*domain.QRCode),
		scans:  make(map[string][]*domain.Scan),
		proofs: make(map[string]*domain.PaymentProof),
	}
}

// Users returns the account repository view.
func (s *Store) Users() domain.UserRepository { return &userStore{s} }

// Codes returns the QR record repository view.
func (s *Store) Codes() domain.QRRepository { return &codeStore{s} }

// Ledger returns the generation-transaction view.
func (s *Store) Ledger() domain.Ledger { return &ledgerStore{s} }

// Scans returns the analytics repository view.
func (s *Store) Scans() domain.ScanRepository { return &scanStore{s} }

// Proofs returns the payment-proof repository view.
func (s *Store) Proofs() domain.ProofRepository { return &proofStore{s} }

type userStore struct{ s *Store }

func (r *userStore) Create(ctx context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.emails[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	cp := *u
	r.s.users[u.ID] = &cp
	r.s.emails[u.Email] = u.ID
	return nil
}

func (r *userStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.emails[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *r.s.users[id]
	return &cp, nil
}

func (r *userStore) ApplyPlan(ctx context.Context, userID string, plan domain.Plan, quotaDelta int, expiry *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Plan = plan
	u.Quota += quotaDelta
	u.SubscriptionExpiry = expiry
	u.UpdatedAt = time.Now()
	return nil
}

type ledgerStore struct{ s *Store }

func (r *ledgerStore) CreateWithQuota(ctx context.Context, code *domain.QRCode) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[code.UserID]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	if u.Quota < 1 {
		return 0, domain.ErrInsufficientQuota
	}
	u.Quota--
	u.QRCodesGenerated++
	cp := *code
	r.s.codes[code.ID] = &cp
	return u.Quota, nil
}

type codeStore struct{ s *Store }

func (r *codeStore) GetByID(ctx context.Context, id string) (*domain.QRCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.codes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *codeStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.QRCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var codes []*domain.QRCode
	for _, c := range r.s.codes {
		if c.UserID == userID {
			cp := *c
			codes = append(codes, &cp)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i].CreatedAt.After(codes[j].CreatedAt) })
	if offset >= len(codes) {
		return nil, nil
	}
	codes = codes[offset:]
	if limit > 0 && len(codes) > limit {
		codes = codes[:limit]
	}
	return codes, nil
}

func (r *codeStore) RecordVisit(ctx context.Context, id string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.codes[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	c.Visits++
	c.LastVisitedAt = &at
	return c.Visits, nil
}

type scanStore struct{ s *Store }

func (r *scanStore) Insert(ctx context.Context, scan *domain.Scan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *scan
	r.s.scans[scan.QRID] = append(r.s.scans[scan.QRID], &cp)
	return nil
}

func (r *scanStore) ListByCode(ctx context.Context, qrID string, limit int) ([]*domain.Scan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	scans := r.s.scans[qrID]
	out := make([]*domain.Scan, 0, len(scans))
	for i := len(scans) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		cp := *scans[i]
		out = append(out, &cp)
	}
	return out, nil
}

type proofStore struct{ s *Store }

func (r *proofStore) Create(ctx context.Context, p *domain.PaymentProof) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.proofs[p.ID] = &cp
	return nil
}

func (r *proofStore) GetByID(ctx context.Context, id string) (*domain.PaymentProof, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.proofs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *proofStore) ListByStatus(ctx context.Context, status domain.ProofStatus, limit int) ([]*domain.PaymentProof, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var proofs []*domain.PaymentProof
	for _, p := range r.s.proofs {
		if p.Status == status {
			cp := *p
			proofs = append(proofs, &cp)
		}
	}
	sort.Slice(proofs, func(i, j int) bool { return proofs[i].CreatedAt.Before(proofs[j].CreatedAt) })
	if limit > 0 && len(proofs) > limit {
		proofs = proofs[:limit]
	}
	return proofs, nil
}

func (r *proofStore) SetStatus(ctx context.Context, id string, status domain.ProofStatus, reviewedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.proofs[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	p.ReviewedAt = &reviewedAt
	return nil
}
