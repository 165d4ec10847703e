package domain

import "time"

// ProofStatus tracks manual payment review.
type ProofStatus string

const (
	ProofPending  ProofStatus = "pending"
	ProofApproved ProofStatus = "approved"
	ProofRejected ProofStatus = "rejected"
)

// PaymentProof is a user-submitted purchase claim. The proof image itself
// lives in object storage under ProofKey; approval raises the user's plan and
// quota.
type PaymentProof struct {
	ID         string
	UserID     string
	Plan       Plan
	ProofKey   string
	Status     ProofStatus
	CreatedAt  time.Time
	ReviewedAt *time.Time
}
