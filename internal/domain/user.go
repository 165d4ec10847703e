package domain

import "time"

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// Plan enumerates billing plans.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanBasic    Plan = "basic"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

// PlanInfo is the catalog entry shown on the pricing page and applied on
// payment-proof approval.
type PlanInfo struct {
	Name         Plan   `json:"name"`
	DisplayName  string `json:"display_name"`
	Quota        int    `json:"quota"`
	PriceCents   int    `json:"price_cents"`
	DurationDays int    `json:"duration_days"`
}

// PlanCatalog lists purchasable plans in display order. Free is included so
// clients render a single table.
func PlanCatalog() []PlanInfo {
	return []PlanInfo{
		{Name: PlanFree, DisplayName: "Free", Quota: 5, PriceCents: 0, DurationDays: 0},
		{Name: PlanBasic, DisplayName: "Basic", Quota: 50, PriceCents: 499, DurationDays: 30},
		{Name: PlanStandard, DisplayName: "Standard", Quota: 200, PriceCents: 999, DurationDays: 30},
		{Name: PlanPremium, DisplayName: "Premium", Quota: 1000, PriceCents: 1999, DurationDays: 30},
	}
}

// LookupPlan returns the catalog entry for a plan name.
func LookupPlan(p Plan) (PlanInfo, bool) {
	for _, info := range PlanCatalog() {
		if info.Name == p {
			return info, true
		}
	}
	return PlanInfo{}, false
}

// User is an account. Quota only decreases through the generation
// transaction and only increases through plan application.
type User struct {
	ID                 string
	Email              string
	PasswordHash       string
	Role               UserRole
	Plan               Plan
	Quota              int
	QRCodesGenerated   int
	SubscriptionExpiry *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsAdmin reports whether the user may review payment proofs.
func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
