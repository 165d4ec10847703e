// Command userplan applies a plan to an account directly, bypassing the
// payment-proof flow. Operator tooling for support cases and for bootstrapping
// the first admin review account.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"qrserve/internal/adapter/repo"
	"qrserve/internal/domain"
)

func main() {
	var (
		idFlag    string
		emailFlag string
		planFlag  string
		quotaFlag int
	)

	flag.StringVar(&idFlag, "id", "", "user ID to update (UUID)")
	flag.StringVar(&emailFlag, "email", "", "user email to update")
	flag.StringVar(&planFlag, "plan", "basic", "plan to assign (free, basic, standard, premium)")
	flag.IntVar(&quotaFlag, "quota", -1, "quota to add on top of the current balance (<0 uses the plan default)")
	flag.Parse()

	userID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(emailFlag)
	plan := domain.Plan(strings.TrimSpace(strings.ToLower(planFlag)))

	if userID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}
	info, ok := domain.LookupPlan(plan)
	if !ok {
		exitWithError(fmt.Errorf("unsupported plan %q", plan))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	users := repo.NewUserRepository(pool)

	var u *domain.User
	if userID != "" {
		u, err = users.GetByID(ctx, userID)
	} else {
		u, err = users.GetByEmail(ctx, email)
	}
	if err != nil {
		exitWithError(fmt.Errorf("failed to load user: %w", err))
	}

	quota := info.Quota
	if quotaFlag >= 0 {
		quota = quotaFlag
	}
	var expiry *time.Time
	if info.DurationDays > 0 {
		e := time.Now().AddDate(0, 0, info.DurationDays)
		expiry = &e
	}

	if err := users.ApplyPlan(ctx, u.ID, plan, quota, expiry); err != nil {
		exitWithError(fmt.Errorf("failed to apply plan: %w", err))
	}

	fmt.Printf("User %s (%s) updated to plan %s, quota +%d\n", u.ID, u.Email, plan, quota)
	if expiry != nil {
		fmt.Printf("subscription_expiry=%s\n", expiry.Format(time.RFC3339))
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
