// Package prefs stores small per-installation flags alongside the quota
// counter.
package prefs

import (
	"context"
	"fmt"

	"styleshot/internal/kvstore"
)

const onboardingKeySuffix = ":onboarding_completed"

// Prefs reads and writes installation preferences.
type Prefs struct {
	store kvstore.Store
}

func New(store kvstore.Store) *Prefs {
	return &Prefs{store: store}
}

// Onboarded reports whether the subject has completed onboarding.
func (p *Prefs) Onboarded(ctx context.Context, subject string) (bool, error) {
	raw, err := p.store.Get(ctx, subject+onboardingKeySuffix)
	if err != nil {
		return false, fmt.Errorf("prefs: read onboarding flag: %w", err)
	}
	return raw == "true", nil
}

// CompleteOnboarding marks onboarding as done. The flag is never cleared.
func (p *Prefs) CompleteOnboarding(ctx context.Context, subject string) error {
	if err := p.store.Set(ctx, subject+onboardingKeySuffix, "true"); err != nil {
		return fmt.Errorf("prefs: persist onboarding flag: %w", err)
	}
	return nil
}
