// Package entitlement wraps the external subscription platform. The core
// treats the subscription fact as read-only: it can be queried, and an
// upgrade surface can be presented, but the fact itself changes only on the
// provider's side.
package entitlement

import "context"

// Paywall placement triggers registered with the subscription platform.
const (
	TriggerFeatureUnlock = "feature_unlock"
	TriggerQuotaExceeded = "quota_exhausted"
)

// Service is the narrow contract the orchestration layer depends on.
type Service interface {
	// IsSubscribed reports whether the subject holds an active subscription.
	IsSubscribed(ctx context.Context, subject string) (bool, error)
	// PresentUpgrade registers a paywall presentation for the given trigger.
	// The provider drives the actual upgrade flow; a later IsSubscribed may
	// observe a changed fact.
	PresentUpgrade(ctx context.Context, subject, trigger string) error
}

// Static is a fixed-answer Service for tests and offline development.
type Static struct {
	Subscribed bool
	Presented  []string
}

func (s *Static) IsSubscribed(ctx context.Context, subject string) (bool, error) {
	return s.Subscribed, nil
}

func (s *Static) PresentUpgrade(ctx context.Context, subject, trigger string) error {
	s.Presented = append(s.Presented, trigger)
	return nil
}
