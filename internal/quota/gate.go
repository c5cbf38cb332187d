// Package quota enforces the free-tier generation limit. The counter lives
// in the key-value store and is spent optimistically: one unit per generation
// action, consumed before the first network call and never refunded, even
// when every slot of the batch later fails.
package quota

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"styleshot/internal/domain"
	"styleshot/internal/kvstore"
)

const counterKeySuffix = ":generation_count"

// Decision is the outcome of one CheckAndConsume call.
type Decision struct {
	Allowed bool
	// LastFree is set on the exact action that consumed the final free unit,
	// so callers can surface the one-time "last free generation" notice.
	LastFree bool
	State    domain.QuotaState
}

// Gate reads, checks, and consumes the counter.
type Gate struct {
	store  kvstore.Store
	limit  int
	logger zerolog.Logger
}

// NewGate builds a gate over the given store. A non-positive limit falls back
// to 3, the product default.
func NewGate(store kvstore.Store, limit int, logger zerolog.Logger) *Gate {
	if limit <= 0 {
		limit = 3
	}
	return &Gate{store: store, limit: limit, logger: logger}
}

// Limit returns the configured free-generation limit.
func (g *Gate) Limit() int {
	return g.limit
}

// State reads the current counter without consuming anything. The read is
// always fresh from the store so external resets are honored.
func (g *Gate) State(ctx context.Context, subject string) (domain.QuotaState, error) {
	used, err := g.read(ctx, subject)
	if err != nil {
		return domain.QuotaState{}, err
	}
	return domain.QuotaState{Used: used, Limit: g.limit}, nil
}

// CheckAndConsume spends one free generation for the subject. Entitled
// callers are always allowed and the counter is untouched. Non-entitled
// callers at or past the limit get Allowed=false and nothing is written;
// otherwise the counter is incremented
// and persisted before the decision is returned.
//
// One call per generation action: the increment never scales with the number
// of slots in the batch.
func (g *Gate) CheckAndConsume(ctx context.Context, subject string, entitled bool) (Decision, error) {
	used, err := g.read(ctx, subject)
	if err != nil {
		return Decision{}, err
	}
	state := domain.QuotaState{Used: used, Limit: g.limit}

	if entitled {
		return Decision{Allowed: true, State: state}, nil
	}
	if used >= g.limit {
		g.logger.Info().Str("subject", subject).Int("used", used).Msg("quota: generation blocked")
		return Decision{Allowed: false, State: state}, nil
	}

	used++
	if err := g.store.Set(ctx, counterKey(subject), strconv.Itoa(used)); err != nil {
		return Decision{}, fmt.Errorf("quota: persist counter: %w", err)
	}
	state.Used = used
	g.logger.Debug().Str("subject", subject).Int("used", used).Int("limit", g.limit).Msg("quota: consumed")
	return Decision{Allowed: true, LastFree: used == g.limit, State: state}, nil
}

func (g *Gate) read(ctx context.Context, subject string) (int, error) {
	raw, err := g.store.Get(ctx, counterKey(subject))
	if err != nil {
		return 0, fmt.Errorf("quota: read counter: %w", err)
	}
	if raw == "" {
		return 0, nil
	}
	used, err := strconv.Atoi(raw)
	if err != nil || used < 0 {
		// A corrupt counter is treated as exhausted rather than reset: the
		// counter must never decrease.
		g.logger.Warn().Str("subject", subject).Str("raw", raw).Msg("quota: corrupt counter value")
		return g.limit, nil
	}
	return used, nil
}

func counterKey(subject string) string {
	return "quota:" + subject + counterKeySuffix
}

// NopLogger returns a discard logger for library callers that do not care
// about quota logging.
func NopLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}
