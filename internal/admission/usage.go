package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UsageStore is the slice of the data layer usage accounting needs.
// IncrementUsage must apply the month-rollover decision and the
// increment in one atomic statement; monthStart is the boundary the
// staleness check compares against.
type UsageStore interface {
	IncrementUsage(ctx context.Context, orgID uuid.UUID, monthStart time.Time) error
}

// Accountant maintains the per-organization monthly response counter.
type Accountant struct {
	store UsageStore
}

func NewAccountant(s UsageStore) *Accountant {
	return &Accountant{store: s}
}

// Increment adds one unit to the organization's counter, resetting it to
// 1 first if the stored reset timestamp predates the current month.
// Errors propagate: undercounting usage is a billing integrity problem,
// not a best-effort side effect.
func (a *Accountant) Increment(ctx context.Context, orgID uuid.UUID) error {
	if err := a.store.IncrementUsage(ctx, orgID, MonthStart(time.Now())); err != nil {
		return fmt.Errorf("increment usage for org %s: %w", orgID, err)
	}
	return nil
}

// ShouldResetCounter reports whether a stored counter is stale: the
// reset timestamp is nil or strictly before the first instant of the
// current month. Pure; usable on read paths without mutating state. The
// mutating path uses the same MonthStart boundary, so the two can never
// disagree on the rollover rule.
func ShouldResetCounter(resetAt *time.Time) bool {
	if resetAt == nil {
		return true
	}
	return resetAt.Before(MonthStart(time.Now()))
}

// MonthStart returns the first instant of t's calendar month in t's
// location (day 1, 00:00:00).
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
