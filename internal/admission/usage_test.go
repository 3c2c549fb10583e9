package admission_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/feedgate/feedgate/internal/admission"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUsageStore struct {
	orgID      uuid.UUID
	monthStart time.Time
	calls      int
	err        error
}

func (m *mockUsageStore) IncrementUsage(_ context.Context, orgID uuid.UUID, monthStart time.Time) error {
	m.orgID = orgID
	m.monthStart = monthStart
	m.calls++
	return m.err
}

func TestMonthStart(t *testing.T) {
	in := time.Date(2025, time.March, 17, 14, 32, 9, 123, time.UTC)
	want := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, admission.MonthStart(in))
}

func TestMonthStart_PreservesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2025, time.December, 31, 23, 59, 59, 0, loc)
	got := admission.MonthStart(in)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, time.December, got.Month())
	assert.Equal(t, 1, got.Day())
}

func TestShouldResetCounter_Nil(t *testing.T) {
	assert.True(t, admission.ShouldResetCounter(nil))
}

func TestShouldResetCounter_LastMonth(t *testing.T) {
	lastMonth := time.Now().AddDate(0, -1, 0)
	assert.True(t, admission.ShouldResetCounter(&lastMonth))
}

func TestShouldResetCounter_CurrentMonth(t *testing.T) {
	// Midnight today is at or after the month boundary.
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	assert.False(t, admission.ShouldResetCounter(&midnight))

	monthStart := admission.MonthStart(now)
	assert.False(t, admission.ShouldResetCounter(&monthStart))
}

func TestShouldResetCounter_Idempotent(t *testing.T) {
	ts := time.Now().AddDate(0, -2, 0)
	first := admission.ShouldResetCounter(&ts)
	second := admission.ShouldResetCounter(&ts)
	assert.Equal(t, first, second)
}

func TestAccountant_PassesCurrentMonthBoundary(t *testing.T) {
	ms := &mockUsageStore{}
	acct := admission.NewAccountant(ms)
	orgID := uuid.New()

	require.NoError(t, acct.Increment(context.Background(), orgID))

	assert.Equal(t, 1, ms.calls)
	assert.Equal(t, orgID, ms.orgID)
	assert.Equal(t, admission.MonthStart(time.Now()), ms.monthStart)
}

func TestAccountant_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	ms := &mockUsageStore{err: storeErr}
	acct := admission.NewAccountant(ms)

	err := acct.Increment(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
}
