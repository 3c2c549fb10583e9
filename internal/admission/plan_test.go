package admission_test

import (
	"testing"

	"github.com/feedgate/feedgate/internal/admission"
	"github.com/stretchr/testify/assert"
)

func TestResponseLimit(t *testing.T) {
	assert.Equal(t, 500, admission.ResponseLimit(admission.PlanFree))
	assert.Equal(t, 2000, admission.ResponseLimit(admission.PlanStarter))
	assert.Equal(t, admission.Unlimited, admission.ResponseLimit(admission.PlanPro))
}

func TestResponseLimit_UnknownPlanDefaultsToFree(t *testing.T) {
	assert.Equal(t, 500, admission.ResponseLimit(admission.Plan("GOLD")))
	assert.Equal(t, 500, admission.ResponseLimit(admission.Plan("")))
}

func TestIsOverLimit_BoundaryInclusive(t *testing.T) {
	// Equal to the limit is not over; one past it is.
	assert.False(t, admission.IsOverLimit(admission.PlanFree, 500))
	assert.True(t, admission.IsOverLimit(admission.PlanFree, 501))
}

func TestIsOverLimit_ProNever(t *testing.T) {
	assert.False(t, admission.IsOverLimit(admission.PlanPro, 999999))
	assert.False(t, admission.IsOverLimit(admission.PlanEnterprise, 999999))
}

func TestIsOverLimit_NegativeUsageClamped(t *testing.T) {
	assert.False(t, admission.IsOverLimit(admission.PlanFree, -1))
}

func TestAccessibleResponseCount(t *testing.T) {
	assert.Equal(t, 500, admission.AccessibleResponseCount(admission.PlanFree, 1000))
	assert.Equal(t, 300, admission.AccessibleResponseCount(admission.PlanFree, 300))
	assert.Equal(t, 100000, admission.AccessibleResponseCount(admission.PlanPro, 100000))
}

func TestShouldWarn_At80Percent(t *testing.T) {
	// 400 is exactly 80% of the free limit.
	assert.True(t, admission.ShouldWarn(admission.PlanFree, 400))
	assert.False(t, admission.ShouldWarn(admission.PlanFree, 399))
}

func TestShouldWarn_IndependentOfOverLimit(t *testing.T) {
	// Warn can hold while over-limit does not.
	assert.True(t, admission.ShouldWarn(admission.PlanFree, 450))
	assert.False(t, admission.IsOverLimit(admission.PlanFree, 450))
	// Once over, both read true.
	assert.True(t, admission.ShouldWarn(admission.PlanFree, 600))
	assert.True(t, admission.IsOverLimit(admission.PlanFree, 600))
}

func TestShouldWarn_ProNever(t *testing.T) {
	assert.False(t, admission.ShouldWarn(admission.PlanPro, admission.Unlimited))
}

func TestShouldWarn_NegativeUsageClamped(t *testing.T) {
	assert.False(t, admission.ShouldWarn(admission.PlanFree, -10))
}

func TestRateCeiling(t *testing.T) {
	assert.Equal(t, 60, admission.RateCeiling(admission.PlanFree))
	assert.Equal(t, 120, admission.RateCeiling(admission.PlanStarter))
	assert.Equal(t, 300, admission.RateCeiling(admission.PlanPro))
	assert.Equal(t, 1000, admission.RateCeiling(admission.PlanEnterprise))
}

func TestRateCeiling_UnknownPlanMostRestrictive(t *testing.T) {
	assert.Equal(t, 60, admission.RateCeiling(admission.Plan("PLATINUM")))
}
