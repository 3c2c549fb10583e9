// Package admission implements request admission control for the public
// API: API-key authentication, origin validation, rate limiting,
// idempotent retries, and plan-based usage accounting. Route handlers
// call into this package and translate its decisions into HTTP responses.
package admission

// Plan is a subscription tier. Unknown values are treated as FREE so a
// bad plan string can never grant more than the most restrictive limits.
type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanStarter    Plan = "STARTER"
	PlanPro        Plan = "PRO"
	PlanEnterprise Plan = "ENTERPRISE"
)

// Unlimited is the response ceiling for plans without a cap. A large
// sentinel rather than true infinity keeps min/percentage arithmetic total.
const Unlimited = 1_000_000_000

var responseLimits = map[Plan]int{
	PlanFree:       500,
	PlanStarter:    2000,
	PlanPro:        Unlimited,
	PlanEnterprise: Unlimited,
}

var rateCeilings = map[Plan]int{
	PlanFree:       60,
	PlanStarter:    120,
	PlanPro:        300,
	PlanEnterprise: 1000,
}

// ResponseLimit returns the monthly response ceiling for a plan.
func ResponseLimit(plan Plan) int {
	if limit, ok := responseLimits[plan]; ok {
		return limit
	}
	return responseLimits[PlanFree]
}

// RateCeiling returns the per-minute request ceiling for a plan.
func RateCeiling(plan Plan) int {
	if ceiling, ok := rateCeilings[plan]; ok {
		return ceiling
	}
	return rateCeilings[PlanFree]
}

// IsOverLimit reports whether usage has exceeded the plan's monthly
// ceiling. The boundary is inclusive: usage equal to the limit is not
// over. Negative usage is a caller bug and reads as not over.
func IsOverLimit(plan Plan, used int) bool {
	if plan == PlanPro || plan == PlanEnterprise {
		return false
	}
	if used < 0 {
		return false
	}
	return used > ResponseLimit(plan)
}

// AccessibleResponseCount returns how many of total stored responses the
// plan may see. Limits gate visibility, never the stored count.
func AccessibleResponseCount(plan Plan, total int) int {
	if plan == PlanPro || plan == PlanEnterprise {
		return total
	}
	if limit := ResponseLimit(plan); total > limit {
		return limit
	}
	return total
}

// ShouldWarn reports whether usage has reached 80% of the plan's
// ceiling. Evaluated independently of IsOverLimit; callers compose the
// two. Negative usage never warns.
func ShouldWarn(plan Plan, used int) bool {
	if plan == PlanPro || plan == PlanEnterprise {
		return false
	}
	if used < 0 {
		return false
	}
	return float64(used) >= float64(ResponseLimit(plan))*0.8
}
