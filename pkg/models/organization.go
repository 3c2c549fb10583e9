package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the billing and data-isolation unit. Plan limits and
// the monthly usage counter live here; projects and API keys hang off it.
type Organization struct {
	ID            uuid.UUID  `db:"id"             json:"id"`
	Name          string     `db:"name"           json:"name"`
	Plan          string     `db:"plan"           json:"plan"`
	ResponseCount int        `db:"response_count" json:"response_count"`
	CountResetAt  *time.Time `db:"count_reset_at" json:"count_reset_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"     json:"updated_at"`
}
