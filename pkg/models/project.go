package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a feedback-collection surface within an organization.
// Each project owns its API keys and its submitted responses.
type Project struct {
	ID             uuid.UUID `db:"id"              json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name"            json:"name"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"      json:"updated_at"`
}
