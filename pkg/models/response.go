package models

import (
	"time"

	"github.com/google/uuid"
)

// Response is a single piece of feedback submitted through the SDK.
type Response struct {
	ID             uuid.UUID `db:"id"              json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	ProjectID      uuid.UUID `db:"project_id"      json:"project_id"`
	Rating         *int      `db:"rating"          json:"rating,omitempty"`
	Comment        string    `db:"comment"         json:"comment"`
	PageURL        string    `db:"page_url"        json:"page_url,omitempty"`
	UserAgent      string    `db:"user_agent"      json:"-"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
}
