package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey authenticates SDK and API access for a project. Raw keys are
// shown once at creation; only the SHA-256 digest is stored, plus a
// truncated prefix for display. Revocation is a soft delete via RevokedAt.
type APIKey struct {
	ID             uuid.UUID  `db:"id"              json:"id"`
	OrganizationID uuid.UUID  `db:"organization_id" json:"organization_id"`
	ProjectID      uuid.UUID  `db:"project_id"      json:"project_id"`
	Name           string     `db:"name"            json:"name"`
	KeyDigest      string     `db:"key_digest"      json:"-"`
	KeyPrefix      string     `db:"key_prefix"      json:"key_prefix"`
	AllowedDomains []string   `db:"allowed_domains" json:"allowed_domains"`
	LastUsedAt     *time.Time `db:"last_used_at"    json:"last_used_at,omitempty"`
	RevokedAt      *time.Time `db:"revoked_at"      json:"-"`
	CreatedAt      time.Time  `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"      json:"updated_at"`
}

// KeyIdentity is the result of resolving a credential: the key joined
// with its organization's plan. The plaintext key is never part of it.
type KeyIdentity struct {
	KeyID          uuid.UUID `json:"key_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	ProjectID      uuid.UUID `json:"project_id"`
	KeyPrefix      string    `json:"key_prefix"`
	Plan           string    `json:"plan"`
	AllowedDomains []string  `json:"allowed_domains"`
}
