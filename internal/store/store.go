package store

import (
	"context"
	"errors"
	"time"

	"github.com/feedgate/feedgate/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetDefaultProject(ctx context.Context) (*models.Project, error)
	GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error)

	GetKeyIdentityByDigest(ctx context.Context, digest string) (*models.KeyIdentity, error)
	UpdateAPIKeyLastUsed(ctx context.Context, keyID uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, orgID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (string, error)

	// IncrementUsage applies the monthly rollover decision and the
	// increment in a single atomic statement. monthStart is the first
	// instant of the current month; a reset timestamp older than it (or
	// null) makes the counter stale.
	IncrementUsage(ctx context.Context, orgID uuid.UUID, monthStart time.Time) error

	CreateResponse(ctx context.Context, resp *models.Response) error
	ListResponses(ctx context.Context, filter ResponseFilter) ([]*models.Response, int, error)
}

type ResponseFilter struct {
	ProjectID uuid.UUID
	Since     time.Time
	Page      int
	Limit     int
}
