package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/feedgate/feedgate/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Organizations / Projects ---

func (s *PostgresStore) GetDefaultProject(ctx context.Context) (*models.Project, error) {
	var p models.Project
	err := s.pool.QueryRow(ctx,
		`SELECT id, organization_id, name, created_at, updated_at FROM projects WHERE name = 'default' LIMIT 1`,
	).Scan(&p.ID, &p.OrganizationID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get default project: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var o models.Organization
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, plan, response_count, count_reset_at, created_at, updated_at
		 FROM organizations WHERE id = $1`, id,
	).Scan(&o.ID, &o.Name, &o.Plan, &o.ResponseCount, &o.CountResetAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &o, nil
}

// IncrementUsage bumps the organization's monthly counter in one
// statement. Both CASE branches test the same staleness condition, so
// concurrent callers can never apply the reset and the increment
// inconsistently; the row lock serializes them.
func (s *PostgresStore) IncrementUsage(ctx context.Context, orgID uuid.UUID, monthStart time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE organizations SET
		   response_count = CASE WHEN count_reset_at IS NULL OR count_reset_at < $2 THEN 1 ELSE response_count + 1 END,
		   count_reset_at = CASE WHEN count_reset_at IS NULL OR count_reset_at < $2 THEN NOW() ELSE count_reset_at END,
		   updated_at = NOW()
		 WHERE id = $1`, orgID, monthStart)
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- API Keys ---

func (s *PostgresStore) GetKeyIdentityByDigest(ctx context.Context, digest string) (*models.KeyIdentity, error) {
	var id models.KeyIdentity
	err := s.pool.QueryRow(ctx,
		`SELECT k.id, k.organization_id, k.project_id, k.key_prefix, k.allowed_domains, o.plan
		 FROM api_keys k
		 JOIN organizations o ON o.id = k.organization_id
		 WHERE k.key_digest = $1 AND k.revoked_at IS NULL`, digest,
	).Scan(&id.KeyID, &id.OrganizationID, &id.ProjectID, &id.KeyPrefix, &id.AllowedDomains, &id.Plan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get key identity by digest: %w", err)
	}
	return &id, nil
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, keyID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, keyID)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, organization_id, project_id, name, key_digest, key_prefix, allowed_domains, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		key.ID, key.OrganizationID, key.ProjectID, key.Name, key.KeyDigest, key.KeyPrefix,
		key.AllowedDomains, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context, orgID uuid.UUID) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, organization_id, project_id, name, key_digest, key_prefix, allowed_domains, last_used_at, revoked_at, created_at, updated_at
		 FROM api_keys WHERE organization_id = $1 AND revoked_at IS NULL ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.OrganizationID, &k.ProjectID, &k.Name, &k.KeyDigest, &k.KeyPrefix,
			&k.AllowedDomains, &k.LastUsedAt, &k.RevokedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

// RevokeAPIKey soft-deletes a key and returns its digest so callers can
// invalidate any cached identity.
func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (string, error) {
	var digest string
	err := s.pool.QueryRow(ctx,
		`UPDATE api_keys SET revoked_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND organization_id = $2 AND revoked_at IS NULL
		 RETURNING key_digest`, id, orgID,
	).Scan(&digest)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("revoke api key: %w", err)
	}
	return digest, nil
}

// --- Responses ---

func (s *PostgresStore) CreateResponse(ctx context.Context, resp *models.Response) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO responses (id, organization_id, project_id, rating, comment, page_url, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		resp.ID, resp.OrganizationID, resp.ProjectID, resp.Rating, resp.Comment,
		resp.PageURL, resp.UserAgent, resp.CreatedAt)
	if err != nil {
		return fmt.Errorf("create response: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListResponses(ctx context.Context, filter ResponseFilter) ([]*models.Response, int, error) {
	conditions := "project_id = $1"
	args := []any{filter.ProjectID}
	argIdx := 2

	if !filter.Since.IsZero() {
		conditions += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.Since)
		argIdx++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM responses WHERE " + conditions
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count responses: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	dataQuery := fmt.Sprintf(
		`SELECT id, organization_id, project_id, rating, comment, page_url, user_agent, created_at
		 FROM responses WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		conditions, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var responses []*models.Response
	for rows.Next() {
		var r models.Response
		if err := rows.Scan(&r.ID, &r.OrganizationID, &r.ProjectID, &r.Rating, &r.Comment,
			&r.PageURL, &r.UserAgent, &r.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan response: %w", err)
		}
		responses = append(responses, &r)
	}
	return responses, total, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
