package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/feedgate/feedgate/internal/admission"
	"github.com/feedgate/feedgate/internal/api/response"
	"github.com/feedgate/feedgate/internal/store"
	"github.com/feedgate/feedgate/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// KeyStore is the slice of the data layer the key-management handlers need.
type KeyStore interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, orgID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (string, error)
}

// NewCreateKeyHandler returns the handler for POST /api/v1/admin/keys.
// The plaintext key appears once, in this response, and is never stored.
func NewCreateKeyHandler(s KeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OrganizationID string   `json:"organization_id"`
			ProjectID      string   `json:"project_id"`
			Name           string   `json:"name"`
			AllowedDomains []string `json:"allowed_domains"`
			Live           bool     `json:"live"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, admission.CodeInvalidRequest, "Invalid JSON body", nil)
			return
		}

		orgID, err := uuid.Parse(req.OrganizationID)
		if err != nil {
			response.Error(w, http.StatusBadRequest, admission.CodeInvalidRequest,
				"organization_id must be a valid UUID", nil)
			return
		}
		projectID, err := uuid.Parse(req.ProjectID)
		if err != nil {
			response.Error(w, http.StatusBadRequest, admission.CodeInvalidRequest,
				"project_id must be a valid UUID", nil)
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, admission.CodeInvalidRequest, "name is required", nil)
			return
		}

		plaintext, digest, displayPrefix, err := admission.GenerateKey(req.Live)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, admission.CodeInternalError,
				"Failed to generate key", nil)
			return
		}

		now := time.Now().UTC()
		key := &models.APIKey{
			ID:             uuid.New(),
			OrganizationID: orgID,
			ProjectID:      projectID,
			Name:           req.Name,
			KeyDigest:      digest,
			KeyPrefix:      displayPrefix,
			AllowedDomains: req.AllowedDomains,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if key.AllowedDomains == nil {
			key.AllowedDomains = []string{}
		}

		if err := s.CreateAPIKey(r.Context(), key); err != nil {
			response.Error(w, http.StatusInternalServerError, admission.CodeInternalError,
				"Failed to create key", nil)
			return
		}

		response.Created(w, map[string]any{
			"key":     plaintext,
			"api_key": key,
		})
	}
}

// NewListKeysHandler returns the handler for GET /api/v1/admin/keys.
func NewListKeysHandler(s KeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := uuid.Parse(r.URL.Query().Get("organization_id"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, admission.CodeInvalidRequest,
				"organization_id must be a valid UUID", nil)
			return
		}

		keys, err := s.ListAPIKeys(r.Context(), orgID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, admission.CodeInternalError,
				"Failed to list keys", nil)
			return
		}
		if keys == nil {
			keys = []*models.APIKey{}
		}
		response.JSON(w, keys)
	}
}

// NewRevokeKeyHandler returns the handler for DELETE /api/v1/admin/keys/{keyID}.
// The revoked key's cached identity is invalidated so the revocation
// takes effect without waiting out the cache TTL.
func NewRevokeKeyHandler(s KeyStore, cache *admission.IdentityCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keyID, err := uuid.Parse(chi.URLParam(r, "keyID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, admission.CodeInvalidRequest,
				"keyID must be a valid UUID", nil)
			return
		}
		orgID, err := uuid.Parse(r.URL.Query().Get("organization_id"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, admission.CodeInvalidRequest,
				"organization_id must be a valid UUID", nil)
			return
		}

		digest, err := s.RevokeAPIKey(r.Context(), keyID, orgID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Key not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, admission.CodeInternalError,
				"Failed to revoke key", nil)
			return
		}

		cache.Invalidate(digest)
		response.JSON(w, map[string]any{"revoked": true})
	}
}
