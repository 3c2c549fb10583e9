package handler

import (
	"context"
	"net/http"

	"github.com/feedgate/feedgate/internal/admission"
	mw "github.com/feedgate/feedgate/internal/api/middleware"
	"github.com/feedgate/feedgate/internal/api/response"
	"github.com/feedgate/feedgate/pkg/models"
	"github.com/google/uuid"
)

// OrganizationStore is the slice of the data layer the usage handler needs.
type OrganizationStore interface {
	GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error)
}

// NewUsageHandler returns the handler for GET /api/v1/usage: the
// organization's current month consumption against its plan limits. A
// counter whose reset timestamp predates this month reads as zero; the
// stored row is corrected lazily by the next increment.
func NewUsageHandler(s OrganizationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := mw.GetIdentity(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, admission.CodeInvalidAPIKey, "Missing identity", nil)
			return
		}

		org, err := s.GetOrganization(r.Context(), identity.OrganizationID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, admission.CodeInternalError,
				"Failed to load usage", nil)
			return
		}

		used := org.ResponseCount
		if admission.ShouldResetCounter(org.CountResetAt) {
			used = 0
		}

		plan := admission.Plan(org.Plan)
		response.JSON(w, map[string]any{
			"plan":              org.Plan,
			"used":              used,
			"limit":             admission.ResponseLimit(plan),
			"over_limit":        admission.IsOverLimit(plan, used),
			"approaching_limit": admission.ShouldWarn(plan, used),
		})
	}
}
