package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/feedgate/feedgate/internal/admission"
	mw "github.com/feedgate/feedgate/internal/api/middleware"
	"github.com/feedgate/feedgate/internal/api/response"
	"github.com/feedgate/feedgate/internal/store"
	"github.com/feedgate/feedgate/pkg/models"
	"github.com/google/uuid"
)

const maxCommentLen = 5000

// ResponseStore is the slice of the data layer the response handlers need.
type ResponseStore interface {
	CreateResponse(ctx context.Context, resp *models.Response) error
	ListResponses(ctx context.Context, filter store.ResponseFilter) ([]*models.Response, int, error)
}

// UsageRecorder counts a stored response against the monthly quota.
type UsageRecorder interface {
	Increment(ctx context.Context, orgID uuid.UUID) error
}

// NewSubmitResponseHandler returns the handler for POST /api/v1/responses,
// the SDK ingest endpoint. The response is stored unconditionally; plan
// limits gate visibility on the read path, not admission of the write.
func NewSubmitResponseHandler(s ResponseStore, usage UsageRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := mw.GetIdentity(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, admission.CodeInvalidAPIKey, "Missing identity", nil)
			return
		}

		var req struct {
			Rating  *int   `json:"rating"`
			Comment string `json:"comment"`
			PageURL string `json:"page_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, admission.CodeInvalidRequest, "Invalid JSON body", nil)
			return
		}

		if req.Rating == nil && req.Comment == "" {
			response.Error(w, http.StatusBadRequest, admission.CodeInvalidRequest,
				"At least one of rating or comment is required", nil)
			return
		}
		if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
			response.Error(w, http.StatusBadRequest, admission.CodeInvalidRequest,
				"rating must be between 1 and 5", nil)
			return
		}
		if len(req.Comment) > maxCommentLen {
			response.Error(w, http.StatusBadRequest, admission.CodeInvalidRequest,
				"comment exceeds maximum length", nil)
			return
		}

		now := time.Now().UTC()
		resp := &models.Response{
			ID:             uuid.New(),
			OrganizationID: identity.OrganizationID,
			ProjectID:      identity.ProjectID,
			Rating:         req.Rating,
			Comment:        req.Comment,
			PageURL:        req.PageURL,
			UserAgent:      r.UserAgent(),
			CreatedAt:      now,
		}

		if err := s.CreateResponse(r.Context(), resp); err != nil {
			response.Error(w, http.StatusInternalServerError, admission.CodeInternalError,
				"Failed to store response", nil)
			return
		}

		// Usage errors surface: silently undercounting breaks billing.
		if err := usage.Increment(r.Context(), identity.OrganizationID); err != nil {
			response.Error(w, http.StatusInternalServerError, admission.CodeInternalError,
				"Failed to record usage", nil)
			return
		}

		response.Created(w, resp)
	}
}

// NewListResponsesHandler returns the handler for GET /api/v1/responses.
// The number of visible responses is clamped to the plan's accessible
// count; the stored total is reported alongside so the dashboard can
// show what an upgrade would unlock.
func NewListResponsesHandler(s ResponseStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := mw.GetIdentity(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, admission.CodeInvalidAPIKey, "Missing identity", nil)
			return
		}

		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", 20)
		if limit > 100 {
			limit = 100
		}

		filter := store.ResponseFilter{
			ProjectID: identity.ProjectID,
			Page:      page,
			Limit:     limit,
		}
		if since := r.URL.Query().Get("since"); since != "" {
			t, err := time.Parse(time.RFC3339, since)
			if err != nil {
				response.Error(w, http.StatusBadRequest, admission.CodeInvalidRequest,
					"since must be a valid RFC3339 timestamp", nil)
				return
			}
			filter.Since = t
		}

		rows, total, err := s.ListResponses(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, admission.CodeInternalError,
				"Failed to list responses", nil)
			return
		}

		plan := admission.Plan(identity.Plan)
		accessible := admission.AccessibleResponseCount(plan, total)

		// Trim rows that fall past the accessible boundary.
		offset := (page - 1) * limit
		if offset >= accessible {
			rows = nil
		} else if offset+len(rows) > accessible {
			rows = rows[:accessible-offset]
		}
		if rows == nil {
			rows = []*models.Response{}
		}

		response.Collection(w, rows, response.PaginationMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			Accessible: accessible,
			HasNext:    offset+len(rows) < accessible,
		})
	}
}

func queryInt(r *http.Request, name string, defaultVal int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return defaultVal
	}
	return i
}
