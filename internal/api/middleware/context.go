package middleware

import (
	"context"
	"net/http"

	"github.com/feedgate/feedgate/pkg/models"
)

type contextKey string

const identityKey contextKey = "key_identity"

func SetIdentity(ctx context.Context, id *models.KeyIdentity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func GetIdentity(r *http.Request) (*models.KeyIdentity, bool) {
	id, ok := r.Context().Value(identityKey).(*models.KeyIdentity)
	return id, ok
}
