// Package controllers adapts HTTP requests to the services layer. Every
// handler writes the shared JSON envelope via pkg/response.
package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rishivikram/vastra/pkg/apperr"
	"github.com/rishivikram/vastra/pkg/auth"
	"github.com/rishivikram/vastra/pkg/response"
)

// currentUser extracts the authenticated user's ObjectID from the
// request context. The auth middleware guarantees it is present on
// protected routes.
func currentUser(r *http.Request) (primitive.ObjectID, error) {
	id, ok := auth.IdentityFromCtx(r.Context())
	if !ok {
		return primitive.NilObjectID, apperr.Unauthorized("not authenticated")
	}
	oid, err := primitive.ObjectIDFromHex(id.UserID)
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorized("invalid token subject")
	}
	return oid, nil
}

// pathID parses the named chi URL parameter as an ObjectID.
func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid " + name)
	}
	return oid, nil
}

// parseHex parses a hex string from a request body as an ObjectID.
func parseHex(hex, field string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid " + field)
	}
	return oid, nil
}

// pageParams reads page/limit query parameters with sane bounds.
func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func paginate(page, limit int, total int64) response.Pagination {
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return response.Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
