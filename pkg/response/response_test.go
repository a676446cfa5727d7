package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishivikram/vastra/pkg/apperr"
	"github.com/rishivikram/vastra/pkg/response"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("bad input"), http.StatusBadRequest},
		{apperr.NotFound("missing"), http.StatusNotFound},
		{apperr.New(apperr.KindConflict, "insufficient stock"), http.StatusConflict},
		{apperr.New(apperr.KindUnauthorized, "no token"), http.StatusUnauthorized},
		{apperr.New(apperr.KindForbidden, "admins only"), http.StatusForbidden},
		{apperr.New(apperr.KindUpstream, "recommender down"), http.StatusBadGateway},
		{apperr.New(apperr.KindTimeout, "checkout timed out"), http.StatusServiceUnavailable},
		{errors.New("plain error"), http.StatusInternalServerError},
		{apperr.Wrap(apperr.KindConflict, "outer", errors.New("inner")), http.StatusConflict},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, response.StatusOf(tc.err), tc.err.Error())
	}
}

func TestFromErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.FromError(rec, apperr.New(apperr.KindConflict, "insufficient stock"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusConflict, body.Status)
	assert.Equal(t, "insufficient stock", body.Message)
}
