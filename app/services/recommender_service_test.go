package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rishivikram/vastra/app/models"
	"github.com/rishivikram/vastra/pkg/apperr"
)

// recommenderProducts serves a fixed top-rated list on top of the shared
// in-memory stock.
type recommenderProducts struct {
	fakeProducts
	top []models.Product
}

func (f *recommenderProducts) TopRated(_ context.Context, limit int) ([]models.Product, error) {
	if limit > len(f.top) {
		limit = len(f.top)
	}
	return f.top[:limit], nil
}

func newRecommenderTest(t *testing.T, state *checkoutState, handler http.HandlerFunc) (*RecommenderService, *recommenderProducts) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	products := &recommenderProducts{fakeProducts: fakeProducts{state: state}}
	return &RecommenderService{products: products, baseURL: srv.URL}, products
}

func scoresHandler(t *testing.T, scores map[string]float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "/recommenders/")
		json.NewEncoder(w).Encode(scores)
	}
}

func TestForUserOrdersByScore(t *testing.T) {
	state := newCheckoutState()
	low := seedProduct(state, 5, 10.0)
	high := seedProduct(state, 5, 20.0)

	svc, _ := newRecommenderTest(t, state, scoresHandler(t, map[string]float64{
		low.Hex():  0.2,
		high.Hex(): 0.9,
	}))

	got, err := svc.ForUser(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, high, got[0].ID)
	assert.Equal(t, low, got[1].ID)
}

func TestForUserPadsWithTopRated(t *testing.T) {
	state := newCheckoutState()
	scored := seedProduct(state, 5, 10.0)

	svc, products := newRecommenderTest(t, state, scoresHandler(t, map[string]float64{
		scored.Hex(): 0.5,
	}))

	// The top-rated pool deliberately includes the already-recommended
	// product so padding has to skip it.
	products.top = append(products.top, models.Product{ID: scored, TotalRating: 5})
	for i := 0; i < 10; i++ {
		id := seedProduct(state, 3, float64(i))
		products.top = append(products.top, models.Product{ID: id, TotalRating: 4 - i%4})
	}

	got, err := svc.ForUser(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Len(t, got, recommendationCount)
	assert.Equal(t, scored, got[0].ID)

	seen := map[primitive.ObjectID]bool{}
	for _, p := range got {
		assert.False(t, seen[p.ID], "duplicate recommendation %s", p.ID.Hex())
		seen[p.ID] = true
	}
}

func TestForUserSkipsUnknownProductIDs(t *testing.T) {
	state := newCheckoutState()
	known := seedProduct(state, 5, 10.0)

	svc, _ := newRecommenderTest(t, state, scoresHandler(t, map[string]float64{
		known.Hex():                   1.0,
		"not-a-hex-id":                0.9,
		primitive.NewObjectID().Hex(): 0.8, // valid hex, not in catalogue
	}))

	got, err := svc.ForUser(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, known, got[0].ID)
}

func TestForUserUpstreamFailure(t *testing.T) {
	svc, _ := newRecommenderTest(t, newCheckoutState(), func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "scoring backend down", http.StatusBadGateway)
	})

	_, err := svc.ForUser(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Contains(t, err.Error(), fmt.Sprint(http.StatusBadGateway))
}
