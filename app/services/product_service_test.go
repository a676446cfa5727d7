package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rishivikram/vastra/app/models"
	"github.com/rishivikram/vastra/app/repositories"
	"github.com/rishivikram/vastra/pkg/apperr"
	"github.com/rishivikram/vastra/pkg/middleware"
)

// ─── fakes ───

// ratingProducts tracks ratings per product in memory.
type ratingProducts struct {
	fakeProducts
	ratings map[primitive.ObjectID][]models.Rating
	totals  map[primitive.ObjectID]int
}

func newRatingProducts(state *checkoutState) *ratingProducts {
	return &ratingProducts{
		fakeProducts: fakeProducts{state: state},
		ratings:      map[primitive.ObjectID][]models.Rating{},
		totals:       map[primitive.ObjectID]int{},
	}
}

func (f *ratingProducts) UpsertRating(_ context.Context, productID primitive.ObjectID, rating models.Rating) ([]models.Rating, error) {
	if _, ok := f.state.stock[productID]; !ok {
		return nil, apperr.NotFound("product not found")
	}
	existing := f.ratings[productID]
	for i, r := range existing {
		if r.PostedBy == rating.PostedBy {
			existing[i] = rating
			return existing, nil
		}
	}
	f.ratings[productID] = append(existing, rating)
	return f.ratings[productID], nil
}

func (f *ratingProducts) SetTotalRating(_ context.Context, productID primitive.ObjectID, total int) error {
	f.totals[productID] = total
	return nil
}

// wishlistUsers implements just enough of UserRepository for wishlist
// tests, with the same add-if-absent-else-remove contract as Mongo.
type wishlistUsers struct {
	wishlists map[primitive.ObjectID][]primitive.ObjectID
}

func newWishlistUsers() *wishlistUsers {
	return &wishlistUsers{wishlists: map[primitive.ObjectID][]primitive.ObjectID{}}
}

func (f *wishlistUsers) ToggleWishlist(_ context.Context, userID, productID primitive.ObjectID) (bool, error) {
	list := f.wishlists[userID]
	for i, id := range list {
		if id == productID {
			f.wishlists[userID] = append(list[:i], list[i+1:]...)
			return false, nil
		}
	}
	f.wishlists[userID] = append(list, productID)
	return true, nil
}

func (f *wishlistUsers) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	return models.User{ID: id, Wishlist: f.wishlists[id]}, nil
}

func (f *wishlistUsers) All(context.Context, int, int) ([]models.User, int64, error) {
	return nil, 0, errNotImplemented
}

func (f *wishlistUsers) UpdateProfile(context.Context, primitive.ObjectID, bson.M) (models.User, error) {
	return models.User{}, errNotImplemented
}

func (f *wishlistUsers) SaveAddress(context.Context, primitive.ObjectID, string) (models.User, error) {
	return models.User{}, errNotImplemented
}

func (f *wishlistUsers) SetBlocked(context.Context, primitive.ObjectID, bool) error {
	return errNotImplemented
}

func (f *wishlistUsers) Delete(context.Context, primitive.ObjectID) error {
	return errNotImplemented
}

func (f *wishlistUsers) AccountStatus(context.Context, string) (middleware.AccountStatus, error) {
	return middleware.AccountStatus{}, errNotImplemented
}

var _ repositories.UserRepository = (*wishlistUsers)(nil)

// ─── tests ───

func TestAggregateRating(t *testing.T) {
	postedBy := primitive.NewObjectID()
	stars := func(values ...int) []models.Rating {
		out := make([]models.Rating, len(values))
		for i, v := range values {
			out[i] = models.Rating{Star: v, PostedBy: postedBy}
		}
		return out
	}

	assert.Equal(t, 0, AggregateRating(nil), "no ratings is 0, never NaN")
	assert.Equal(t, 3, AggregateRating(stars(3)))
	assert.Equal(t, 4, AggregateRating(stars(3, 4)), "3.5 rounds half up to 4")
	assert.Equal(t, 3, AggregateRating(stars(3, 4, 2)))
	assert.Equal(t, 5, AggregateRating(stars(5, 5, 5)))
	assert.Equal(t, 1, AggregateRating(stars(1, 1, 2)))
}

func TestRateOverwritesPerUser(t *testing.T) {
	state := newCheckoutState()
	productID := seedProduct(state, 10, 99.0)
	products := newRatingProducts(state)
	svc := &ProductService{products: products, users: newWishlistUsers()}
	userID := primitive.NewObjectID()

	_, err := svc.Rate(context.Background(), productID, userID, 2, "meh")
	require.NoError(t, err)
	require.Len(t, products.ratings[productID], 1)
	assert.Equal(t, 2, products.totals[productID])

	// Re-rating replaces the previous entry instead of stacking.
	_, err = svc.Rate(context.Background(), productID, userID, 5, "grew on me")
	require.NoError(t, err)
	require.Len(t, products.ratings[productID], 1)
	assert.Equal(t, 5, products.ratings[productID][0].Star)
	assert.Equal(t, 5, products.totals[productID])
}

func TestRateRejectsOutOfRangeStars(t *testing.T) {
	state := newCheckoutState()
	productID := seedProduct(state, 10, 99.0)
	svc := &ProductService{products: newRatingProducts(state)}

	for _, star := range []int{0, -1, 6} {
		_, err := svc.Rate(context.Background(), productID, primitive.NewObjectID(), star, "")
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

func TestToggleWishlistDoubleToggleRestoresState(t *testing.T) {
	state := newCheckoutState()
	productID := seedProduct(state, 10, 99.0)
	users := newWishlistUsers()
	svc := &ProductService{products: &fakeProducts{state: state}, users: users}
	userID := primitive.NewObjectID()

	added, err := svc.ToggleWishlist(context.Background(), userID, productID)
	require.NoError(t, err)
	assert.True(t, added)

	removed, err := svc.ToggleWishlist(context.Background(), userID, productID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Empty(t, users.wishlists[userID])
}

func TestToggleWishlistUnknownProduct(t *testing.T) {
	svc := &ProductService{products: &fakeProducts{state: newCheckoutState()}, users: newWishlistUsers()}

	_, err := svc.ToggleWishlist(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "cotton-kurta", Slugify("Cotton Kurta"))
	assert.Equal(t, "silk-sari-2026", Slugify("  Silk Sari!! 2026 "))
	assert.Equal(t, "a-b-c", Slugify("a/b/c"))
	assert.Equal(t, "", Slugify("!!!"))
}
