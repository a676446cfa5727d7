package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rishivikram/vastra/app/models"
	"github.com/rishivikram/vastra/app/repositories"
	"github.com/rishivikram/vastra/config"
	"github.com/rishivikram/vastra/pkg/apperr"
	"github.com/rishivikram/vastra/pkg/cache"
	vhttp "github.com/rishivikram/vastra/pkg/http"
	"github.com/rishivikram/vastra/pkg/logger"
)

// recommendationCount is how many products a recommendation response
// carries; short upstream lists are padded with the most-rated products.
const recommendationCount = 8

const recommendationTTL = 5 * time.Minute

// RecommenderService resolves personalised product recommendations from
// an external scoring service.
type RecommenderService struct {
	products repositories.ProductRepository
	baseURL  string
}

// NewRecommenderService wires the production recommender client.
func NewRecommenderService() *RecommenderService {
	return &RecommenderService{
		products: repositories.NewProductRepository(),
		baseURL:  config.RecommenderURL(),
	}
}

// ForUser returns up to recommendationCount products for the user, best
// score first. Upstream scores are cached briefly in Redis.
func (s *RecommenderService) ForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Product, error) {
	scores, err := s.scores(ctx, userID.Hex())
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(scores))
	for hex := range scores {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			logger.WithCtx(ctx).Warn("recommender: skipping invalid product id", "id", hex)
			continue
		}
		ids = append(ids, id)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(products, func(i, j int) bool {
		return scores[products[i].ID.Hex()] > scores[products[j].ID.Hex()]
	})
	if len(products) > recommendationCount {
		products = products[:recommendationCount]
	}

	return s.pad(ctx, products)
}

// scores fetches the score map from cache or the upstream service.
func (s *RecommenderService) scores(ctx context.Context, userHex string) (map[string]float64, error) {
	cacheKey := "vastra:recommend:" + userHex

	var scores map[string]float64
	if cache.Get(cacheKey, &scores) && scores != nil {
		return scores, nil
	}

	url := fmt.Sprintf("%s/recommenders/%s", s.baseURL, userHex)
	resp, err := vhttp.Get(url).
		Timeout(5 * time.Second).
		Retry(2, 200*time.Millisecond).
		WithContext(ctx).
		Send()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "recommendation service unreachable", err)
	}
	if !resp.OK() {
		return nil, apperr.Newf(apperr.KindUpstream, "recommendation service returned %d", resp.StatusCode)
	}
	if err := resp.JSON(&scores); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "decode recommendation response", err)
	}

	if err := cache.Set(cacheKey, scores, recommendationTTL); err != nil {
		logger.WithCtx(ctx).Warn("recommender: cache write failed", "error", err)
	}
	return scores, nil
}

// pad fills a short recommendation list with most-rated products the
// user was not already recommended.
func (s *RecommenderService) pad(ctx context.Context, products []models.Product) ([]models.Product, error) {
	if len(products) >= recommendationCount {
		return products, nil
	}

	seen := make(map[primitive.ObjectID]bool, len(products))
	for _, p := range products {
		seen[p.ID] = true
	}

	top, err := s.products.TopRated(ctx, recommendationCount+len(products))
	if err != nil {
		return nil, err
	}
	for _, p := range top {
		if len(products) >= recommendationCount {
			break
		}
		if !seen[p.ID] {
			products = append(products, p)
			seen[p.ID] = true
		}
	}
	return products, nil
}
