// Package services holds the business logic between controllers and
// repositories.
package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rishivikram/vastra/app/jobs"
	"github.com/rishivikram/vastra/app/models"
	"github.com/rishivikram/vastra/app/repositories"
	"github.com/rishivikram/vastra/config"
	"github.com/rishivikram/vastra/pkg/apperr"
	"github.com/rishivikram/vastra/pkg/cache"
	"github.com/rishivikram/vastra/pkg/database"
	"github.com/rishivikram/vastra/pkg/event"
	"github.com/rishivikram/vastra/pkg/idempotency"
	"github.com/rishivikram/vastra/pkg/logger"
	"github.com/rishivikram/vastra/pkg/metrics"
	"github.com/rishivikram/vastra/pkg/queue"
)

// Price modes.
const (
	PriceModeCaptured = "captured" // charge the price recorded when the item was added
	PriceModeLive     = "live"     // re-read the current product price at checkout
)

// TxRunner executes fn atomically. The production runner wraps a Mongo
// multi-document transaction; tests substitute one that just calls fn.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// IdemStore is the idempotency-claim surface the checkout needs,
// satisfied by *idempotency.Store.
type IdemStore interface {
	Acquire(ctx context.Context, userID, key string) (idempotency.Claim, error)
	Complete(ctx context.Context, userID, key, orderID string) error
	Release(ctx context.Context, userID, key string) error
}

func runMongoTx(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := database.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// CheckoutService turns a user's cart into an immutable order. The order
// insert, the stock decrements, and the cart clear commit or abort as one
// unit.
type CheckoutService struct {
	carts     repositories.CartRepository
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
	idem      IdemStore
	tx        TxRunner
	timeout   time.Duration
	priceMode string
}

// NewCheckoutService wires the production checkout service.
func NewCheckoutService() *CheckoutService {
	return &CheckoutService{
		carts:     repositories.NewCartRepository(),
		orders:    repositories.NewOrderRepository(),
		products:  repositories.NewProductRepository(),
		idem:      idempotency.NewStore(cache.Client(), 24*time.Hour),
		tx:        runMongoTx,
		timeout:   config.CheckoutTimeout(),
		priceMode: config.CheckoutPriceMode(),
	}
}

// PlaceOrder runs the checkout workflow for userID. idemKey may be empty,
// in which case no deduplication happens. The second return value is true
// when the response is a replay of an earlier request with the same key.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, shipping models.Shipping, idemKey string) (models.Order, bool, error) {
	start := time.Now()

	if idemKey != "" {
		claim, err := s.idem.Acquire(ctx, userID.Hex(), idemKey)
		if err != nil {
			return models.Order{}, false, apperr.Wrap(apperr.KindInternal, "idempotency claim", err)
		}
		if !claim.Acquired {
			if claim.InFlight {
				return models.Order{}, false, apperr.Conflict("checkout with this idempotency key is already in progress")
			}
			orderID, err := primitive.ObjectIDFromHex(claim.OrderID)
			if err != nil {
				return models.Order{}, false, apperr.Wrap(apperr.KindInternal, "stored idempotency result", err)
			}
			order, err := s.orders.FindByID(ctx, orderID)
			if err != nil {
				return models.Order{}, false, err
			}
			metrics.IdempotentReplays.Inc()
			return order, true, nil
		}
	}

	order, err := s.placeOrder(ctx, userID, shipping, idemKey)
	if err != nil {
		if idemKey != "" {
			// Free the key so the client can retry.
			if relErr := s.idem.Release(context.WithoutCancel(ctx), userID.Hex(), idemKey); relErr != nil {
				logger.WithCtx(ctx).Warn("checkout: release idempotency key", "error", relErr)
			}
			// The unique order index catches same-key retries that slip
			// past the claim (Redis down, claim lost). Resolve the
			// original order and replay it instead of failing.
			if errors.Is(err, repositories.ErrDuplicateOrder) {
				existing, findErr := s.orders.FindByIdempotencyKey(ctx, userID, idemKey)
				if findErr == nil {
					metrics.IdempotentReplays.Inc()
					return existing, true, nil
				}
				logger.WithCtx(ctx).Warn("checkout: resolve duplicate order", "error", findErr)
			}
		}
		return models.Order{}, false, err
	}

	if idemKey != "" {
		if err := s.idem.Complete(context.WithoutCancel(ctx), userID.Hex(), idemKey, order.ID.Hex()); err != nil {
			logger.WithCtx(ctx).Warn("checkout: record idempotency result", "error", err)
			// Put the key back rather than leaving a pending claim that
			// blocks retries for the whole TTL; a retry then resolves the
			// order through the unique index replay path.
			if relErr := s.idem.Release(context.WithoutCancel(ctx), userID.Hex(), idemKey); relErr != nil {
				logger.WithCtx(ctx).Warn("checkout: release after failed complete", "error", relErr)
			}
		}
	}

	metrics.OrdersPlaced.Inc()
	metrics.ObserveCheckout(start)

	event.FireAsync("order.created", event.OrderEvent{
		OrderID: order.ID.Hex(),
		UserID:  userID.Hex(),
		Status:  order.Status,
		Total:   order.TotalPrice,
	})
	if err := queue.Dispatch(&jobs.OrderConfirmationJob{
		OrderID: order.ID.Hex(),
		UserID:  userID.Hex(),
		Total:   order.TotalPrice,
	}); err != nil {
		logger.WithCtx(ctx).Warn("checkout: enqueue confirmation", "error", err)
	}

	return order, false, nil
}

func (s *CheckoutService) placeOrder(ctx context.Context, userID primitive.ObjectID, shipping models.Shipping, idemKey string) (models.Order, error) {
	items, err := s.carts.ItemsByUser(ctx, userID)
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues("internal").Inc()
		return models.Order{}, err
	}
	if len(items) == 0 {
		// A degraded-mode retry lands here after the first attempt
		// committed and cleared the cart. Surface it as a duplicate so
		// the caller replays the original order.
		if idemKey != "" {
			if _, findErr := s.orders.FindByIdempotencyKey(ctx, userID, idemKey); findErr == nil {
				return models.Order{}, apperr.Wrap(apperr.KindConflict, "duplicate checkout request", repositories.ErrDuplicateOrder)
			}
		}
		metrics.CheckoutFailures.WithLabelValues("empty_cart").Inc()
		return models.Order{}, apperr.Validation("cart is empty")
	}

	orderItems, total, err := s.buildItems(ctx, items)
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues("internal").Inc()
		return models.Order{}, err
	}

	order := models.Order{
		UserID:   userID,
		Items:    orderItems,
		Shipping: shipping,
		Payment: models.PaymentIntent{
			Method:    "COD",
			Amount:    total,
			Currency:  "INR",
			CreatedAt: time.Now().UTC(),
		},
		TotalPrice:     total,
		Status:         models.StatusCreated,
		IdempotencyKey: idemKey,
	}

	txCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.tx(txCtx, func(ctx context.Context) error {
		if err := s.orders.Create(ctx, &order); err != nil {
			return err
		}
		matched, err := s.products.DecrementStock(ctx, order.Items)
		if err != nil {
			return err
		}
		if matched < int64(len(order.Items)) {
			return apperr.Conflict("insufficient stock")
		}
		return s.carts.Clear(ctx, userID)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateOrder):
			// PlaceOrder resolves the original order and replays it.
			return models.Order{}, err
		case apperr.KindOf(err) == apperr.KindConflict:
			metrics.CheckoutFailures.WithLabelValues("insufficient_stock").Inc()
			return models.Order{}, err
		case errors.Is(err, context.DeadlineExceeded):
			metrics.CheckoutFailures.WithLabelValues("timeout").Inc()
			return models.Order{}, apperr.Wrap(apperr.KindTimeout, "checkout timed out, retry the request", err)
		default:
			metrics.CheckoutFailures.WithLabelValues("internal").Inc()
			return models.Order{}, apperr.Wrap(apperr.KindInternal, "checkout transaction", err)
		}
	}
	return order, nil
}

// buildItems snapshots cart lines into order items and sums the total.
func (s *CheckoutService) buildItems(ctx context.Context, items []models.CartItem) ([]models.OrderItem, float64, error) {
	var livePrices map[primitive.ObjectID]float64
	if s.priceMode == PriceModeLive {
		ids := make([]primitive.ObjectID, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ProductID)
		}
		products, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		livePrices = make(map[primitive.ObjectID]float64, len(products))
		for _, p := range products {
			livePrices[p.ID] = p.Price
		}
	}

	out := make([]models.OrderItem, 0, len(items))
	var total float64
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, 0, apperr.Validation("cart item quantity must be positive")
		}
		price := item.Price
		if s.priceMode == PriceModeLive {
			live, ok := livePrices[item.ProductID]
			if !ok {
				return nil, 0, apperr.NotFound("product no longer exists")
			}
			price = live
		}
		out = append(out, models.OrderItem{
			ProductID: item.ProductID,
			ColorID:   item.ColorID,
			Quantity:  item.Quantity,
			Price:     price,
		})
		total += price * float64(item.Quantity)
	}
	return out, total, nil
}
