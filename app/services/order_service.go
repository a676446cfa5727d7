package services

import (
	"context"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rishivikram/vastra/app/models"
	"github.com/rishivikram/vastra/app/repositories"
	"github.com/rishivikram/vastra/pkg/apperr"
	"github.com/rishivikram/vastra/pkg/event"
)

// OrderService covers order reads and the admin status workflow;
// creation belongs to CheckoutService.
type OrderService struct {
	orders repositories.OrderRepository
}

// NewOrderService wires the production order service.
func NewOrderService() *OrderService {
	return &OrderService{orders: repositories.NewOrderRepository()}
}

func (s *OrderService) ForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}

func (s *OrderService) ByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *OrderService) All(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	return s.orders.All(ctx, page, limit)
}

// UpdateStatus moves an order to the requested status, enforcing the
// legal transition graph, and fires order.status_changed on success.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Order, error) {
	if !models.KnownStatus(status) {
		return models.Order{}, apperr.Validation("unknown order status")
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if !models.ValidTransition(order.Status, status) {
		return models.Order{}, apperr.Conflict("order cannot move from " + order.Status + " to " + status)
	}

	// Filter on the witnessed status so concurrent updates cannot skip a
	// step in the transition graph.
	updated, err := s.orders.UpdateStatus(ctx, id, order.Status, status)
	if err != nil {
		return models.Order{}, err
	}

	event.FireAsync("order.status_changed", event.OrderEvent{
		OrderID: updated.ID.Hex(),
		UserID:  updated.UserID.Hex(),
		Status:  updated.Status,
		Total:   updated.TotalPrice,
	})
	return updated, nil
}

// StatusPayload renders an order event as the websocket feed message.
func StatusPayload(ev event.OrderEvent) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"orderId": ev.OrderID,
		"status":  ev.Status,
		"total":   ev.Total,
	})
	return data
}
