package controllers

import (
	"net/http"

	"github.com/rishivikram/vastra/app/models"
	"github.com/rishivikram/vastra/app/services"
	"github.com/rishivikram/vastra/pkg/auth"
	"github.com/rishivikram/vastra/pkg/bind"
	"github.com/rishivikram/vastra/pkg/idempotency"
	"github.com/rishivikram/vastra/pkg/response"
	"github.com/rishivikram/vastra/pkg/ws"
)

type OrderController struct {
	checkout *services.CheckoutService
	orders   *services.OrderService
	feed     *ws.Hub
}

func NewOrderController(feed *ws.Hub) *OrderController {
	return &OrderController{
		checkout: services.NewCheckoutService(),
		orders:   services.NewOrderService(),
		feed:     feed,
	}
}

// CheckoutInput is the POST /api/user/order payload.
type CheckoutInput struct {
	Shipping models.Shipping `json:"shipping"`
}

// Create handles POST /api/user/order — the checkout endpoint. A repeat
// request with the same Idempotency-Key returns the original order with
// 200 instead of creating a second one.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	var in CheckoutInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	order, replayed, err := c.checkout.PlaceOrder(r.Context(), userID, in.Shipping, idempotency.KeyFromRequest(r))
	if err != nil {
		response.FromError(w, err)
		return
	}
	if replayed {
		response.Success(w, order)
		return
	}
	response.Created(w, order)
}

// Mine handles GET /api/user/order.
func (c *OrderController) Mine(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	orders, err := c.orders.ForUser(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, orders)
}

// ByUser handles GET /api/user/order/{id} (admin): all orders placed by
// the given user.
func (c *OrderController) ByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	orders, err := c.orders.ForUser(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, orders)
}

// All handles GET /api/user/all-order (admin).
func (c *OrderController) All(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	orders, total, err := c.orders.All(r.Context(), page, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Paginated(w, orders, paginate(page, limit, total))
}

// UpdateStatus handles PUT /api/user/order/{id} (admin).
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	var in struct {
		Status string `json:"status" validate:"required"`
	}
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.orders.UpdateStatus(r.Context(), orderID, in.Status)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, order)
}

// Feed handles GET /api/order/ws: a websocket stream of the caller's
// order status changes.
func (c *OrderController) Feed(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}
	ws.Upgrade(w, r, c.feed, id.UserID)
}
