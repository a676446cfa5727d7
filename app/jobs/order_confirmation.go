// Package jobs defines background jobs dispatched through pkg/queue.
package jobs

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rishivikram/vastra/app/repositories"
	"github.com/rishivikram/vastra/pkg/logger"
	"github.com/rishivikram/vastra/pkg/mail"
	"github.com/rishivikram/vastra/pkg/queue"
)

// OrderConfirmationJob emails the customer after a successful checkout.
// Without SMTP credentials it logs the confirmation instead.
type OrderConfirmationJob struct {
	OrderID string  `json:"order_id"`
	UserID  string  `json:"user_id"`
	Total   float64 `json:"total"`
}

func (j *OrderConfirmationJob) Handle() error {
	if !mail.Configured() {
		logger.Info("order confirmation (mail disabled)",
			"order_id", j.OrderID, "user_id", j.UserID, "total", j.Total)
		return nil
	}

	userID, err := primitive.ObjectIDFromHex(j.UserID)
	if err != nil {
		return fmt.Errorf("order confirmation: bad user id %q: %w", j.UserID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := repositories.NewUserRepository().FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("order confirmation: load user: %w", err)
	}

	return mail.To(user.Email).
		Subject("Your Vastra order is confirmed").
		Body(fmt.Sprintf(
			"<p>Hi %s,</p><p>Order <b>%s</b> for ₹%.2f has been placed. We will let you know when it ships.</p>",
			user.FirstName, j.OrderID, j.Total,
		)).
		Send()
}

// RegisterAll registers every job type with the queue. Call once at boot.
func RegisterAll() {
	queue.Register("*jobs.OrderConfirmationJob", func() queue.Job { return &OrderConfirmationJob{} })
}
