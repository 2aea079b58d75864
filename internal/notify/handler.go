package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopcore/eshop/internal/domain"
)

// Handler turns order.created events into confirmation notifications.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	subject := "Order Confirmation: " + event.OrderID
	body := fmt.Sprintf("Your order %s with %d items has been received.", event.OrderID, len(event.Items))

	h.logger.Info("order confirmation sent",
		"order_id", event.OrderID,
		"user_id", event.UserID,
		"subject", subject,
		"body", body,
		"total", event.Total,
	)

	return nil
}
