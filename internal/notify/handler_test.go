package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopcore/eshop/internal/domain"
)

func TestHandler_Handle(t *testing.T) {
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	t.Run("processes a valid event", func(t *testing.T) {
		event := domain.OrderCreatedEvent{
			OrderID:   "order-1",
			UserID:    "user-1",
			Items:     []domain.OrderItem{{ID: "item-1", ProductID: "prod-1", Quantity: 2}},
			Total:     2000,
			Timestamp: time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			t.Fatalf("failed to marshal event: %v", err)
		}

		if err := handler.Handle(context.Background(), payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		if err := handler.Handle(context.Background(), []byte("{not json")); err == nil {
			t.Fatal("expected error for malformed payload")
		}
	})
}
