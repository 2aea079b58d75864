package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopcore/eshop/internal/domain"
	"github.com/shopcore/eshop/internal/httpx"
	"github.com/shopcore/eshop/internal/messaging"
)

// Reader is the read-only side of the order repository consumed by the
// handler.
type Reader interface {
	List(ctx context.Context) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	TotalSales(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type Handler struct {
	svc      *Service
	reader   Reader
	producer *messaging.Producer
	respond  *httpx.Responder
	logger   *slog.Logger
}

func NewHandler(svc *Service, reader Reader, producer *messaging.Producer, respond *httpx.Responder, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, reader: reader, producer: producer, respond: respond, logger: logger}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.reader.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, orders)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	order, err := h.reader.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, order)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to create order", "error", err)
		h.respond.Error(w, err)
		return
	}

	if h.producer != nil {
		event := domain.OrderCreatedEvent{
			OrderID:   order.ID,
			UserID:    order.UserID,
			Items:     order.Items,
			Total:     order.Total,
			Timestamp: order.CreatedAt,
		}
		if err := h.producer.Publish(r.Context(), order.ID, event); err != nil {
			h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order created", "order_id", order.ID, "user_id", order.UserID, "total", order.Total)
	h.respond.Data(w, http.StatusCreated, order)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !domain.ValidOrderStatus(req.Status) {
		h.respond.Fail(w, http.StatusBadRequest, "invalid order status")
		return
	}

	order, err := h.reader.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		h.respond.Error(w, err)
		return
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	h.respond.Data(w, http.StatusOK, order)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteOrder(r.Context(), r.PathValue("id")); err != nil {
		h.respond.Error(w, err)
		return
	}

	h.logger.Info("order deleted", "order_id", r.PathValue("id"))
	h.respond.Message(w, http.StatusOK, "Order deleted")
}

func (h *Handler) HandleTotalSales(w http.ResponseWriter, r *http.Request) {
	total, err := h.reader.TotalSales(r.Context())
	if err != nil {
		h.logger.Error("failed to aggregate total sales", "error", err)
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, map[string]int64{"total_sales": total})
}

func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.reader.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count orders", "error", err)
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, map[string]int64{"order_count": count})
}

func (h *Handler) HandleUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.reader.ListByUser(r.Context(), r.PathValue("userid"))
	if err != nil {
		h.logger.Error("failed to list user orders", "error", err)
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, orders)
}
