package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/andrasetia/go-sheet-storefront/internal/kafka"
	"github.com/andrasetia/go-sheet-storefront/internal/orders"
	"github.com/andrasetia/go-sheet-storefront/internal/redisx"
)

// StatusStore is the slice of the orders repo the status endpoints need.
type StatusStore interface {
	GetStatus(ctx context.Context, receiptID string) (orders.Status, error)
	UpdateStatus(ctx context.Context, receiptID string, to orders.Status) error
}

// SalesReader serves the analytics page.
type SalesReader interface {
	Summary(ctx context.Context) (daily, monthly map[string]int, err error)
}

type OrdersHandler struct {
	Repo    StatusStore
	Sales   SalesReader
	Cache   redisx.Strings
	Status  Publisher // storefront.order.status, optional
	Service string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/orders/{id}", h.getStatus)
	r.Post("/orders/{id}/status", h.updateStatus)
	r.Get("/analytics/summary", h.salesSummary)
}

func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	receiptID := chi.URLParam(r, "id")
	if receiptID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) cache
	key := fmt.Sprintf(redisx.KeyOrderStatus, receiptID)
	if s, err := h.Cache.GetString(ctx, key); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	// 2) fallback DB
	status, err := h.Repo.GetStatus(ctx, receiptID)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	body, _ := json.Marshal(map[string]any{"status": status})
	_ = h.Cache.SetString(ctx, key, string(body), redisx.TTLStatusCache)
	writeJSON(w, http.StatusOK, json.RawMessage(body))
}

type updateStatusReq struct {
	Status orders.Status `json:"status"`
}

// updateStatus is the callback surface for the checkout backend: paid,
// completed, failed.
func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	receiptID := chi.URLParam(r, "id")
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Repo.UpdateStatus(ctx, receiptID, req.Status)
	switch {
	case errors.Is(err, orders.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	case errors.Is(err, orders.ErrBadTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	key := fmt.Sprintf(redisx.KeyOrderStatus, receiptID)
	body, _ := json.Marshal(map[string]any{"status": req.Status})
	_ = h.Cache.SetString(ctx, key, string(body), redisx.TTLStatusCache)
	if h.Status != nil {
		h.publishStatus(receiptID, req.Status, r.Header.Get("X-Request-Id"))
	}
	writeJSON(w, http.StatusOK, json.RawMessage(body))
}

func (h *OrdersHandler) publishStatus(receiptID string, to orders.Status, trace string) {
	et := eventTypeFor(to)
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     et,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: receiptID,
		Payload:       kafkax.MustMarshal(orders.OrderStatusPayload{ReceiptID: receiptID, Status: to}),
	}
	h.Status.Publish(orders.PartitionKey(receiptID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(et)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func eventTypeFor(s orders.Status) string {
	switch s {
	case orders.StatusCompleted:
		return orders.EventOrderCompleted
	case orders.StatusFailed:
		return orders.EventOrderFailed
	default:
		return orders.EventOrderPaid
	}
}

func (h *OrdersHandler) salesSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	daily, monthly, err := h.Sales.Summary(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"daily": daily, "monthly": monthly})
}
