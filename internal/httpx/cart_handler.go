package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/andrasetia/go-sheet-storefront/internal/cart"
	"github.com/andrasetia/go-sheet-storefront/internal/catalog"
	kafkax "github.com/andrasetia/go-sheet-storefront/internal/kafka"
	"github.com/andrasetia/go-sheet-storefront/internal/orders"
	"github.com/andrasetia/go-sheet-storefront/internal/redisx"
)

// OrderSaver is the slice of the orders repo the cart handler needs.
type OrderSaver interface {
	SaveOrder(ctx context.Context, o orders.Order, items []orders.ItemLine) error
}

// Publisher is satisfied by the kafka producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type CartHandler struct {
	Store     *cart.Store
	Catalog   *catalog.Cache
	Checkout  cart.CheckoutGateway
	Orders    OrderSaver
	Cache     redisx.Strings
	Submitted Publisher // storefront.order.submitted
	Failed    Publisher // storefront.order.failed
	Service   string
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/catalog", h.getCatalog)
	r.Route("/carts/{sid}", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Post("/items", h.selectProduct)
		r.Delete("/items/{key}", h.deleteProduct)
		r.Put("/discount", h.setDiscount)
		r.Delete("/discount", h.clearDiscount)
		r.Post("/submit", h.submit)
		r.Post("/clear", h.clearCart)
	})
}

func (h *CartHandler) getCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	fetch := h.Catalog.Cached
	if r.URL.Query().Get("refresh") == "1" {
		fetch = h.Catalog.Fetch
	}
	snap, err := fetch(ctx)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type cartView struct {
	Items      []cart.LineItem  `json:"items"`
	Discount   *cart.Discount   `json:"discount,omitempty"`
	Totals     cart.Totals      `json:"totals"`
	Stock      cart.StockStatus `json:"stock"`
	Summary    string           `json:"summary,omitempty"`
	Submitting bool             `json:"submitting"`
}

func (h *CartHandler) view(ctx context.Context, m *cart.Manager) cartView {
	// revalidate against the freshest snapshot we can get cheaply
	if snap, err := h.Catalog.Cached(ctx); err == nil {
		m.SetSnapshot(snap)
	}
	return cartView{
		Items:      m.Items(),
		Discount:   m.Discount(),
		Totals:     m.Totals(),
		Stock:      m.StockStatus(),
		Summary:    m.Summary(),
		Submitting: m.Submitting(),
	}
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	m := h.Store.Get(chi.URLParam(r, "sid"))
	writeJSON(w, http.StatusOK, h.view(ctx, m))
}

func (h *CartHandler) selectProduct(w http.ResponseWriter, r *http.Request) {
	var item cart.LineItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if item.Code == "" || item.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}
	if item.Qty == 0 {
		item.Qty = 1 // one click selects one unit
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// price comes from the catalog when the row is known, not from the client
	if snap, err := h.Catalog.Cached(ctx); err == nil {
		if row, ok := snap.Find(item.Code, item.Name, item.Variant); ok {
			item.PriceCents = row.PriceCents
		}
	}

	m := h.Store.Get(chi.URLParam(r, "sid"))
	if err := m.SelectProduct(item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.view(ctx, m))
}

func (h *CartHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad key"})
		return
	}
	m := h.Store.Get(chi.URLParam(r, "sid"))
	m.DeleteProduct(key)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) setDiscount(w http.ResponseWriter, r *http.Request) {
	var d cart.Discount
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if d.Type != cart.DiscountPercent && d.Type != cart.DiscountFixed {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "type must be % or $"})
		return
	}
	if d.Amount < 0 || (d.Type == cart.DiscountPercent && d.Amount > 100) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount out of range"})
		return
	}
	m := h.Store.Get(chi.URLParam(r, "sid"))
	m.SetDiscount(&d)
	writeJSON(w, http.StatusOK, map[string]any{"totals": m.Totals()})
}

func (h *CartHandler) clearDiscount(w http.ResponseWriter, r *http.Request) {
	h.Store.Get(chi.URLParam(r, "sid")).SetDiscount(nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.Store.Get(chi.URLParam(r, "sid")).Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 25*time.Second)
	defer cancel()

	sid := chi.URLParam(r, "sid")
	m := h.Store.Get(sid)

	res, err := m.Submit(ctx, h.Catalog, h.Checkout)
	switch {
	case errors.Is(err, cart.ErrSubmitInFlight):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, cart.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case err != nil:
		slog.Error("submit failed", "sid", sid, "err", err)
		h.publishFailed(sid, err, r.Header.Get("X-Request-Id"))
		// cart stays intact for retry
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to process order"})
		return
	}

	// the order already happened; persistence and events are best-effort here
	o := orders.Order{
		ReceiptID:     res.ReceiptID,
		SessionRef:    res.SessionRef,
		Status:        orders.StatusSubmitted,
		SubtotalCents: res.Totals.SubtotalCents,
		DiscountCents: res.Totals.DiscountCents,
		TotalCents:    res.Totals.TotalCents,
	}
	if err := h.Orders.SaveOrder(ctx, o, toItemLines(res.Items)); err != nil {
		slog.Error("save order", "receipt_id", res.ReceiptID, "err", err)
	}
	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, res.ReceiptID)
	_ = h.Cache.SetString(ctx, statusKey, `{"status":"SUBMITTED"}`, redisx.TTLStatusCache)

	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderSubmitted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: res.ReceiptID,
		Payload: kafkax.MustMarshal(orders.OrderSubmittedPayload{
			ReceiptID:     res.ReceiptID,
			SessionRef:    res.SessionRef,
			Items:         toItemLines(res.Items),
			SubtotalCents: res.Totals.SubtotalCents,
			DiscountCents: res.Totals.DiscountCents,
			TotalCents:    res.Totals.TotalCents,
		}),
	}
	h.Submitted.Publish(orders.PartitionKey(res.ReceiptID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderSubmitted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeJSON(w, http.StatusOK, res)
}

func (h *CartHandler) publishFailed(sid string, cause error, trace string) {
	ev := orders.Envelope{
		EventID:      uuid.NewString(),
		EventType:    orders.EventOrderFailed,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     h.Service,
		TraceID:      trace,
		Payload:      kafkax.MustMarshal(orders.OrderFailedPayload{SessionID: sid, Reason: cause.Error()}),
	}
	h.Failed.Publish([]byte(sid), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderFailed)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func toItemLines(items []cart.LineItem) []orders.ItemLine {
	out := make([]orders.ItemLine, 0, len(items))
	for _, it := range items {
		out = append(out, orders.ItemLine{
			Code:       it.Code,
			Name:       it.Name,
			Variant:    it.Variant,
			PriceCents: it.PriceCents,
			Qty:        it.Qty,
		})
	}
	return out
}
