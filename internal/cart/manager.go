package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/andrasetia/go-sheet-storefront/internal/catalog"
)

var (
	ErrSubmitInFlight = errors.New("submission already in progress")
	ErrEmptyCart      = errors.New("cart is empty")
)

// CheckoutGateway finalizes payment for an order and returns a payable
// session reference plus a receipt identifier.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, items []LineItem, d *Discount) (sessionRef, receiptID string, err error)
}

type state int

const (
	stateIdle state = iota
	stateSubmitting
)

// Manager owns one storefront session: the cart, the active discount, the
// last fetched snapshot and the last order summary. Only one submission may
// be in flight at a time; a second Submit while Submitting is rejected, not
// queued.
type Manager struct {
	mu       sync.Mutex
	cart     *Cart
	discount *Discount
	snapshot *catalog.Snapshot
	summary  string
	st       state
}

func NewManager() *Manager {
	return &Manager{cart: New()}
}

func (m *Manager) SelectProduct(item LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Select(item)
}

func (m *Manager) DeleteProduct(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart.Delete(key)
}

// SetDiscount replaces the active discount wholesale; nil clears it.
func (m *Manager) SetDiscount(d *Discount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d == nil {
		m.discount = nil
		return
	}
	cp := *d
	m.discount = &cp
}

func (m *Manager) Discount() *Discount {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.discount == nil {
		return nil
	}
	cp := *m.discount
	return &cp
}

// SetSnapshot installs a freshly fetched catalog; the cart only reads it.
func (m *Manager) SetSnapshot(snap *catalog.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snap
}

func (m *Manager) Items() []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Items()
}

// Totals is recomputed on every call, never cached across mutations.
func (m *Manager) Totals() Totals {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ComputeTotals(m.cart.Items(), m.discount)
}

// StockStatus revalidates against the held snapshot on every call.
func (m *Manager) StockStatus() StockStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ValidateStock(m.cart.Items(), m.snapshot)
}

func (m *Manager) Summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary
}

func (m *Manager) Submitting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st == stateSubmitting
}

// Clear empties the cart, drops the discount and the last summary. It always
// succeeds.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart.Clear()
	m.discount = nil
	m.summary = ""
}

// OrderResult is the outcome of a successful submission.
type OrderResult struct {
	ReceiptID  string     `json:"receipt_id"`
	SessionRef string     `json:"session_ref"`
	Items      []LineItem `json:"items"`
	Totals     Totals     `json:"totals"`
	Summary    string     `json:"summary"`
}

// Submit runs one submission: decrement stock per item, refresh the catalog,
// create a checkout session, compose the summary. On any failure the cart and
// discount are left untouched so the order can be resubmitted.
func (m *Manager) Submit(ctx context.Context, cat catalog.Gateway, chk CheckoutGateway) (*OrderResult, error) {
	m.mu.Lock()
	if m.st == stateSubmitting {
		m.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if m.cart.Len() == 0 {
		m.mu.Unlock()
		return nil, ErrEmptyCart
	}
	m.st = stateSubmitting
	items := m.cart.Items()
	var disc *Discount
	if m.discount != nil {
		cp := *m.discount
		disc = &cp
	}
	m.mu.Unlock()

	res, err := m.run(ctx, cat, chk, items, disc)

	m.mu.Lock()
	m.st = stateIdle
	if err == nil {
		m.summary = res.Summary
	}
	m.mu.Unlock()
	return res, err
}

func (m *Manager) run(ctx context.Context, cat catalog.Gateway, chk CheckoutGateway, items []LineItem, disc *Discount) (*OrderResult, error) {
	// Every decrement is attempted even after one fails. Completed decrements
	// are not reverted; the refreshed snapshot below shows the real stock
	// before the operator retries.
	var decErr error
	for _, it := range items {
		if err := cat.DecrementStock(ctx, it.Code, it.Qty); err != nil {
			decErr = errors.Join(decErr, err)
		}
	}

	snap, fetchErr := cat.Fetch(ctx)
	if fetchErr == nil {
		m.SetSnapshot(snap)
	}
	if decErr != nil {
		return nil, fmt.Errorf("decrement stock: %w", decErr)
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("refresh catalog: %w", fetchErr)
	}

	sessionRef, receiptID, err := chk.CreateSession(ctx, items, disc)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	res := &OrderResult{
		ReceiptID:  receiptID,
		SessionRef: sessionRef,
		Items:      items,
		Totals:     ComputeTotals(items, disc),
	}
	res.Summary = ComposeSummary(res)
	return res, nil
}
