package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrasetia/go-sheet-storefront/internal/catalog"
)

// fakeCatalog implements catalog.Gateway for testing.
type fakeCatalog struct {
	snap     *catalog.Snapshot
	fetchErr error
	decErr   map[string]error
	decCalls []string

	// when set, the first DecrementStock parks until released
	entered chan struct{}
	release chan struct{}
	parked  bool
}

func (f *fakeCatalog) Fetch(ctx context.Context) (*catalog.Snapshot, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.snap == nil {
		f.snap = &catalog.Snapshot{}
	}
	return f.snap, nil
}

func (f *fakeCatalog) DecrementStock(ctx context.Context, code string, qty int) error {
	if f.entered != nil && !f.parked {
		f.parked = true
		f.entered <- struct{}{}
		<-f.release
	}
	f.decCalls = append(f.decCalls, code)
	if err := f.decErr[code]; err != nil {
		return err
	}
	return nil
}

// fakeCheckout implements CheckoutGateway for testing.
type fakeCheckout struct {
	sessionRef string
	receiptID  string
	err        error
	gotItems   []LineItem
	gotDisc    *Discount
	calls      int
}

func (f *fakeCheckout) CreateSession(ctx context.Context, items []LineItem, d *Discount) (string, string, error) {
	f.calls++
	f.gotItems = items
	f.gotDisc = d
	if f.err != nil {
		return "", "", f.err
	}
	return f.sessionRef, f.receiptID, nil
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager()
	require.NoError(t, m.SelectProduct(LineItem{Code: "A1", Name: "Widget", PriceCents: 1000, Qty: 3}))
	require.NoError(t, m.SelectProduct(LineItem{Code: "B2", Name: "Gadget", Variant: "Red", PriceCents: 550, Qty: 1}))
	return m
}

func TestSubmit_Success(t *testing.T) {
	m := newTestManager(t)
	m.SetDiscount(&Discount{Type: DiscountPercent, Amount: 10})
	cat := &fakeCatalog{snap: &catalog.Snapshot{Rows: []catalog.Row{{Code: "A1", Name: "Widget", Stock: 7}}}}
	chk := &fakeCheckout{sessionRef: "cs_123", receiptID: "r-42"}

	res, err := m.Submit(context.Background(), cat, chk)
	require.NoError(t, err)

	assert.Equal(t, "r-42", res.ReceiptID)
	assert.Equal(t, "cs_123", res.SessionRef)
	assert.Equal(t, []string{"A1", "B2"}, cat.decCalls)
	assert.Equal(t, 3550, res.Totals.SubtotalCents)
	assert.Equal(t, 355, res.Totals.DiscountCents)
	assert.Equal(t, 3195, res.Totals.TotalCents)

	// checkout saw the discount and the items
	require.NotNil(t, chk.gotDisc)
	assert.Len(t, chk.gotItems, 2)

	// summary stored and the snapshot refreshed
	assert.Equal(t, res.Summary, m.Summary())
	assert.False(t, m.Submitting())
	assert.False(t, m.StockStatus().HasIssues)

	// cart is not cleared by a successful submit; clear is explicit
	assert.Len(t, m.Items(), 2)
}

func TestSubmit_EmptyCart(t *testing.T) {
	m := NewManager()
	_, err := m.Submit(context.Background(), &fakeCatalog{}, &fakeCheckout{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmit_DecrementFailureFailsWholeSubmission(t *testing.T) {
	m := newTestManager(t)
	boom := errors.New("row locked")
	cat := &fakeCatalog{decErr: map[string]error{"A1": boom}}
	chk := &fakeCheckout{sessionRef: "cs_1", receiptID: "r-1"}

	_, err := m.Submit(context.Background(), cat, chk)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// every decrement was still attempted, checkout never reached
	assert.Equal(t, []string{"A1", "B2"}, cat.decCalls)
	assert.Equal(t, 0, chk.calls)

	// cart, discount and state survive for a retry
	assert.Len(t, m.Items(), 2)
	assert.False(t, m.Submitting())
	assert.Empty(t, m.Summary())
}

func TestSubmit_CheckoutFailurePreservesCart(t *testing.T) {
	m := newTestManager(t)
	m.SetDiscount(&Discount{Type: DiscountFixed, Amount: 5})
	cat := &fakeCatalog{}
	chk := &fakeCheckout{err: errors.New("gateway down")}

	_, err := m.Submit(context.Background(), cat, chk)
	require.Error(t, err)
	assert.Len(t, m.Items(), 2)
	require.NotNil(t, m.Discount())
	assert.False(t, m.Submitting())
}

func TestSubmit_RefreshFailureFailsSubmission(t *testing.T) {
	m := newTestManager(t)
	cat := &fakeCatalog{fetchErr: errors.New("sheet unavailable")}
	chk := &fakeCheckout{sessionRef: "cs_1", receiptID: "r-1"}

	_, err := m.Submit(context.Background(), cat, chk)
	require.Error(t, err)
	assert.Equal(t, 0, chk.calls)
	assert.Len(t, m.Items(), 2)
}

func TestSubmit_SecondCallWhileSubmittingIsRejected(t *testing.T) {
	m := newTestManager(t)
	cat := &fakeCatalog{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	chk := &fakeCheckout{sessionRef: "cs_1", receiptID: "r-1"}

	type result struct {
		res *OrderResult
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := m.Submit(context.Background(), cat, chk)
		done <- result{res, err}
	}()

	// wait until the first submission is inside the gateway
	select {
	case <-cat.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never reached the gateway")
	}
	assert.True(t, m.Submitting())

	_, err := m.Submit(context.Background(), cat, chk)
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	// let the first submission finish undisturbed
	close(cat.release)
	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, "r-1", first.res.ReceiptID)
	assert.Equal(t, 1, chk.calls)
}

func TestClear_AfterFailedSubmission(t *testing.T) {
	m := newTestManager(t)
	cat := &fakeCatalog{decErr: map[string]error{"B2": errors.New("nope")}}

	_, err := m.Submit(context.Background(), cat, &fakeCheckout{})
	require.Error(t, err)
	require.Len(t, m.Items(), 2) // failure left the cart intact

	m.Clear()
	assert.Empty(t, m.Items())
	assert.Nil(t, m.Discount())
	assert.Empty(t, m.Summary())
}

func TestSetDiscount_NilClears(t *testing.T) {
	m := NewManager()
	m.SetDiscount(&Discount{Type: DiscountFixed, Amount: 3})
	require.NotNil(t, m.Discount())
	m.SetDiscount(nil)
	assert.Nil(t, m.Discount())
}

func TestTotals_RecomputedAfterMutation(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.SelectProduct(LineItem{Code: "A1", Name: "Widget", PriceCents: 1000, Qty: 1}))
	assert.Equal(t, 1000, m.Totals().TotalCents)

	require.NoError(t, m.SelectProduct(LineItem{Code: "A1", Name: "Widget", PriceCents: 1000, Qty: 1}))
	assert.Equal(t, 2000, m.Totals().TotalCents)

	m.DeleteProduct(LineItem{Code: "A1", Name: "Widget"}.Key())
	assert.Equal(t, 0, m.Totals().TotalCents)
}
