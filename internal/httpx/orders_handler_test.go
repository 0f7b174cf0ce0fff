package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrasetia/go-sheet-storefront/internal/orders"
)

type fakeStatusStore struct {
	statuses map[string]orders.Status
	updErr   error
	updated  map[string]orders.Status
}

func newFakeStatusStore() *fakeStatusStore {
	return &fakeStatusStore{statuses: map[string]orders.Status{}, updated: map[string]orders.Status{}}
}

func (f *fakeStatusStore) GetStatus(ctx context.Context, receiptID string) (orders.Status, error) {
	s, ok := f.statuses[receiptID]
	if !ok {
		return "", orders.ErrNotFound
	}
	return s, nil
}

func (f *fakeStatusStore) UpdateStatus(ctx context.Context, receiptID string, to orders.Status) error {
	if f.updErr != nil {
		return f.updErr
	}
	if _, ok := f.statuses[receiptID]; !ok {
		return orders.ErrNotFound
	}
	f.updated[receiptID] = to
	return nil
}

type fakeSalesReader struct {
	daily, monthly map[string]int
	err            error
}

func (f *fakeSalesReader) Summary(ctx context.Context) (map[string]int, map[string]int, error) {
	return f.daily, f.monthly, f.err
}

func newOrdersFixture() (*OrdersHandler, *fakeStatusStore, *fakeSalesReader, *fakeStrings, http.Handler) {
	repo := newFakeStatusStore()
	sales := &fakeSalesReader{daily: map[string]int{}, monthly: map[string]int{}}
	cache := newFakeStrings()
	h := &OrdersHandler{Repo: repo, Sales: sales, Cache: cache}
	r := NewRouter()
	h.Register(r)
	return h, repo, sales, cache, r
}

func doReq(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetStatus_CacheHit(t *testing.T) {
	_, repo, _, cache, r := newOrdersFixture()
	cache.m["order_status:r-1"] = `{"status":"PAID"}`
	repo.statuses["r-1"] = orders.StatusSubmitted // stale, must not be read

	w := doReq(t, r, http.MethodGet, "/orders/r-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"PAID"}`, w.Body.String())
}

func TestGetStatus_DBFallbackPrimesCache(t *testing.T) {
	_, repo, _, cache, r := newOrdersFixture()
	repo.statuses["r-2"] = orders.StatusSubmitted

	w := doReq(t, r, http.MethodGet, "/orders/r-2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"SUBMITTED"}`, w.Body.String())
	assert.JSONEq(t, `{"status":"SUBMITTED"}`, cache.m["order_status:r-2"])
}

func TestGetStatus_NotFound(t *testing.T) {
	_, _, _, _, r := newOrdersFixture()
	w := doReq(t, r, http.MethodGet, "/orders/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateStatus(t *testing.T) {
	_, repo, _, cache, r := newOrdersFixture()
	repo.statuses["r-3"] = orders.StatusSubmitted

	w := doReq(t, r, http.MethodPost, "/orders/r-3/status", `{"status":"PAID"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, orders.StatusPaid, repo.updated["r-3"])
	assert.JSONEq(t, `{"status":"PAID"}`, cache.m["order_status:r-3"])
}

func TestUpdateStatus_PublishesEvent(t *testing.T) {
	repo := newFakeStatusStore()
	repo.statuses["r-9"] = orders.StatusSubmitted
	pub := &fakePublisher{}
	h := &OrdersHandler{Repo: repo, Sales: &fakeSalesReader{}, Cache: newFakeStrings(), Status: pub, Service: "test-api"}
	r := NewRouter()
	h.Register(r)

	w := doReq(t, r, http.MethodPost, "/orders/r-9/status", `{"status":"PAID"}`)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, pub.values, 1)
	var env orders.Envelope
	require.NoError(t, json.Unmarshal(pub.values[0], &env))
	assert.Equal(t, orders.EventOrderPaid, env.EventType)
	assert.Equal(t, "r-9", env.CorrelationID)
}

func TestUpdateStatus_BadTransition(t *testing.T) {
	_, repo, _, _, r := newOrdersFixture()
	repo.statuses["r-4"] = orders.StatusCompleted
	repo.updErr = orders.ErrBadTransition

	w := doReq(t, r, http.MethodPost, "/orders/r-4/status", `{"status":"PAID"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	_, _, _, _, r := newOrdersFixture()
	w := doReq(t, r, http.MethodPost, "/orders/nope/status", `{"status":"PAID"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateStatus_InvalidBody(t *testing.T) {
	_, _, _, _, r := newOrdersFixture()
	assert.Equal(t, http.StatusBadRequest, doReq(t, r, http.MethodPost, "/orders/r/status", `garbage`).Code)
	assert.Equal(t, http.StatusBadRequest, doReq(t, r, http.MethodPost, "/orders/r/status", `{}`).Code)
}

func TestSalesSummary(t *testing.T) {
	_, _, sales, _, r := newOrdersFixture()
	sales.daily = map[string]int{"2025-08-30": 2700}
	sales.monthly = map[string]int{"2025-08": 9900}

	w := doReq(t, r, http.MethodGet, "/analytics/summary", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Daily   map[string]int `json:"daily"`
		Monthly map[string]int `json:"monthly"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2700, body.Daily["2025-08-30"])
	assert.Equal(t, 9900, body.Monthly["2025-08"])
}

func TestSalesSummary_Error(t *testing.T) {
	_, _, sales, _, r := newOrdersFixture()
	sales.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, doReq(t, r, http.MethodGet, "/analytics/summary", "").Code)
}
