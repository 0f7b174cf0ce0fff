package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkax "github.com/andrasetia/go-sheet-storefront/internal/kafka"
	"github.com/andrasetia/go-sheet-storefront/internal/orders"
	"github.com/andrasetia/go-sheet-storefront/internal/redisx"
)

type fakeSales struct {
	calls []int
	err   error
}

func (f *fakeSales) AddSale(ctx context.Context, occurredAt time.Time, totalCents int) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, totalCents)
	return nil
}

type fakeStrings struct{ m map[string]string }

func newFakeStrings() *fakeStrings { return &fakeStrings{m: map[string]string{}} }

func (f *fakeStrings) GetString(ctx context.Context, key string) (string, error) {
	return f.m[key], nil
}

func (f *fakeStrings) SetString(ctx context.Context, key, val string, ttl time.Duration) error {
	f.m[key] = val
	return nil
}

func submittedMessage(t *testing.T, eventID string, total int) kafkago.Message {
	t.Helper()
	env := orders.Envelope{
		EventID:      eventID,
		EventType:    orders.EventOrderSubmitted,
		EventVersion: 1,
		OccurredAt:   time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Payload: kafkax.MustMarshal(orders.OrderSubmittedPayload{
			ReceiptID:  "r-1",
			TotalCents: total,
		}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandleOrderSubmitted_RecordsSale(t *testing.T) {
	sales := &fakeSales{}
	dedup := newFakeStrings()
	svc := &Service{Sales: sales, Dedup: dedup, ServiceName: "test"}

	err := svc.HandleOrderSubmitted(context.Background(), submittedMessage(t, "ev-1", 2700))
	require.NoError(t, err)
	assert.Equal(t, []int{2700}, sales.calls)

	// dedup marked
	dkey := fmt.Sprintf(redisx.KeyDedup, "analytics", "ev-1")
	assert.Equal(t, "1", dedup.m[dkey])
}

func TestHandleOrderSubmitted_DedupSkipsRedelivery(t *testing.T) {
	sales := &fakeSales{}
	svc := &Service{Sales: sales, Dedup: newFakeStrings(), ServiceName: "test"}

	m := submittedMessage(t, "ev-1", 1000)
	require.NoError(t, svc.HandleOrderSubmitted(context.Background(), m))
	require.NoError(t, svc.HandleOrderSubmitted(context.Background(), m))
	assert.Len(t, sales.calls, 1)
}

func TestHandleOrderSubmitted_IgnoresOtherEventTypes(t *testing.T) {
	sales := &fakeSales{}
	svc := &Service{Sales: sales, Dedup: newFakeStrings(), ServiceName: "test"}

	env := orders.Envelope{
		EventID:   "ev-2",
		EventType: orders.EventOrderFailed,
		Payload:   kafkax.MustMarshal(orders.OrderFailedPayload{Reason: "boom"}),
	}
	err := svc.HandleOrderSubmitted(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(env)})
	require.NoError(t, err)
	assert.Empty(t, sales.calls)
}

func TestHandleOrderSubmitted_BadEnvelope(t *testing.T) {
	svc := &Service{Sales: &fakeSales{}, Dedup: newFakeStrings()}
	err := svc.HandleOrderSubmitted(context.Background(), kafkago.Message{Value: []byte("not json")})
	assert.Error(t, err)
}

func TestHandleOrderSubmitted_SalesErrorPropagates(t *testing.T) {
	sales := &fakeSales{err: assert.AnError}
	dedup := newFakeStrings()
	svc := &Service{Sales: sales, Dedup: dedup}

	err := svc.HandleOrderSubmitted(context.Background(), submittedMessage(t, "ev-3", 100))
	require.Error(t, err)
	// not marked as seen, so the redelivery will retry
	dkey := fmt.Sprintf(redisx.KeyDedup, "analytics", "ev-3")
	assert.Empty(t, dedup.m[dkey])
}
