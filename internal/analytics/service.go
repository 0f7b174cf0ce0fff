package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/andrasetia/go-sheet-storefront/internal/kafka"
	"github.com/andrasetia/go-sheet-storefront/internal/orders"
	"github.com/andrasetia/go-sheet-storefront/internal/redisx"
)

// Sales is what the consumer needs from the rollup repo.
type Sales interface {
	AddSale(ctx context.Context, occurredAt time.Time, totalCents int) error
}

// Service folds OrderSubmitted events into the daily/monthly revenue rollups.
type Service struct {
	Sales       Sales
	Dedup       redisx.Strings
	ServiceName string
}

// HandleOrderSubmitted is wired as the consumer handler.
func (s *Service) HandleOrderSubmitted(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderSubmitted {
		return nil // ignore
	}

	// dedup by event_id so a redelivered event does not double-count revenue
	dkey := fmt.Sprintf(redisx.KeyDedup, "analytics", env.EventID)
	if seen, _ := s.Dedup.GetString(ctx, dkey); seen != "" {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderSubmittedPayload](env.Payload)
	if err != nil {
		return err
	}

	if err := s.Sales.AddSale(ctx, env.OccurredAt, p.TotalCents); err != nil {
		return err
	}
	if err := s.Dedup.SetString(ctx, dkey, "1", redisx.TTLDedup); err != nil {
		slog.Warn("dedup mark", "event_id", env.EventID, "err", err)
	}
	slog.Info("sale recorded", "receipt_id", p.ReceiptID, "total_cents", p.TotalCents)
	return nil
}
