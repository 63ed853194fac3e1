package analytics

import (
	"context"
	"log"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
	"github.com/ArjunMal1311/meme-coin/internal/events"
	"github.com/ArjunMal1311/meme-coin/internal/storage"
)

// Recorder subscribes to the event bus and persists purchase events to
// the history store, feeding the aggregator.
type Recorder struct {
	purchases storage.PurchaseEventStore
	bus       *events.Bus
	logger    *log.Logger

	done chan struct{}
}

// NewRecorder creates a Recorder. Call Run to start consuming.
func NewRecorder(purchases storage.PurchaseEventStore, bus *events.Bus, logger *log.Logger) *Recorder {
	return &Recorder{
		purchases: purchases,
		bus:       bus,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Run consumes purchase events until ctx is cancelled. Insert failures
// are logged and skipped so one bad write cannot stall the stream.
func (r *Recorder) Run(ctx context.Context) {
	defer close(r.done)

	ch, cancel := r.bus.Subscribe(256)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			p, isPurchase := ev.(*domain.PurchasedEvent)
			if !isPurchase {
				continue
			}
			record := &domain.PurchaseRecord{
				TokenID:   p.TokenID,
				Buyer:     p.Buyer,
				Amount:    p.Amount,
				Cost:      p.Cost,
				NewSold:   p.NewSold,
				NewRaised: p.NewRaised,
				Closed:    p.Closed,
				Timestamp: p.Timestamp,
			}
			if err := r.purchases.Insert(ctx, record); err != nil {
				if ctx.Err() != nil {
					return
				}
				if r.logger != nil {
					r.logger.Printf("record purchase on %s: %v", p.TokenID, err)
				}
			}
		}
	}
}

// Done is closed once Run has returned and all consumed events are
// either persisted or logged.
func (r *Recorder) Done() <-chan struct{} {
	return r.done
}
