package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/earshot/internal/recognitionqueue"
)

// Batch is a set of pending recordings read from the queue
type Batch struct {
	Entries []recognitionqueue.Enqueued
	Err     error // Error from the queue
}

// PendingSource lists recordings awaiting recognition
type PendingSource interface {
	GetPending(ctx context.Context, limit int) ([]recognitionqueue.Enqueued, error)
}

// Poller reads the queue at regular intervals
type Poller struct {
	source    PendingSource
	interval  time.Duration
	batchSize int
	logger    zerolog.Logger
}

// NewPoller creates a new Poller instance
func NewPoller(source PendingSource, interval time.Duration, batchSize int, logger zerolog.Logger) *Poller {
	return &Poller{
		source:    source,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger.With().Str("component", "poller").Logger(),
	}
}

// Run starts the polling loop and sends non-empty batches to the provided
// channel. Blocks until context is cancelled.
func (p *Poller) Run(ctx context.Context, batches chan<- Batch) error {
	p.logger.Info().
		Dur("interval", p.interval).
		Msg("Starting poller")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Poll immediately on start
	p.poll(ctx, batches)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx, batches)
		}
	}
}

func (p *Poller) poll(ctx context.Context, batches chan<- Batch) {
	entries, err := p.source.GetPending(ctx, p.batchSize)
	if err != nil {
		p.logger.Debug().Err(err).Msg("Error reading pending recognitions")
		select {
		case batches <- Batch{Err: err}:
		case <-ctx.Done():
		}
		return
	}

	if len(entries) == 0 {
		return
	}

	select {
	case batches <- Batch{Entries: entries}:
		p.logger.Debug().Int("count", len(entries)).Msg("Poll update")
	case <-ctx.Done():
	}
}
