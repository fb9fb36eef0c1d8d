package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jfmyers9/earshot/internal/deeplink"
	"github.com/jfmyers9/earshot/internal/mapper"
	"github.com/jfmyers9/earshot/internal/recognitionqueue"
	"github.com/jfmyers9/earshot/internal/recording"
	"github.com/jfmyers9/earshot/internal/remote"
	"github.com/jfmyers9/earshot/internal/track"
)

// Config holds daemon configuration
type Config struct {
	ProcessInterval      time.Duration // How often to read the queue
	RateLimit            time.Duration // Minimum spacing between submissions
	MinRecordingDuration time.Duration // Shorter WAV recordings are rejected locally
	BatchSize            int           // Pending entries read per round
	MaxAge               time.Duration // Finished entries older than this are removed on shutdown
	SuspendFor           time.Duration // Pause after the service rejects the token
	StateFile            string        // Path to status persistence file
}

// ArtworkResolver finds a cover image for a track
type ArtworkResolver interface {
	FetchURL(ctx context.Context, t track.Track) (string, bool)
}

// Deps are the collaborators the daemon drives
type Deps struct {
	Recognizer remote.Recognizer
	Queue      *recognitionqueue.Queue
	Store      *track.Store
	Artwork    ArtworkResolver
	Router     *deeplink.Router
	Notifier   Notifier
}

// Daemon drains the recognition queue in the background
type Daemon struct {
	config     Config
	recognizer remote.Recognizer
	queue      *recognitionqueue.Queue
	store      *track.Store
	artwork    ArtworkResolver
	router     *deeplink.Router
	notifier   Notifier
	mapper     *mapper.RemoteResultMapper
	limiter    *rate.Limiter
	state      *State
	poller     *Poller
	logger     zerolog.Logger
	now        func() time.Time
}

// New creates a new Daemon instance
func New(cfg Config, deps Deps, logger zerolog.Logger) (*Daemon, error) {
	if deps.Recognizer == nil || deps.Queue == nil || deps.Store == nil {
		return nil, errors.New("recognizer, queue and store are required")
	}
	if cfg.ProcessInterval <= 0 {
		cfg.ProcessInterval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.SuspendFor <= 0 {
		cfg.SuspendFor = time.Hour
	}
	if deps.Router == nil {
		deps.Router = deeplink.NewRouter("", "")
	}
	if deps.Notifier == nil {
		deps.Notifier = NewLogNotifier(logger)
	}

	state, err := NewState(cfg.StateFile)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to restore daemon state, starting fresh")
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Every(cfg.RateLimit)
	}

	return &Daemon{
		config:     cfg,
		recognizer: deps.Recognizer,
		queue:      deps.Queue,
		store:      deps.Store,
		artwork:    deps.Artwork,
		router:     deps.Router,
		notifier:   deps.Notifier,
		mapper:     mapper.NewRemoteResultMapper(mapper.TrackMapper{}),
		limiter:    rate.NewLimiter(limit, 1),
		state:      state,
		poller:     NewPoller(deps.Queue, cfg.ProcessInterval, cfg.BatchSize, logger),
		logger:     logger.With().Str("component", "daemon").Logger(),
		now:        time.Now,
	}, nil
}

// Run starts the daemon and blocks until shutdown signal received
func (d *Daemon) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Handle first signal gracefully, second signal forces exit
	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		d.logger.Info().Msg("Shutdown signal received, initiating graceful shutdown")
		cancel()

		<-sigChan
		d.logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	if err := d.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// run is the main daemon loop
func (d *Daemon) run(ctx context.Context) error {
	d.logger.Info().
		Dur("process_interval", d.config.ProcessInterval).
		Dur("rate_limit", d.config.RateLimit).
		Msg("Starting daemon")

	var wg sync.WaitGroup
	batches := make(chan Batch)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.poller.Run(ctx, batches); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error().Err(err).Msg("Poller error")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		d.handleBatches(ctx, batches)
	}()

	wg.Wait()

	d.logger.Info().Msg("Daemon stopped")
	return nil
}

// handleBatches processes batches from the poller
func (d *Daemon) handleBatches(ctx context.Context, batches <-chan Batch) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-batches:
			if batch.Err != nil {
				d.logger.Error().Err(batch.Err).Msg("Failed to read queue")
				continue
			}
			if _, err := d.ProcessBatch(ctx, batch.Entries); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error().Err(err).Msg("Failed to process batch")
			}
		}
	}
}

// ProcessPending runs one processing round over the oldest pending entries
func (d *Daemon) ProcessPending(ctx context.Context) (int, error) {
	entries, err := d.queue.GetPending(ctx, d.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending recognitions: %w", err)
	}
	return d.ProcessBatch(ctx, entries)
}

// ProcessBatch recognizes entries in order and returns how many finished.
// The round stops early when the service is unreachable or rejects the token;
// the remaining entries stay pending.
func (d *Daemon) ProcessBatch(ctx context.Context, entries []recognitionqueue.Enqueued) (int, error) {
	now := d.now()
	if st := d.state.GetStatus(); st.Suspended(now) {
		d.logger.Debug().
			Time("until", st.SuspendedUntil).
			Str("reason", st.SuspendReason).
			Msg("Processing suspended")
		return 0, nil
	}

	if len(entries) == 0 {
		if err := d.state.Touch(now); err != nil {
			d.logger.Warn().Err(err).Msg("Failed to persist daemon state")
		}
		return 0, nil
	}

	d.logger.Info().Int("count", len(entries)).Msg("Processing pending recognitions")

	done := 0
	for _, e := range entries {
		// The poller may hand over entries that an earlier round already finished
		current, err := d.queue.Get(ctx, e.ID)
		if errors.Is(err, recognitionqueue.ErrNotFound) {
			continue
		}
		if err != nil {
			return done, fmt.Errorf("failed to reload recognition %d: %w", e.ID, err)
		}
		if !current.Pending() {
			continue
		}

		outcome, err := d.Process(ctx, current)
		if err != nil {
			return done, err
		}
		done++

		if stop := d.afterOutcome(outcome); stop {
			break
		}
	}

	return done, nil
}

// afterOutcome updates the suspension state and reports whether the
// current round should stop
func (d *Daemon) afterOutcome(outcome recognitionqueue.Outcome) bool {
	switch outcome.Type {
	case recognitionqueue.ResultAuthError, recognitionqueue.ResultAPIUsageLimited:
		until := d.now().Add(d.config.SuspendFor)
		d.logger.Warn().
			Str("reason", outcome.Type.String()).
			Time("until", until).
			Msg("Suspending recognition")
		if err := d.state.Suspend(until, outcome.Type.String()); err != nil {
			d.logger.Warn().Err(err).Msg("Failed to persist daemon state")
		}
		return true
	case recognitionqueue.ResultBadConnection:
		return true
	default:
		return false
	}
}

// Process recognizes a single enqueued recording, stores the result and
// notifies the user
func (d *Daemon) Process(ctx context.Context, e recognitionqueue.Enqueued) (recognitionqueue.Outcome, error) {
	logger := d.logger.With().Int64("id", e.ID).Str("file", e.RecordFile).Logger()

	var result remote.Result
	if _, err := recording.Validate(e.RecordFile, d.config.MinRecordingDuration); err != nil {
		logger.Info().Err(err).Msg("Recording rejected before submission")
		result = remote.BadRecording{Cause: err}
	} else {
		if err := d.limiter.Wait(ctx); err != nil {
			return recognitionqueue.Outcome{}, fmt.Errorf("rate limiter: %w", err)
		}
		result = d.recognizer.RecognizeFile(ctx, e.RecordFile)
	}

	// Shutdown mid-request is not a result worth persisting
	if ctx.Err() != nil {
		return recognitionqueue.Outcome{}, ctx.Err()
	}

	if s, ok := result.(remote.Success); ok {
		t, err := d.saveTrack(ctx, s.Track)
		if err != nil {
			return recognitionqueue.Outcome{}, err
		}
		result = remote.Success{Track: t}
	}

	mapped := d.mapper.Map(result)
	outcome := recognitionqueue.OutcomeOf(mapped)

	if err := d.queue.SetResult(ctx, e.ID, outcome); err != nil {
		return recognitionqueue.Outcome{}, fmt.Errorf("failed to store result: %w", err)
	}
	if err := d.state.Record(outcome.Type, d.now()); err != nil {
		logger.Warn().Err(err).Msg("Failed to persist daemon state")
	}

	logger.Info().
		Str("result", outcome.Type.String()).
		Str("track", outcome.TrackID).
		Msg("Recognition finished")

	d.notify(mapped, outcome)
	return outcome, nil
}

// saveTrack fills in missing artwork and upserts t into the library
func (d *Daemon) saveTrack(ctx context.Context, t track.Track) (track.Track, error) {
	if t.Links.Artwork == "" && d.artwork != nil {
		if u, ok := d.artwork.FetchURL(ctx, t); ok {
			t.Links.Artwork = u
		}
	}

	if err := d.store.Upsert(ctx, t); err != nil {
		return t, fmt.Errorf("failed to save track: %w", err)
	}

	// Favorite flag and preserved links come from the stored row
	stored, err := d.store.Get(ctx, t.MbID)
	if err != nil {
		return t, fmt.Errorf("failed to reload track: %w", err)
	}
	return stored, nil
}

func (d *Daemon) notify(r recognitionqueue.RemoteResult, outcome recognitionqueue.Outcome) {
	msg := recognitionqueue.MessageFor(r)

	intent := d.router.QueueIntent()
	if outcome.Type == recognitionqueue.ResultSuccess {
		intent = d.router.TrackIntent(outcome.TrackID)
	}

	d.notifier.Notify(Notification{
		Title:  msg.Title,
		Body:   msg.Body,
		Intent: intent,
	})
}

// Status returns the daemon's current status
func (d *Daemon) Status() Status {
	return d.state.GetStatus()
}

// Shutdown gracefully shuts down the daemon
func (d *Daemon) Shutdown() error {
	d.logger.Info().Msg("Shutting down daemon")

	if d.config.MaxAge > 0 {
		removed, err := d.queue.Cleanup(context.Background(), d.config.MaxAge)
		if err != nil {
			d.logger.Warn().Err(err).Msg("Failed to cleanup queue")
		} else if len(removed) > 0 {
			for _, e := range removed {
				if err := os.Remove(e.RecordFile); err != nil && !os.IsNotExist(err) {
					d.logger.Warn().Err(err).Str("file", e.RecordFile).Msg("Failed to remove recording")
				}
			}
			d.logger.Info().Int("count", len(removed)).Msg("Removed finished recognitions")
		}
	}

	return nil
}
