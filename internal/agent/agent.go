// Package agent wires sampling, normalization, session tracking and
// persistence into one tracking loop.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sadopc/wintrackr/internal/normalize"
	"github.com/sadopc/wintrackr/internal/recorder"
	"github.com/sadopc/wintrackr/internal/sampler"
	"github.com/sadopc/wintrackr/internal/tracker"
)

type Options struct {
	Sampler         sampler.Sampler
	Rules           normalize.Rules
	Recorder        *recorder.Recorder
	SampleInterval  time.Duration
	SummaryInterval time.Duration
	SampleTimeout   time.Duration
	Now             func() time.Time
	Logger          *slog.Logger
}

// Agent owns the single tracking stream. The mutex guards the tracker and
// the recorder so that sampling, periodic flushes and shutdown never
// interleave.
type Agent struct {
	sampler         sampler.Sampler
	sampleInterval  time.Duration
	summaryInterval time.Duration
	now             func() time.Time
	logger          *slog.Logger

	mu         sync.Mutex
	normalizer *normalize.Normalizer
	tracker    *tracker.Tracker
	recorder   *recorder.Recorder
	started    bool
	stopped    bool
}

func New(opts Options) *Agent {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	s := opts.Sampler
	if opts.SampleTimeout > 0 {
		s = sampler.WithTimeout(s, opts.SampleTimeout)
	}
	return &Agent{
		sampler:         s,
		sampleInterval:  opts.SampleInterval,
		summaryInterval: opts.SummaryInterval,
		now:             opts.Now,
		logger:          opts.Logger,
		normalizer:      normalize.New(opts.Rules),
		tracker:         tracker.New(),
		recorder:        opts.Recorder,
	}
}

// Start loads today's summary. Run calls it; it is exported for callers
// driving Tick by hand.
func (a *Agent) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return
	}
	a.started = true
	a.recorder.Start()
}

// Run samples and flushes on their intervals until ctx is cancelled, then
// performs the shutdown flush. Cancellation is not an error. A persistence
// failure ends the loop; the shutdown flush is still attempted and both
// errors are returned.
func (a *Agent) Run(ctx context.Context) error {
	a.Start()
	a.logger.Info("tracker_started",
		"sample_interval", a.sampleInterval.String(),
		"summary_interval", a.summaryInterval.String(),
	)

	// Persistence during shutdown must not inherit the cancellation.
	persistCtx := context.WithoutCancel(ctx)

	sampleTicker := time.NewTicker(a.sampleInterval)
	defer sampleTicker.Stop()
	flushTicker := time.NewTicker(a.summaryInterval)
	defer flushTicker.Stop()

	if err := a.Tick(ctx); err != nil {
		return a.abort(persistCtx, err)
	}

	for {
		select {
		case <-ctx.Done():
			return a.Shutdown(persistCtx)

		case <-sampleTicker.C:
			if err := a.Tick(ctx); err != nil {
				return a.abort(persistCtx, err)
			}

		case <-flushTicker.C:
			if err := a.Flush(persistCtx); err != nil {
				return a.abort(persistCtx, err)
			}
		}
	}
}

func (a *Agent) abort(ctx context.Context, cause error) error {
	a.logger.Error("persistence_failed", "error", cause.Error())
	return errors.Join(cause, a.Shutdown(ctx))
}

// Tick takes one sample and feeds it through the tracker. Samples without a
// resolvable window are skipped. Only sampling observes ctx cancellation; a
// session closed by the sample is always persisted.
func (a *Agent) Tick(ctx context.Context) error {
	obs, err := a.sampler.Sample(ctx)
	if err != nil {
		a.logger.Debug("sample_skipped", "reason", err.Error())
		return nil
	}
	if !obs.Valid() {
		a.logger.Debug("sample_skipped", "reason", "no window")
		return nil
	}
	if obs.SampledAt.IsZero() {
		obs.SampledAt = a.now()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return nil
	}

	title := a.normalizer.Normalize(obs.ProcessName, obs.RawTitle)
	s, ok := a.tracker.Observe(obs.ProcessName, title, obs.SampledAt)
	if !ok {
		return nil
	}
	if err := a.recorder.OnSession(context.WithoutCancel(ctx), s); err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

// Flush writes the current summary snapshot.
func (a *Agent) Flush(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return nil
	}
	return a.recorder.FlushSummary(ctx)
}

// Shutdown closes the open session at the current instant, records it and
// flushes the summary. Only the first call has an effect.
func (a *Agent) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return nil
	}
	a.stopped = true
	if !a.started {
		a.started = true
		a.recorder.Start()
	}

	var sessionErr error
	if s, ok := a.tracker.Shutdown(a.now()); ok {
		if err := a.recorder.OnSession(ctx, s); err != nil {
			sessionErr = fmt.Errorf("record final session: %w", err)
		}
	}
	flushErr := a.recorder.FlushSummary(ctx)

	a.logger.Info("tracker_stopped", "grand_total_seconds", a.recorder.Summary().GrandTotal())
	return errors.Join(sessionErr, flushErr)
}

// SetRules swaps the normalization table. The open session keeps its
// title; the next sample is normalized with the new rules.
func (a *Agent) SetRules(rules normalize.Rules) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.normalizer = normalize.New(rules)
}

// Current returns the open session, if any.
func (a *Agent) Current() (tracker.ActiveSession, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tracker.Current()
}
