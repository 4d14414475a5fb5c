// Package sampler reads the currently focused window from the OS.
package sampler

import (
	"context"
	"errors"
	"time"
)

// ErrNoWindow reports that no focusable window could be resolved, for
// example on the lock screen or when the owning process went away.
var ErrNoWindow = errors.New("no active window")

// Observation is one reading of the foreground window.
type Observation struct {
	ProcessName string
	RawTitle    string
	SampledAt   time.Time
}

// Sampler returns the current foreground window. Implementations must
// honour ctx cancellation.
type Sampler interface {
	Sample(ctx context.Context) (Observation, error)
}

// Func adapts a function to the Sampler interface.
type Func func(ctx context.Context) (Observation, error)

func (f Func) Sample(ctx context.Context) (Observation, error) {
	return f(ctx)
}

// Valid reports whether obs names both a process and a title.
func (o Observation) Valid() bool {
	return o.ProcessName != "" && o.RawTitle != ""
}

// WithTimeout bounds every Sample call of s by d. A sample that does not
// finish in time is reported as ErrNoWindow together with the context error.
func WithTimeout(s Sampler, d time.Duration) Sampler {
	return Func(func(ctx context.Context) (Observation, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		type result struct {
			obs Observation
			err error
		}
		done := make(chan result, 1)
		go func() {
			obs, err := s.Sample(ctx)
			done <- result{obs, err}
		}()

		select {
		case r := <-done:
			return r.obs, r.err
		case <-ctx.Done():
			return Observation{}, errors.Join(ErrNoWindow, ctx.Err())
		}
	})
}
