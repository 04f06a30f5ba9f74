package submission

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/justsurfingit/applicant-intake/internal/logger"
)

const (
	DefaultScreeningTimeout = 45 * time.Second
	DefaultPulseInterval    = 800 * time.Millisecond

	pulseStart   = 10.0
	pulseMaxStep = 15.0
	pulseCeiling = 89.0
)

// Orchestrator runs a screening call behind a bounded timeout while a
// separate goroutine drives the cosmetic progress indicator.
type Orchestrator struct {
	screener Screener
	timeout  time.Duration
	interval time.Duration
	rand     func() float64
}

type OrchestratorOption func(*Orchestrator)

func WithScreeningTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithPulseInterval(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithRand replaces the [0,1) source used for pulse increments.
func WithRand(f func() float64) OrchestratorOption {
	return func(o *Orchestrator) { o.rand = f }
}

func NewOrchestrator(s Screener, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		screener: s,
		timeout:  DefaultScreeningTimeout,
		interval: DefaultPulseInterval,
		rand:     rand.Float64,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NextPulse advances the simulated progress by r*15, never reaching 90.
func NextPulse(current, r float64) float64 {
	if current >= pulseCeiling {
		return current
	}
	next := current + r*pulseMaxStep
	if next > pulseCeiling {
		return pulseCeiling
	}
	return next
}

// Run screens req. Every failure mode (transport error, timeout, nil result,
// missing score) is reported as ErrScreeningFailed. onProgress receives the
// simulated percentage, and 100 only on success.
func (o *Orchestrator) Run(ctx context.Context, req ScreenRequest, onProgress func(float64)) (*ScreenResult, error) {
	if onProgress == nil {
		onProgress = func(float64) {}
	}
	if o.screener == nil {
		return nil, fmt.Errorf("%w: no screener configured", ErrScreeningFailed)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		o.pulse(stop, onProgress)
	}()

	result, err := o.call(ctx, req)

	close(stop)
	wg.Wait()

	if err != nil {
		logger.WithContext(ctx).Warn("screening failed", "error", err)
		return nil, err
	}

	onProgress(100)
	return result, nil
}

func (o *Orchestrator) call(ctx context.Context, req ScreenRequest) (*ScreenResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	result, err := o.screener.Screen(ctx, req)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: timed out after %s", ErrScreeningFailed, o.timeout)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrScreeningFailed, err)
	case result == nil:
		return nil, fmt.Errorf("%w: empty result", ErrScreeningFailed)
	case result.Score == nil:
		return nil, fmt.Errorf("%w: result has no score", ErrScreeningFailed)
	}
	return result, nil
}

func (o *Orchestrator) pulse(stop <-chan struct{}, onProgress func(float64)) {
	progress := pulseStart
	onProgress(progress)

	t := time.NewTicker(o.interval)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
			progress = NextPulse(progress, o.rand())
			onProgress(progress)
		}
	}
}
