// Package pod runs a fixed-rate simulation loop on a single goroutine.
package pod

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrSimulationRunning    = errors.New("simulation is already running")
	ErrSimulationNotRunning = errors.New("simulation is not running")
)

// Ticker is anything advanced once per frame.
type Ticker interface {
	OnTick(dt time.Duration)
}

// TickerFunc adapts a function to Ticker.
type TickerFunc func(dt time.Duration)

func (f TickerFunc) OnTick(dt time.Duration) { f(dt) }

// Simulation calls its tickers in registration order on every frame. All of
// them run on the goroutine that called Run.
type Simulation struct {
	tickRate  time.Duration
	lastTick  time.Time
	tickers   []Ticker
	frames    atomic.Uint64
	stop      chan struct{}
	stopOnce  sync.Once
	isRunning atomic.Bool
}

func NewSimulation(tickRate time.Duration, tickers ...Ticker) *Simulation {
	return &Simulation{
		tickRate: tickRate,
		tickers:  tickers,
		stop:     make(chan struct{}),
	}
}

// Add registers a ticker. It must not be called while the simulation runs.
func (s *Simulation) Add(t Ticker) {
	s.tickers = append(s.tickers, t)
}

// Run blocks until ctx is cancelled or Stop is called.
func (s *Simulation) Run(ctx context.Context) error {
	if !s.isRunning.CompareAndSwap(false, true) {
		return ErrSimulationRunning
	}
	defer s.isRunning.Store(false)

	t := time.NewTicker(s.tickRate)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case now := <-t.C:
			s.step(now)
		}
	}
}

func (s *Simulation) Stop() error {
	if !s.isRunning.Load() {
		return ErrSimulationNotRunning
	}
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// Step advances every ticker by dt. It is what Run calls per frame and lets
// callers drive the simulation manually.
func (s *Simulation) Step(dt time.Duration) {
	for _, t := range s.tickers {
		t.OnTick(dt)
	}
	s.frames.Add(1)
}

func (s *Simulation) step(now time.Time) {
	d := s.tickRate
	if !s.lastTick.IsZero() {
		d = now.Sub(s.lastTick)
	}
	s.lastTick = now
	s.Step(d)
}

// Frames returns the number of frames stepped so far.
func (s *Simulation) Frames() uint64 {
	return s.frames.Load()
}

func (s *Simulation) TickRate() time.Duration {
	return s.tickRate
}
