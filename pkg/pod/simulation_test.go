package pod

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStepRunsTickersInOrder(t *testing.T) {
	var order []string
	sim := NewSimulation(time.Millisecond,
		TickerFunc(func(time.Duration) { order = append(order, "session") }),
		TickerFunc(func(time.Duration) { order = append(order, "binding") }),
	)

	sim.Step(16 * time.Millisecond)

	if len(order) != 2 || order[0] != "session" || order[1] != "binding" {
		t.Fatalf("unexpected order %v", order)
	}
	if sim.Frames() != 1 {
		t.Errorf("expected 1 frame, got %d", sim.Frames())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ticked := make(chan time.Duration, 1)
	sim := NewSimulation(time.Millisecond, TickerFunc(func(dt time.Duration) {
		select {
		case ticked <- dt:
		default:
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sim.Run(ctx) }()

	select {
	case dt := <-ticked:
		if dt <= 0 {
			t.Errorf("expected positive delta, got %v", dt)
		}
	case <-time.After(time.Second):
		t.Fatal("simulation never ticked")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("simulation did not stop")
	}
}

func TestStopWhenNotRunning(t *testing.T) {
	sim := NewSimulation(time.Millisecond)
	if err := sim.Stop(); !errors.Is(err, ErrSimulationNotRunning) {
		t.Errorf("expected ErrSimulationNotRunning, got %v", err)
	}
}
