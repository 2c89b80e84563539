// Package pipeline runs ordered, paced phases and reports each one as it completes.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Step is one phase of a pipeline. Run may be nil for phases that only report
// progress; its returned string is surfaced as the event's log line.
type Step struct {
	Progress int
	Status   string
	Run      func(ctx context.Context) (string, error)
}

// Event is emitted after a step has run.
type Event struct {
	Index    int
	Progress int
	Status   string
	Log      string
}

// Delay is the randomized pause taken before each step.
type Delay struct {
	Min time.Duration
	Max time.Duration
}

// NoDelay runs steps back to back.
var NoDelay = Delay{}

func (d Delay) pick() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + time.Duration(rand.Int63n(int64(d.Max-d.Min+1)))
}

// Wait sleeps for a random duration in [Min, Max] or until ctx is done.
func (d Delay) Wait(ctx context.Context) error {
	wait := d.pick()
	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Sleep waits exactly d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	return Delay{Min: d, Max: d}.Wait(ctx)
}

// Run executes steps strictly in order. Before each step it waits on delay,
// then runs the step and passes the resulting Event to emit. It stops at the
// first failing step or when ctx is cancelled.
func Run(ctx context.Context, steps []Step, delay Delay, emit func(Event)) error {
	for i, step := range steps {
		if err := delay.Wait(ctx); err != nil {
			return err
		}

		var line string
		if step.Run != nil {
			var err error
			line, err = step.Run(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", step.Status, err)
			}
		}

		if emit != nil {
			emit(Event{Index: i, Progress: step.Progress, Status: step.Status, Log: line})
		}
	}
	return nil
}
