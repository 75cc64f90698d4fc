package orchestrator

import (
	"context"
	"time"
)

// awaitDeadline blocks until the wall clock reaches deadline, waking up at
// most every tickInterval. The remaining time is re-read from the clock on
// every iteration rather than counted down, so clock jumps or a suspended
// process can never make it over-wait. onTick receives the whole seconds
// remaining before each sleep; returning an error aborts the wait.
func awaitDeadline(ctx context.Context, deadline time.Time, tickInterval time.Duration, onTick func(remaining int) error) error {
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}

		if onTick != nil {
			if err := onTick(ceilSeconds(remaining)); err != nil {
				return err
			}
		}

		sleep := tickInterval
		if remaining < sleep {
			sleep = remaining
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
