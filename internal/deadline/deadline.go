// Package deadline bounds external I/O (upload reads, renderer calls) so a
// request fails with a TimeoutError instead of hanging.
package deadline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutError reports that a bounded operation exceeded its budget.
type TimeoutError struct {
	Op     string
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Budget)
}

// Run executes fn with a derived context limited to budget. fn runs on its
// own goroutine so that an implementation ignoring ctx still cannot block the
// caller past the budget. A non-positive budget disables the limit.
//
// If the parent context is cancelled first, the parent's error is returned
// wrapped; only an expired budget yields *TimeoutError.
func Run(ctx context.Context, budget time.Duration, op string, fn func(ctx context.Context) error) error {
	if budget <= 0 {
		return fn(ctx)
	}

	tctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(tctx)
	}()

	select {
	case err := <-done:
		if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return &TimeoutError{Op: op, Budget: budget}
		}
		return err
	case <-tctx.Done():
		if perr := ctx.Err(); perr != nil {
			return fmt.Errorf("%s: %w", op, perr)
		}
		return &TimeoutError{Op: op, Budget: budget}
	}
}
