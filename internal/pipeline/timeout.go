package pipeline

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by WithDeadline when the budget expires before the
// wrapped operation completes.
var ErrTimeout = errors.New("operation exceeded its time budget")

// WithFallback runs fn with a time budget and substitutes fallback when the
// budget expires. The underlying operation is not cancelled on expiry; if it
// finishes later its result is discarded. fn errors (within budget) are
// returned to the caller, not replaced by the fallback.
func WithFallback[T any](ctx context.Context, budget time.Duration, fallback T, fn func(ctx context.Context) (T, error)) (T, error) {
	result, err := WithDeadline(ctx, budget, fn)
	if errors.Is(err, ErrTimeout) {
		return fallback, nil
	}
	return result, err
}

// WithDeadline runs fn with a time budget and returns ErrTimeout when the
// budget expires first. The wrapped operation keeps running in the background;
// its eventual result is dropped.
func WithDeadline[T any](ctx context.Context, budget time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}

	// Buffered so the goroutine can exit even after the deadline fired.
	ch := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		ch <- outcome{value: v, err: err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	var zero T
	select {
	case out := <-ch:
		return out.value, out.err
	case <-timer.C:
		return zero, ErrTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
