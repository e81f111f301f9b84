// Package poll implements a bounded poll-until-done loop for asynchronous job APIs.
//
// A step function is evaluated immediately and then once per interval until it
// reports completion, returns an error, or the wait budget is exhausted. The budget
// is measured on the wall clock from the first step and is checked both before and
// after every sleep. Each step runs under a context that expires at MaxWait plus one
// Interval, so a slow step cannot hold the loop past that bound either.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when no step reported completion within MaxWait.
var ErrTimeout = errors.New("poll: wait budget exhausted")

// StepFunc performs one poll. attempt starts at 1. It returns the latest value,
// whether that value is terminal, and a hard error that stops the loop.
type StepFunc[T any] func(ctx context.Context, attempt int) (T, bool, error)

// Options bounds the loop.
type Options struct {
	Interval time.Duration
	MaxWait  time.Duration
	Clock    Clock
}

// Result describes how the loop ended.
type Result[T any] struct {
	Value    T
	Attempts int
	Elapsed  time.Duration
}

func (o Options) validate() error {
	if o.Interval <= 0 {
		return fmt.Errorf("poll: interval must be positive, got %s", o.Interval)
	}
	if o.MaxWait <= 0 {
		return fmt.Errorf("poll: max wait must be positive, got %s", o.MaxWait)
	}
	return nil
}

// Until runs step until it reports done, fails, or the budget runs out.
// On timeout the returned Result carries the last observed value and the
// error wraps ErrTimeout. Step errors are returned unwrapped.
func Until[T any](ctx context.Context, opts Options, step StepFunc[T]) (Result[T], error) {
	var res Result[T]
	if err := opts.validate(); err != nil {
		return res, err
	}
	clock := opts.Clock
	if clock == nil {
		clock = RealClock{}
	}

	start := clock.Now()
	for {
		if err := ctx.Err(); err != nil {
			res.Elapsed = clock.Now().Sub(start)
			return res, err
		}

		res.Attempts++
		value, done, err := runStep(ctx, opts.MaxWait+opts.Interval-clock.Now().Sub(start), res.Attempts, step)
		res.Value = value
		res.Elapsed = clock.Now().Sub(start)
		if errors.Is(err, errStepDeadline) {
			return res, timeoutError(res)
		}
		if err != nil {
			return res, err
		}
		if done {
			return res, nil
		}

		if res.Elapsed >= opts.MaxWait {
			return res, timeoutError(res)
		}
		if err := clock.Sleep(ctx, opts.Interval); err != nil {
			res.Elapsed = clock.Now().Sub(start)
			return res, err
		}
		if res.Elapsed = clock.Now().Sub(start); res.Elapsed >= opts.MaxWait {
			return res, timeoutError(res)
		}
	}
}

var errStepDeadline = errors.New("poll: step exceeded wait budget")

// runStep calls step with a context that expires after remaining. A step that
// fails on that deadline while ctx itself is still live reports errStepDeadline.
func runStep[T any](ctx context.Context, remaining time.Duration, attempt int, step StepFunc[T]) (T, bool, error) {
	stepCtx, cancel := context.WithTimeout(ctx, remaining)
	defer cancel()

	value, done, err := step(stepCtx, attempt)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil && stepCtx.Err() != nil {
		return value, false, errStepDeadline
	}
	return value, done, err
}

func timeoutError[T any](res Result[T]) error {
	return fmt.Errorf("%w after %d attempts in %s", ErrTimeout, res.Attempts, res.Elapsed)
}
