package retry

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docnotion/internal/foundation/errors"
	"git.home.luguber.info/inful/docnotion/internal/logfields"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Classifier reports whether an error is worth another attempt.
type Classifier func(err error) bool

// Observer is told about each retry and each exhausted operation.
type Observer interface {
	IncRetry(operation string)
	IncRetryExhausted(operation string)
}

// ContextSleep is the production Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Executor runs operations under a Policy. The zero value is not usable; use NewExecutor.
type Executor struct {
	policy    Policy
	sleep     Sleeper
	transient Classifier
	logger    *slog.Logger
	observer  Observer
}

// Option configures an Executor.
type Option func(*Executor)

// WithSleeper replaces the backoff wait, mostly for tests.
func WithSleeper(s Sleeper) Option { return func(e *Executor) { e.sleep = s } }

// WithClassifier sets which errors are retried. Defaults to errors.IsTransient.
func WithClassifier(c Classifier) Option { return func(e *Executor) { e.transient = c } }

func WithLogger(l *slog.Logger) Option { return func(e *Executor) { e.logger = l } }

func WithObserver(o Observer) Option { return func(e *Executor) { e.observer = o } }

func NewExecutor(policy Policy, opts ...Option) *Executor {
	e := &Executor{
		policy:    policy,
		sleep:     ContextSleep,
		transient: errors.IsTransient,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.policy.MaxAttempts < 1 {
		e.policy.MaxAttempts = 1
	}
	return e
}

// Policy returns the policy the executor applies.
func (e *Executor) Policy() Policy { return e.policy }

// Do runs op until it succeeds, fails with a non-transient error, or the attempt
// bound is reached. Exhaustion wraps the last error as a fatal classified error.
func (e *Executor) Do(ctx context.Context, operation string, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !e.transient(lastErr) {
			return lastErr
		}
		if attempt == e.policy.MaxAttempts {
			break
		}
		delay := e.policy.Delay(attempt)
		if e.observer != nil {
			e.observer.IncRetry(operation)
		}
		e.logger.Warn("Transient failure, retrying",
			logfields.Operation(operation),
			logfields.Attempt(attempt),
			slog.Duration("backoff", delay),
			logfields.Error(lastErr))
		if err := e.sleep(ctx, delay); err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "retry wait interrupted").
				WithContext("operation", operation).
				Build()
		}
	}
	if e.observer != nil {
		e.observer.IncRetryExhausted(operation)
	}
	return errors.WrapError(lastErr, errors.GetCategory(lastErr), "retries exhausted").
		Fatal().
		WithContext("operation", operation).
		WithContext("attempts", e.policy.MaxAttempts).
		Build()
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, e *Executor, operation string, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := e.Do(ctx, operation, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}
