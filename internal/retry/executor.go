package retry

import (
	"context"
	"time"

	"github.com/vvka-141/whetl/pkg/whetl"
)

// Executor repeats an operation while it fails with transient errors.
// It is safe for concurrent use; WithOnRetry returns a copy.
type Executor struct {
	classifier whetl.ErrorClassifier
	strategy   whetl.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates an executor. Panics if classifier or strategy is nil.
func NewExecutor(classifier whetl.ErrorClassifier, strategy whetl.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// WithOnRetry returns a copy of e that calls callback before each wait.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation once, then retries up to MaxAttempts times while
// the error is transient. The last error is returned unchanged.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	err := operation(ctx)
	for attempt := 0; err != nil && attempt < e.strategy.MaxAttempts(); attempt++ {
		if !e.classifier.IsTransient(err) {
			return err
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = operation(ctx)
	}
	return err
}
