package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryPolicy bounds retries of transient provider failures.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy retries twice, starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      2,
		InitialInterval: time.Second,
		MaxElapsedTime:  time.Minute,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxElapsedTime = p.MaxElapsedTime
	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)
}

// permanent reports errors that a retry cannot fix.
func permanent(err error) bool {
	return errors.Is(err, ErrMissingAPIKey) ||
		errors.Is(err, ErrContentBlocked) ||
		errors.Is(err, ErrEmptyResponse) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func retry[T any](ctx context.Context, policy RetryPolicy, logger *zap.Logger, op func() (T, error)) (T, error) {
	var result T
	err := backoff.RetryNotify(func() error {
		v, err := op()
		if err != nil {
			if permanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = v
		return nil
	}, policy.backOff(ctx), func(err error, wait time.Duration) {
		logger.Warn("provider call failed, retrying", zap.Error(err), zap.Duration("wait", wait))
	})
	return result, err
}

type retryingWriter struct {
	next   StoryWriter
	policy RetryPolicy
	logger *zap.Logger
}

// RetryingWriter wraps w so transient failures are retried with backoff.
func RetryingWriter(w StoryWriter, policy RetryPolicy, logger *zap.Logger) StoryWriter {
	if w == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryingWriter{next: w, policy: policy, logger: logger}
}

func (r *retryingWriter) WriteStory(ctx context.Context, prompt string) (string, error) {
	return retry(ctx, r.policy, r.logger, func() (string, error) {
		return r.next.WriteStory(ctx, prompt)
	})
}

type retryingPainter struct {
	next   ImagePainter
	policy RetryPolicy
	logger *zap.Logger
}

// RetryingPainter wraps p so transient failures are retried with backoff.
func RetryingPainter(p ImagePainter, policy RetryPolicy, logger *zap.Logger) ImagePainter {
	if p == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryingPainter{next: p, policy: policy, logger: logger}
}

func (r *retryingPainter) PaintImage(ctx context.Context, prompt string) ([]byte, error) {
	return retry(ctx, r.policy, r.logger, func() ([]byte, error) {
		return r.next.PaintImage(ctx, prompt)
	})
}
