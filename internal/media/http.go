package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// statusError is a non-200 response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

// transient reports whether another attempt may succeed.
func (e *statusError) transient() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// fetcher performs GET requests. Network failures, 429 and 5xx responses
// are retried with exponential backoff; other statuses fail at once.
type fetcher struct {
	client     *http.Client
	logger     *zap.Logger
	maxRetries uint64
	interval   time.Duration
}

func newFetcher(logger *zap.Logger) *fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fetcher{
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		maxRetries: 2,
		interval:   time.Second,
	}
}

func (f *fetcher) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.interval
	b.MaxElapsedTime = time.Minute
	return backoff.WithContext(backoff.WithMaxRetries(b, f.maxRetries), ctx)
}

func (f *fetcher) get(ctx context.Context, u string) ([]byte, error) {
	var body []byte
	err := backoff.RetryNotify(func() error {
		b, err := f.getOnce(ctx, u)
		if err != nil {
			var se *statusError
			if ctx.Err() != nil || (errors.As(err, &se) && !se.transient()) {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}, f.backOff(ctx), func(err error, wait time.Duration) {
		f.logger.Warn("media request failed, retrying", zap.Error(err), zap.Duration("wait", wait))
	})
	return body, err
}

func (f *fetcher) getOnce(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
