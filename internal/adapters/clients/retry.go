package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jsamuelsen/quotesync/internal/platform/config"
)

// idempotent lists the methods a retry cannot turn into a duplicate write.
var idempotent = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// attemptsFor returns how many times req may be sent.
func (c *Client) attemptsFor(req *http.Request) int {
	if !idempotent[req.Method] {
		return 1
	}

	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return 1
	}

	return c.cfg.Retry.MaxAttempts
}

// send runs the attempt loop. It returns the response to hand back, the
// number of attempts made, and the error that ended the loop.
func (c *Client) send(ctx context.Context, req *http.Request, logger *slog.Logger) (*http.Response, int, error) {
	limit := c.attemptsFor(req)

	for attempt := 1; ; attempt++ {
		resp, err := c.http.Do(req.WithContext(ctx))
		again, hint := retryable(resp, err)

		if !again {
			return resp, attempt, err
		}

		if attempt == limit {
			return finalAttempt(resp, err, limit)
		}

		discard(resp)

		wait := c.backoff(attempt)
		if hint > 0 {
			wait = c.capped(hint)
		}

		logger.DebugContext(ctx, "retrying request",
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.Any("cause", cmpErr(resp, err)),
		)

		if err := sleep(ctx, wait); err != nil {
			return nil, attempt, err
		}

		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, attempt, fmt.Errorf("rewinding request body: %w", err)
			}

			req.Body = body
		}

		if c.cfg.AuthFunc != nil {
			c.cfg.AuthFunc(req)
		}
	}
}

// finalAttempt shapes the outcome of a last attempt that would otherwise
// have been retried. A 429 is handed back so its Retry-After can be read.
func finalAttempt(resp *http.Response, err error, attempts int) (*http.Response, int, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return resp, attempts, nil
	}

	if err == nil {
		discard(resp)
		err = &StatusError{StatusCode: resp.StatusCode}
	}

	if attempts > 1 {
		err = fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
	}

	return nil, attempts, err
}

// retryable reports whether an attempt's outcome is worth another try, and
// how long the remote asked to wait, if it did.
func retryable(resp *http.Response, err error) (bool, time.Duration) {
	if err != nil {
		return isRetryableError(err), 0
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusServiceUnavailable:
		return true, retryAfter(resp.Header.Get("Retry-After"))
	case resp.StatusCode >= http.StatusInternalServerError:
		return true, 0
	default:
		return false, 0
	}
}

// isRetryableError accepts timeouts and connection-level failures. A
// cancelled or expired context is final.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}

// retryAfter reads a Retry-After value given in seconds or as an HTTP date.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}

	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(max(secs, 0)) * time.Second
	}

	if at, err := http.ParseTime(v); err == nil {
		return max(time.Until(at), 0)
	}

	return 0
}

// backoff returns the wait before retry n (1-based): InitialInterval grown
// by Multiplier per retry, capped at MaxInterval, then spread by the jitter
// factor in both directions.
func (c *Client) backoff(n int) time.Duration {
	r := c.cfg.Retry

	d := c.capped(time.Duration(float64(r.InitialInterval) * math.Pow(r.Multiplier, float64(n-1))))

	factor := r.JitterFactor
	if factor <= 0 {
		factor = config.DefaultClientRetryJitterFactor
	}

	return time.Duration(float64(d) * (1 + factor*(2*c.jitter()-1)))
}

// capped limits d to MaxInterval when one is configured.
func (c *Client) capped(d time.Duration) time.Duration {
	if limit := c.cfg.Retry.MaxInterval; limit > 0 {
		return min(d, limit)
	}

	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// discard drains and closes a response that will not be returned, so the
// connection can be reused.
func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}

// cmpErr describes a failed attempt for logging.
func cmpErr(resp *http.Response, err error) any {
	if err != nil {
		return err
	}

	return resp.Status
}
