// Package tail adapts a refreshable stream (one whose Next returns io.EOF
// only because no more data has been written yet, not because the stream
// is truly finished) into one that blocks and retries instead of ending.
package tail

import (
	"errors"
	"io"
	"sync"
	"time"

	"chainwalk/internal/logging"
)

var log = logging.For("tail")

// ErrTimedOut is returned once Timeout has elapsed without a new item
// appearing.
var ErrTimedOut = errors.New("tail: timed out waiting for new data")

// Stream is the minimal interface a tailable source must satisfy.
type Stream[T any] interface {
	Next() (T, error)
}

// Tailable wraps a Stream, retrying on io.EOF at PollInterval until
// either a new item appears, Stop is called, or Timeout elapses.
type Tailable[T any] struct {
	upstream     Stream[T]
	pollInterval time.Duration
	timeout      time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// Option configures a Tailable.
type Option func(*tailConfig)

type tailConfig struct {
	pollInterval time.Duration
	timeout      time.Duration
}

// WithPollInterval sets how long to sleep between retries. Default 1s.
func WithPollInterval(d time.Duration) Option {
	return func(c *tailConfig) { c.pollInterval = d }
}

// WithTimeout bounds total time spent waiting for a new item across
// retries. Zero (the default) means wait forever.
func WithTimeout(d time.Duration) Option {
	return func(c *tailConfig) { c.timeout = d }
}

// New wraps upstream.
func New[T any](upstream Stream[T], opts ...Option) *Tailable[T] {
	cfg := tailConfig{pollInterval: time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Tailable[T]{
		upstream:     upstream,
		pollInterval: cfg.pollInterval,
		timeout:      cfg.timeout,
		stopCh:       make(chan struct{}),
	}
}

// Next blocks, retrying upstream.Next on io.EOF, until a new item
// appears, Stop is called (returns io.EOF), or Timeout elapses (returns
// ErrTimedOut). Any non-EOF error from upstream is returned immediately.
func (t *Tailable[T]) Next() (T, error) {
	start := time.Now()
	for {
		v, err := t.upstream.Next()
		if err == nil {
			return v, nil
		}
		var zero T
		if !errors.Is(err, io.EOF) {
			return zero, err
		}

		select {
		case <-t.stopCh:
			return zero, io.EOF
		default:
		}

		wait := t.pollInterval
		if t.timeout > 0 {
			elapsed := time.Since(start)
			if elapsed >= t.timeout {
				return zero, ErrTimedOut
			}
			if remaining := t.timeout - elapsed; remaining < wait {
				wait = remaining
			}
		}

		log.Debug().Dur("wait", wait).Msg("no new data yet, sleeping before retry")
		select {
		case <-t.stopCh:
			return zero, io.EOF
		case <-time.After(wait):
		}
	}
}

// Stop asks Next to give up and return io.EOF instead of continuing to
// poll. Safe to call more than once, and from a different goroutine than
// the one calling Next.
func (t *Tailable[T]) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
}
