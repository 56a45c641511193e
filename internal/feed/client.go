package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// State tracks one client connection's lifecycle.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client consumes a feed endpoint as a long-lived event stream, reconnecting
// with growing delay until MaxAttempts consecutive failures.
type Client struct {
	URL         string
	HTTPClient  *http.Client
	BaseDelay   time.Duration
	MaxAttempts int
	Handler     func(Event)

	state atomic.Int32
}

func (c *Client) State() State { return State(c.state.Load()) }

func (c *Client) setState(s State) { c.state.Store(int32(s)) }

// reconnectPolicy is deterministic (no jitter) so consecutive delays grow
// strictly until the interval cap.
func reconnectPolicy(base time.Duration) *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = base
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// Run connects and dispatches events to Handler until ctx is cancelled or
// the reconnect budget is exhausted, at which point the connection is
// Closed and the terminal error is returned. It is not restarted further.
func (c *Client) Run(ctx context.Context) error {
	httpc := c.HTTPClient
	if httpc == nil {
		httpc = http.DefaultClient
	}
	base := c.BaseDelay
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	policy := reconnectPolicy(base)
	attempts := 0

	for {
		c.setState(StateConnecting)
		opened, err := c.stream(ctx, httpc)
		if err == nil || ctx.Err() != nil {
			c.setState(StateClosed)
			return ctx.Err()
		}
		if opened {
			// a healthy connection resets the reconnect budget
			attempts = 0
			policy.Reset()
		}

		attempts++
		if attempts >= maxAttempts {
			c.setState(StateClosed)
			return fmt.Errorf("feed connection closed after %d failed attempts: %w", attempts, err)
		}

		c.setState(StateReconnecting)
		select {
		case <-ctx.Done():
			c.setState(StateClosed)
			return ctx.Err()
		case <-time.After(policy.NextBackOff()):
		}
	}
}

// stream opens one connection and reads events until it breaks.
// A nil error means the server ended the stream cleanly.
func (c *Client) stream(ctx context.Context, httpc *http.Client) (opened bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := httpc.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("feed endpoint returned status %d", resp.StatusCode)
	}

	c.setState(StateOpen)

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			continue
		}
		if c.Handler != nil {
			c.Handler(ev)
		}
	}
	return true, sc.Err()
}
