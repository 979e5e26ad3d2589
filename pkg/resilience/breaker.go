package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrBreakerOpen is returned while calls are being short-circuited.
var ErrBreakerOpen = errors.New("breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type BreakerConfig struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	// OnStateChange, if set, is called with the breaker lock held.
	OnStateChange func(from, to State)
}

// Breaker stops calling a failing dependency after FailureThreshold
// consecutive failures. After ResetTimeout one probe call is let through; its
// outcome closes or re-opens the breaker.
type Breaker struct {
	name     string
	cfg      BreakerConfig
	now      func() time.Time
	logger   *slog.Logger
	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	return &Breaker{
		name:   name,
		cfg:    cfg,
		now:    time.Now,
		logger: slog.Default().With("component", "breaker", "name", name),
	}
}

// Do runs fn unless the breaker is open. Context cancellation of the caller
// is not counted as a failure of the dependency.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err != nil && ctx.Err() == nil)
	return err
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateOpen:
		wait := b.cfg.ResetTimeout - b.now().Sub(b.openedAt)
		if wait > 0 {
			return fmt.Errorf("%w: %s (retry after %v)", ErrBreakerOpen, b.name, wait)
		}
		b.transition(StateHalfOpen)
		b.probing = true
	case StateHalfOpen:
		if b.probing {
			return fmt.Errorf("%w: %s (probe in flight)", ErrBreakerOpen, b.name)
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateHalfOpen {
		b.probing = false
		if failed {
			b.openedAt = b.now()
			b.transition(StateOpen)
			return
		}
		b.failures = 0
		b.transition(StateClosed)
		return
	}
	if !failed {
		b.failures = 0
		return
	}
	b.failures++
	if b.state == StateClosed && b.failures >= b.cfg.FailureThreshold {
		b.openedAt = b.now()
		b.transition(StateOpen)
	}
}

func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.logger.Info("breaker state changed", "from", from.String(), "to", to.String(), "failures", b.failures)
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}
