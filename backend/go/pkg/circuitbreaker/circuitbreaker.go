package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the state of a Breaker.
type State int

const (
	// Closed lets every call through.
	Closed State = iota
	// Open rejects calls until the cool-down has passed.
	Open
	// HalfOpen lets calls through to probe whether the backend recovered.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "Half-Open"
	default:
		return "Unknown"
	}
}

// ErrOpen is returned without calling through while the breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

// Settings configures a Breaker. Zero values fall back to the defaults below.
type Settings struct {
	FailureThreshold uint32        // 连续失败多少次后断开
	SuccessThreshold uint32        // 半开状态下连续成功多少次后恢复
	OpenTimeout      time.Duration // 断开后多久进入半开状态
	// Trips reports whether err counts as a backend failure. Errors it
	// rejects, such as invalid input, pass through without affecting state.
	// nil counts every error.
	Trips func(err error) bool
}

const (
	defaultFailureThreshold = 5
	defaultSuccessThreshold = 1
	defaultOpenTimeout      = 10 * time.Second
)

// Breaker stops calling a failing backend for a cool-down period.
// It is safe for concurrent use.
type Breaker struct {
	settings Settings
	now      func() time.Time

	mu        sync.Mutex
	state     State
	failures  uint32
	successes uint32
	openedAt  time.Time
}

// New creates a closed Breaker.
func New(s Settings) *Breaker {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = defaultFailureThreshold
	}
	if s.SuccessThreshold == 0 {
		s.SuccessThreshold = defaultSuccessThreshold
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = defaultOpenTimeout
	}
	return &Breaker{settings: s, now: time.Now}
}

// State returns the current state, moving Open to HalfOpen once the
// cool-down has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

// Do runs fn unless the breaker is open.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	b.mu.Lock()
	b.advance()
	if b.state == Open {
		b.mu.Unlock()
		return ErrOpen
	}
	b.mu.Unlock()

	err := fn(ctx)
	b.record(err)
	return err
}

// advance 在冷却时间结束后将断开状态切换为半开，调用方需持有锁。
func (b *Breaker) advance() {
	if b.state == Open && b.now().Sub(b.openedAt) >= b.settings.OpenTimeout {
		b.state = HalfOpen
		b.successes = 0
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil && (b.settings.Trips == nil || b.settings.Trips(err)) {
		switch b.state {
		case HalfOpen:
			b.trip()
		case Closed:
			b.failures++
			if b.failures >= b.settings.FailureThreshold {
				b.trip()
			}
		}
		return
	}
	if err != nil {
		return
	}

	switch b.state {
	case HalfOpen:
		b.successes++
		if b.successes >= b.settings.SuccessThreshold {
			b.state = Closed
			b.failures = 0
			b.successes = 0
		}
	case Closed:
		b.failures = 0
	}
}

func (b *Breaker) trip() {
	b.state = Open
	b.openedAt = b.now()
	b.failures = 0
	b.successes = 0
}
