package store

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Latency is the artificial delay each mutation waits before it is applied.
// It models the round-trip of a future remote backend and has no effect on
// the outcome of an operation.
type Latency struct {
	Add    time.Duration
	Update time.Duration
	Remove time.Duration
	Like   time.Duration
}

// DefaultLatency is the delay set used when latency simulation is enabled.
var DefaultLatency = Latency{
	Add:    500 * time.Millisecond,
	Update: 300 * time.Millisecond,
	Remove: 300 * time.Millisecond,
	Like:   200 * time.Millisecond,
}

type options struct {
	latency Latency
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
}

// Option configures a store at construction.
type Option func(*options)

// WithLatency sets the simulated mutation delays. The zero Latency (the
// default) applies mutations immediately.
func WithLatency(l Latency) Option {
	return func(o *options) { o.latency = l }
}

// WithClock overrides time.Now, e.g. for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides how record ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// WithLogger sets the logger used for storage warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{
		now:    func() time.Time { return time.Now().UTC() },
		newID:  newTimeOrderedID,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newTimeOrderedID returns a UUIDv7: unique, and sortable by creation time.
func newTimeOrderedID() string {
	return uuid.Must(uuid.NewV7()).String()
}
