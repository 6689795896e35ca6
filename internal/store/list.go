// Package store holds the in-memory milestone and tip collections and keeps
// them durable through a kv.Store backend. Each collection is persisted as
// one JSON array under one key, newest record first.
// Stores never fail outward on storage problems: a missing or corrupt blob
// degrades to seed data, an unreadable backend is served seed data without
// being overwritten, and a failed write leaves the state in memory only.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pkordes/babysteps/backend/internal/domain"
	"github.com/pkordes/babysteps/backend/internal/kv"
	"github.com/pkordes/babysteps/backend/internal/metrics"
)

// readResult classifies what read found under the collection's key.
type readResult int

const (
	readOK      readResult = iota
	readAbsent             // nothing stored under the key
	readCorrupt            // stored bytes are not a JSON array of records
	readFailed             // the backend itself returned an error
)

// syncState tracks how the in-memory collection relates to the backend.
type syncState int

const (
	// syncUnknown: the backend has never been read successfully. The
	// collection holds seed data and writes are withheld so whatever the
	// backend really holds is never overwritten.
	syncUnknown syncState = iota
	// syncClean: memory matches the backend as of the last read or write.
	syncClean
	// syncAhead: the last write failed; memory holds changes the backend lacks.
	syncAhead
)

// list is the generic persistent collection behind Milestones and Tips.
// Insertion order is significant: index 0 is the most recently added record.
//
// Several processes may share one backend (the API server and babystepsctl).
// Every mutation re-reads the blob under mu before applying itself, so a
// change written by another process is merged into rather than overwritten.
type list[T any] struct {
	backend   kv.Store
	key       string
	name      string // metrics label
	idOf      func(T) string
	seed      func(now time.Time) []T
	normalize func(*T)
	logger    *slog.Logger

	mu    sync.RWMutex
	items []T
	state syncState
	blob  []byte // last bytes read from or written to the backend

	// notifyMu is taken before mu is released so subscribers see mutations
	// in the order they were applied.
	notifyMu sync.Mutex
	subsMu   sync.Mutex
	subs     map[int]func([]T)
	nextSub  int
}

func newList[T any](backend kv.Store, key, name string, idOf func(T) string, seed func(time.Time) []T, logger *slog.Logger) *list[T] {
	return &list[T]{
		backend: backend,
		key:     key,
		name:    name,
		idOf:    idOf,
		seed:    seed,
		logger:  logger,
		items:   []T{},
		subs:    make(map[int]func([]T)),
	}
}

// load replaces the collection with the persisted blob. An absent or
// corrupt blob is replaced with seed data, which is persisted immediately.
// When the backend cannot be read at all the seed is served from memory
// only and nothing is written.
func (l *list[T]) load(ctx context.Context, now time.Time) {
	items, raw, res := l.read(ctx)

	l.mu.Lock()
	switch res {
	case readOK:
		l.items = items
		l.blob = raw
		l.state = syncClean
	case readFailed:
		l.logger.WarnContext(ctx, "backend unreadable, serving seed data without persisting it", "key", l.key)
		metrics.Seeded.WithLabelValues(l.name).Inc()
		l.items = l.seed(now)
		l.state = syncUnknown
	default:
		l.logger.InfoContext(ctx, "no usable persisted data, seeding", "key", l.key)
		metrics.Seeded.WithLabelValues(l.name).Inc()
		l.items = l.seed(now)
		l.state = syncClean
		l.persistLocked(ctx)
	}
	l.publishLocked()
}

// read fetches and decodes the persisted collection.
func (l *list[T]) read(ctx context.Context) ([]T, []byte, readResult) {
	data, err := l.backend.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, readAbsent
		}
		l.logger.WarnContext(ctx, "read persisted data failed", "key", l.key, "error", err)
		return nil, nil, readFailed
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		l.logger.WarnContext(ctx, "persisted data is corrupt", "key", l.key, "error", err)
		return nil, nil, readCorrupt
	}
	if items == nil {
		items = []T{}
	}
	if l.normalize != nil {
		for i := range items {
			l.normalize(&items[i])
		}
	}
	return items, data, readOK
}

// refreshLocked pulls in changes other processes wrote since this list last
// touched the backend. Caller must hold mu (write lock).
// It reports whether the collection changed.
func (l *list[T]) refreshLocked(ctx context.Context) bool {
	if l.state == syncAhead {
		// Memory holds writes the backend never received; keep them.
		return false
	}

	items, raw, res := l.read(ctx)
	switch res {
	case readOK:
		l.state = syncClean
		if bytes.Equal(raw, l.blob) {
			return false
		}
		l.items = items
		l.blob = raw
		return true
	case readAbsent, readCorrupt:
		// Nothing worth keeping is stored, so the next write may replace it.
		if l.state == syncUnknown {
			l.state = syncClean
		}
	}
	return false
}

// commitLocked persists the collection unless the backend has never been
// read, in which case the change stays in memory. Caller must hold mu.
func (l *list[T]) commitLocked(ctx context.Context) {
	if l.state == syncUnknown {
		l.logger.WarnContext(ctx, "backend unreadable, keeping change in memory only", "key", l.key)
		metrics.PersistFailures.WithLabelValues(l.name).Inc()
		return
	}
	l.persistLocked(ctx)
}

// sync refreshes the collection from the backend and notifies subscribers
// when another process changed it.
func (l *list[T]) sync(ctx context.Context) bool {
	l.mu.Lock()
	if !l.refreshLocked(ctx) {
		l.mu.Unlock()
		return false
	}
	l.publishLocked()
	return true
}

// persistLocked writes the whole collection to the backend. Failures are
// logged and counted, never returned. Caller must hold mu.
// The write ignores cancellation of ctx: once a mutation has been applied
// in memory it is always offered to the backend.
func (l *list[T]) persistLocked(ctx context.Context) {
	data, err := json.Marshal(l.items)
	if err != nil {
		l.logger.ErrorContext(ctx, "encode collection failed", "key", l.key, "error", err)
		metrics.PersistFailures.WithLabelValues(l.name).Inc()
		l.state = syncAhead
		return
	}
	if err := l.backend.Set(context.WithoutCancel(ctx), l.key, data); err != nil {
		l.logger.WarnContext(ctx, "persist collection failed, keeping in memory", "key", l.key, "error", err)
		metrics.PersistFailures.WithLabelValues(l.name).Inc()
		l.state = syncAhead
		return
	}
	l.blob = data
	l.state = syncClean
}

// publishLocked releases mu and delivers a snapshot to every subscriber.
// Caller must hold mu (write lock); it is released on return.
func (l *list[T]) publishLocked() {
	snap := l.copyLocked()
	metrics.CollectionSize.WithLabelValues(l.name).Set(float64(len(snap)))

	l.notifyMu.Lock()
	l.mu.Unlock()
	defer l.notifyMu.Unlock()

	l.subsMu.Lock()
	fns := make([]func([]T), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (l *list[T]) copyLocked() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// snapshot returns a copy of the collection in store order.
func (l *list[T]) snapshot() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.copyLocked()
}

// filter returns the records matching keep, in store order. Never nil.
func (l *list[T]) filter(keep func(T) bool) []T {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []T{}
	for _, item := range l.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// find returns the record with the given id.
func (l *list[T]) find(id string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.indexLocked(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return l.items[i], true
}

func (l *list[T]) indexLocked(id string) int {
	for i, item := range l.items {
		if l.idOf(item) == id {
			return i
		}
	}
	return -1
}

// prepend runs prepare on rec, inserts it at the front, persists and notifies.
// prepare receives a predicate reporting whether an id is already taken.
func (l *list[T]) prepend(ctx context.Context, rec T, prepare func(rec *T, taken func(string) bool)) T {
	l.mu.Lock()
	l.refreshLocked(ctx)
	prepare(&rec, func(id string) bool { return l.indexLocked(id) >= 0 })

	items := make([]T, 0, len(l.items)+1)
	items = append(items, rec)
	l.items = append(items, l.items...)

	l.commitLocked(ctx)
	l.publishLocked()
	return rec
}

// modify applies fn to the record with the given id, persists and notifies.
// Unknown ids are a no-op: nothing is written and nobody is notified.
func (l *list[T]) modify(ctx context.Context, id string, fn func(*T)) (T, bool) {
	l.mu.Lock()
	changed := l.refreshLocked(ctx)
	i := l.indexLocked(id)
	if i < 0 {
		l.unlockAfterMiss(changed)
		var zero T
		return zero, false
	}

	// Copy-on-write so snapshots handed out earlier never change underneath
	// their holders.
	items := l.copyLocked()
	fn(&items[i])
	l.items = items
	updated := items[i]

	l.commitLocked(ctx)
	l.publishLocked()
	return updated, true
}

// remove deletes the record with the given id. Unknown ids are a no-op.
func (l *list[T]) remove(ctx context.Context, id string) bool {
	l.mu.Lock()
	changed := l.refreshLocked(ctx)
	i := l.indexLocked(id)
	if i < 0 {
		l.unlockAfterMiss(changed)
		return false
	}

	items := make([]T, 0, len(l.items)-1)
	items = append(items, l.items[:i]...)
	l.items = append(items, l.items[i+1:]...)

	l.commitLocked(ctx)
	l.publishLocked()
	return true
}

// unlockAfterMiss releases mu after a lookup for an unknown id. A refresh
// that pulled in outside changes is still published; the miss itself is not
// a mutation. Caller must hold mu.
func (l *list[T]) unlockAfterMiss(refreshed bool) {
	if refreshed {
		l.publishLocked()
		return
	}
	l.mu.Unlock()
}

// reset drops the persisted blob and reloads, which re-seeds the collection.
func (l *list[T]) reset(ctx context.Context, now time.Time) error {
	if err := l.backend.Delete(ctx, l.key); err != nil {
		return err
	}
	l.load(ctx, now)
	return nil
}

// subscribe registers fn to receive a snapshot after every applied mutation.
// fn must not mutate the store. The returned function unregisters fn.
func (l *list[T]) subscribe(fn func([]T)) func() {
	l.subsMu.Lock()
	defer l.subsMu.Unlock()

	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn

	return func() {
		l.subsMu.Lock()
		defer l.subsMu.Unlock()
		delete(l.subs, id)
	}
}

// wait blocks for d, modelling the round-trip of a future remote backend.
// It returns early with ctx.Err() if ctx is cancelled first.
func wait(ctx context.Context, d time.Duration) error {
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
