// AngelaMos | 2026
// loader.go

package listview

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrStale  = errors.New("superseded by a newer load")
	ErrClosed = errors.New("loader closed")
)

// Loader fetches a list and hands results to sink. Starting a load
// cancels the one in flight, and results of a superseded load are dropped.
type Loader[T any] struct {
	fetch func(ctx context.Context) ([]T, error)
	sink  func([]T)

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

func NewLoader[T any](
	fetch func(ctx context.Context) ([]T, error),
	sink func([]T),
) *Loader[T] {
	return &Loader[T]{fetch: fetch, sink: sink}
}

// Into returns a Loader that feeds v.
func Into[T any](v *View[T], fetch func(ctx context.Context) ([]T, error)) *Loader[T] {
	return NewLoader(fetch, v.SetItems)
}

func (l *Loader[T]) Reload(ctx context.Context) ([]T, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrClosed
	}
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	l.seq++
	seq := l.seq
	l.cancel = cancel
	l.mu.Unlock()

	items, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if seq != l.seq || l.closed {
		cancel()
		return nil, ErrStale
	}
	l.cancel = nil
	cancel()

	if err != nil {
		return nil, err
	}
	if l.sink != nil {
		l.sink(items)
	}
	return items, nil
}

// Mutate runs op and then reloads the whole list whether or not op
// succeeded. The op error wins over a reload error.
func (l *Loader[T]) Mutate(ctx context.Context, op func(ctx context.Context) error) error {
	opErr := op(ctx)
	_, loadErr := l.Reload(ctx)
	if opErr != nil {
		return opErr
	}
	if errors.Is(loadErr, ErrStale) {
		return nil
	}
	return loadErr
}

// Close cancels any load in flight and rejects new ones.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
