package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

const memoKey = "memo"

// Memo is a single-slot cache filled at most once.
//
// The first Get runs the loader; concurrent first callers wait for that run
// and all observe the same pointer or the same error. A failed load is not
// stored, so a later Get runs the loader again. A successful value is kept
// for the lifetime of the Memo.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: the loader receives the values of the caller that started the
//   load but not its cancellation, so one caller giving up cannot fail the
//   others sharing the flight.
// - Panics: a panicking loader is reported as ErrLoaderPanic to every waiter.
type Memo[T any] struct {
	load  func(context.Context) (*T, error)
	value atomic.Pointer[T]
	group singleflight.Group
	loads atomic.Int64
}

// NewMemo creates a Memo backed by load.
func NewMemo[T any](load func(context.Context) (*T, error)) *Memo[T] {
	return &Memo[T]{load: load}
}

// Get returns the cached value, loading it on first use.
func (m *Memo[T]) Get(ctx context.Context) (*T, error) {
	if v := m.value.Load(); v != nil {
		return v, nil
	}
	if m.load == nil {
		return nil, ErrNilLoader
	}

	ch := m.group.DoChan(memoKey, func() (any, error) {
		// A previous flight may have stored the value after our fast-path check.
		if v := m.value.Load(); v != nil {
			return v, nil
		}
		m.loads.Add(1)
		v, err := m.run(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, ErrNilValue
		}
		m.value.Store(v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*T), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Memo[T]) run(ctx context.Context) (v *T, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("%w: %v", ErrLoaderPanic, r)
		}
	}()
	return m.load(ctx)
}

// Peek returns the cached value without loading it.
func (m *Memo[T]) Peek() (*T, bool) {
	v := m.value.Load()
	return v, v != nil
}

// Loaded reports whether a value is cached.
func (m *Memo[T]) Loaded() bool {
	return m.value.Load() != nil
}

// Loads returns how many times the loader has been invoked.
func (m *Memo[T]) Loads() int64 {
	return m.loads.Load()
}
