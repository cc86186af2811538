package cache

import (
	"context"
	"errors"
	"testing"
)

func TestMemoContract_CancelledContextReturnsPromptly(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	m := NewMemo(func(ctx context.Context) (*settings, error) {
		<-block
		return &settings{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Get(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Get() error = %v, want context.Canceled", err)
	}
}

func TestMemoContract_LoaderSeesCallerValues(t *testing.T) {
	type key struct{}
	var seen any
	m := NewMemo(func(ctx context.Context) (*settings, error) {
		seen = ctx.Value(key{})
		if ctx.Done() != nil {
			t.Error("loader context can be cancelled by a caller")
		}
		return &settings{}, nil
	})

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "trace"))
	defer cancel()
	if _, err := m.Get(ctx); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if seen != "trace" {
		t.Errorf("loader saw value %v, want trace", seen)
	}
}

func TestMemoContract_CachedValueIgnoresContext(t *testing.T) {
	m := NewMemo(func(ctx context.Context) (*settings, error) { return &settings{name: "plan"}, nil })
	want, err := m.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := m.Get(ctx)
	if err != nil || got != want {
		t.Fatalf("cached Get() = %v, %v", got, err)
	}
}
