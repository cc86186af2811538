package cache

import (
	"context"
	"errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNilLoader", ErrNilLoader},
		{"ErrNilValue", ErrNilValue},
		{"ErrLoaderPanic", ErrLoaderPanic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatalf("%s is nil", tt.name)
			}
			if tt.err.Error() == "" {
				t.Errorf("%s has empty message", tt.name)
			}
		})
	}
}

func TestGetKeepsLoaderErrorChain(t *testing.T) {
	cause := errors.New("customizer failed")
	m := NewMemo(func(ctx context.Context) (*settings, error) {
		return nil, errors.Join(context.DeadlineExceeded, cause)
	})

	_, err := m.Get(context.Background())
	if !errors.Is(err, cause) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Get() error = %v, want both causes", err)
	}
}
