package syncs

import (
	"context"
	"testing"
)

func TestSemaphore(t *testing.T) {
	s := NewSemaphore(2)
	s.Acquire()
	s.Acquire()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if s.AcquireContext(ctx) {
		t.Fatal("acquired past capacity")
	}

	s.Release()
	if !s.AcquireContext(context.Background()) {
		t.Fatal("free slot not acquired")
	}
}
