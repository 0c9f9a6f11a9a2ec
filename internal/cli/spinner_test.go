package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDraws(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "Shutting down...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !bytes.Contains([]byte(out.String()), []byte("Shutting down...")) {
		t.Errorf("spinner output = %q", out.String())
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	s := newSpinnerTo(ctx, &out, "waiting")
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after context cancellation")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "idempotent")
	s.Start()
	s.Stop()
	s.Stop()
	s.StopWithSuccess("done")
}
