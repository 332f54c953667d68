package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
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
	s := runSpinner(context.Background(), &out, "Analyzing app...")
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Analyzing app...") {
		t.Errorf("spinner output %q does not contain the message", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("spinner should clear its line on Stop, got %q", got)
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	s := runSpinner(ctx, &out, "Testing...")
	cancel()

	select {
	case <-s.exited:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after its context was cancelled")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := runSpinner(context.Background(), &syncBuffer{}, "Testing...")
	s.Stop()
	s.Stop()

	var nilSpinner *Spinner
	nilSpinner.Stop()
}

func TestStartSpinnerWithoutTerminal(t *testing.T) {
	// go test does not attach stderr to a terminal.
	if isTerminal(os.Stderr) {
		t.Skip("stderr is a terminal")
	}
	if s := startSpinner(context.Background(), "x"); s != nil {
		s.Stop()
		t.Error("startSpinner should return nil off a terminal")
	}
	if isTerminal(&syncBuffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
