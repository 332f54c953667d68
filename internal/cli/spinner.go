package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a one-line status message until stopped or until its
// context ends. The line is blanked either way.
type Spinner struct {
	w       io.Writer
	message string
	cancel  context.CancelFunc
	exited  chan struct{}
	stop    sync.Once
}

// runSpinner starts animating message on w.
func runSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &Spinner{w: w, message: message, cancel: cancel, exited: make(chan struct{})}
	go s.loop(ctx)
	return s
}

// startSpinner starts a spinner on stderr, or returns nil when stderr is
// not a terminal. Stop accepts the nil spinner.
func startSpinner(ctx context.Context, message string) *Spinner {
	if !isTerminal(os.Stderr) {
		return nil
	}
	return runSpinner(ctx, os.Stderr, message)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func (s *Spinner) loop(ctx context.Context) {
	defer close(s.exited)
	defer fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	for frame := 0; ; frame++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			icon := spinnerFrames[frame%len(spinnerFrames)]
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(icon), StyleDim.Render(s.message))
		}
	}
}

// Stop ends the animation and waits for the line to be cleared. It is safe
// to call more than once.
func (s *Spinner) Stop() {
	if s == nil {
		return
	}
	s.stop.Do(func() {
		s.cancel()
		<-s.exited
	})
}
