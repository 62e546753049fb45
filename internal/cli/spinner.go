package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a one-line status on w, usually stderr, until it is
// stopped or its context ends. The line is cleared on exit.
type spinner struct {
	w    io.Writer
	msg  atomic.Pointer[string]
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// startSpinner starts animating msg on w.
func startSpinner(ctx context.Context, w io.Writer, msg string) *spinner {
	s := &spinner{w: w, quit: make(chan struct{}), done: make(chan struct{})}
	s.msg.Store(&msg)
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	t := time.NewTicker(spinnerInterval)
	defer t.Stop()

	width := 0
	for i := 0; ; i++ {
		line := styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]) + " " + StyleDim.Render(*s.msg.Load())
		width = max(width, lipgloss.Width(line))
		fmt.Fprintf(s.w, "\r%s", line)

		select {
		case <-ctx.Done():
		case <-s.quit:
		case <-t.C:
			continue
		}
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", width))
		return
	}
}

// set replaces the status text.
func (s *spinner) set(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.msg.Store(&msg)
}

// stop ends the animation and waits for the line to be cleared. It is safe
// to call more than once.
func (s *spinner) stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}
