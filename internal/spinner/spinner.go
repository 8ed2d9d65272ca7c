// Package spinner renders a single-line progress spinner whose message can
// be swapped while it runs, which is how the CLI shows the currently active
// pipeline step.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is an animated terminal spinner. Create one with Start.
type Spinner struct {
	w io.Writer

	mu       sync.Mutex
	message  string
	maxWidth int

	done     chan struct{}
	cleared  chan struct{}
	stopOnce sync.Once
}

// Start displays an animated spinner with the given message on w.
func Start(w io.Writer, message string) *Spinner {
	s := &Spinner{
		w:        w,
		message:  message,
		maxWidth: len(message),
		done:     make(chan struct{}),
		cleared:  make(chan struct{}),
	}
	go s.run()
	return s
}

// SetMessage replaces the spinner message on the next frame.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if len(message) > s.maxWidth {
		s.maxWidth = len(message)
	}
}

// Stop halts the animation and clears the line. Safe to call more than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	<-s.cleared
}

func (s *Spinner) run() {
	i := 0
	for {
		select {
		case <-s.done:
			s.mu.Lock()
			width := s.maxWidth
			s.mu.Unlock()
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", width+2)) //nolint:errcheck
			close(s.cleared)
			return
		case <-time.After(80 * time.Millisecond):
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()
			fmt.Fprintf(s.w, "\r%s %s", frames[i%len(frames)], msg) //nolint:errcheck
			i++
		}
	}
}
