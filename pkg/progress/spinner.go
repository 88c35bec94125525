// pkg/progress/spinner.go
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var frames = []string{"|", "/", "-", "\\"}

// Spinner renders a terminal spinner on its own goroutine while a
// long-running stage executes. It only writes to the terminal and never
// affects the computation it decorates.
type Spinner struct {
	w        io.Writer
	message  string
	interval time.Duration

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewSpinner creates a spinner writing to w. The spinner is idle until
// Start is called.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		interval: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}
}

// Start begins animating in the background.
func (s *Spinner) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		frame := 0
		fmt.Fprintf(s.w, "\r%s %s", frames[frame], s.message)
		for {
			select {
			case <-s.done:
				// Clear the spinner line before handing the terminal back.
				fmt.Fprintf(s.w, "\r%*s\r", len(s.message)+2, "")
				return
			case <-ticker.C:
				frame = (frame + 1) % len(frames)
				fmt.Fprintf(s.w, "\r%s %s", frames[frame], s.message)
			}
		}
	}()
}

// Stop halts the animation and waits for the line to be cleared. Safe to
// call more than once, including from deferred cleanup paths.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}
