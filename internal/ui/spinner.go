package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// Spinner animates a message on w while a request is in flight. On
// anything but a terminal it does nothing.
type Spinner struct {
	w       io.Writer
	message string
	active  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{w: w, message: message, done: make(chan struct{})}
}

// Start begins the animation.
func (s *Spinner) Start() {
	if !isTerminal(s.w) {
		return
	}
	s.active = true
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.done:
				fmt.Fprint(s.w, "\r\033[K")
				return
			case <-ticker.C:
				fmt.Fprintf(s.w, "\r%s %s", Bold.Render(spinnerFrames[i%len(spinnerFrames)]), s.message)
			}
		}
	}()
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	if !s.active {
		return
	}
	s.active = false
	close(s.done)
	s.wg.Wait()
}

// Progress shows "message (n/total)" on w for counted work.
type Progress struct {
	w       io.Writer
	message string
	total   int
	current int
	mu      sync.Mutex
}

// NewProgress creates a progress indicator writing to w.
func NewProgress(w io.Writer, message string, total int) *Progress {
	return &Progress{w: w, message: message, total: total}
}

// Increment advances the count by one.
func (p *Progress) Increment() {
	p.mu.Lock()
	p.current++
	current := p.current
	p.mu.Unlock()
	if isTerminal(p.w) {
		fmt.Fprintf(p.w, "\r%s %s", p.message, Muted.Render(fmt.Sprintf("(%d/%d)", current, p.total)))
	}
}

// Done clears the progress line.
func (p *Progress) Done() {
	if isTerminal(p.w) {
		fmt.Fprint(p.w, "\r\033[K")
	}
}
