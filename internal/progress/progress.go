// Package progress draws a one-line hashing progress bar for the common files
// of a comparison.
package progress

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"
)

const (
	barWidth = 40
	// redraw at most this often, except for the final frame
	throttle = 100 * time.Millisecond
)

// Bar implements compare.Progress. It is safe for concurrent use by hash
// workers.
type Bar struct {
	w   io.Writer
	now func() time.Time

	mu       sync.Mutex
	total    int
	done     int
	dir      string
	lastDraw time.Time
}

func New(w io.Writer) *Bar {
	return &Bar{w: w, now: time.Now}
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Start sets the number of files to hash and draws the empty bar.
func (b *Bar) Start(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total = total
	b.done = 0
	b.draw()
}

// FileDone records one hashed file. The label shows the directory of the
// most recently finished file.
func (b *Bar) FileDone(p string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.done++
	b.dir = path.Dir(p)
	if b.done >= b.total || b.now().Sub(b.lastDraw) >= throttle {
		b.draw()
	}
}

// Done returns the number of files hashed so far.
func (b *Bar) Done() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

// Finish draws the last frame and ends the line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.total == 0 {
		return
	}
	b.draw()
	fmt.Fprintln(b.w)
}

// draw must be called with mu held.
func (b *Bar) draw() {
	if b.total == 0 {
		return
	}
	b.lastDraw = b.now()

	filled := barWidth * min(b.done, b.total) / b.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	label := ""
	if b.dir != "" {
		label = " | " + b.dir
	}

	fmt.Fprintf(b.w, "\r\033[K[%s] %3d%% (%d/%d)%s",
		bar, 100*b.done/b.total, b.done, b.total, label)
}
