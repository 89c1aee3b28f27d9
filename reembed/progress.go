package reembed

import (
	"io"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ProgressTracker prints a single self-overwriting progress line for a job
// with a known number of items. Methods may be called from several goroutines.
type ProgressTracker struct {
	mu sync.Mutex

	out   *message.Printer
	w     io.Writer
	unit  string
	total int
	every int

	done    int
	printed int
	began   time.Time
	running bool
}

// NewProgressTracker returns a tracker that prints after every `every` items.
// unit labels the items, e.g. "chunks".
func NewProgressTracker(w io.Writer, unit string, total, every int) *ProgressTracker {
	return &ProgressTracker{
		out:   message.NewPrinter(language.English),
		w:     w,
		unit:  unit,
		total: total,
		every: max(every, 1),
	}
}

// Start zeroes the count and starts the clock. Calls made before Start are ignored.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	p.began = time.Now()
	p.running = true
	p.done, p.printed = 0, 0
	p.mu.Unlock()
}

// Increment records n more completed items.
func (p *ProgressTracker) Increment(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.done = min(p.done+n, p.total)
	if p.done-p.printed >= p.every {
		p.print()
		p.printed = p.done
	}
}

// Finish prints the final line and terminates it.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.done = p.total
	p.print()
	p.out.Fprintln(p.w)
}

// Elapsed is the time since Start, or zero if never started.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return 0
	}
	return time.Since(p.began)
}

// print writes the progress line; p.mu must be held.
func (p *ProgressTracker) print() {
	pct := 0.0
	if p.total > 0 {
		pct = 100 * float64(p.done) / float64(p.total)
	}
	rate := float64(p.done) / time.Since(p.began).Seconds()
	p.out.Fprintf(p.w, "\rProgress: %d/%d %s (%.1f%%) - %.1f %s/s",
		p.done, p.total, p.unit, pct, rate, p.unit)
}
