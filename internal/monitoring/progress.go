package monitoring

import (
	"sync"
	"time"

	"github.com/banshee-data/wispify/internal/timeutil"
)

// Progress reports how far a batch of known size has got, logging each
// time another tenth of the batch completes. It is safe for concurrent use.
type Progress struct {
	label string
	total int
	clock timeutil.Clock
	start time.Time

	mu   sync.Mutex
	done int
	next int // next percentage to report
}

// NewProgress starts tracking a batch of total units.
func NewProgress(label string, total int) *Progress {
	return NewProgressWithClock(label, total, timeutil.RealClock{})
}

// NewProgressWithClock is NewProgress timed by clock.
func NewProgressWithClock(label string, total int, clock timeutil.Clock) *Progress {
	return &Progress{label: label, total: total, clock: clock, start: clock.Now(), next: 10}
}

// Add records n finished units.
func (p *Progress) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done += n
	if p.total <= 0 {
		return
	}
	pct := p.done * 100 / p.total
	if pct < p.next {
		return
	}
	Logf("%s: reached %d%% (%d/%d)", p.label, pct/10*10, p.done, p.total)
	p.next = pct/10*10 + 10
}

// Done reports the number of finished units and logs msg with the elapsed
// time since the batch started.
func (p *Progress) Done(msg string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	Logf("%s: %s (%s)", p.label, msg, p.clock.Since(p.start).Round(time.Millisecond))
	return p.done
}
