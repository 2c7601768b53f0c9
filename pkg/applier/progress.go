package applier

import (
	"math"
	"sync/atomic"
)

// progressTracker guards a ProgressSink: fractions are clamped to [0, 1]
// and never move backwards, and End reaches the sink at most once.
type progressTracker struct {
	sink    ProgressSink
	title   string
	last    float64
	isBegun atomic.Int32 // 1 once Begin was forwarded
	isEnded atomic.Int32 // 1 once End was forwarded
	updates atomic.Int64 // forwarded Update calls
}

// newProgressTracker creates a tracker for sink; a nil sink is allowed.
func newProgressTracker(sink ProgressSink, title string) *progressTracker {
	return &progressTracker{
		sink:  sink,
		title: title,
	}
}

// begin starts the sink once.
func (pt *progressTracker) begin() {
	if !pt.isBegun.CompareAndSwap(0, 1) {
		return
	}
	if pt.sink != nil {
		pt.sink.Begin(pt.title)
	}
}

// update forwards a clamped, non-decreasing fraction.
func (pt *progressTracker) update(message string, fraction float64) {
	if pt.isEnded.Load() == 1 {
		return
	}

	switch {
	case math.IsNaN(fraction):
		fraction = pt.last
	case fraction < pt.last:
		fraction = pt.last
	case fraction > 1:
		fraction = 1
	}
	pt.last = fraction

	pt.updates.Add(1)
	if pt.sink != nil {
		pt.sink.Update(pt.title, message, fraction)
	}
}

// end clears the sink; later calls are no-ops.
func (pt *progressTracker) end() {
	if pt.isBegun.Load() == 0 {
		return
	}
	if !pt.isEnded.CompareAndSwap(0, 1) {
		return
	}
	log.Debugw("progress ended", "title", pt.title, "updates", pt.updates.Load())
	if pt.sink != nil {
		pt.sink.End()
	}
}

// ended reports whether End has been forwarded.
func (pt *progressTracker) ended() bool {
	return pt.isEnded.Load() == 1
}

// fraction returns index/total, or 0 for an empty run.
func fraction(index, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(index) / float64(total)
}
