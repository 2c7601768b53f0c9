package applier

import (
	"math"
	"testing"
)

func TestProgressTracker_NilSink(t *testing.T) {
	pt := newProgressTracker(nil, "title")
	pt.begin()
	pt.update("x", 0.5)
	pt.end()

	if !pt.ended() {
		t.Error("tracker should report ended")
	}
	if pt.updates.Load() != 1 {
		t.Errorf("expected 1 update, got %d", pt.updates.Load())
	}
}

func TestProgressTracker_Monotonic(t *testing.T) {
	sink := &recordingSink{}
	pt := newProgressTracker(sink, "title")
	pt.begin()

	for _, f := range []float64{0.2, 0.1, -1, math.NaN(), 0.6, 3} {
		pt.update("step", f)
	}

	got := sink.fractions()
	want := []float64{0.2, 0.2, 0.2, 0.2, 0.6, 1}
	if len(got) != len(want) {
		t.Fatalf("fractions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fraction[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestProgressTracker_EndOnce(t *testing.T) {
	sink := &recordingSink{}
	pt := newProgressTracker(sink, "title")
	pt.begin()
	pt.begin()
	pt.end()
	pt.end()
	pt.update("late", 1)

	if sink.count("begin") != 1 {
		t.Errorf("expected one begin, got %d", sink.count("begin"))
	}
	if sink.count("end") != 1 {
		t.Errorf("expected one end, got %d", sink.count("end"))
	}
	if sink.count("update") != 0 {
		t.Error("updates after end must be dropped")
	}
}

func TestProgressTracker_EndWithoutBegin(t *testing.T) {
	sink := &recordingSink{}
	pt := newProgressTracker(sink, "title")
	pt.end()

	if len(sink.events) != 0 {
		t.Errorf("end without begin must be a no-op, got %v", sink.events)
	}
}

func TestFraction(t *testing.T) {
	if f := fraction(0, 0); f != 0 {
		t.Errorf("fraction(0,0) = %v", f)
	}
	if f := fraction(1, 4); f != 0.25 {
		t.Errorf("fraction(1,4) = %v", f)
	}
}
