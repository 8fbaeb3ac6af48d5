package timing

import (
	"testing"
	"time"
)

func TestTimerElapsedGrows(t *testing.T) {
	timer := Start()
	time.Sleep(10 * time.Millisecond)

	first := timer.Elapsed()
	if first < 10*time.Millisecond {
		t.Errorf("Expected at least 10ms elapsed, got %v", first)
	}

	time.Sleep(5 * time.Millisecond)
	second := timer.Elapsed()
	if second <= first {
		t.Errorf("Elapsed should grow while running: %v then %v", first, second)
	}
}

func TestTimerStopFreezes(t *testing.T) {
	timer := Start()
	time.Sleep(5 * time.Millisecond)

	frozen := timer.Stop()
	time.Sleep(10 * time.Millisecond)

	if got := timer.Elapsed(); got != frozen {
		t.Errorf("Elapsed after Stop should stay at %v, got %v", frozen, got)
	}
}

func TestTimerStopIsIdempotent(t *testing.T) {
	timer := Start()
	time.Sleep(5 * time.Millisecond)

	first := timer.Stop()
	time.Sleep(10 * time.Millisecond)
	second := timer.Stop()

	if first != second {
		t.Errorf("Second Stop should return the first duration: %v then %v", first, second)
	}
}

func TestMeasure(t *testing.T) {
	elapsed := Measure(func() {
		time.Sleep(10 * time.Millisecond)
	})
	if elapsed < 10*time.Millisecond {
		t.Errorf("Expected at least 10ms, got %v", elapsed)
	}
}
