package checkpoints

import (
	"math"
	"strings"
)

// MonitorMode determines the improvement direction for a monitored metric
type MonitorMode int

const (
	// ModeAuto infers the direction from the metric name: accuracy-like
	// metrics maximize, everything else minimizes.
	ModeAuto MonitorMode = iota
	ModeMin
	ModeMax
)

func (m MonitorMode) String() string {
	switch m {
	case ModeMin:
		return "min"
	case ModeMax:
		return "max"
	default:
		return "auto"
	}
}

// Monitor tracks the best observed value of a named metric and decides
// whether a new observation is an improvement.
type Monitor struct {
	Metric string
	mode   MonitorMode
	best   float64
	seen   bool
}

// NewMonitor creates a monitor for the named metric.
func NewMonitor(metric string, mode MonitorMode) *Monitor {
	if mode == ModeAuto {
		if strings.Contains(metric, "acc") || strings.Contains(metric, "auc") || strings.Contains(metric, "r2") {
			mode = ModeMax
		} else {
			mode = ModeMin
		}
	}

	m := &Monitor{Metric: metric, mode: mode}
	if mode == ModeMax {
		m.best = math.Inf(-1)
	} else {
		m.best = math.Inf(1)
	}
	return m
}

// Best returns the best value observed so far and whether any value has been
// observed at all.
func (m *Monitor) Best() (float64, bool) {
	return m.best, m.seen
}

// Improved records the observation and reports whether it beats the best
// value seen so far.
func (m *Monitor) Improved(value float64) bool {
	better := value < m.best
	if m.mode == ModeMax {
		better = value > m.best
	}
	if better {
		m.best = value
		m.seen = true
	}
	return better
}
