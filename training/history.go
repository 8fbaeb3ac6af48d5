package training

// History is the record of per-epoch metric values produced by a training
// run. The trainer returns it to the caller unchanged.
type History struct {
	// Epochs is the number of epochs actually run, which may be fewer than
	// requested when a callback stops training early.
	Epochs int

	// Metrics maps a metric name ("loss", "val_loss", ...) to its
	// per-epoch series. All series have length Epochs; a metric that was
	// never emitted has no entry.
	Metrics map[string][]float64
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{
		Metrics: make(map[string][]float64),
	}
}

// Record appends one epoch's metric values to the history.
func (h *History) Record(logs map[string]float64) {
	for name, value := range logs {
		h.Metrics[name] = append(h.Metrics[name], value)
	}
	h.Epochs++
}

// Last returns the most recent value of the named metric.
func (h *History) Last(name string) (float64, bool) {
	series, ok := h.Metrics[name]
	if !ok || len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}

// Series returns the full per-epoch series for the named metric, or nil if
// the metric was never emitted.
func (h *History) Series(name string) []float64 {
	return h.Metrics[name]
}
