package runlog

import (
	"github.com/gofitml/gofit/training"
)

// Recorder is a training callback that streams per-epoch metrics into a run
// log store. Create it with NewRecorder before training and call Finish once
// training returns.
type Recorder struct {
	training.BaseCallback

	store  *Store
	runID  string
	epochs int
}

// NewRecorder opens a new run in the store and returns a callback recording
// into it.
func NewRecorder(store *Store, model, configJSON string) (*Recorder, error) {
	runID, err := store.StartRun(model, configJSON)
	if err != nil {
		return nil, err
	}
	return &Recorder{store: store, runID: runID}, nil
}

// RunID returns the ID of the run being recorded.
func (r *Recorder) RunID() string {
	return r.runID
}

func (r *Recorder) OnEpochEnd(epoch int, logs map[string]float64, m training.Model) error {
	r.epochs = epoch + 1
	return r.store.RecordEpoch(r.runID, epoch, logs)
}

// Finish marks the recorded run complete.
func (r *Recorder) Finish() error {
	return r.store.FinishRun(r.runID, r.epochs)
}
