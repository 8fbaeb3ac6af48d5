package training

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofitml/gofit/checkpoints"
	"github.com/gofitml/gofit/dataset"
)

// TrainerConfig holds configuration for a training run. The zero value is not
// usable; start from DefaultTrainerConfig and override.
type TrainerConfig struct {
	Epochs    int
	BatchSize int

	// Callbacks are invoked by the model's Fit loop. The trainer copies
	// this slice for each run before appending its own hooks, so the
	// caller's slice is never mutated.
	Callbacks []Callback

	// CheckpointName enables best-weights checkpointing when non-empty.
	// The snapshot is written to <CheckpointDir>/<CheckpointName>.<ext>
	// and the best weights are reloaded into the model after training.
	CheckpointName    string
	CheckpointMonitor string
	CheckpointMode    checkpoints.MonitorMode
	CheckpointDir     string
	CheckpointFormat  checkpoints.CheckpointFormat

	Verbose bool

	// Shuffle re-randomizes sample order each epoch; Seed makes runs
	// reproducible.
	Shuffle bool
	Seed    int64

	// Extra is forwarded verbatim to Model.Fit.
	Extra map[string]interface{}

	// Out receives progress notices; defaults to os.Stdout.
	Out io.Writer

	// Warnf receives non-fatal diagnostics; defaults to stderr.
	Warnf func(format string, args ...interface{})
}

// DefaultTrainerConfig returns the standard training configuration.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		Epochs:            100,
		BatchSize:         128,
		CheckpointMonitor: "val_loss",
		CheckpointDir:     "checkpoints",
		CheckpointFormat:  checkpoints.FormatJSON,
		Verbose:           true,
		Shuffle:           true,
	}
}

// Trainer orchestrates a single training run: it wires up checkpointing,
// delegates the epoch loop to the model, and reloads the best checkpointed
// weights afterward. It holds no state between runs.
type Trainer struct {
	config TrainerConfig
}

// NewTrainer creates a trainer with the given configuration.
func NewTrainer(config TrainerConfig) *Trainer {
	return &Trainer{config: config}
}

// CheckpointPath returns the file path checkpoints are written to, or the
// empty string when checkpointing is disabled.
func (t *Trainer) CheckpointPath() string {
	if t.config.CheckpointName == "" {
		return ""
	}
	name := fmt.Sprintf("%s.%s", t.config.CheckpointName, t.config.CheckpointFormat.Extension())
	return filepath.Join(t.config.CheckpointDir, name)
}

// Train runs one training pass of m over data and returns the model's fit
// history unchanged.
//
// When checkpointing is enabled the checkpoint directory is created first
// (idempotent), a best-only weights hook watching the configured monitor is
// appended to a fresh copy of the callback list, and after training the model
// weights are reloaded from the checkpoint file so the returned model holds
// the best monitored state rather than the last epoch's. If checkpointing was
// requested but no file ever materialized, a single non-fatal warning is
// emitted; every other failure propagates to the caller unmodified.
func (t *Trainer) Train(m Model, data *dataset.Dataset) (*History, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	checkpointPath := t.CheckpointPath()
	if checkpointPath != "" {
		if err := os.MkdirAll(t.config.CheckpointDir, 0755); err != nil {
			return nil, err
		}
	}

	callbacks := make([]Callback, 0, len(t.config.Callbacks)+1)
	callbacks = append(callbacks, t.config.Callbacks...)
	if checkpointPath != "" {
		callbacks = append(callbacks,
			NewModelCheckpoint(checkpointPath, t.config.CheckpointMonitor, t.config.CheckpointMode))
	}

	out := t.config.Out
	if out == nil {
		out = os.Stdout
	}

	if t.config.Verbose {
		fmt.Fprintln(out, "Training...")
	}

	history, err := m.Fit(data.Train, data.Valid, FitConfig{
		Epochs:    t.config.Epochs,
		BatchSize: t.config.BatchSize,
		Callbacks: callbacks,
		Verbose:   t.config.Verbose,
		Shuffle:   t.config.Shuffle,
		Seed:      t.config.Seed,
		Out:       out,
		Extra:     t.config.Extra,
	})
	if err != nil {
		return nil, err
	}

	if t.config.Verbose {
		fmt.Fprintln(out, "Done.")
	}

	if checkpointPath != "" {
		if _, statErr := os.Stat(checkpointPath); statErr == nil {
			if err := m.LoadWeights(checkpointPath); err != nil {
				return nil, err
			}
		} else {
			t.warnf("checkpoint %q was requested, but no snapshot was saved by the monitor; "+
				"make sure a validation split is supplied and the monitored metric %q is emitted",
				t.config.CheckpointName, t.config.CheckpointMonitor)
		}
	}

	return history, nil
}

func (t *Trainer) warnf(format string, args ...interface{}) {
	if t.config.Warnf != nil {
		t.config.Warnf(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// Train is a convenience wrapper running one training pass with the default
// configuration plus the given overrides applied.
func Train(m Model, data *dataset.Dataset, override func(*TrainerConfig)) (*History, error) {
	config := DefaultTrainerConfig()
	if override != nil {
		override(&config)
	}
	return NewTrainer(config).Train(m, data)
}
