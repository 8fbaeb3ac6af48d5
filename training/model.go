package training

import (
	"io"

	"github.com/gofitml/gofit/dataset"
)

// Model is the contract the trainer needs from a trainable model. The model
// is assumed to be fully configured (architecture, loss, optimizer) before it
// reaches the trainer; incompatibilities surface inside Fit, not here.
type Model interface {
	// Fit runs the full training loop over the train split, validating
	// against valid when it is non-nil, and returns the per-epoch history.
	Fit(train dataset.Split, valid *dataset.Split, cfg FitConfig) (*History, error)

	// SaveWeights persists the current weights to path. The serialization
	// format is chosen from the path extension.
	SaveWeights(path string) error

	// LoadWeights overwrites the current weights in place from path.
	LoadWeights(path string) error
}

// FitConfig carries the per-run options the trainer hands to Model.Fit.
type FitConfig struct {
	Epochs    int
	BatchSize int
	Callbacks []Callback
	Verbose   bool

	// Shuffle re-randomizes sample order each epoch; Seed makes it
	// reproducible.
	Shuffle bool
	Seed    int64

	// Out receives progress output when Verbose is set. Defaults to
	// os.Stdout when nil.
	Out io.Writer

	// Extra holds caller-supplied options the trainer does not interpret,
	// forwarded verbatim. An escape hatch for model-specific knobs, not a
	// stable contract.
	Extra map[string]interface{}
}

// Stopper is implemented by callbacks that can request an early end to the
// training loop, checked by models after each epoch.
type Stopper interface {
	ShouldStop() bool
}
