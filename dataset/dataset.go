package dataset

import (
	"fmt"
	"math/rand"
)

// Split holds one partition of a dataset as paired input and target rows.
// Inputs[i] is the feature vector for sample i, Targets[i] its target vector.
type Split struct {
	Inputs  [][]float32
	Targets [][]float32
}

// Len returns the number of samples in the split.
func (s Split) Len() int {
	return len(s.Inputs)
}

// Validate checks that inputs and targets are paired and non-ragged.
func (s Split) Validate() error {
	if len(s.Inputs) != len(s.Targets) {
		return fmt.Errorf("input/target count mismatch: %d inputs, %d targets", len(s.Inputs), len(s.Targets))
	}
	if len(s.Inputs) == 0 {
		return fmt.Errorf("split is empty")
	}
	inDim := len(s.Inputs[0])
	outDim := len(s.Targets[0])
	for i := range s.Inputs {
		if len(s.Inputs[i]) != inDim {
			return fmt.Errorf("ragged input row %d: expected %d features, got %d", i, inDim, len(s.Inputs[i]))
		}
		if len(s.Targets[i]) != outDim {
			return fmt.Errorf("ragged target row %d: expected %d values, got %d", i, outDim, len(s.Targets[i]))
		}
	}
	return nil
}

// Dataset is a train/test partitioning with an optional validation split.
// Train and Test are required; Valid is nil when no validation data exists.
type Dataset struct {
	Train Split
	Test  Split
	Valid *Split
}

// Validate checks the required splits are present and well formed.
func (d *Dataset) Validate() error {
	if err := d.Train.Validate(); err != nil {
		return fmt.Errorf("train split: %v", err)
	}
	if err := d.Test.Validate(); err != nil {
		return fmt.Errorf("test split: %v", err)
	}
	if d.Valid != nil {
		if err := d.Valid.Validate(); err != nil {
			return fmt.Errorf("valid split: %v", err)
		}
	}
	return nil
}

// SplitRandom partitions s into two splits, holding out the given fraction of
// samples for the second. The seed makes the shuffle reproducible.
func SplitRandom(s Split, holdout float64, seed int64) (Split, Split, error) {
	if holdout <= 0 || holdout >= 1 {
		return Split{}, Split{}, fmt.Errorf("holdout fraction must be in (0, 1), got %f", holdout)
	}
	if err := s.Validate(); err != nil {
		return Split{}, Split{}, err
	}

	n := s.Len()
	perm := rand.New(rand.NewSource(seed)).Perm(n)

	nHold := int(float64(n) * holdout)
	if nHold == 0 {
		nHold = 1
	}
	nKeep := n - nHold

	kept := Split{
		Inputs:  make([][]float32, 0, nKeep),
		Targets: make([][]float32, 0, nKeep),
	}
	held := Split{
		Inputs:  make([][]float32, 0, nHold),
		Targets: make([][]float32, 0, nHold),
	}

	for i, idx := range perm {
		if i < nKeep {
			kept.Inputs = append(kept.Inputs, s.Inputs[idx])
			kept.Targets = append(kept.Targets, s.Targets[idx])
		} else {
			held.Inputs = append(held.Inputs, s.Inputs[idx])
			held.Targets = append(held.Targets, s.Targets[idx])
		}
	}

	return kept, held, nil
}
