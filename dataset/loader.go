package dataset

import (
	"math/rand"
)

// Batch is a contiguous slice of samples drawn from a split.
type Batch struct {
	Inputs  [][]float32
	Targets [][]float32
}

// Len returns the number of samples in the batch.
func (b *Batch) Len() int {
	return len(b.Inputs)
}

// Loader provides batching and per-epoch shuffling over a split.
type Loader struct {
	split     Split
	batchSize int
	shuffle   bool
	rng       *rand.Rand
	indices   []int
	position  int
}

// NewLoader creates a loader over the given split. When shuffle is true the
// sample order is re-randomized on every Reset, seeded for reproducibility.
func NewLoader(split Split, batchSize int, shuffle bool, seed int64) *Loader {
	if batchSize <= 0 {
		batchSize = 1
	}

	indices := make([]int, split.Len())
	for i := range indices {
		indices[i] = i
	}

	return &Loader{
		split:     split,
		batchSize: batchSize,
		shuffle:   shuffle,
		rng:       rand.New(rand.NewSource(seed)),
		indices:   indices,
	}
}

// Len returns the number of batches in an epoch.
func (l *Loader) Len() int {
	return (l.split.Len() + l.batchSize - 1) / l.batchSize
}

// Reset rewinds the loader for a new epoch, reshuffling if configured.
func (l *Loader) Reset() {
	l.position = 0

	if l.shuffle {
		for i := len(l.indices) - 1; i > 0; i-- {
			j := l.rng.Intn(i + 1)
			l.indices[i], l.indices[j] = l.indices[j], l.indices[i]
		}
	}
}

// HasNext reports whether more batches remain in the current epoch.
func (l *Loader) HasNext() bool {
	return l.position < len(l.indices)
}

// Next returns the next batch, or nil once the epoch is complete. The final
// batch of an epoch may be smaller than the configured batch size.
func (l *Loader) Next() *Batch {
	if l.position >= len(l.indices) {
		return nil
	}

	end := l.position + l.batchSize
	if end > len(l.indices) {
		end = len(l.indices)
	}

	batch := &Batch{
		Inputs:  make([][]float32, 0, end-l.position),
		Targets: make([][]float32, 0, end-l.position),
	}
	for _, idx := range l.indices[l.position:end] {
		batch.Inputs = append(batch.Inputs, l.split.Inputs[idx])
		batch.Targets = append(batch.Targets, l.split.Targets[idx])
	}
	l.position = end

	return batch
}
