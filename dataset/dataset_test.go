package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSplit(n int) Split {
	var s Split
	for i := 0; i < n; i++ {
		s.Inputs = append(s.Inputs, []float32{float32(i), float32(i) * 2})
		s.Targets = append(s.Targets, []float32{float32(i) * 3})
	}
	return s
}

func TestSplitValidate(t *testing.T) {
	assert.NoError(t, sampleSplit(4).Validate())

	empty := Split{}
	assert.Error(t, empty.Validate())

	unpaired := Split{
		Inputs:  [][]float32{{1}, {2}},
		Targets: [][]float32{{1}},
	}
	assert.Error(t, unpaired.Validate())

	ragged := Split{
		Inputs:  [][]float32{{1, 2}, {3}},
		Targets: [][]float32{{1}, {2}},
	}
	assert.Error(t, ragged.Validate())
}

func TestDatasetValidate(t *testing.T) {
	data := &Dataset{Train: sampleSplit(4), Test: sampleSplit(2)}
	assert.NoError(t, data.Validate())

	valid := sampleSplit(2)
	data.Valid = &valid
	assert.NoError(t, data.Validate())

	missing := &Dataset{Train: sampleSplit(4)}
	assert.Error(t, missing.Validate(), "test split is required")
}

func TestSplitRandom(t *testing.T) {
	s := sampleSplit(10)

	kept, held, err := SplitRandom(s, 0.3, 42)
	require.NoError(t, err)
	assert.Equal(t, 7, kept.Len())
	assert.Equal(t, 3, held.Len())

	// Same seed reproduces the same partition
	kept2, held2, err := SplitRandom(s, 0.3, 42)
	require.NoError(t, err)
	assert.Equal(t, kept.Inputs, kept2.Inputs)
	assert.Equal(t, held.Inputs, held2.Inputs)

	_, _, err = SplitRandom(s, 0, 42)
	assert.Error(t, err)
	_, _, err = SplitRandom(s, 1, 42)
	assert.Error(t, err)
}

func TestLoaderCoversAllSamples(t *testing.T) {
	s := sampleSplit(10)
	loader := NewLoader(s, 3, true, 7)

	assert.Equal(t, 4, loader.Len())

	for epoch := 0; epoch < 2; epoch++ {
		loader.Reset()
		seen := make(map[float32]bool)
		batches := 0
		for loader.HasNext() {
			b := loader.Next()
			require.NotNil(t, b)
			for _, input := range b.Inputs {
				seen[input[0]] = true
			}
			batches++
		}
		assert.Equal(t, 4, batches)
		assert.Len(t, seen, 10, "every sample appears exactly once per epoch")
		assert.Nil(t, loader.Next(), "exhausted loader returns nil")
	}
}

func TestLoaderFinalBatchIsShort(t *testing.T) {
	loader := NewLoader(sampleSplit(10), 4, false, 0)
	loader.Reset()

	sizes := []int{}
	for loader.HasNext() {
		sizes = append(sizes, loader.Next().Len())
	}
	assert.Equal(t, []int{4, 4, 2}, sizes)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	content := "x1,x2,y\n1.0,2.0,3.0\n4.0,5.0,6.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	split, err := LoadCSV(path, 1)
	require.NoError(t, err)

	assert.Equal(t, [][]float32{{1, 2}, {4, 5}}, split.Inputs)
	assert.Equal(t, [][]float32{{3}, {6}}, split.Targets)
}

func TestLoadCSVWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	content := "1.0,2.0,3.0\n4.0,5.0,6.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	split, err := LoadCSV(path, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, split.Len())
}

func TestLoadCSVErrors(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), 1)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("1.0,oops\n"), 0644))
	_, err = LoadCSV(path, 1)
	assert.Error(t, err)

	narrow := filepath.Join(t.TempDir(), "narrow.csv")
	require.NoError(t, os.WriteFile(narrow, []byte("1.0\n"), 0644))
	_, err = LoadCSV(narrow, 1)
	assert.Error(t, err, "row must have more columns than targets")

	_, err = LoadCSV(path, 0)
	assert.Error(t, err, "target column count must be positive")
}
