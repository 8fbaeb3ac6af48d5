package training_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofitml/gofit/checkpoints"
	"github.com/gofitml/gofit/training"
)

func TestModelCheckpointSavesOnlyOnImprovement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "best.json")
	cb := training.NewModelCheckpoint(path, "val_loss", checkpoints.ModeAuto)
	m := &stubModel{}

	require.NoError(t, cb.OnEpochEnd(0, map[string]float64{"val_loss": 1.0}, m))
	require.NoError(t, cb.OnEpochEnd(1, map[string]float64{"val_loss": 1.5}, m))
	require.NoError(t, cb.OnEpochEnd(2, map[string]float64{"val_loss": 0.5}, m))

	assert.Equal(t, 2, cb.Saves())
	assert.Equal(t, 2, m.saves)
}

func TestModelCheckpointSkipsMissingMetric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "best.json")
	cb := training.NewModelCheckpoint(path, "val_loss", checkpoints.ModeAuto)
	m := &stubModel{}

	require.NoError(t, cb.OnEpochEnd(0, map[string]float64{"loss": 1.0}, m))

	assert.Zero(t, cb.Saves())
	assert.Zero(t, m.saves)
	assert.NoFileExists(t, path)
}

func TestEarlyStoppingPatience(t *testing.T) {
	cb := training.NewEarlyStopping("val_loss", checkpoints.ModeMin, 2)
	m := &stubModel{}

	logs := func(v float64) map[string]float64 { return map[string]float64{"val_loss": v} }

	require.NoError(t, cb.OnEpochEnd(0, logs(1.0), m))
	assert.False(t, cb.ShouldStop())

	require.NoError(t, cb.OnEpochEnd(1, logs(1.2), m))
	assert.False(t, cb.ShouldStop(), "one bad epoch is within patience")

	require.NoError(t, cb.OnEpochEnd(2, logs(1.1), m))
	assert.True(t, cb.ShouldStop(), "two bad epochs exhaust patience")
}

func TestEarlyStoppingResetsOnImprovement(t *testing.T) {
	cb := training.NewEarlyStopping("val_loss", checkpoints.ModeMin, 2)
	m := &stubModel{}

	logs := func(v float64) map[string]float64 { return map[string]float64{"val_loss": v} }

	require.NoError(t, cb.OnEpochEnd(0, logs(1.0), m))
	require.NoError(t, cb.OnEpochEnd(1, logs(1.5), m))
	require.NoError(t, cb.OnEpochEnd(2, logs(0.8), m))
	require.NoError(t, cb.OnEpochEnd(3, logs(0.9), m))

	assert.False(t, cb.ShouldStop())
}

func TestHistoryRecord(t *testing.T) {
	h := training.NewHistory()
	h.Record(map[string]float64{"loss": 1.0, "val_loss": 2.0})
	h.Record(map[string]float64{"loss": 0.5, "val_loss": 1.5})

	assert.Equal(t, 2, h.Epochs)
	assert.Equal(t, []float64{1.0, 0.5}, h.Series("loss"))

	last, ok := h.Last("val_loss")
	require.True(t, ok)
	assert.Equal(t, 1.5, last)

	_, ok = h.Last("accuracy")
	assert.False(t, ok)
	assert.Nil(t, h.Series("accuracy"))
}
