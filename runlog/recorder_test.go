package runlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderStreamsEpochs(t *testing.T) {
	store := openTestStore(t)

	rec, err := NewRecorder(store, "sequential", `{"lr":0.1}`)
	require.NoError(t, err)
	require.NotEmpty(t, rec.RunID())

	require.NoError(t, rec.OnEpochEnd(0, map[string]float64{"loss": 0.8}, nil))
	require.NoError(t, rec.OnEpochEnd(1, map[string]float64{"loss": 0.4}, nil))
	require.NoError(t, rec.Finish())

	run, err := store.GetRun(rec.RunID())
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, run.Status)
	assert.Equal(t, 2, run.Epochs)

	series, err := store.EpochSeries(rec.RunID(), "loss")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.8, 0.4}, series)
}
