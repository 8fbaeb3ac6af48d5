package runlog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)

	id, err := store.StartRun("sequential-2x4", `{"epochs":3}`)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := store.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, run.Status)
	assert.Equal(t, "sequential-2x4", run.Model)
	assert.Equal(t, `{"epochs":3}`, run.Config)

	require.NoError(t, store.FinishRun(id, 3))

	run, err = store.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, run.Status)
	assert.Equal(t, 3, run.Epochs)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))
}

func TestFinishUnknownRun(t *testing.T) {
	store := openTestStore(t)
	assert.Error(t, store.FinishRun("no-such-run", 1))
}

func TestGetUnknownRun(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetRun("no-such-run")
	assert.Error(t, err)
}

func TestEpochMetrics(t *testing.T) {
	store := openTestStore(t)

	id, err := store.StartRun("m", "")
	require.NoError(t, err)

	require.NoError(t, store.RecordEpoch(id, 0, map[string]float64{"loss": 1.0, "val_loss": 1.2}))
	require.NoError(t, store.RecordEpoch(id, 1, map[string]float64{"loss": 0.5, "val_loss": 0.7}))
	require.NoError(t, store.RecordEpoch(id, 2, map[string]float64{"loss": 0.25, "val_loss": 0.6}))

	series, err := store.EpochSeries(id, "loss")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 0.5, 0.25}, series)

	series, err = store.EpochSeries(id, "val_loss")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.2, 0.7, 0.6}, series)

	series, err = store.EpochSeries(id, "accuracy")
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestRecordEpochOverwritesRetry(t *testing.T) {
	store := openTestStore(t)

	id, err := store.StartRun("m", "")
	require.NoError(t, err)

	require.NoError(t, store.RecordEpoch(id, 0, map[string]float64{"loss": 1.0}))
	require.NoError(t, store.RecordEpoch(id, 0, map[string]float64{"loss": 0.9}))

	series, err := store.EpochSeries(id, "loss")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9}, series)
}

func TestListRunsMostRecentFirst(t *testing.T) {
	store := openTestStore(t)

	first, err := store.StartRun("a", "")
	require.NoError(t, err)
	second, err := store.StartRun("b", "")
	require.NoError(t, err)

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	ids := []string{runs[0].ID, runs[1].ID}
	assert.ElementsMatch(t, []string{first, second}, ids)
}
