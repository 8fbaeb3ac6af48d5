package metrics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofitml/gofit/dataset"
)

func TestComputeKnownValues(t *testing.T) {
	predictions := []float32{1, 2, 3, 4}
	targets := []float32{1, 2, 3, 6}

	mae, err := Compute(MAE, predictions, targets)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, mae, 1e-9)

	mse, err := Compute(MSE, predictions, targets)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mse, 1e-9)

	rmse, err := Compute(RMSE, predictions, targets)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rmse, 1e-9)
}

func TestComputeR2(t *testing.T) {
	perfect, err := Compute(R2, []float32{1, 2, 3}, []float32{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, perfect, 1e-9)

	// Predicting the target mean scores exactly zero
	mean, err := Compute(R2, []float32{2, 2, 2}, []float32{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, mean, 1e-9)
}

func TestComputeR2ConstantTarget(t *testing.T) {
	perfect, err := Compute(R2, []float32{5, 5}, []float32{5, 5})
	require.NoError(t, err)
	assert.Equal(t, 1.0, perfect)

	miss, err := Compute(R2, []float32{4, 6}, []float32{5, 5})
	require.NoError(t, err)
	assert.Equal(t, 0.0, miss)
}

func TestComputeErrors(t *testing.T) {
	_, err := Compute(MAE, []float32{1}, []float32{1, 2})
	assert.Error(t, err, "length mismatch")

	_, err = Compute(MAE, nil, nil)
	assert.Error(t, err, "empty series")

	_, err = Compute(MetricType(99), []float32{1}, []float32{1})
	assert.Error(t, err, "unknown metric")
}

func TestRootMeanSquaredError(t *testing.T) {
	rmse, err := RootMeanSquaredError([]float32{0, 0}, []float32{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 3.5355, rmse, 1e-3)
}

func TestMetricTypeString(t *testing.T) {
	assert.Equal(t, "MAE", MAE.String())
	assert.Equal(t, "MSE", MSE.String())
	assert.Equal(t, "RMSE", RMSE.String())
	assert.Equal(t, "R2", R2.String())
	assert.Contains(t, MetricType(42).String(), "Unknown")
}

// doubler predicts twice its input.
type doubler struct{}

func (doubler) Predict(input []float32) ([]float32, error) {
	out := make([]float32, len(input))
	for i, v := range input {
		out[i] = v * 2
	}
	return out, nil
}

type failingPredictor struct{}

func (failingPredictor) Predict(input []float32) ([]float32, error) {
	return nil, fmt.Errorf("no weights loaded")
}

func TestEvaluate(t *testing.T) {
	split := dataset.Split{
		Inputs:  [][]float32{{1}, {2}, {3}},
		Targets: [][]float32{{2}, {4}, {6}},
	}

	results, err := Evaluate(doubler{}, split, MAE, RMSE, R2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.InDelta(t, 0.0, results[MAE], 1e-9)
	assert.InDelta(t, 0.0, results[RMSE], 1e-9)
	assert.InDelta(t, 1.0, results[R2], 1e-9)
}

func TestEvaluateErrors(t *testing.T) {
	split := dataset.Split{
		Inputs:  [][]float32{{1}},
		Targets: [][]float32{{2}},
	}

	_, err := Evaluate(failingPredictor{}, split, MAE)
	assert.Error(t, err)

	_, err = Evaluate(doubler{}, dataset.Split{}, MAE)
	assert.Error(t, err, "invalid split")
}
