// Package metrics provides regression evaluation metrics over paired
// prediction and target series.
package metrics

import (
	"fmt"
	"math"
)

// MetricType represents different evaluation metrics
type MetricType int

const (
	MAE MetricType = iota // Mean Absolute Error
	MSE                   // Mean Squared Error
	RMSE                  // Root Mean Squared Error
	R2                    // R-squared
)

func (mt MetricType) String() string {
	switch mt {
	case MAE:
		return "MAE"
	case MSE:
		return "MSE"
	case RMSE:
		return "RMSE"
	case R2:
		return "R2"
	default:
		return fmt.Sprintf("Unknown(%d)", int(mt))
	}
}

// Compute calculates the requested metric over paired predictions and
// targets.
func Compute(metric MetricType, predictions, targets []float32) (float64, error) {
	if len(predictions) != len(targets) {
		return 0, fmt.Errorf("length mismatch: %d predictions, %d targets", len(predictions), len(targets))
	}
	if len(predictions) == 0 {
		return 0, fmt.Errorf("no samples")
	}

	switch metric {
	case MAE:
		return meanAbsoluteError(predictions, targets), nil
	case MSE:
		return meanSquaredError(predictions, targets), nil
	case RMSE:
		return math.Sqrt(meanSquaredError(predictions, targets)), nil
	case R2:
		return rSquared(predictions, targets), nil
	default:
		return 0, fmt.Errorf("unsupported metric: %s", metric.String())
	}
}

// RootMeanSquaredError returns the RMSE over paired predictions and targets.
func RootMeanSquaredError(predictions, targets []float32) (float64, error) {
	return Compute(RMSE, predictions, targets)
}

func meanAbsoluteError(predictions, targets []float32) float64 {
	var sum float64
	for i := range predictions {
		sum += math.Abs(float64(predictions[i]) - float64(targets[i]))
	}
	return sum / float64(len(predictions))
}

func meanSquaredError(predictions, targets []float32) float64 {
	var sum float64
	for i := range predictions {
		diff := float64(predictions[i]) - float64(targets[i])
		sum += diff * diff
	}
	return sum / float64(len(predictions))
}

func rSquared(predictions, targets []float32) float64 {
	var mean float64
	for _, t := range targets {
		mean += float64(t)
	}
	mean /= float64(len(targets))

	var ssRes, ssTot float64
	for i := range targets {
		res := float64(targets[i]) - float64(predictions[i])
		tot := float64(targets[i]) - mean
		ssRes += res * res
		ssTot += tot * tot
	}

	if ssTot == 0 {
		// Constant target: perfect predictions score 1, anything else 0
		if ssRes == 0 {
			return 1
		}
		return 0
	}

	return 1 - ssRes/ssTot
}
