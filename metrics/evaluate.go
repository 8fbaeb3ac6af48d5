package metrics

import (
	"fmt"

	"github.com/gofitml/gofit/dataset"
)

// Predictor is the minimal surface needed to score a model against a split.
type Predictor interface {
	Predict(input []float32) ([]float32, error)
}

// Evaluate runs the predictor over every sample in the split and computes the
// requested metrics over the flattened outputs.
func Evaluate(p Predictor, split dataset.Split, requested ...MetricType) (map[MetricType]float64, error) {
	if err := split.Validate(); err != nil {
		return nil, err
	}

	outDim := len(split.Targets[0])
	predictions := make([]float32, 0, split.Len()*outDim)
	targets := make([]float32, 0, split.Len()*outDim)

	for i := range split.Inputs {
		out, err := p.Predict(split.Inputs[i])
		if err != nil {
			return nil, fmt.Errorf("prediction failed for sample %d: %v", i, err)
		}
		predictions = append(predictions, out...)
		targets = append(targets, split.Targets[i]...)
	}

	results := make(map[MetricType]float64, len(requested))
	for _, metric := range requested {
		value, err := Compute(metric, predictions, targets)
		if err != nil {
			return nil, err
		}
		results[metric] = value
	}

	return results, nil
}
