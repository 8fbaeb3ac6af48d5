package model

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofitml/gofit/checkpoints"
)

// Weights returns a deep copy of the network parameters as checkpoint weight
// tensors, named "dense<n>.weight" / "dense<n>.bias" in layer order.
func (s *Sequential) Weights() []checkpoints.WeightTensor {
	var weights []checkpoints.WeightTensor

	for l, layer := range s.layers {
		name := fmt.Sprintf("dense%d", l+1)

		w := make([]float32, len(layer.weights))
		copy(w, layer.weights)
		weights = append(weights, checkpoints.WeightTensor{
			Name:  name + ".weight",
			Shape: []int{layer.in, layer.out},
			Data:  w,
			Layer: name,
			Type:  "weight",
		})

		b := make([]float32, len(layer.bias))
		copy(b, layer.bias)
		weights = append(weights, checkpoints.WeightTensor{
			Name:  name + ".bias",
			Shape: []int{layer.out},
			Data:  b,
			Layer: name,
			Type:  "bias",
		})
	}

	return weights
}

// SetWeights overwrites the network parameters in place from checkpoint
// weight tensors. The tensors must match the architecture exactly, in the
// order produced by Weights.
func (s *Sequential) SetWeights(weights []checkpoints.WeightTensor) error {
	if len(weights) != 2*len(s.layers) {
		return fmt.Errorf("weight count mismatch: expected %d tensors, got %d", 2*len(s.layers), len(weights))
	}

	for l, layer := range s.layers {
		w := weights[2*l]
		b := weights[2*l+1]

		if len(w.Shape) != 2 || w.Shape[0] != layer.in || w.Shape[1] != layer.out {
			return fmt.Errorf("layer %d weight shape mismatch: expected [%d %d], got %v",
				l, layer.in, layer.out, w.Shape)
		}
		if len(w.Data) != len(layer.weights) {
			return fmt.Errorf("layer %d weight data length mismatch: expected %d, got %d",
				l, len(layer.weights), len(w.Data))
		}
		if len(b.Data) != len(layer.bias) {
			return fmt.Errorf("layer %d bias data length mismatch: expected %d, got %d",
				l, len(layer.bias), len(b.Data))
		}

		copy(layer.weights, w.Data)
		copy(layer.bias, b.Data)
	}

	return nil
}

// SaveWeights persists the current weights to path. The format follows the
// file extension: .onnx for ONNX, anything else JSON.
func (s *Sequential) SaveWeights(path string) error {
	checkpoint := &checkpoints.Checkpoint{
		Weights: s.Weights(),
		TrainingState: checkpoints.TrainingState{
			LearningRate: s.learningRate,
		},
	}

	saver := checkpoints.NewCheckpointSaver(formatForPath(path))
	return saver.SaveCheckpoint(checkpoint, path)
}

// LoadWeights overwrites the current weights in place from path.
func (s *Sequential) LoadWeights(path string) error {
	saver := checkpoints.NewCheckpointSaver(formatForPath(path))
	checkpoint, err := saver.LoadCheckpoint(path)
	if err != nil {
		return err
	}
	return s.SetWeights(checkpoint.Weights)
}

func formatForPath(path string) checkpoints.CheckpointFormat {
	if strings.EqualFold(filepath.Ext(path), ".onnx") {
		return checkpoints.FormatONNX
	}
	return checkpoints.FormatJSON
}
