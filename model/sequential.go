// Package model provides a small CPU-resident feed-forward network that
// satisfies the training.Model contract. It exists so the training
// orchestration has a concrete, dependency-free model to drive; anything
// implementing training.Model can be substituted.
package model

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/gofitml/gofit/dataset"
	"github.com/gofitml/gofit/training"
)

// LayerConfig describes one fully-connected layer of a Sequential model.
type LayerConfig struct {
	Units      int
	Activation Activation
}

// Config holds the optimizer settings for a Sequential model.
type Config struct {
	LearningRate float32
	Seed         int64
}

// DefaultConfig returns the standard Sequential configuration.
func DefaultConfig() Config {
	return Config{
		LearningRate: 0.01,
		Seed:         1,
	}
}

// Sequential is a feed-forward network of dense layers trained with
// mini-batch SGD on mean squared error.
type Sequential struct {
	inputSize    int
	layers       []*dense
	learningRate float32
	seed         int64

	// per-batch gradient accumulators, one pair per layer
	gradW [][]float32
	gradB [][]float32
}

// NewSequential builds a network taking inputSize features through the given
// layers. At least one layer is required; the last layer's Units is the
// output dimension.
func NewSequential(inputSize int, config Config, layers ...LayerConfig) (*Sequential, error) {
	if inputSize <= 0 {
		return nil, fmt.Errorf("input size must be positive, got %d", inputSize)
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("at least one layer is required")
	}
	if config.LearningRate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %f", config.LearningRate)
	}

	rng := rand.New(rand.NewSource(config.Seed))

	s := &Sequential{
		inputSize:    inputSize,
		learningRate: config.LearningRate,
		seed:         config.Seed,
	}

	in := inputSize
	for i, layer := range layers {
		if layer.Units <= 0 {
			return nil, fmt.Errorf("layer %d: units must be positive, got %d", i, layer.Units)
		}
		d := newDense(in, layer.Units, layer.Activation, rng)
		s.layers = append(s.layers, d)
		s.gradW = append(s.gradW, make([]float32, len(d.weights)))
		s.gradB = append(s.gradB, make([]float32, len(d.bias)))
		in = layer.Units
	}

	return s, nil
}

// InputSize returns the expected feature dimension.
func (s *Sequential) InputSize() int {
	return s.inputSize
}

// OutputSize returns the output dimension.
func (s *Sequential) OutputSize() int {
	return s.layers[len(s.layers)-1].out
}

// LearningRate returns the current SGD step size.
func (s *Sequential) LearningRate() float32 {
	return s.learningRate
}

// Predict runs a forward pass for one sample and returns a copy of the
// output vector.
func (s *Sequential) Predict(input []float32) ([]float32, error) {
	if len(input) != s.inputSize {
		return nil, fmt.Errorf("input dimension mismatch: expected %d, got %d", s.inputSize, len(input))
	}

	activations := input
	for _, layer := range s.layers {
		activations = layer.forward(activations)
	}

	out := make([]float32, len(activations))
	copy(out, activations)
	return out, nil
}

// Fit trains the network on the train split for cfg.Epochs passes, validating
// against valid after each epoch when it is non-nil. Callbacks fire at epoch
// and batch boundaries; a callback implementing training.Stopper ends the run
// early. The returned history carries the per-epoch "loss" series and, when
// validation data was supplied, "val_loss".
func (s *Sequential) Fit(train dataset.Split, valid *dataset.Split, cfg training.FitConfig) (*training.History, error) {
	if cfg.Epochs <= 0 {
		return nil, fmt.Errorf("epoch count must be positive, got %d", cfg.Epochs)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	if err := s.checkSplit(train); err != nil {
		return nil, fmt.Errorf("train split: %v", err)
	}
	if valid != nil {
		if err := s.checkSplit(*valid); err != nil {
			return nil, fmt.Errorf("valid split: %v", err)
		}
	}
	if err := s.applyExtra(cfg.Extra); err != nil {
		return nil, err
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	loader := dataset.NewLoader(train, cfg.BatchSize, cfg.Shuffle, cfg.Seed)
	history := training.NewHistory()

	for _, cb := range cfg.Callbacks {
		cb.OnTrainBegin(s)
	}

	var progress *training.ProgressBar
	if cfg.Verbose {
		progress = training.NewProgressBar(out, "Epoch", cfg.Epochs)
	}

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		for _, cb := range cfg.Callbacks {
			cb.OnEpochBegin(epoch, s)
		}

		loader.Reset()
		var lossSum float64
		var samples int
		batch := 0
		for loader.HasNext() {
			b := loader.Next()
			batchLoss := s.trainBatch(b)
			lossSum += batchLoss * float64(b.Len())
			samples += b.Len()

			for _, cb := range cfg.Callbacks {
				cb.OnBatchEnd(batch, batchLoss, s)
			}
			batch++
		}

		logs := map[string]float64{
			"loss": lossSum / float64(samples),
		}
		if valid != nil {
			logs["val_loss"] = s.meanSquaredError(*valid)
		}
		history.Record(logs)

		for _, cb := range cfg.Callbacks {
			if err := cb.OnEpochEnd(epoch, logs, s); err != nil {
				return nil, err
			}
		}

		if progress != nil {
			progress.Update(epoch+1, logs)
		}

		stop := false
		for _, cb := range cfg.Callbacks {
			if stopper, ok := cb.(training.Stopper); ok && stopper.ShouldStop() {
				stop = true
			}
		}
		if stop {
			break
		}
	}

	if progress != nil {
		progress.Finish()
	}

	for _, cb := range cfg.Callbacks {
		cb.OnTrainEnd(s)
	}

	return history, nil
}

// trainBatch runs forward and backward passes over one batch and applies the
// averaged SGD update. Returns the batch mean squared error.
func (s *Sequential) trainBatch(b *dataset.Batch) float64 {
	for l := range s.layers {
		clear(s.gradW[l])
		clear(s.gradB[l])
	}

	var lossSum float64
	for n := range b.Inputs {
		lossSum += s.backprop(b.Inputs[n], b.Targets[n])
	}

	scale := s.learningRate / float32(b.Len())
	for l, layer := range s.layers {
		for i := range layer.weights {
			layer.weights[i] -= scale * s.gradW[l][i]
		}
		for j := range layer.bias {
			layer.bias[j] -= scale * s.gradB[l][j]
		}
	}

	outDim := s.OutputSize()
	return lossSum / float64(b.Len()*outDim)
}

// backprop accumulates gradients for one sample and returns its summed
// squared error.
func (s *Sequential) backprop(input, target []float32) float64 {
	// Forward, keeping every layer's activated output
	activations := input
	for _, layer := range s.layers {
		activations = layer.forward(activations)
	}

	// Output delta from the MSE derivative
	last := s.layers[len(s.layers)-1]
	var loss float64
	for j := 0; j < last.out; j++ {
		diff := last.output[j] - target[j]
		loss += float64(diff) * float64(diff)
		last.delta[j] = diff * last.activation.derivative(last.output[j])
	}

	// Propagate deltas backward
	for l := len(s.layers) - 1; l > 0; l-- {
		layer := s.layers[l]
		prev := s.layers[l-1]
		for i := 0; i < layer.in; i++ {
			var sum float32
			for j := 0; j < layer.out; j++ {
				sum += layer.weights[i*layer.out+j] * layer.delta[j]
			}
			prev.delta[i] = sum * prev.activation.derivative(prev.output[i])
		}
	}

	// Accumulate gradients against each layer's input
	layerInput := input
	for l, layer := range s.layers {
		for i := 0; i < layer.in; i++ {
			for j := 0; j < layer.out; j++ {
				s.gradW[l][i*layer.out+j] += layerInput[i] * layer.delta[j]
			}
		}
		for j := 0; j < layer.out; j++ {
			s.gradB[l][j] += layer.delta[j]
		}
		layerInput = layer.output
	}

	return loss
}

// meanSquaredError evaluates the network on a split without updating weights.
func (s *Sequential) meanSquaredError(split dataset.Split) float64 {
	var lossSum float64
	for n := range split.Inputs {
		activations := split.Inputs[n]
		for _, layer := range s.layers {
			activations = layer.forward(activations)
		}
		for j, target := range split.Targets[n] {
			diff := float64(activations[j] - target)
			lossSum += diff * diff
		}
	}
	return lossSum / float64(split.Len()*s.OutputSize())
}

func (s *Sequential) checkSplit(split dataset.Split) error {
	if err := split.Validate(); err != nil {
		return err
	}
	if len(split.Inputs[0]) != s.inputSize {
		return fmt.Errorf("input dimension mismatch: model expects %d features, split has %d",
			s.inputSize, len(split.Inputs[0]))
	}
	if len(split.Targets[0]) != s.OutputSize() {
		return fmt.Errorf("target dimension mismatch: model outputs %d values, split has %d",
			s.OutputSize(), len(split.Targets[0]))
	}
	return nil
}

// applyExtra interprets the forwarded fit options the model understands.
// Unknown keys are ignored so callers can target other model types.
func (s *Sequential) applyExtra(extra map[string]interface{}) error {
	for key, value := range extra {
		switch key {
		case "learning_rate":
			switch v := value.(type) {
			case float64:
				s.learningRate = float32(v)
			case float32:
				s.learningRate = v
			default:
				return fmt.Errorf("learning_rate option must be a float, got %T", value)
			}
			if s.learningRate <= 0 {
				return fmt.Errorf("learning rate must be positive, got %f", s.learningRate)
			}
		}
	}
	return nil
}
