package model

import (
	"fmt"
	"math"
	"math/rand"
)

// Activation identifies the element-wise nonlinearity applied by a layer
type Activation int

const (
	Linear Activation = iota
	ReLU
	Tanh
	Sigmoid
)

func (a Activation) String() string {
	switch a {
	case Linear:
		return "linear"
	case ReLU:
		return "relu"
	case Tanh:
		return "tanh"
	case Sigmoid:
		return "sigmoid"
	default:
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
}

// ParseActivation converts an activation name to an Activation.
func ParseActivation(name string) (Activation, error) {
	switch name {
	case "linear", "":
		return Linear, nil
	case "relu":
		return ReLU, nil
	case "tanh":
		return Tanh, nil
	case "sigmoid":
		return Sigmoid, nil
	default:
		return Linear, fmt.Errorf("unknown activation: %q", name)
	}
}

func (a Activation) apply(z float32) float32 {
	switch a {
	case ReLU:
		if z < 0 {
			return 0
		}
		return z
	case Tanh:
		return float32(math.Tanh(float64(z)))
	case Sigmoid:
		return float32(1.0 / (1.0 + math.Exp(-float64(z))))
	default:
		return z
	}
}

// derivative in terms of the activated output a = f(z)
func (a Activation) derivative(out float32) float32 {
	switch a {
	case ReLU:
		if out > 0 {
			return 1
		}
		return 0
	case Tanh:
		return 1 - out*out
	case Sigmoid:
		return out * (1 - out)
	default:
		return 1
	}
}

// dense is a fully-connected layer. Weights are stored row-major with shape
// [in, out]: weights[i*out+j] connects input i to output j.
type dense struct {
	in, out    int
	weights    []float32
	bias       []float32
	activation Activation

	// per-sample scratch reused across the batch loop
	output []float32
	delta  []float32
}

func newDense(in, out int, activation Activation, rng *rand.Rand) *dense {
	d := &dense{
		in:         in,
		out:        out,
		weights:    make([]float32, in*out),
		bias:       make([]float32, out),
		activation: activation,
		output:     make([]float32, out),
		delta:      make([]float32, out),
	}

	// Xavier-style uniform init scaled by fan-in and fan-out
	limit := float32(math.Sqrt(6.0 / float64(in+out)))
	for i := range d.weights {
		d.weights[i] = (rng.Float32()*2 - 1) * limit
	}

	return d
}

// forward computes the activated output for one sample, keeping it in the
// layer scratch for the backward pass.
func (d *dense) forward(input []float32) []float32 {
	for j := 0; j < d.out; j++ {
		z := d.bias[j]
		for i := 0; i < d.in; i++ {
			z += input[i] * d.weights[i*d.out+j]
		}
		d.output[j] = d.activation.apply(z)
	}
	return d.output
}
