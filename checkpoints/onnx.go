package checkpoints

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// ONNX wire format support. Checkpoints are exported as an ONNX ModelProto
// whose graph carries one initializer per weight tensor and a MatMul/Add node
// chain reconstructed from the dense layer naming convention. Only the small
// subset of the ONNX schema needed for weight snapshots is encoded, using the
// protobuf wire API directly.
//
// Field numbers from onnx.proto (IR version 7, opset 13):
//
//	ModelProto:         ir_version=1, producer_name=2, producer_version=3,
//	                    model_version=5, doc_string=6, graph=7, opset_import=8
//	OperatorSetIdProto: domain=1, version=2
//	GraphProto:         node=1, name=2, initializer=5, doc_string=10
//	NodeProto:          input=1, output=2, name=3, op_type=4
//	TensorProto:        dims=1, data_type=2, float_data=4, name=8, raw_data=9
const (
	onnxIRVersion    = 7
	onnxOpsetVersion = 13

	// TensorProto.DataType
	onnxFloat = 1
)

// onnxState is the gofit bookkeeping round-tripped through ModelProto.doc_string.
type onnxState struct {
	TrainingState TrainingState      `json:"training_state"`
	Metadata      CheckpointMetadata `json:"metadata"`
	Layers        []string           `json:"layers"`
	Types         []string           `json:"types"`
}

// ONNXExporter converts checkpoints to ONNX format
type ONNXExporter struct{}

// NewONNXExporter creates a new ONNX exporter
func NewONNXExporter() *ONNXExporter {
	return &ONNXExporter{}
}

// ExportToONNX writes the checkpoint to path as an ONNX model file.
func (oe *ONNXExporter) ExportToONNX(checkpoint *Checkpoint, path string) error {
	graph, err := oe.buildGraph(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to build ONNX graph: %v", err)
	}

	state := onnxState{
		TrainingState: checkpoint.TrainingState,
		Metadata:      checkpoint.Metadata,
	}
	for _, w := range checkpoint.Weights {
		state.Layers = append(state.Layers, w.Layer)
		state.Types = append(state.Types, w.Type)
	}
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode training state: %v", err)
	}

	var model []byte
	model = protowire.AppendTag(model, 1, protowire.VarintType)
	model = protowire.AppendVarint(model, onnxIRVersion)
	model = protowire.AppendTag(model, 2, protowire.BytesType)
	model = protowire.AppendString(model, "gofit")
	model = protowire.AppendTag(model, 3, protowire.BytesType)
	model = protowire.AppendString(model, checkpoint.Metadata.Version)
	model = protowire.AppendTag(model, 5, protowire.VarintType)
	model = protowire.AppendVarint(model, 1)
	model = protowire.AppendTag(model, 6, protowire.BytesType)
	model = protowire.AppendBytes(model, doc)
	model = protowire.AppendTag(model, 7, protowire.BytesType)
	model = protowire.AppendBytes(model, graph)

	var opset []byte
	opset = protowire.AppendTag(opset, 1, protowire.BytesType)
	opset = protowire.AppendString(opset, "")
	opset = protowire.AppendTag(opset, 2, protowire.VarintType)
	opset = protowire.AppendVarint(opset, onnxOpsetVersion)
	model = protowire.AppendTag(model, 8, protowire.BytesType)
	model = protowire.AppendBytes(model, opset)

	if err := os.WriteFile(path, model, 0644); err != nil {
		return fmt.Errorf("failed to write ONNX file: %v", err)
	}

	return nil
}

// buildGraph encodes a GraphProto with one initializer per weight and a
// MatMul/Add chain inferred from the weight/bias naming convention.
func (oe *ONNXExporter) buildGraph(checkpoint *Checkpoint) ([]byte, error) {
	var graph []byte

	current := "input"
	for _, weight := range checkpoint.Weights {
		var node []byte
		switch weight.Type {
		case "weight":
			output := fmt.Sprintf("%s_matmul", weight.Layer)
			node = oe.buildNode("MatMul", fmt.Sprintf("%s_matmul_op", weight.Layer),
				[]string{current, weight.Name}, output)
			current = output
		case "bias":
			output := fmt.Sprintf("%s_output", weight.Layer)
			node = oe.buildNode("Add", fmt.Sprintf("%s_add_op", weight.Layer),
				[]string{current, weight.Name}, output)
			current = output
		default:
			return nil, fmt.Errorf("unsupported weight type for ONNX export: %q", weight.Type)
		}
		graph = protowire.AppendTag(graph, 1, protowire.BytesType)
		graph = protowire.AppendBytes(graph, node)
	}

	graph = protowire.AppendTag(graph, 2, protowire.BytesType)
	graph = protowire.AppendString(graph, "gofit-model")

	for _, weight := range checkpoint.Weights {
		tensor := oe.buildTensor(weight)
		graph = protowire.AppendTag(graph, 5, protowire.BytesType)
		graph = protowire.AppendBytes(graph, tensor)
	}

	return graph, nil
}

func (oe *ONNXExporter) buildNode(opType, name string, inputs []string, output string) []byte {
	var node []byte
	for _, in := range inputs {
		node = protowire.AppendTag(node, 1, protowire.BytesType)
		node = protowire.AppendString(node, in)
	}
	node = protowire.AppendTag(node, 2, protowire.BytesType)
	node = protowire.AppendString(node, output)
	node = protowire.AppendTag(node, 3, protowire.BytesType)
	node = protowire.AppendString(node, name)
	node = protowire.AppendTag(node, 4, protowire.BytesType)
	node = protowire.AppendString(node, opType)
	return node
}

func (oe *ONNXExporter) buildTensor(weight WeightTensor) []byte {
	var tensor []byte

	// dims: packed varints
	var dims []byte
	for _, d := range weight.Shape {
		dims = protowire.AppendVarint(dims, uint64(d))
	}
	tensor = protowire.AppendTag(tensor, 1, protowire.BytesType)
	tensor = protowire.AppendBytes(tensor, dims)

	tensor = protowire.AppendTag(tensor, 2, protowire.VarintType)
	tensor = protowire.AppendVarint(tensor, onnxFloat)

	// float_data: packed fixed32
	data := make([]byte, 0, 4*len(weight.Data))
	for _, v := range weight.Data {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
	}
	tensor = protowire.AppendTag(tensor, 4, protowire.BytesType)
	tensor = protowire.AppendBytes(tensor, data)

	tensor = protowire.AppendTag(tensor, 8, protowire.BytesType)
	tensor = protowire.AppendString(tensor, weight.Name)

	return tensor
}

// ONNXImporter converts ONNX model files back to checkpoints
type ONNXImporter struct{}

// NewONNXImporter creates a new ONNX importer
func NewONNXImporter() *ONNXImporter {
	return &ONNXImporter{}
}

// ImportFromONNX reads an ONNX model file and reconstructs a checkpoint from
// its initializers. Files produced by other exporters load too; gofit
// bookkeeping is recovered when present in the model doc_string.
func (oi *ONNXImporter) ImportFromONNX(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ONNX file: %v", err)
	}

	checkpoint := &Checkpoint{}
	var state *onnxState

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("malformed ONNX file: %v", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == 6 && typ == protowire.BytesType: // doc_string
			doc, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("malformed ONNX doc_string")
			}
			data = data[n:]
			var s onnxState
			if err := json.Unmarshal(doc, &s); err == nil {
				state = &s
			}
		case num == 7 && typ == protowire.BytesType: // graph
			graph, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("malformed ONNX graph")
			}
			data = data[n:]
			weights, err := oi.parseGraph(graph)
			if err != nil {
				return nil, err
			}
			checkpoint.Weights = append(checkpoint.Weights, weights...)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("malformed ONNX field %d: %v", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	if state != nil {
		checkpoint.TrainingState = state.TrainingState
		checkpoint.Metadata = state.Metadata
		for i := range checkpoint.Weights {
			if i < len(state.Layers) {
				checkpoint.Weights[i].Layer = state.Layers[i]
			}
			if i < len(state.Types) {
				checkpoint.Weights[i].Type = state.Types[i]
			}
		}
	} else {
		checkpoint.Metadata = CheckpointMetadata{
			Version:     "1.0.0",
			Framework:   "gofit",
			CreatedAt:   time.Now(),
			Description: "imported from ONNX",
		}
		for i := range checkpoint.Weights {
			oi.inferWeightKind(&checkpoint.Weights[i])
		}
	}

	return checkpoint, nil
}

// parseGraph extracts initializer tensors from a GraphProto.
func (oi *ONNXImporter) parseGraph(data []byte) ([]WeightTensor, error) {
	var weights []WeightTensor

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("malformed ONNX graph: %v", protowire.ParseError(n))
		}
		data = data[n:]

		if num == 5 && typ == protowire.BytesType { // initializer
			tensor, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("malformed ONNX initializer")
			}
			data = data[n:]
			weight, err := oi.parseTensor(tensor)
			if err != nil {
				return nil, err
			}
			weights = append(weights, weight)
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return nil, fmt.Errorf("malformed ONNX graph field %d: %v", num, protowire.ParseError(n))
		}
		data = data[n:]
	}

	return weights, nil
}

// parseTensor decodes a TensorProto. Both packed float_data and raw_data
// layouts are accepted.
func (oi *ONNXImporter) parseTensor(data []byte) (WeightTensor, error) {
	var weight WeightTensor
	dataType := uint64(onnxFloat)

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return weight, fmt.Errorf("malformed ONNX tensor: %v", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.BytesType: // dims, packed
			packed, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return weight, fmt.Errorf("malformed ONNX tensor dims")
			}
			data = data[n:]
			for len(packed) > 0 {
				dim, n := protowire.ConsumeVarint(packed)
				if n < 0 {
					return weight, fmt.Errorf("malformed ONNX tensor dim")
				}
				packed = packed[n:]
				weight.Shape = append(weight.Shape, int(dim))
			}
		case num == 1 && typ == protowire.VarintType: // dims, unpacked
			dim, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return weight, fmt.Errorf("malformed ONNX tensor dim")
			}
			data = data[n:]
			weight.Shape = append(weight.Shape, int(dim))
		case num == 2 && typ == protowire.VarintType: // data_type
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return weight, fmt.Errorf("malformed ONNX tensor data_type")
			}
			data = data[n:]
			dataType = v
		case num == 4 && typ == protowire.BytesType: // float_data, packed
			packed, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return weight, fmt.Errorf("malformed ONNX tensor float_data")
			}
			data = data[n:]
			if len(packed)%4 != 0 {
				return weight, fmt.Errorf("ONNX float_data length %d is not a multiple of 4", len(packed))
			}
			for off := 0; off < len(packed); off += 4 {
				bits := binary.LittleEndian.Uint32(packed[off:])
				weight.Data = append(weight.Data, math.Float32frombits(bits))
			}
		case num == 4 && typ == protowire.Fixed32Type: // float_data, unpacked
			bits, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return weight, fmt.Errorf("malformed ONNX tensor float value")
			}
			data = data[n:]
			weight.Data = append(weight.Data, math.Float32frombits(bits))
		case num == 8 && typ == protowire.BytesType: // name
			name, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return weight, fmt.Errorf("malformed ONNX tensor name")
			}
			data = data[n:]
			weight.Name = string(name)
		case num == 9 && typ == protowire.BytesType: // raw_data
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return weight, fmt.Errorf("malformed ONNX tensor raw_data")
			}
			data = data[n:]
			if len(raw)%4 != 0 {
				return weight, fmt.Errorf("ONNX raw_data length %d is not a multiple of 4", len(raw))
			}
			for off := 0; off < len(raw); off += 4 {
				bits := binary.LittleEndian.Uint32(raw[off:])
				weight.Data = append(weight.Data, math.Float32frombits(bits))
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return weight, fmt.Errorf("malformed ONNX tensor field %d: %v", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	if dataType != onnxFloat {
		return weight, fmt.Errorf("unsupported ONNX tensor data type %d for %s (only float32 supported)", dataType, weight.Name)
	}

	return weight, nil
}

// inferWeightKind fills Layer and Type from the conventional
// "<layer>.weight" / "<layer>.bias" tensor names.
func (oi *ONNXImporter) inferWeightKind(w *WeightTensor) {
	if idx := strings.LastIndex(w.Name, "."); idx >= 0 {
		w.Layer = w.Name[:idx]
		w.Type = w.Name[idx+1:]
	}
}
