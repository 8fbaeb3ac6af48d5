package checkpoints

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// CheckpointFormat defines the serialization format
type CheckpointFormat int

const (
	FormatJSON CheckpointFormat = iota
	FormatONNX
)

func (cf CheckpointFormat) String() string {
	switch cf {
	case FormatJSON:
		return "JSON"
	case FormatONNX:
		return "ONNX"
	default:
		return "Unknown"
	}
}

// Extension returns the file extension used for this format.
func (cf CheckpointFormat) Extension() string {
	switch cf {
	case FormatONNX:
		return "onnx"
	default:
		return "json"
	}
}

// ParseFormat converts a format name to a CheckpointFormat.
func ParseFormat(name string) (CheckpointFormat, error) {
	switch name {
	case "json", "JSON", "":
		return FormatJSON, nil
	case "onnx", "ONNX":
		return FormatONNX, nil
	default:
		return FormatJSON, fmt.Errorf("unknown checkpoint format: %q", name)
	}
}

// Checkpoint represents a persisted snapshot of model weights plus the
// training progress at the moment it was taken
type Checkpoint struct {
	Weights []WeightTensor `json:"weights"`

	TrainingState TrainingState `json:"training_state"`

	Metadata CheckpointMetadata `json:"metadata"`
}

// WeightTensor represents a model parameter tensor with its data
type WeightTensor struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
	Layer string    `json:"layer"`
	Type  string    `json:"type"` // "weight", "bias"
}

// TrainingState captures the training progress when the snapshot was taken
type TrainingState struct {
	Epoch        int     `json:"epoch"`
	LearningRate float32 `json:"learning_rate"`
	BestMetric   float64 `json:"best_metric"`
	MetricName   string  `json:"metric_name"`
}

// CheckpointMetadata contains checkpoint metadata
type CheckpointMetadata struct {
	ID          string    `json:"id"`
	Version     string    `json:"version"`
	Framework   string    `json:"framework"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// CheckpointSaver handles saving model checkpoints in various formats
type CheckpointSaver struct {
	format CheckpointFormat
}

// NewCheckpointSaver creates a new checkpoint saver for the specified format
func NewCheckpointSaver(format CheckpointFormat) *CheckpointSaver {
	return &CheckpointSaver{
		format: format,
	}
}

// SaveCheckpoint saves a complete checkpoint
func (cs *CheckpointSaver) SaveCheckpoint(checkpoint *Checkpoint, path string) error {
	stampMetadata(checkpoint)

	switch cs.format {
	case FormatJSON:
		return cs.saveJSON(checkpoint, path)
	case FormatONNX:
		return cs.saveONNX(checkpoint, path)
	default:
		return fmt.Errorf("unsupported checkpoint format: %s", cs.format.String())
	}
}

// LoadCheckpoint loads a checkpoint
func (cs *CheckpointSaver) LoadCheckpoint(path string) (*Checkpoint, error) {
	switch cs.format {
	case FormatJSON:
		return cs.loadJSON(path)
	case FormatONNX:
		return cs.loadONNX(path)
	default:
		return nil, fmt.Errorf("unsupported checkpoint format: %s", cs.format.String())
	}
}

func stampMetadata(checkpoint *Checkpoint) {
	if checkpoint.Metadata.Framework == "" {
		checkpoint.Metadata.Framework = "gofit"
		checkpoint.Metadata.Version = "1.0.0"
	}
	if checkpoint.Metadata.ID == "" {
		checkpoint.Metadata.ID = uuid.NewString()
	}
	if checkpoint.Metadata.CreatedAt.IsZero() {
		checkpoint.Metadata.CreatedAt = time.Now()
	}
}

// saveJSON saves checkpoint in JSON format
func (cs *CheckpointSaver) saveJSON(checkpoint *Checkpoint, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ") // Pretty print JSON

	if err := encoder.Encode(checkpoint); err != nil {
		return fmt.Errorf("failed to encode checkpoint: %v", err)
	}

	return nil
}

// loadJSON loads checkpoint from JSON format
func (cs *CheckpointSaver) loadJSON(path string) (*Checkpoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file: %v", err)
	}
	defer file.Close()

	var checkpoint Checkpoint
	decoder := json.NewDecoder(file)

	if err := decoder.Decode(&checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %v", err)
	}

	return &checkpoint, nil
}

// saveONNX saves checkpoint in ONNX format
func (cs *CheckpointSaver) saveONNX(checkpoint *Checkpoint, path string) error {
	exporter := NewONNXExporter()
	return exporter.ExportToONNX(checkpoint, path)
}

// loadONNX loads checkpoint from ONNX format
func (cs *CheckpointSaver) loadONNX(path string) (*Checkpoint, error) {
	importer := NewONNXImporter()
	return importer.ImportFromONNX(path)
}
