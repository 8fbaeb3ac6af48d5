// Package config loads training run configuration from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gofitml/gofit/checkpoints"
	"github.com/gofitml/gofit/model"
	"github.com/gofitml/gofit/training"
)

// LayerConfig describes one dense layer in a YAML model definition.
type LayerConfig struct {
	Units      int    `yaml:"units"`
	Activation string `yaml:"activation"`
}

// ModelConfig is the YAML model section.
type ModelConfig struct {
	InputSize    int           `yaml:"input_size"`
	LearningRate float32       `yaml:"learning_rate"`
	Seed         int64         `yaml:"seed"`
	Layers       []LayerConfig `yaml:"layers"`
}

// CheckpointConfig is the YAML checkpoint section.
type CheckpointConfig struct {
	Name    string `yaml:"name"`
	Monitor string `yaml:"monitor"`
	Mode    string `yaml:"mode"`
	Dir     string `yaml:"dir"`
	Format  string `yaml:"format"`
}

// TrainingConfig is the YAML training section.
type TrainingConfig struct {
	Epochs     int                    `yaml:"epochs"`
	BatchSize  int                    `yaml:"batch_size"`
	Verbose    *bool                  `yaml:"verbose"`
	Checkpoint CheckpointConfig       `yaml:"checkpoint"`
	Extra      map[string]interface{} `yaml:"extra"`
}

// DataConfig is the YAML data section. Train and Test are required CSV
// paths; Valid is optional.
type DataConfig struct {
	Train         string `yaml:"train"`
	Valid         string `yaml:"valid"`
	Test          string `yaml:"test"`
	TargetColumns int    `yaml:"target_columns"`
}

// RunConfig is a complete training run definition.
type RunConfig struct {
	Model    ModelConfig    `yaml:"model"`
	Training TrainingConfig `yaml:"training"`
	Data     DataConfig     `yaml:"data"`
	RunLog   string         `yaml:"runlog"`
}

// Load reads and validates a run configuration from a YAML file.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}
	return Parse(data)
}

// Parse decodes and validates a run configuration from YAML bytes.
func Parse(data []byte) (*RunConfig, error) {
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *RunConfig) applyDefaults() {
	if c.Model.LearningRate == 0 {
		c.Model.LearningRate = model.DefaultConfig().LearningRate
	}
	if c.Model.Seed == 0 {
		c.Model.Seed = model.DefaultConfig().Seed
	}
	if c.Training.Epochs == 0 {
		c.Training.Epochs = 100
	}
	if c.Training.BatchSize == 0 {
		c.Training.BatchSize = 128
	}
	if c.Training.Checkpoint.Monitor == "" {
		c.Training.Checkpoint.Monitor = "val_loss"
	}
	if c.Training.Checkpoint.Dir == "" {
		c.Training.Checkpoint.Dir = "checkpoints"
	}
	if c.Data.TargetColumns == 0 {
		c.Data.TargetColumns = 1
	}
}

// Validate checks the configuration for internal consistency.
func (c *RunConfig) Validate() error {
	if c.Model.InputSize <= 0 {
		return fmt.Errorf("model.input_size must be positive, got %d", c.Model.InputSize)
	}
	if len(c.Model.Layers) == 0 {
		return fmt.Errorf("model.layers must define at least one layer")
	}
	for i, layer := range c.Model.Layers {
		if layer.Units <= 0 {
			return fmt.Errorf("model.layers[%d].units must be positive, got %d", i, layer.Units)
		}
		if _, err := model.ParseActivation(layer.Activation); err != nil {
			return fmt.Errorf("model.layers[%d]: %v", i, err)
		}
	}
	if c.Training.Epochs <= 0 {
		return fmt.Errorf("training.epochs must be positive, got %d", c.Training.Epochs)
	}
	if c.Training.BatchSize <= 0 {
		return fmt.Errorf("training.batch_size must be positive, got %d", c.Training.BatchSize)
	}
	if _, err := checkpoints.ParseFormat(c.Training.Checkpoint.Format); err != nil {
		return fmt.Errorf("training.checkpoint: %v", err)
	}
	if _, err := parseMode(c.Training.Checkpoint.Mode); err != nil {
		return fmt.Errorf("training.checkpoint: %v", err)
	}
	if c.Data.Train == "" {
		return fmt.Errorf("data.train is required")
	}
	if c.Data.Test == "" {
		return fmt.Errorf("data.test is required")
	}
	return nil
}

// BuildModel constructs the Sequential network the configuration describes.
func (c *RunConfig) BuildModel() (*model.Sequential, error) {
	layers := make([]model.LayerConfig, 0, len(c.Model.Layers))
	for _, layer := range c.Model.Layers {
		activation, err := model.ParseActivation(layer.Activation)
		if err != nil {
			return nil, err
		}
		layers = append(layers, model.LayerConfig{
			Units:      layer.Units,
			Activation: activation,
		})
	}

	return model.NewSequential(c.Model.InputSize, model.Config{
		LearningRate: c.Model.LearningRate,
		Seed:         c.Model.Seed,
	}, layers...)
}

// TrainerConfig converts the training section to a trainer configuration.
func (c *RunConfig) TrainerConfig() (training.TrainerConfig, error) {
	cfg := training.DefaultTrainerConfig()
	cfg.Epochs = c.Training.Epochs
	cfg.BatchSize = c.Training.BatchSize
	if c.Training.Verbose != nil {
		cfg.Verbose = *c.Training.Verbose
	}
	cfg.Extra = c.Training.Extra
	cfg.Seed = c.Model.Seed

	cfg.CheckpointName = c.Training.Checkpoint.Name
	cfg.CheckpointMonitor = c.Training.Checkpoint.Monitor
	cfg.CheckpointDir = c.Training.Checkpoint.Dir

	format, err := checkpoints.ParseFormat(c.Training.Checkpoint.Format)
	if err != nil {
		return cfg, err
	}
	cfg.CheckpointFormat = format

	mode, err := parseMode(c.Training.Checkpoint.Mode)
	if err != nil {
		return cfg, err
	}
	cfg.CheckpointMode = mode

	return cfg, nil
}

func parseMode(name string) (checkpoints.MonitorMode, error) {
	switch name {
	case "", "auto":
		return checkpoints.ModeAuto, nil
	case "min":
		return checkpoints.ModeMin, nil
	case "max":
		return checkpoints.ModeMax, nil
	default:
		return checkpoints.ModeAuto, fmt.Errorf("unknown monitor mode: %q", name)
	}
}
