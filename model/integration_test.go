package model_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofitml/gofit/checkpoints"
	"github.com/gofitml/gofit/dataset"
	"github.com/gofitml/gofit/model"
	"github.com/gofitml/gofit/training"
)

// End-to-end: a real model trained through the orchestrator ends up holding
// exactly the weights the checkpoint hook persisted.
func TestTrainerReloadsSequentialCheckpoint(t *testing.T) {
	train := linearData(32)
	valid := linearData(8)
	data := &dataset.Dataset{Train: train, Test: train, Valid: &valid}

	m, err := model.NewSequential(1, model.Config{LearningRate: 0.1, Seed: 1},
		model.LayerConfig{Units: 1, Activation: model.Linear})
	require.NoError(t, err)

	cfg := training.DefaultTrainerConfig()
	cfg.Epochs = 20
	cfg.BatchSize = 8
	cfg.Verbose = false
	cfg.CheckpointDir = filepath.Join(t.TempDir(), "checkpoints")
	cfg.CheckpointName = "m1"

	trainer := training.NewTrainer(cfg)
	history, err := trainer.Train(m, data)
	require.NoError(t, err)
	require.Equal(t, 20, history.Epochs)
	require.Len(t, history.Series("val_loss"), 20)

	path := trainer.CheckpointPath()
	require.FileExists(t, path)

	saved, err := checkpoints.NewCheckpointSaver(checkpoints.FormatJSON).LoadCheckpoint(path)
	require.NoError(t, err)

	// Model weights after training equal the checkpointed snapshot
	current := m.Weights()
	require.Len(t, current, len(saved.Weights))
	for i := range current {
		assert.Equal(t, saved.Weights[i].Name, current[i].Name)
		assert.Equal(t, saved.Weights[i].Data, current[i].Data)
	}
}

func TestTrainerONNXCheckpointRoundTrip(t *testing.T) {
	train := linearData(16)
	valid := linearData(8)
	data := &dataset.Dataset{Train: train, Test: train, Valid: &valid}

	m, err := model.NewSequential(1, model.Config{LearningRate: 0.1, Seed: 1},
		model.LayerConfig{Units: 2, Activation: model.Tanh},
		model.LayerConfig{Units: 1, Activation: model.Linear})
	require.NoError(t, err)

	cfg := training.DefaultTrainerConfig()
	cfg.Epochs = 5
	cfg.BatchSize = 8
	cfg.Verbose = false
	cfg.CheckpointDir = filepath.Join(t.TempDir(), "checkpoints")
	cfg.CheckpointName = "m1"
	cfg.CheckpointFormat = checkpoints.FormatONNX

	trainer := training.NewTrainer(cfg)
	_, err = trainer.Train(m, data)
	require.NoError(t, err)

	require.FileExists(t, filepath.Join(cfg.CheckpointDir, "m1.onnx"))
}
