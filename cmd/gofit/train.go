package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gofitml/gofit/config"
	"github.com/gofitml/gofit/dataset"
	"github.com/gofitml/gofit/metrics"
	"github.com/gofitml/gofit/runlog"
	"github.com/gofitml/gofit/timing"
	"github.com/gofitml/gofit/training"
)

func newTrainCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Run one training pass from a YAML run configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "run.yaml", "path to the run configuration file")

	return cmd
}

func runTrain(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	data, err := loadDataset(cfg.Data)
	if err != nil {
		return err
	}

	m, err := cfg.BuildModel()
	if err != nil {
		return err
	}

	trainerConfig, err := cfg.TrainerConfig()
	if err != nil {
		return err
	}
	trainerConfig.Out = cmd.OutOrStdout()

	// Record the run when a run log is configured
	var recorder *runlog.Recorder
	if cfg.RunLog != "" {
		store, err := runlog.Open(cfg.RunLog)
		if err != nil {
			return err
		}
		defer store.Close()

		configJSON, err := json.Marshal(cfg)
		if err != nil {
			return err
		}
		recorder, err = runlog.NewRecorder(store, "sequential", string(configJSON))
		if err != nil {
			return err
		}
		trainerConfig.Callbacks = append(trainerConfig.Callbacks, recorder)
	}

	trainer := training.NewTrainer(trainerConfig)

	timer := timing.Start()
	history, err := trainer.Train(m, data)
	if err != nil {
		return err
	}
	elapsed := timer.Stop()

	if recorder != nil {
		if err := recorder.Finish(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Run recorded: %s\n", recorder.RunID())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Trained %d epochs in %s\n", history.Epochs, elapsed.Round(time.Millisecond))

	if loss, ok := history.Last("loss"); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "Final train loss: %.6f\n", loss)
	}
	if valLoss, ok := history.Last("val_loss"); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "Final validation loss: %.6f\n", valLoss)
	}

	results, err := metrics.Evaluate(m, data.Test, metrics.RMSE, metrics.MAE, metrics.R2)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Test RMSE: %.6f  MAE: %.6f  R2: %.4f\n",
		results[metrics.RMSE], results[metrics.MAE], results[metrics.R2])

	return nil
}

func loadDataset(cfg config.DataConfig) (*dataset.Dataset, error) {
	train, err := dataset.LoadCSV(cfg.Train, cfg.TargetColumns)
	if err != nil {
		return nil, fmt.Errorf("train data: %v", err)
	}
	test, err := dataset.LoadCSV(cfg.Test, cfg.TargetColumns)
	if err != nil {
		return nil, fmt.Errorf("test data: %v", err)
	}

	data := &dataset.Dataset{Train: train, Test: test}

	if cfg.Valid != "" {
		valid, err := dataset.LoadCSV(cfg.Valid, cfg.TargetColumns)
		if err != nil {
			return nil, fmt.Errorf("valid data: %v", err)
		}
		data.Valid = &valid
	}

	return data, data.Validate()
}
