package training

import (
	"fmt"
	"io"

	"github.com/gofitml/gofit/checkpoints"
)

// Callback defines hooks invoked by a model's Fit loop at fixed points.
// Implementations embed BaseCallback and override what they need.
type Callback interface {
	OnTrainBegin(m Model)
	OnTrainEnd(m Model)
	OnEpochBegin(epoch int, m Model)
	OnEpochEnd(epoch int, logs map[string]float64, m Model) error
	OnBatchEnd(batch int, loss float64, m Model)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (BaseCallback) OnTrainBegin(m Model)            {}
func (BaseCallback) OnTrainEnd(m Model)              {}
func (BaseCallback) OnEpochBegin(epoch int, m Model) {}
func (BaseCallback) OnEpochEnd(epoch int, logs map[string]float64, m Model) error {
	return nil
}
func (BaseCallback) OnBatchEnd(batch int, loss float64, m Model) {}

// ModelCheckpoint saves the model weights to Path whenever the monitored
// metric improves on its best-so-far value. Epochs where the monitored metric
// is absent from the logs are skipped, so a run without validation data never
// writes a file.
type ModelCheckpoint struct {
	BaseCallback
	Path string

	monitor *checkpoints.Monitor
	saves   int
}

// NewModelCheckpoint creates a best-only weights checkpoint hook watching the
// named metric.
func NewModelCheckpoint(path, metric string, mode checkpoints.MonitorMode) *ModelCheckpoint {
	return &ModelCheckpoint{
		Path:    path,
		monitor: checkpoints.NewMonitor(metric, mode),
	}
}

// Saves returns how many times weights were written during the run.
func (c *ModelCheckpoint) Saves() int {
	return c.saves
}

func (c *ModelCheckpoint) OnEpochEnd(epoch int, logs map[string]float64, m Model) error {
	value, ok := logs[c.monitor.Metric]
	if !ok {
		return nil
	}
	if !c.monitor.Improved(value) {
		return nil
	}
	if err := m.SaveWeights(c.Path); err != nil {
		return fmt.Errorf("failed to save checkpoint at epoch %d: %v", epoch, err)
	}
	c.saves++
	return nil
}

// EarlyStopping requests an end to training when the monitored metric has not
// improved for Patience consecutive epochs.
type EarlyStopping struct {
	BaseCallback
	Patience int

	monitor   *checkpoints.Monitor
	badEpochs int
	stopped   bool
}

// NewEarlyStopping creates an early-stopping hook watching the named metric.
func NewEarlyStopping(metric string, mode checkpoints.MonitorMode, patience int) *EarlyStopping {
	return &EarlyStopping{
		Patience: patience,
		monitor:  checkpoints.NewMonitor(metric, mode),
	}
}

func (c *EarlyStopping) OnEpochEnd(epoch int, logs map[string]float64, m Model) error {
	value, ok := logs[c.monitor.Metric]
	if !ok {
		return nil
	}
	if c.monitor.Improved(value) {
		c.badEpochs = 0
		return nil
	}
	c.badEpochs++
	if c.badEpochs >= c.Patience {
		c.stopped = true
	}
	return nil
}

// ShouldStop implements Stopper.
func (c *EarlyStopping) ShouldStop() bool {
	return c.stopped
}

// Logger writes one line per epoch with the epoch's metric values.
type Logger struct {
	BaseCallback
	Out      io.Writer
	Interval int // log every N epochs; 0 logs every epoch
}

func (c *Logger) OnEpochEnd(epoch int, logs map[string]float64, m Model) error {
	if c.Interval > 1 && epoch%c.Interval != 0 {
		return nil
	}
	line := fmt.Sprintf("Epoch %d:", epoch)
	for _, name := range sortedKeys(logs) {
		line += fmt.Sprintf(" %s=%.6f", name, logs[name])
	}
	fmt.Fprintln(c.Out, line)
	return nil
}
