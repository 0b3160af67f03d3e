// Metrics describing a filter's output relative to its input
package metrics

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"gocv.io/x/gocv"
)

// Metric defines the interface for output metrics
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed gocv.Mat) (float64, error)

	// GetName returns the metric name
	GetName() string

	// GetDescription returns the metric description
	GetDescription() string

	// GetRange returns the value range (min, max)
	GetRange() (float64, float64)

	// IsHigherBetter returns true if higher values indicate better quality
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates a new metrics evaluator
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}

	e.RegisterDefaultMetrics()

	return e
}

// RegisterDefaultMetrics registers all default metrics
func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("edge_density", NewEdgeDensity())
	e.Register("suppressed_fraction", NewSuppressedFraction())
	e.Register("dynamic_range", NewDynamicRange())
	e.Register("mean_intensity", NewMeanIntensity())
	e.Register("range_coverage", NewRangeCoverage())
}

// Register registers a metric
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns the registered metric names in sorted order
func (e *Evaluator) Names() []string {
	names := lo.Keys(e.metrics)
	slices.Sort(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, original, processed gocv.Mat) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}

	return metric.Calculate(original, processed)
}

// CalculateAll calculates all registered metrics. Metrics that fail are
// left out of the result.
func (e *Evaluator) CalculateAll(original, processed gocv.Mat) map[string]float64 {
	results := make(map[string]float64)

	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}

	return results
}

func validatePair(original, processed gocv.Mat) error {
	if processed.Empty() {
		return fmt.Errorf("empty images")
	}
	if processed.Channels() != 1 {
		return fmt.Errorf("metrics require single channel images, got %d", processed.Channels())
	}
	if !original.Empty() && (original.Rows() != processed.Rows() || original.Cols() != processed.Cols()) {
		return fmt.Errorf("image dimensions mismatch")
	}
	return nil
}
