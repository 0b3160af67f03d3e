package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"composite-filter/internal/composite"
	"composite-filter/internal/core"
	"composite-filter/internal/metrics"
	"composite-filter/internal/store"
)

// filterFlags are the pipeline settings every processing command accepts
type filterFlags struct {
	threshold       float64
	pixelType       string
	outputPixelType string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.threshold, "threshold", 1, "Gradient magnitudes below this value are suppressed")
	cmd.Flags().StringVar(&f.pixelType, "pixel-type", "", "Pixel type the input is converted to (uint8, int8, uint16, int16, int32, float32)")
	cmd.Flags().StringVar(&f.outputPixelType, "output-pixel-type", "", "Pixel type of the output (defaults to the input type)")
}

// apply copies explicitly set flags over the configuration
func (f *filterFlags) apply(cmd *cobra.Command, a *app) error {
	if cmd.Flags().Changed("threshold") {
		a.cfg.Threshold = f.threshold
	}
	if cmd.Flags().Changed("pixel-type") {
		a.cfg.PixelType = f.pixelType
	}
	if cmd.Flags().Changed("output-pixel-type") {
		a.cfg.OutputPixelType = f.outputPixelType
	}
	return a.cfg.Validate()
}

func newRunCmd(a *app) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "run <input> <output>",
		Short: "Run the composite filter over one image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, a); err != nil {
				return err
			}

			filter, err := a.newFilter()
			if err != nil {
				return err
			}
			defer filter.Close()

			run, err := a.processFile(cmd.Context(), filter, metrics.NewEvaluator(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%dx%d, %s)\n",
				run.InputPath, run.OutputPath, run.Width, run.Height, run.Duration)
			for _, name := range metrics.NewEvaluator().Names() {
				if v, ok := run.Metrics[name]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %g\n", name, v)
				}
			}
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

// newFilter builds a composite filter from the current configuration
func (a *app) newFilter() (composite.Filter, error) {
	inType, outType, err := a.cfg.PixelTypes()
	if err != nil {
		return nil, err
	}

	filter, err := composite.NewForPixelType(inType,
		composite.WithLogger(a.logger),
		composite.WithOutputPixelType(outType),
	)
	if err != nil {
		return nil, err
	}
	filter.SetThresholdValue(a.cfg.Threshold)

	return filter, nil
}

// processFile loads inputPath, executes filter and writes outputPath. The
// run is recorded when a history database is configured.
func (a *app) processFile(ctx context.Context, filter composite.Filter, eval *metrics.Evaluator, inputPath, outputPath string) (store.Run, error) {
	inType, _, err := a.cfg.PixelTypes()
	if err != nil {
		return store.Run{}, err
	}

	mat, err := a.loader.LoadImage(inputPath, inType)
	if err != nil {
		return store.Run{}, err
	}
	input := core.NewImageFromMat(mat)
	defer input.Close()

	start := time.Now()
	filter.SetInput(input)
	if err := filter.Update(); err != nil {
		return store.Run{}, fmt.Errorf("processing %s: %w", inputPath, err)
	}
	duration := time.Since(start)

	output := filter.Output().Mat()
	if err := a.loader.SaveImage(output, outputPath); err != nil {
		return store.Run{}, err
	}

	meta := filter.Output().Metadata()
	run := store.Run{
		InputPath:       inputPath,
		OutputPath:      outputPath,
		Threshold:       filter.ThresholdValue(),
		PixelType:       inType.String(),
		OutputPixelType: filter.OutputPixelType().String(),
		Width:           meta.Width,
		Height:          meta.Height,
		Duration:        duration,
		Metrics:         eval.CalculateAll(mat, output),
		CreatedAt:       time.Now(),
	}

	a.logger.WithFields(logrus.Fields{
		"input":     inputPath,
		"output":    outputPath,
		"threshold": run.Threshold,
		"duration":  duration,
		"metrics":   run.Metrics,
	}).Info("Image processed")

	s, err := a.openStore()
	if err != nil {
		return run, err
	}
	if s != nil {
		id, err := s.RecordRun(ctx, run)
		if err != nil {
			return run, err
		}
		run.ID = id
	}

	return run, nil
}
