package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"composite-filter/internal/algorithms"
)

func newApplyCmd(a *app) *cobra.Command {
	var (
		rawParams []string
		pixelType string
	)

	cmd := &cobra.Command{
		Use:   "apply <algorithm> <input> <output>",
		Short: "Run a single registered algorithm",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, inputPath, outputPath := args[0], args[1], args[2]
			if !algorithms.IsValidAlgorithm(name) {
				return fmt.Errorf("unknown algorithm: %s (see '%s algorithms')", name, AppName)
			}

			params, err := parseParams(rawParams)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("pixel-type") {
				a.cfg.PixelType = pixelType
			}
			inType, _, err := a.cfg.PixelTypes()
			if err != nil {
				return err
			}

			input, err := a.loader.LoadImage(inputPath, inType)
			if err != nil {
				return err
			}
			defer input.Close()

			output, err := algorithms.Apply(name, input, params)
			if err != nil {
				return err
			}
			defer output.Close()

			a.logger.WithFields(logrus.Fields{
				"algorithm": name,
				"params":    params,
			}).Info("Algorithm applied")

			return a.loader.SaveImage(output, outputPath)
		},
	}
	cmd.Flags().StringArrayVarP(&rawParams, "param", "p", nil, "Algorithm parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&pixelType, "pixel-type", "", "Pixel type the input is converted to")

	return cmd
}

// parseParams turns key=value pairs into algorithm parameters. Values that
// parse as numbers become float64, everything else stays a string.
func parseParams(raw []string) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", kv)
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			params[key] = f
		} else {
			params[key] = value
		}
	}
	return params, nil
}
