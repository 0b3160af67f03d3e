package main

import (
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"composite-filter/internal/core"
	"composite-filter/internal/gui"
)

func newViewCmd(a *app) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "view <input>",
		Short: "Open an interactive viewer with a threshold slider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("threshold") {
				a.cfg.Threshold = threshold
			}

			input, err := a.loader.LoadImage(args[0], core.PixelFloat32)
			if err != nil {
				return err
			}
			defer input.Close()

			fyneApp := fyneapp.NewWithID(AppID)
			viewer := gui.NewViewer(fyneApp, input, float32(a.cfg.Threshold), a.logger)
			viewer.ShowAndRun()

			a.logger.Info("Viewer closed")
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 1, "Initial threshold")

	return cmd
}
