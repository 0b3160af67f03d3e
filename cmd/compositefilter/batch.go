package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	imageio "composite-filter/internal/io"
	"composite-filter/internal/metrics"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		flags   filterFlags
		workers int
		suffix  string
	)

	cmd := &cobra.Command{
		Use:   "batch <input-dir> <output-dir>",
		Short: "Run the composite filter over every image in a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, a); err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				a.cfg.Workers = workers
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			inputDir, outputDir := args[0], args[1]
			entries, err := os.ReadDir(inputDir)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", inputDir, err)
			}
			files := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
				return e.Name(), !e.IsDir() && imageio.IsSupportedImageFormat(e.Name())
			})
			if len(files) == 0 {
				a.logger.WithField("dir", inputDir).Warn("No supported images found")
				return nil
			}
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return err
			}
			// Open before the workers start so they share one handle
			if _, err := a.openStore(); err != nil {
				return err
			}

			jobs := make(chan string)
			g, ctx := errgroup.WithContext(cmd.Context())

			g.Go(func() error {
				defer close(jobs)
				for _, name := range files {
					select {
					case jobs <- name:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
				return nil
			})

			numWorkers := min(a.cfg.Workers, len(files))
			for i := 0; i < numWorkers; i++ {
				g.Go(func() error {
					// Filters hold per-execution state and are not shared
					filter, err := a.newFilter()
					if err != nil {
						return err
					}
					defer filter.Close()
					eval := metrics.NewEvaluator()

					for name := range jobs {
						outName := strings.TrimSuffix(name, filepath.Ext(name)) + suffix
						_, err := a.processFile(ctx, filter, eval,
							filepath.Join(inputDir, name), filepath.Join(outputDir, outName))
						if err != nil {
							return err
						}
					}
					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}

			a.logger.WithFields(logrus.Fields{
				"files":   len(files),
				"workers": numWorkers,
			}).Info("Batch complete")
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of concurrent filters (defaults to the configured value)")
	cmd.Flags().StringVar(&suffix, "suffix", "_edges.png", "Suffix replacing each input's extension")

	return cmd
}
