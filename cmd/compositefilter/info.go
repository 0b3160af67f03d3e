package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"composite-filter/internal/algorithms"
	"composite-filter/internal/core"
	"composite-filter/internal/store"
)

func newAlgorithmsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List registered algorithms and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range algorithms.Names() {
				algorithm, _ := algorithms.Get(name)
				fmt.Fprintf(out, "%s - %s\n", name, algorithm.GetDescription())
				for _, p := range algorithm.GetParameterInfo() {
					fmt.Fprintf(out, "    %-18s %-10s default=%v  %s\n", p.Name, p.Type, p.Default, p.Description)
				}
			}
			return nil
		},
	}
}

func newDescribeCmd(a *app) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the state of a composite filter built from the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, a); err != nil {
				return err
			}
			filter, err := a.newFilter()
			if err != nil {
				return err
			}
			defer filter.Close()

			filter.Describe(cmd.OutOrStdout(), core.Indent(0))
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit int
		input string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("no history database configured (use --db or 'database' in the config)")
			}

			var runs []store.Run
			if input != "" {
				runs, err = s.RunsForInput(cmd.Context(), input)
			} else {
				runs, err = s.ListRuns(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tINPUT\tOUTPUT\tTHRESHOLD\tTYPE\tSIZE\tDURATION\tEDGE DENSITY")
			for _, r := range runs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%g\t%s->%s\t%dx%d\t%s\t%.4f\n",
					r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.InputPath, r.OutputPath,
					r.Threshold, r.PixelType, r.OutputPixelType, r.Width, r.Height, r.Duration,
					r.Metrics["edge_density"])
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&input, "input", "", "Only list runs for this input path")

	return cmd
}
