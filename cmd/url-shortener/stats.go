package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/shortlink/internal/app"
	"github.com/vadimbarashkov/shortlink/internal/config"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

func newStatsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [short-code]",
		Short: "Print click counts from the configured store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Report(cmd.Context())
			if err != nil {
				return err
			}

			if len(args) == 1 {
				entry, ok := report[args[0]]
				if !ok {
					return fmt.Errorf("short code %q: %w", args[0], entity.ErrURLNotFound)
				}
				report = entity.Report{args[0]: entry}
			}

			return printReport(cmd.OutOrStdout(), report)
		},
	}
}

func printReport(w io.Writer, report entity.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "SHORT CODE\tCLICKS\tORIGINAL URL")
	for _, code := range report.ShortCodes() {
		entry := report[code]
		fmt.Fprintf(tw, "%s\t%d\t%s\n", code, entry.AccessCount, entry.OriginalURL)
	}

	return tw.Flush()
}
