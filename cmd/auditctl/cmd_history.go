package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/insightcart/internal/metrics"
	"github.com/markdave123-py/insightcart/internal/models"
	"github.com/markdave123-py/insightcart/internal/services"
)

var publicOnly bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List reports in the shared history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := env()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		ws, store, err := openWorkspace(ctx, cfg, log, metrics.NewRecorder(), nil)
		if err != nil {
			return err
		}
		defer store.Close()

		reports := ws.PublicListings()
		if !publicOnly {
			reports = ws.Reports()
		}
		return writeHistory(cmd.OutOrStdout(), reports)
	},
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Print market trends computed from public listings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := env()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		ws, store, err := openWorkspace(ctx, cfg, log, metrics.NewRecorder(), nil)
		if err != nil {
			return err
		}
		defer store.Close()

		return printJSON(cmd.OutOrStdout(), services.BuildTrending(ws.PublicListings(), nil))
	},
}

func init() {
	historyCmd.Flags().BoolVar(&publicOnly, "public", false, "Only list reports on the public feed")
}

// writeHistory prints one row per report, newest first as stored.
func writeHistory(out io.Writer, reports []*models.AnalysisResult) error {
	if len(reports) == 0 {
		_, err := fmt.Fprintln(out, "no reports")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRODUCT\tOWNER\tMODE\tVIABILITY\tRATING\tLISTING\tCREATED")
	for _, r := range reports {
		listing := "private"
		if r.IsPublic {
			listing = "public"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.1f (%d)\t%s\t%s\n",
			r.ID, r.ProductName, r.UserName, shortMode(r.SelectedMode), r.ViabilityScore(),
			r.AverageRating(), len(r.Ratings), listing,
			time.UnixMilli(r.Timestamp).UTC().Format(time.RFC3339))
	}
	return w.Flush()
}

func shortMode(mode string) string {
	if mode == models.ModeLinkBased {
		return "link"
	}
	return "manual"
}
