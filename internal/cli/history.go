package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/pipeline"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/store"
)

var (
	historyLimit  int
	historyStatus string
	historyMD     bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [report-id]",
	Short: "List or show stored reports",
	Long: `History reads the report database written by analyze, batch and serve.

Without an argument it lists the most recent reports. With a report ID it
prints that report as JSON, or as Markdown with --md.

Example:
  reliefscout history
  reliefscout history --status likely_fake --limit 20
  reliefscout history 6f1c2a9e-4d7b-4c1e-9b0a-3f5e8d2c1a77 --md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", store.DefaultListLimit, "maximum reports to list")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "only list reports with this status")
	historyCmd.Flags().BoolVar(&historyMD, "md", false, "print a single report as Markdown")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Path == "" {
		return errors.New("report store is disabled (store.path is empty)")
	}

	reports, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = reports.Close() }()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		report, err := reports.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if historyMD {
			_, err = fmt.Fprint(out, pipeline.NewRenderer(cfg.Output.IncludeFooter).Markdown(report))
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	summaries, err := reports.List(ctx, store.ListOptions{Limit: historyLimit, Status: model.Status(historyStatus)})
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No reports stored yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSUBMITTED\tPLATFORM\tSCORE\tSTATUS\tINPUT")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\t%s\n",
			s.ID, s.SubmittedAt.Local().Format("2006-01-02 15:04"), s.Platform,
			s.Percentage, s.Status, store.Truncate(s.Input, 50))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if total, err := reports.Count(ctx); err == nil && total > len(summaries) {
		fmt.Fprintf(os.Stderr, "\nShowing %d of %d reports\n", len(summaries), total)
	}
	return nil
}
