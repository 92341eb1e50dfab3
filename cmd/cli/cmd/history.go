// Package cmd - history commands
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"memarea/adapters/storage"
	"memarea/core/output"
	"memarea/core/ui"
	"memarea/internal/config"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show and compare stored estimation runs",
	Long: `Runs saved with --store are kept in the history store configured under
"storage" in the config file.

Examples:
  memarea history list --limit 5
  memarea history show 3f1c... --format csv
  memarea history compare <old-id> <new-id>`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Render the reports of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCompareCmd = &cobra.Command{
	Use:   "compare <old-run-id> <new-run-id>",
	Short: "Show per-configuration area changes between two runs",
	Args:  cobra.ExactArgs(2),
	RunE:  runHistoryCompare,
}

var (
	historyProject string
	historyLimit   int
	historyRender  renderOptions
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCompareCmd)

	historyListCmd.Flags().StringVar(&historyProject, "project", "", "only runs of this project (default from config)")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum runs to list (0 = all)")
	historyRender.register(historyShowCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	project := historyProject
	if project == "" {
		project = config.Get().Storage.Project
	}

	runs, err := store.List(context.Background(), &storage.ListFilter{ProjectID: project, Limit: historyLimit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		stderrUI().Info("No stored runs in project %s", project)
		return nil
	}

	w := ui.NewWriter(cmd.OutOrStdout(), config.Get().Output.NoColor)
	tbl := w.NewTable("Run", "Created", "Configurations", "Failures", "Total area (μm²)")
	tbl.SetAlign(2, ui.AlignRight).SetAlign(3, ui.AlignRight).SetAlign(4, ui.AlignRight)
	for _, r := range runs {
		tbl.AddRow(
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprint(len(r.Reports)),
			fmt.Sprint(len(r.Failures)),
			r.TotalArea.StringFixed(1),
		)
	}
	tbl.Render()
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}
	return historyRender.render(cmd.OutOrStdout(), &output.Result{RunID: run.ID, Reports: run.Reports})
}

func runHistoryCompare(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := store.Compare(context.Background(), args[0], args[1])
	if err != nil {
		return err
	}

	w := ui.NewWriter(cmd.OutOrStdout(), config.Get().Output.NoColor)
	diff := w.NewAreaDiff()
	for _, d := range res.Added {
		diff.Added = append(diff.Added, ui.DiffItem{Configuration: d.Configuration, NewArea: d.NewArea.StringFixed(1)})
	}
	for _, d := range res.Removed {
		diff.Removed = append(diff.Removed, ui.DiffItem{Configuration: d.Configuration, OldArea: d.OldArea.StringFixed(1)})
	}
	for _, d := range res.Changed {
		diff.Changed = append(diff.Changed, ui.DiffItem{
			Configuration: d.Configuration,
			OldArea:       d.OldArea.StringFixed(1),
			NewArea:       d.NewArea.StringFixed(1),
			Change:        d.Delta.StringFixed(1),
			IsIncrease:    d.Delta.IsPositive(),
		})
	}
	diff.IsIncrease = res.Delta.IsPositive()
	diff.TotalChange = fmt.Sprintf("%s μm² (%.1f%%)", res.Delta.StringFixed(1), res.DeltaPercent)
	diff.Render()
	return nil
}
