// Package cmd - estimate command
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"memarea/adapters/configfile"
	"memarea/adapters/storage"
	"memarea/core/batch"
	"memarea/core/output"
	"memarea/core/tabulate"
	"memarea/core/types"
	"memarea/internal/config"
	"memarea/internal/logging"
)

var (
	estimateScale    scaleOptions
	estimateRender   renderOptions
	estimateVars     []string
	estimateWorkers  int
	estimateContinue bool
	estimateStore    bool
	estimateProject  string
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate <config>...",
	Short: "Estimate peripheral area for memory configurations",
	Long: `Tabulate the area of every configuration against one component catalog.

Configurations are YAML, JSON or HCL files. HCL files may reference
variables supplied with --var as var.<name>.

Examples:
  memarea estimate --db db.yaml small.yaml large.yaml
  memarea estimate --format json --scale 0.5 configs/*.yaml
  memarea estimate --from-node 65 --to-node 28 --area-only configs/*.yaml
  memarea estimate --var vdd=1.2 array.hcl`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateScale.register(estimateCmd)
	estimateRender.register(estimateCmd)
	registerBatchFlags(estimateCmd)
	estimateCmd.Flags().StringArrayVar(&estimateVars, "var", nil, "HCL variable as name=value (repeatable)")
}

// registerBatchFlags adds the flags shared by every command that runs a batch
func registerBatchFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&estimateWorkers, "workers", "w", 0, "concurrent tabulations (default from config, 0 = one per CPU)")
	cmd.Flags().BoolVar(&estimateContinue, "continue-on-error", false, "skip configurations that fail instead of aborting")
	cmd.Flags().BoolVar(&estimateStore, "store", false, "save the run to the history store")
	cmd.Flags().StringVar(&estimateProject, "project", "", "history project (default from config)")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := logging.Named("estimate")

	vars, err := configfile.ParseVariables(estimateVars)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(catalogPath())
	if err != nil {
		return err
	}
	tab, err := newTabulator(cat, &estimateScale)
	if err != nil {
		return err
	}

	loader := configfile.NewLoader(logging.Named("config")).WithVariables(vars)
	configs, loadErrs := loader.LoadAll(args)
	if len(loadErrs) > 0 && !continueOnError() {
		return loadErrs[0]
	}

	return runBatch(ctx, cmd, tab, configs, len(loadErrs), &estimateRender, log)
}

func continueOnError() bool {
	return estimateContinue || config.Get().Estimate.ContinueOnError
}

// runBatch tabulates configs, renders the reports and optionally stores the run
func runBatch(ctx context.Context, cmd *cobra.Command, tab *tabulate.Tabulator, configs []*types.Configuration, loadFailures int, render *renderOptions, log *zap.Logger) error {
	runner := batch.NewRunner(tab, logging.Named("batch"))
	runner.Workers = config.Get().Estimate.Workers
	if estimateWorkers > 0 {
		runner.Workers = estimateWorkers
	}
	runner.ContinueOnError = continueOnError()

	uw := stderrUI()
	if verbose && len(configs) > 1 {
		pb := uw.NewProgressBar(len(configs), "Tabulating")
		runner.OnDone = func(*types.Configuration, error) { pb.Increment() }
		defer pb.Done()
	}

	result, err := runner.Run(ctx, configs)
	if err != nil {
		return err
	}
	for _, f := range result.Failures {
		uw.Error("%s: %v", f.Configuration, f.Err)
	}

	err = render.render(cmd.OutOrStdout(), &output.Result{RunID: result.RunID, Reports: result.Reports})
	if err != nil {
		return err
	}

	if estimateStore {
		if err := storeRun(ctx, tab, result); err != nil {
			return err
		}
	}

	if verbose {
		total := decimal.Zero
		for _, r := range result.Reports {
			total = total.Add(r.Total())
		}
		summary := uw.NewAreaSummary()
		summary.RunID = result.RunID
		summary.Configurations = len(result.Reports)
		summary.Failures = len(result.Failures) + loadFailures
		summary.TotalArea = total.StringFixed(1)
		summary.Duration = result.Duration
		summary.Render()
	}

	log.Debug("estimation complete",
		zap.String("run_id", result.RunID),
		zap.Int("reports", len(result.Reports)),
		zap.Duration("duration", result.Duration),
	)

	if failed := len(result.Failures) + loadFailures; failed > 0 {
		return fmt.Errorf("%d configuration(s) failed", failed)
	}
	return nil
}

func storeRun(ctx context.Context, tab *tabulate.Tabulator, result *batch.Result) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	project := estimateProject
	if project == "" {
		project = config.Get().Storage.Project
	}

	run := storage.NewStoredRun(result.RunID, project, result.Reports)
	run.Catalog = catalogPath()
	run.Scale = tab.Scale()
	run.CreatedAt = result.StartedAt
	for _, f := range result.Failures {
		run.Failures = append(run.Failures, f.Configuration)
	}

	if err := store.Save(ctx, run); err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	stderrUI().Info("Stored run %s in project %s", run.ID, run.ProjectID)
	return nil
}
