// Package cmd - sweep command
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"memarea/adapters/configfile"
	"memarea/internal/logging"
)

var (
	sweepScale  scaleOptions
	sweepRender renderOptions
	sweepVars   []string
	sweepParam  string
	sweepFrom   string
	sweepTo     string
	sweepStep   string
)

// sweepCmd evaluates one HCL template across a range of a variable
var sweepCmd = &cobra.Command{
	Use:   "sweep <template.hcl>",
	Short: "Estimate an HCL configuration across a range of one variable",
	Long: `Load an HCL configuration once per point of --from..--to in --step
increments, binding var.<param> to the point, and tabulate every result.

Examples:
  memarea sweep --param vdd --from 0.8 --to 1.8 --step 0.2 wl.hcl
  memarea sweep --param rows --from 64 --to 1024 --step 64 --area-only array.hcl`,
	Args: cobra.ExactArgs(1),
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepScale.register(sweepCmd)
	sweepRender.register(sweepCmd)
	registerBatchFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepVars, "var", nil, "fixed HCL variable as name=value (repeatable)")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "", "variable to sweep [REQUIRED]")
	sweepCmd.Flags().StringVar(&sweepFrom, "from", "", "first value [REQUIRED]")
	sweepCmd.Flags().StringVar(&sweepTo, "to", "", "last value [REQUIRED]")
	sweepCmd.Flags().StringVar(&sweepStep, "step", "1", "increment")

	sweepCmd.MarkFlagRequired("param")
	sweepCmd.MarkFlagRequired("from")
	sweepCmd.MarkFlagRequired("to")
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	from, err := decimal.NewFromString(sweepFrom)
	if err != nil {
		return err
	}
	to, err := decimal.NewFromString(sweepTo)
	if err != nil {
		return err
	}
	step, err := decimal.NewFromString(sweepStep)
	if err != nil {
		return err
	}
	values, err := configfile.Range(from, to, step)
	if err != nil {
		return err
	}

	vars, err := configfile.ParseVariables(sweepVars)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(catalogPath())
	if err != nil {
		return err
	}
	tab, err := newTabulator(cat, &sweepScale)
	if err != nil {
		return err
	}

	configs, err := configfile.NewLoader(logging.Named("config")).
		WithVariables(vars).
		Sweep(args[0], sweepParam, values)
	if err != nil {
		return err
	}

	return runBatch(ctx, cmd, tab, configs, 0, &sweepRender, logging.Named("sweep"))
}
