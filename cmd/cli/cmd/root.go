// Package cmd provides the CLI commands for memarea.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"memarea/adapters/catalogfile"
	"memarea/adapters/storage"
	"memarea/core/catalog"
	"memarea/core/output"
	"memarea/core/tabulate"
	"memarea/core/ui"
	"memarea/core/units"
	"memarea/internal/config"
	"memarea/internal/logging"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
	dbPath  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "memarea",
	Short: "Estimate memory macro peripheral area",
	Long: `memarea estimates the silicon area of a memory macro: the core array
plus the wordline, bitline and well drivers, their decoders and an optional
ADC bank, each picked as the smallest fitting cell from a component catalog.

Examples:
  memarea estimate --db db.yaml configs/*.yaml
  memarea estimate --format csv --output areas.csv configs/*.yaml
  memarea sweep --param vdd --from 0.8 --to 1.8 --step 0.2 wl.hcl
  memarea catalog show --db db.yaml`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.memarea.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "component catalog (yaml, json, hcl or text)")

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	logging.Debug("configuration loaded", zap.String("path", path), zap.String("catalog", cfg.Catalog.Path))
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "memarea version %s\n", Version)
	},
}

// stderrUI writes human messages next to machine-readable stdout
func stderrUI() *ui.Writer {
	w := ui.NewWriter(os.Stderr, config.Get().Output.NoColor)
	if verbose {
		w.SetVerbosity(2)
	}
	return w
}

func catalogPath() string {
	if dbPath != "" {
		return dbPath
	}
	return config.Get().Catalog.Path
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	loader := catalogfile.NewLoader(logging.Named("catalog"))

	format := config.Get().Catalog.Format
	if format == "" || path != config.Get().Catalog.Path {
		return loader.Load(path)
	}

	f, err := catalogfile.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer r.Close()
	return loader.Decode(r, f, path)
}

// scaleOptions are the area scaling flags shared by estimate and sweep
type scaleOptions struct {
	scale    float64
	fromNode int
	toNode   int
}

func (o *scaleOptions) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&o.scale, "scale", 0, "multiply every area by this factor (default from config)")
	cmd.Flags().IntVar(&o.fromNode, "from-node", 0, fmt.Sprintf("technology node (nm) the catalog was characterized in, one of %v", units.KnownNodes()))
	cmd.Flags().IntVar(&o.toNode, "to-node", 0, "technology node (nm) to scale areas to")
}

func (o *scaleOptions) resolve(log *zap.Logger) (decimal.Decimal, error) {
	est := config.Get().Estimate

	scale := est.Scale
	if o.scale != 0 {
		scale = o.scale
	}
	if scale <= 0 {
		return decimal.Zero, fmt.Errorf("scale must be positive, got %g", scale)
	}
	result := decimal.NewFromFloat(scale)

	from, to := est.FromNode, est.ToNode
	if o.fromNode != 0 || o.toNode != 0 {
		from, to = o.fromNode, o.toNode
	}
	switch {
	case from == 0 && to == 0:
	case from == 0 || to == 0:
		return decimal.Zero, fmt.Errorf("--from-node and --to-node must be given together")
	default:
		result = result.Mul(units.ScaleBetween(from, to, log))
	}
	return result, nil
}

func newTabulator(cat *catalog.Catalog, opts *scaleOptions) (*tabulate.Tabulator, error) {
	log := logging.Named("tabulate")
	scale, err := opts.resolve(log)
	if err != nil {
		return nil, err
	}
	return tabulate.New(cat, tabulate.WithScale(scale), tabulate.WithLogger(log))
}

// renderOptions are the report output flags
type renderOptions struct {
	format   string
	output   string
	areaOnly bool
}

func (o *renderOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format (text, csv, json, yaml, area)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write reports to a file instead of stdout")
	cmd.Flags().BoolVar(&o.areaOnly, "area-only", false, "print only the total area per configuration")
}

func (o *renderOptions) resolve() (output.Format, error) {
	cfg := config.Get().Output
	switch {
	case o.areaOnly || (o.format == "" && o.output == "" && cfg.AreaOnly):
		return output.FormatArea, nil
	case o.format != "":
		return output.ParseFormat(o.format)
	case o.output != "":
		return output.FormatFromPath(o.output)
	}
	return output.ParseFormat(cfg.DefaultFormat)
}

func (o *renderOptions) render(stdout io.Writer, result *output.Result) error {
	format, err := o.resolve()
	if err != nil {
		return err
	}

	w := stdout
	if o.output != "" {
		f, err := os.Create(o.output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", o.output, err)
		}
		defer f.Close()
		w = f
	}

	if err := output.NewRegistry().Render(w, format, result); err != nil {
		return err
	}
	if o.output != "" {
		stderrUI().Success("Wrote %s output to %s", format, o.output)
	}
	return nil
}

func openStore() (storage.Store, error) {
	cfg := config.Get().Storage
	return storage.StoreFactory(storage.Backend(cfg.Backend), map[string]string{"path": cfg.Directory})
}

// splitCSV splits a comma-separated flag value
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
