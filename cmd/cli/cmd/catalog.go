// Package cmd - catalog commands
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"memarea/adapters/catalogfile"
	"memarea/adapters/lef"
	"memarea/core/catalog"
	"memarea/core/types"
	"memarea/core/ui"
	"memarea/internal/logging"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and maintain component catalogs",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List catalog components by kind",
	Args:  cobra.NoArgs,
	RunE:  runCatalogShow,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check catalog components for impossible values",
	Args:  cobra.NoArgs,
	RunE:  runCatalogValidate,
}

var catalogConvertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Convert a catalog between formats",
	Long: `Read a catalog in any supported format and write it as YAML or JSON,
chosen by the output extension.

Examples:
  memarea catalog convert db.txt db.yaml
  memarea catalog convert lib.hcl lib.json`,
	Args: cobra.ExactArgs(2),
	RunE: runCatalogConvert,
}

var catalogAugmentCmd = &cobra.Command{
	Use:   "augment <file.lef>",
	Short: "Update component sizes from LEF macros",
	Long: `Set the width and height of every catalog component whose name matches a
LEF MACRO to the macro's SIZE. Enclosures and electrical values are kept.

Examples:
  memarea catalog augment --db db.yaml cells.lef
  memarea catalog augment --db db.yaml --out db-lef.yaml cells.lef`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogAugment,
}

var (
	catalogKinds   string
	catalogOut     string
	catalogNoColor bool
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogConvertCmd)
	catalogCmd.AddCommand(catalogAugmentCmd)

	catalogShowCmd.Flags().StringVarP(&catalogKinds, "kind", "k", "", "comma-separated kinds to list (core, logic, switch, adc)")
	catalogShowCmd.Flags().BoolVar(&catalogNoColor, "no-color", false, "disable colors")
	catalogAugmentCmd.Flags().StringVar(&catalogOut, "out", "", "write the augmented catalog here (default overwrites --db)")
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(catalogPath())
	if err != nil {
		return err
	}

	kinds := cat.Kinds()
	if catalogKinds != "" {
		kinds = nil
		for _, k := range splitCSV(catalogKinds) {
			kind, err := types.ParseKind(k)
			if err != nil {
				return err
			}
			kinds = append(kinds, kind)
		}
	}

	w := ui.NewWriter(cmd.OutOrStdout(), catalogNoColor)
	for _, kind := range kinds {
		view, err := cat.CollectionFor(kind)
		if err != nil {
			return err
		}
		w.Header(fmt.Sprintf("%s (%d)", kind, view.Len()))

		tbl := w.NewTable("Name", "Properties", "Size (μm)", "Enc (μm)", "Unit area (μm²)")
		tbl.SetAlign(4, ui.AlignRight)
		view.Each(func(e catalog.Entry) bool {
			d := e.Component.Footprint()
			tbl.AddRow(
				e.Name,
				describe(e.Component),
				fmt.Sprintf("%g × %g", d.Width, d.Height),
				fmt.Sprintf("%g × %g", d.EncX, d.EncY),
				d.TiledArea(types.Single).StringFixed(3),
			)
			return true
		})
		tbl.Render()
	}

	stats := cat.Stats()
	w.Println("")
	w.Println("%d components in %d sections", stats.Total, len(cat.Kinds()))
	return nil
}

func describe(c types.Component) string {
	switch c := c.(type) {
	case types.CoreCell:
		return fmt.Sprintf("dx_wl=%g dx_bl=%g", c.DriveWordline, c.DriveBitline)
	case types.LogicBlock:
		return fmt.Sprintf("dx=%g bits=%d fs=%g", c.DriveStrength, c.DecodableBits, c.MaxFrequency)
	case types.Switch:
		return fmt.Sprintf("dx=%g voltage=[%g, %g]", c.DriveStrength, c.VoltageMin, c.VoltageMax)
	case types.ADC:
		return fmt.Sprintf("bits=%d fs=%g", c.ResolutionBits, c.MaxSampleRate)
	}
	return ""
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	path := catalogPath()
	cat, err := loadCatalog(path)
	if err != nil {
		return err
	}

	w := stderrUI()
	errs := cat.Validate(catalog.DefaultValidationRules())
	for _, e := range errs {
		w.Error("%v", e)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s: %d invalid component(s)", path, len(errs))
	}
	w.Success("%s: %d components valid", path, cat.Stats().Total)
	return nil
}

func runCatalogConvert(cmd *cobra.Command, args []string) error {
	loader := catalogfile.NewLoader(logging.Named("catalog"))
	cat, err := loader.Load(args[0])
	if err != nil {
		return err
	}
	if err := loader.Save(cat, args[1]); err != nil {
		return err
	}
	stderrUI().Success("Converted %s to %s (%d components)", args[0], args[1], cat.Stats().Total)
	return nil
}

func runCatalogAugment(cmd *cobra.Command, args []string) error {
	path := catalogPath()
	loader := catalogfile.NewLoader(logging.Named("catalog"))
	cat, err := loader.Load(path)
	if err != nil {
		return err
	}

	macros, err := lef.ParseFile(args[0])
	if err != nil {
		return err
	}

	augmented, res := lef.Augment(cat, macros, logging.Named("lef"))

	out := catalogOut
	if out == "" {
		out = path
	}
	if err := loader.Save(augmented, out); err != nil {
		return err
	}

	w := stderrUI()
	for _, key := range res.Updated {
		w.Debug("resized %s", key)
	}
	for _, name := range res.Unmatched {
		w.Warning("macro %s has no catalog entry", name)
	}
	w.Success("Resized %d component(s) from %d macro(s), wrote %s", len(res.Updated), len(macros), out)
	return nil
}
