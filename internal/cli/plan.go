package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkersting/slidegrid/pkg/layout"
	"github.com/mkersting/slidegrid/pkg/pipeline"
)

// planOpts holds the command-line flags for the plan command.
type planOpts struct {
	output       string
	slidesPerRow int
	rowsPerPage  int
	gap          float64
	margin       float64
	topMargin    float64
	rtl          bool
	noNewPage    bool
	index        bool
	noCache      bool
	refresh      bool
}

// planCommand creates the plan command, which computes and inspects a
// layout without rendering anything.
func (c *CLI) planCommand() *cobra.Command {
	var o planOpts

	cmd := &cobra.Command{
		Use:   "plan [inputs...]",
		Short: "Compute a grid layout and write it as JSON",
		Long: `Compute the grid layout for the given inputs and write it as JSON.

The plan records every page with its slide positions and labels but no
image data, so it is cheap to produce and diff. The same plan feeds the
convert command's render stage.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd, args, &o)
		},
	}

	cmd.Flags().StringVarP(&o.output, "output", "o", "plan.json", "output file for the plan")
	cmd.Flags().IntVar(&o.slidesPerRow, "slides-per-row", pipeline.DefaultSlidesPerRow, "number of slides per row")
	cmd.Flags().IntVar(&o.rowsPerPage, "rows-per-page", layout.DefaultRowsPerPage, "number of rows per page")
	cmd.Flags().Float64Var(&o.gap, "gap", pipeline.DefaultGap, "gap between slides in points")
	cmd.Flags().Float64Var(&o.margin, "margin", pipeline.DefaultMargin, "side and bottom margin in points")
	cmd.Flags().Float64Var(&o.topMargin, "top-margin", pipeline.DefaultTopMargin, "top margin in points")
	cmd.Flags().BoolVar(&o.rtl, "rtl", false, "fill rows right to left")
	cmd.Flags().BoolVar(&o.noNewPage, "no-new-page", false, "let documents share pages")
	cmd.Flags().BoolVar(&o.index, "index", false, "reserve an index page")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the local cache")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "bypass cached results")

	return cmd
}

func (c *CLI) runPlan(cmd *cobra.Command, inputs []string, o *planOpts) error {
	ctx := cmd.Context()
	opts := pipeline.Options{
		Inputs:       inputs,
		SlidesPerRow: o.slidesPerRow,
		RowsPerPage:  o.rowsPerPage,
		Gap:          o.gap,
		Margin:       o.margin,
		TopMargin:    o.topMargin,
		RTL:          o.rtl,
		SingleFile:   true,
		NoNewPage:    o.noNewPage,
		Index:        o.index,
		Refresh:      o.refresh,
		Logger:       c.Logger,
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.apply(&opts, cmd.Flags().Changed)

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(o.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinnerWithContext(ctx, "planning...")
	spin.Start()

	documents, images, _, err := runner.DecodeWithCacheInfo(ctx, opts)
	if err != nil {
		spin.StopWithError(fmt.Sprintf("decoding failed: %v", err))
		return err
	}

	plan, err := runner.Plan(ctx, documents, pipeline.SourceHash(documents, images), opts)
	if err != nil {
		spin.StopWithError(fmt.Sprintf("planning failed: %v", err))
		return err
	}
	spin.Stop()

	data, err := layout.MarshalPlan(plan)
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.output, data, 0o644); err != nil {
		return err
	}

	printSuccess("Planned %d documents", len(documents))
	printKeyValue("pages", fmt.Sprintf("%d", plan.PageCount()))
	printKeyValue("page size", fmt.Sprintf("%.0f x %.0f pt", plan.PageWidth, plan.PageHeight))
	printKeyValue("cell size", fmt.Sprintf("%.0f x %.0f pt", plan.CellWidth, plan.CellHeight))
	printFile(o.output)
	return nil
}
