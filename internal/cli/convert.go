package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkersting/slidegrid/pkg/layout"
	"github.com/mkersting/slidegrid/pkg/pipeline"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	output       string // output file (single-file) or directory (per-document)
	formatsStr   string // comma-separated output formats
	slidesPerRow int
	rowsPerPage  int
	gap          float64
	margin       float64
	topMargin    float64
	rtl          bool
	singleFile   bool
	noNewPage    bool
	index        bool
	scale        float64
	validate     bool
	noCache      bool
	refresh      bool
	interactive  bool
}

// convertCommand creates the convert command, the main entry point of the
// tool.
//
// Default settings mirror the layout defaults: 2 slides per row, 10pt gap,
// 20pt side margin, no top margin. Without --single-file every input gets
// its own output PDF.
func (c *CLI) convertCommand() *cobra.Command {
	var o convertOpts

	cmd := &cobra.Command{
		Use:   "convert [inputs...]",
		Short: "Convert documents into grid-layout PDFs",
		Long: `Convert presentation exports into N-up grid PDFs.

Inputs can be PDF files, single images, or directories of slide images.
By default each input becomes its own output file; with --single-file all
inputs are merged into one document, each starting on a fresh page unless
--no-new-page is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, args, &o)
		},
	}

	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (single-file) or directory (per-document)")
	cmd.Flags().StringVarP(&o.formatsStr, "format", "f", "", "output format(s): pdf (default), png, json (comma-separated)")
	cmd.Flags().IntVar(&o.slidesPerRow, "slides-per-row", pipeline.DefaultSlidesPerRow, "number of slides per row")
	cmd.Flags().IntVar(&o.rowsPerPage, "rows-per-page", layout.DefaultRowsPerPage, "number of rows per page")
	cmd.Flags().Float64Var(&o.gap, "gap", pipeline.DefaultGap, "gap between slides in points")
	cmd.Flags().Float64Var(&o.margin, "margin", pipeline.DefaultMargin, "side and bottom margin in points")
	cmd.Flags().Float64Var(&o.topMargin, "top-margin", pipeline.DefaultTopMargin, "top margin in points")
	cmd.Flags().BoolVar(&o.rtl, "rtl", false, "fill rows right to left")
	cmd.Flags().BoolVar(&o.singleFile, "single-file", false, "combine all inputs into a single output document")
	cmd.Flags().BoolVar(&o.noNewPage, "no-new-page", false, "let documents share pages in single-file mode")
	cmd.Flags().BoolVar(&o.index, "index", false, "prepend an index page in single-file mode")
	cmd.Flags().Float64Var(&o.scale, "scale", pipeline.DefaultScale, "raster scale for png output in pixels per point")
	cmd.Flags().BoolVar(&o.validate, "validate", false, "re-parse rendered PDFs to verify their structure")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the local cache")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "bypass cached results")
	cmd.Flags().BoolVar(&o.interactive, "interactive", false, "show live per-document progress")

	return cmd
}

// pipelineOptions builds pipeline options from flags plus config defaults.
// Config values only fill in flags the user did not set, so an explicit
// --gap 0 beats a gap from the config file.
func (c *CLI) pipelineOptions(cmd *cobra.Command, inputs []string, o *convertOpts) (pipeline.Options, error) {
	opts := pipeline.Options{
		Inputs:         inputs,
		SlidesPerRow:   o.slidesPerRow,
		RowsPerPage:    o.rowsPerPage,
		Gap:            o.gap,
		Margin:         o.margin,
		TopMargin:      o.topMargin,
		RTL:            o.rtl,
		SingleFile:     o.singleFile,
		NoNewPage:      o.noNewPage,
		Index:          o.index,
		Scale:          o.scale,
		ValidateOutput: o.validate,
		Refresh:        o.refresh,
		Logger:         c.Logger,
	}
	if o.formatsStr != "" {
		opts.Formats = parseFormats(o.formatsStr)
	}

	cfg, err := loadConfig()
	if err != nil {
		return opts, err
	}
	cfg.apply(&opts, cmd.Flags().Changed)

	return opts, nil
}

func (c *CLI) runConvert(cmd *cobra.Command, inputs []string, o *convertOpts) error {
	ctx := cmd.Context()
	opts, err := c.pipelineOptions(cmd, inputs, o)
	if err != nil {
		return err
	}

	if o.index && !o.singleFile {
		printWarning("--index only applies with --single-file, ignoring")
	}

	runner, err := c.newRunner(o.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	if o.interactive && !o.singleFile && len(inputs) > 1 {
		return c.runConvertInteractive(ctx, runner, inputs, opts, o)
	}

	track := newProgress(c.Logger)
	spin := newSpinnerWithContext(ctx, "converting...")
	spin.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spin.StopWithError(fmt.Sprintf("conversion failed: %v", err))
		return err
	}
	spin.Stop()
	track.done(fmt.Sprintf("Converted %d documents", result.Stats.DocumentCount))

	written, err := writeOutputs(result, opts, o.output)
	if err != nil {
		return err
	}

	printSuccess("Converted %d documents", result.Stats.DocumentCount)
	printStats(result.Stats.DocumentCount, result.Stats.PageCount, result.CacheInfo.RenderHit)
	for _, path := range written {
		printFile(path)
	}
	return nil
}

// writeOutputs writes every produced artifact or file to disk and returns
// the written paths.
func writeOutputs(result *pipeline.Result, opts pipeline.Options, output string) ([]string, error) {
	if opts.SingleFile {
		base := singleFileBase(output)
		written := make([]string, 0, len(result.Artifacts))
		for _, format := range opts.Formats {
			data, ok := result.Artifacts[format]
			if !ok {
				continue
			}
			path := base + "." + format
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return nil, err
			}
			written = append(written, path)
		}
		return written, nil
	}

	dir := output
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	written := make([]string, 0, len(result.Files))
	for _, doc := range result.Documents {
		data, ok := result.Files[doc.Name]
		if !ok {
			continue
		}
		path := filepath.Join(dir, doc.Name+"_grid.pdf")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

// singleFileBase derives the base output path for single-file mode.
// A known format extension on the output flag is stripped, so -o out.pdf
// with --format pdf,json yields out.pdf and out.json.
func singleFileBase(output string) string {
	if output == "" {
		return "slides_grid"
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if pipeline.ValidFormats[ext] {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}
