package cli

import (
	"os"
	"testing"

	"github.com/spf13/cobra"

	"github.com/mkersting/slidegrid/pkg/pipeline"
)

// Grid defaults live on the flags themselves, so the flag values always
// reflect what the user asked for, zero included.
func TestConvertFlagDefaults(t *testing.T) {
	c := New(os.Stderr, LogInfo)

	for _, cmd := range []*cobra.Command{c.convertCommand(), c.planCommand()} {
		for name, want := range map[string]string{
			"slides-per-row": "2",
			"rows-per-page":  "3",
			"gap":            "10",
			"margin":         "20",
			"top-margin":     "0",
		} {
			f := cmd.Flags().Lookup(name)
			if f == nil {
				t.Fatalf("%s flag %q not registered", cmd.Name(), name)
			}
			if f.DefValue != want {
				t.Errorf("%s --%s default = %q, want %q", cmd.Name(), name, f.DefValue, want)
			}
		}
	}
}

func TestConvertZeroGapFlagSurvives(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	cmd := c.convertCommand()
	if err := cmd.Flags().Parse([]string{"--gap", "0", "--margin", "0"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	gap, _ := cmd.Flags().GetFloat64("gap")
	margin, _ := cmd.Flags().GetFloat64("margin")
	opts := pipeline.Options{Inputs: []string{"deck.pdf"}, Gap: gap, Margin: margin}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	grid := opts.GridConfig()
	if grid.Gap != 0 || grid.Margin != 0 {
		t.Errorf("grid = gap %g margin %g, explicit zeros should survive", grid.Gap, grid.Margin)
	}
}

func TestSingleFileBase(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"empty uses default", "", "slides_grid"},
		{"pdf extension stripped", "out.pdf", "out"},
		{"json extension stripped", "plan.json", "plan"},
		{"unknown extension kept", "slides.final", "slides.final"},
		{"no extension kept", "slides", "slides"},
		{"path preserved", "dir/out.pdf", "dir/out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := singleFileBase(tt.output); got != tt.want {
				t.Errorf("singleFileBase(%q) = %q, want %q", tt.output, got, tt.want)
			}
		})
	}
}
