package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/mkersting/slidegrid/pkg/pipeline"
)

// Config holds user defaults loaded from the config file
// (~/.config/slidegrid/config.toml). Every field is optional, command-line
// flags always win over config values. The fields are pointers so that a
// value written in the file, zero included, is distinguishable from one
// that is simply absent.
type Config struct {
	SlidesPerRow *int     `toml:"slides_per_row"`
	RowsPerPage  *int     `toml:"rows_per_page"`
	Gap          *float64 `toml:"gap"`
	Margin       *float64 `toml:"margin"`
	TopMargin    *float64 `toml:"top_margin"`
	RTL          *bool    `toml:"rtl"`
	Format       *string  `toml:"format"`
	Scale        *float64 `toml:"scale"`
}

// loadConfig reads the config file if present.
// A missing file yields a zero Config without error.
func loadConfig() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Config{}, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}

	return parseConfig(string(data), path)
}

func parseConfig(data, path string) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal([]byte(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// apply seeds pipeline options from the config. A config value only fills
// a flag the user did not set on the command line, reported by flagSet, so
// flags keep precedence even at explicit zero.
func (cfg Config) apply(opts *pipeline.Options, flagSet func(name string) bool) {
	if cfg.SlidesPerRow != nil && !flagSet("slides-per-row") {
		opts.SlidesPerRow = *cfg.SlidesPerRow
	}
	if cfg.RowsPerPage != nil && !flagSet("rows-per-page") {
		opts.RowsPerPage = *cfg.RowsPerPage
	}
	if cfg.Gap != nil && !flagSet("gap") {
		opts.Gap = *cfg.Gap
	}
	if cfg.Margin != nil && !flagSet("margin") {
		opts.Margin = *cfg.Margin
	}
	if cfg.TopMargin != nil && !flagSet("top-margin") {
		opts.TopMargin = *cfg.TopMargin
	}
	if cfg.RTL != nil && !flagSet("rtl") {
		opts.RTL = *cfg.RTL
	}
	if cfg.Format != nil && !flagSet("format") {
		opts.Formats = parseFormats(*cfg.Format)
	}
	if cfg.Scale != nil && !flagSet("scale") {
		opts.Scale = *cfg.Scale
	}
}
