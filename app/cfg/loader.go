package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Harvest configuration
	FeedURL    string `long:"feed-url" env:"FEED_URL" default:"https://www.gov.uk/search/news-and-communications.atom" description:"Atom feed URL to harvest"`
	SourcesDir string `long:"sources-dir" env:"SOURCES_DIR" description:"Directory containing additional source configuration files (optional)"`
	MaxEntries int    `long:"max-entries" env:"MAX_ENTRIES" default:"0" description:"Maximum entries to process per source (0 = no limit)"`
	Timeout    int    `long:"timeout" env:"TIMEOUT" default:"30" description:"HTTP timeout in seconds"`

	// Page extraction
	ExtractPages bool `long:"extract-pages" env:"EXTRACT_PAGES" description:"Fetch linked article pages for body text and organisation"`

	// Storage configuration
	DataDir string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory for the SQLite database"`
	DBFile  string `long:"db-file" env:"DB_FILE" default:"govpulse.db" description:"SQLite database file name"`

	// Chart output
	ChartsDir string `long:"charts-dir" env:"CHARTS_DIR" default:"./charts" description:"Directory chart PNG files are written to"`

	// HTTP mode
	Serve bool   `long:"serve" env:"SERVE" description:"Keep running and serve stats and charts over HTTP after harvesting"`
	Port  string `long:"port" env:"PORT" default:"8080" description:"HTTP server port (with --serve)"`

	// Scheduling
	Interval int `long:"interval" env:"INTERVAL" default:"0" description:"Re-run the pipeline every N seconds (0 = run once)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"govpulse/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/London)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		FeedURL:      raw.FeedURL,
		SourcesDir:   raw.SourcesDir,
		MaxEntries:   raw.MaxEntries,
		Timeout:      raw.Timeout,
		ExtractPages: raw.ExtractPages,
		DataDir:      raw.DataDir,
		DBFile:       raw.DBFile,
		ChartsDir:    raw.ChartsDir,
		Serve:        raw.Serve,
		Port:         raw.Port,
		Interval:     raw.Interval,
		UserAgent:    raw.UserAgent,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
	}
	return nil
}
