// Package cli provides the command-line interface for storecheck.
package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/storefront-qa/storecheck/pkg/config"
	"github.com/storefront-qa/storecheck/pkg/core"
	"github.com/storefront-qa/storecheck/pkg/driver/playwright"
	"github.com/storefront-qa/storecheck/pkg/logger"
	"github.com/storefront-qa/storecheck/pkg/report"
	"github.com/storefront-qa/storecheck/pkg/storedb"
	"github.com/storefront-qa/storecheck/pkg/suite"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to storecheck.yaml (default: look in the current directory)",
		EnvVars: []string{"STORECHECK_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "base-url",
		Usage:   "Storefront base URL, overrides the config file",
		EnvVars: []string{"STORECHECK_BASE_URL"},
	},
	&cli.StringFlag{
		Name:    "browser",
		Aliases: []string{"b"},
		Usage:   "Browser engine (chromium, firefox, webkit)",
		EnvVars: []string{"STORECHECK_BROWSER"},
	},
	&cli.BoolFlag{
		Name:    "headless",
		Usage:   "Run the browser without a window",
		EnvVars: []string{"STORECHECK_HEADLESS"},
	},
	&cli.StringFlag{
		Name:    "timeout",
		Usage:   "Per-condition wait budget, e.g. 15s",
		EnvVars: []string{"STORECHECK_TIMEOUT"},
	},
	&cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Directory for reports and screenshots",
		EnvVars: []string{"STORECHECK_OUTPUT"},
	},
	&cli.StringSliceFlag{
		Name:    "scenario",
		Aliases: []string{"s"},
		Usage:   "Scenario ID to run (repeatable; default: all)",
	},
	&cli.StringFlag{
		Name:    "db-dsn",
		Usage:   "MySQL DSN of the store database, enables fixture cleanup",
		EnvVars: []string{"STORECHECK_DB_DSN"},
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "storecheck",
		Usage:   "UI regression suite for an OpenCart storefront",
		Version: Version,
		Description: `Storecheck drives a real browser through registration, login, cart
and checkout flows against a running OpenCart deployment and writes a
JSON report of the outcome.

Examples:
  storecheck run
  storecheck run -s login/valid -s cart/single-product
  storecheck run --base-url http://shop.local/index.php --headless
  storecheck list`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			runCommand,
			listCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "Run scenarios against the storefront",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		if err := logger.Init(cfg.LogFile); err != nil {
			return fmt.Errorf("init log: %w", err)
		}
		defer logger.Close()

		drv, err := playwright.New(playwright.Options{
			Browser:  cfg.Browser,
			Headless: cfg.Headless,
			SlowMoMs: cfg.SlowMoMs,
		})
		if err != nil {
			return fmt.Errorf("start browser: %w", err)
		}
		defer drv.Close()

		var store *storedb.Store
		if cfg.DatabaseDSN != "" {
			store, err = storedb.Open(cfg.DatabaseDSN)
			if err != nil {
				return fmt.Errorf("store database: %w", err)
			}
			defer store.Close()
		}

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		res := suite.New(cfg, drv, store).Run(ctx, cfg.Scenarios)

		indexPath, err := report.Write(cfg.OutputDir, res, report.Meta{
			BaseURL: cfg.BaseURL,
			Browser: cfg.Browser,
		})
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		printSummary(c.App.Writer, res, indexPath)
		if !res.Success() {
			return cli.Exit("", 1)
		}
		return nil
	},
}

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "List registered scenario IDs",
	Action: func(c *cli.Context) error {
		for _, entry := range suite.Registry() {
			fmt.Fprintln(c.App.Writer, entry.ScenarioID)
		}
		return nil
	},
}

// loadConfig resolves the config file and layers flag overrides on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, c); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags overrides config fields with flags the user actually set.
func applyFlags(cfg *config.Config, c *cli.Context) error {
	if v := c.String("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v := c.String("browser"); v != "" {
		cfg.Browser = v
	}
	if c.IsSet("headless") {
		cfg.Headless = c.Bool("headless")
	}
	if v := c.String("timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		cfg.Timeout = config.Duration(d)
	}
	if v := c.String("output"); v != "" {
		// Artifact paths follow the output directory unless the config
		// pinned them somewhere else explicitly.
		cfg.ScreenshotDir = filepath.Join(v, "screenshots")
		cfg.LogFile = filepath.Join(v, "storecheck.log")
		cfg.OutputDir = v
	}
	if ids := c.StringSlice("scenario"); len(ids) > 0 {
		cfg.Scenarios = ids
	}
	if v := c.String("db-dsn"); v != "" {
		cfg.DatabaseDSN = v
	}
	return nil
}

func printSummary(w io.Writer, res core.SuiteResult, indexPath string) {
	fmt.Fprintf(w, "\n%d flows: %d passed, %d failed, %d skipped",
		res.TotalFlows, res.PassedFlows, res.FailedFlows, res.SkippedFlows)
	if res.KnownIssueFlows > 0 {
		fmt.Fprintf(w, " (%d known issue)", res.KnownIssueFlows)
	}
	fmt.Fprintf(w, "\nreport: %s\n", indexPath)

	for _, fr := range res.Flows {
		if fr.Status == core.StatusFailed || fr.Status == core.StatusErrored {
			fmt.Fprintf(w, "  %s [%s] %s at %q: %s\n",
				fr.Name, fr.Scenario, fr.Status, fr.FailedStep, fr.Error)
		}
	}
}
