// wifiplan predicts Wi-Fi coverage over a floor plan and searches for the
// access point position that covers it best.
//
// Build:
//   go build -o wifiplan ./cmd/wifiplan
//
// Examples:
//   wifiplan coverage --room 0,0,400,300,thick --ap 100,150
//   wifiplan optimize --plan office.dxf --scale 20 --freq 5
//   wifiplan report --plan walls.csv --ap 120,80 --optimize --out report.pdf
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/piwi3910/wifiplan/internal/config"
	"github.com/piwi3910/wifiplan/internal/engine"
	"github.com/piwi3910/wifiplan/internal/export"
	"github.com/piwi3910/wifiplan/internal/logging"
	"github.com/piwi3910/wifiplan/internal/model"
	"github.com/piwi3910/wifiplan/internal/plan"
)

func main() {
	app := makeApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// environment is the state shared by all commands of one invocation.
type environment struct {
	configPath string
	config     model.AppConfig
	logger     *zap.Logger
	metrics    bool
}

func makeApp() *cli.App {
	env := &environment{logger: zap.NewNop()}

	app := cli.NewApp()
	app.Name = "wifiplan"
	app.Usage = "Wi-Fi coverage prediction and access point placement"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config", Value: config.DefaultConfigPath(), Usage: "Path to the JSON config file"},
		cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		cli.BoolFlag{Name: "metrics", Usage: "Log engine metrics before exiting"},
	}
	app.Before = env.setup
	app.After = env.teardown

	app.Commands = []cli.Command{
		{
			Name:    "coverage",
			Aliases: []string{"c"},
			Usage:   "Compute the coverage grid for the current access point",
			Flags:   append(planFlags(), outFlag("")),
			Action:  env.coverageAction,
		},
		{
			Name:    "optimize",
			Aliases: []string{"o"},
			Usage:   "Search for the best access point position",
			Flags: append(planFlags(),
				cli.StringFlag{Name: "algorithm", Usage: "Search algorithm: grid or genetic (default from config)"},
				cli.BoolFlag{Name: "apply", Usage: "Move the access point to the result and report its coverage"},
				outFlag(""),
			),
			Action: env.optimizeAction,
		},
		{
			Name:   "compare",
			Usage:  "Compare coverage for the other band and +/-3 dB transmit power",
			Flags:  planFlags(),
			Action: env.compareAction,
		},
		{
			Name:  "report",
			Usage: "Write a PDF coverage report",
			Flags: append(planFlags(),
				cli.StringFlag{Name: "algorithm", Usage: "Search algorithm used with --optimize"},
				cli.BoolFlag{Name: "optimize", Usage: "Run a placement search and mark the suggested position"},
				cli.StringFlag{Name: "xlsx", Usage: "Also write the coverage grid to this workbook"},
				cli.StringFlag{Name: "qr", Usage: "Also write the placement QR code to this PNG"},
				outFlag("coverage-report.pdf"),
			),
			Action: env.reportAction,
		},
		{
			Name:  "config",
			Usage: "Manage the configuration file",
			Subcommands: []cli.Command{
				{
					Name:  "init",
					Usage: "Write the default configuration",
					Flags: []cli.Flag{
						cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
					},
					Action: env.configInitAction,
				},
				{
					Name:   "show",
					Usage:  "Print the effective configuration",
					Action: env.configShowAction,
				},
				{
					Name:      "export",
					Usage:     "Write a versioned backup of the configuration",
					ArgsUsage: "<file>",
					Action:    env.configExportAction,
				},
				{
					Name:      "import",
					Usage:     "Replace the configuration with a backup",
					ArgsUsage: "<file>",
					Action:    env.configImportAction,
				},
			},
		},
	}
	return app
}

func planFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: "plan", Usage: "Wall file to load (.csv, .xlsx or .dxf)"},
		cli.Float64Flag{Name: "scale", Value: 1, Usage: "World units per DXF drawing unit"},
		cli.Float64Flag{Name: "width", Usage: "Plan width in world units (default: drawing extent or config)"},
		cli.Float64Flag{Name: "height", Usage: "Plan height in world units (default: drawing extent or config)"},
		cli.StringFlag{Name: "ap", Usage: "Access point position as x,y"},
		cli.StringSliceFlag{Name: "booster", Usage: "Booster position as x,y (repeatable)"},
		cli.StringSliceFlag{Name: "room", Usage: "Rectangular room as x,y,w,h[,kind] (repeatable)"},
		cli.Float64Flag{Name: "tx", Usage: "Transmit power in dBm (default from config)"},
		cli.StringFlag{Name: "freq", Usage: "Band in GHz: 2.4 or 5 (default from config)"},
	}
}

func outFlag(value string) cli.Flag {
	return cli.StringFlag{Name: "out", Value: value, Usage: "Output file (.pdf, .xlsx, .json or .png)"}
}

func (env *environment) setup(c *cli.Context) error {
	env.configPath = c.GlobalString("config")
	env.metrics = c.GlobalBool("metrics")

	cfg, err := config.LoadAppConfig(env.configPath)
	if err != nil {
		return err
	}
	env.config = cfg

	logger, err := logging.New(config.LoggingConfig(cfg, c.GlobalBool("debug")))
	if err != nil {
		return err
	}
	env.logger = logger
	return nil
}

func (env *environment) teardown(c *cli.Context) error {
	if env.metrics {
		logMetrics(env.logger, prometheus.DefaultGatherer)
	}
	_ = env.logger.Sync()
	return nil
}

// session loads the plan and settings named by the command's flags.
func (env *environment) session(c *cli.Context) (*plan.FloorPlan, *engine.Engine, model.Settings, error) {
	overrides := settingsOverrides{
		Band:      c.String("freq"),
		Algorithm: c.String("algorithm"),
	}
	if c.IsSet("tx") {
		tx := c.Float64("tx")
		overrides.TxPowerDbm = &tx
	}
	settings, err := resolveSettings(env.config, overrides)
	if err != nil {
		return nil, nil, model.Settings{}, err
	}

	fp, err := buildPlan(planOptions{
		Path:     c.String("plan"),
		Scale:    c.Float64("scale"),
		Width:    c.Float64("width"),
		Height:   c.Float64("height"),
		AP:       c.String("ap"),
		Boosters: c.StringSlice("booster"),
		Rooms:    c.StringSlice("room"),
	}, env.config, env.logger)
	if err != nil {
		return nil, nil, model.Settings{}, err
	}

	eng := engine.New(fp, engine.WithLogger(env.logger))
	env.logger.Debug("session ready",
		zap.String("plan_id", fp.ID()),
		zap.Float64("width", fp.Width()),
		zap.Float64("height", fp.Height()),
		zap.Int("walls", len(fp.Walls())),
		zap.Float64("tx_power_dbm", settings.TxPowerDbm),
		zap.Stringer("band", settings.Band),
	)
	return fp, eng, settings, nil
}

func (env *environment) coverageAction(c *cli.Context) error {
	fp, eng, settings, err := env.session(c)
	if err != nil {
		return err
	}
	if _, ok := fp.AccessPoint(); !ok {
		env.logger.Warn("no access point set, every cell is dead; pass --ap x,y")
	}

	cov := eng.ComputeCoverage(settings.TxPowerDbm, settings.Band)
	printPlan(os.Stdout, fp)
	printCoverage(os.Stdout, cov)

	if out := c.String("out"); out != "" {
		return writeOutput(out, export.NewReport(fp, settings, cov, nil), env.logger)
	}
	return nil
}

func (env *environment) optimizeAction(c *cli.Context) error {
	fp, eng, settings, err := env.session(c)
	if err != nil {
		return err
	}

	best, ok, err := runSearch(eng, settings, env.logger)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(os.Stdout, "No candidate positions: the plan has no area.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "Best position: (%.0f, %.0f) = (%.1f m, %.1f m) [%s]\n",
		best.X, best.Y, best.X/model.UnitsPerMeter, best.Y/model.UnitsPerMeter, settings.Algorithm)
	fmt.Fprintf(os.Stdout, "Score: %.0f\n", eng.EvaluatePosition(best, settings.TxPowerDbm, settings.Band))

	if !c.Bool("apply") {
		return nil
	}
	fp.SetAccessPoint(best.X, best.Y)
	cov := eng.ComputeCoverage(settings.TxPowerDbm, settings.Band)
	printCoverage(os.Stdout, cov)
	if out := c.String("out"); out != "" {
		return writeOutput(out, export.NewReport(fp, settings, cov, &best), env.logger)
	}
	return nil
}

func (env *environment) compareAction(c *cli.Context) error {
	fp, eng, settings, err := env.session(c)
	if err != nil {
		return err
	}
	if _, ok := fp.AccessPoint(); !ok {
		return errors.New("compare needs an access point; pass --ap x,y")
	}
	results := eng.CompareScenarios(engine.BuildDefaultScenarios(settings))
	return printComparison(os.Stdout, results)
}

func (env *environment) reportAction(c *cli.Context) error {
	fp, eng, settings, err := env.session(c)
	if err != nil {
		return err
	}

	var suggested *model.Point
	if c.Bool("optimize") {
		best, ok, err := runSearch(eng, settings, env.logger)
		if err != nil {
			return err
		}
		if ok {
			suggested = &best
		}
	}

	cov := eng.ComputeCoverage(settings.TxPowerDbm, settings.Band)
	report := export.NewReport(fp, settings, cov, suggested)

	if err := writeOutput(c.String("out"), report, env.logger); err != nil {
		return err
	}
	if path := c.String("xlsx"); path != "" {
		if err := writeOutput(path, report, env.logger); err != nil {
			return err
		}
	}
	if path := c.String("qr"); path != "" {
		if err := writeOutput(path, report, env.logger); err != nil {
			return err
		}
	}
	return nil
}

func (env *environment) configInitAction(c *cli.Context) error {
	if _, err := os.Stat(env.configPath); err == nil && !c.Bool("force") {
		return errors.Errorf("%s already exists; use --force to overwrite", env.configPath)
	}
	if err := config.SaveAppConfig(env.configPath, model.DefaultAppConfig()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", env.configPath)
	return nil
}

func (env *environment) configShowAction(c *cli.Context) error {
	return printJSON(os.Stdout, env.config)
}

func (env *environment) configExportAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("config export needs a target file")
	}
	if err := config.ExportBackup(path, env.config); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Exported configuration to %s\n", path)
	return nil
}

func (env *environment) configImportAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("config import needs a backup file")
	}
	backup, err := config.ImportBackup(path)
	if err != nil {
		return err
	}
	if err := config.SaveAppConfig(env.configPath, backup.Config); err != nil {
		return err
	}
	env.logger.Info("configuration imported",
		zap.String("from", path),
		zap.String("to", env.configPath),
		zap.String("created_at", backup.CreatedAt),
	)
	fmt.Fprintf(os.Stdout, "Imported configuration from %s\n", path)
	return nil
}

// runSearch runs the configured placement search until it finishes or the
// user interrupts it.
func runSearch(eng *engine.Engine, settings model.Settings, logger *zap.Logger) (model.Point, bool, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	progress := func(pct float64, best *model.Point) {
		fmt.Fprintf(os.Stderr, "\rsearching %3.0f%%", pct)
	}
	best, ok, err := eng.Optimize(ctx, settings, progress)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return model.Point{}, false, err
	}
	if ok {
		logger.Info("placement found",
			zap.Float64("x", best.X),
			zap.Float64("y", best.Y),
			zap.String("algorithm", string(settings.Algorithm)),
		)
	}
	return best, ok, nil
}

// writeOutput writes report in the format chosen by the file extension.
func writeOutput(path string, report export.Report, logger *zap.Logger) error {
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		err = export.ExportPDF(path, report)
	case ".xlsx":
		err = export.ExportXLSX(path, report)
	case ".png":
		err = export.ExportPlacementQR(path, report)
	case ".json":
		err = writeJSONFile(path, report)
	default:
		return errors.Errorf("unsupported output type %q for %s", ext, path)
	}
	if err != nil {
		return err
	}
	logger.Info("output written", zap.String("path", path), zap.String("report", report.ID))
	return nil
}
