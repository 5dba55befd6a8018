package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/jask/previewkit/core/host"
	"github.com/jask/previewkit/core/pagestate"
	"github.com/jask/previewkit/core/preview"
	"github.com/jask/previewkit/internal/config"
	"github.com/jask/previewkit/internal/credentials"
	"github.com/jask/previewkit/internal/database"
	"github.com/jask/previewkit/internal/logging"
	"github.com/jask/previewkit/internal/scenario"
	"github.com/jask/previewkit/internal/shop"
	"github.com/jask/previewkit/internal/telemetry"
)

type options struct {
	scenario    string
	list        bool
	configPath  string
	headless    bool
	writeConfig bool
	metrics     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.scenario, "scenario", "", "scenario to preview (default: preview.scenario from config)")
	flag.BoolVar(&opts.list, "list", false, "list scenarios and exit")
	flag.StringVar(&opts.configPath, "config", "", "config file (default: $PREVIEWKIT_CONFIG or ~/.config/previewkit/config.toml)")
	flag.BoolVar(&opts.headless, "headless", false, "render the previewed page once to stdout and exit")
	flag.BoolVar(&opts.writeConfig, "write-config", false, "write the effective config and exit")
	flag.BoolVar(&opts.metrics, "metrics", false, "print collected metrics on exit")
	flag.Parse()

	if err := run(context.Background(), opts); err != nil {
		log.Fatalf("previewkit: %v", err)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.writeConfig {
		path := opts.configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Println("wrote", path)
		return nil
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Prepare(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	creds, err := credentials.FromConfig(cfg.Users, vault(cfg.Preview.VaultPath))
	if err != nil {
		return err
	}
	app := shop.NewApp(db, logger)
	if err := shop.SeedUsers(ctx, app.Users, creds); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	entries, err := scenario.Load(cfg.Preview.ScenarioFile)
	if err != nil {
		return err
	}
	catalog, err := scenario.Build(entries, app, creds)
	if err != nil {
		return err
	}
	if opts.list {
		for _, name := range catalog.Names() {
			fmt.Println(name)
		}
		return nil
	}

	name := opts.scenario
	if name == "" {
		name = cfg.Preview.Scenario
	}
	var target preview.Scenario
	if name != "" {
		if target, err = catalog.Get(name); err != nil {
			return err
		}
	}

	meters := newMeterProvider()
	defer func() { _ = meters.Shutdown(ctx) }()
	otel.SetMeterProvider(meters.provider)
	metrics := telemetry.NewRecorder()

	frames := pagestate.NewFrameQueue()
	reg := pagestate.Initialize(frames, pagestate.WithLogger(logger), pagestate.WithMetrics(metrics))
	defer pagestate.Teardown()

	hostOpts := []host.Option{host.WithLogger(logger), host.WithSize(cfg.Preview.Width, cfg.Preview.Height)}
	if target == nil {
		hostOpts = append(hostOpts, host.WithInitialRoute(shop.RouteLogin))
	}
	h := host.New(ctx, reg, frames, shop.Routes(app), hostOpts...)
	preview.SetNavigationRoot(func() preview.Navigator { return h.Navigator() })
	defer preview.ResetNavigationRoot()

	runner := preview.NewRunner(reg, logger, metrics)
	runner.AwaitTimeout = cfg.Preview.AwaitTimeout

	if opts.headless {
		err = runHeadless(ctx, h, runner, target)
	} else {
		err = runInteractive(ctx, h, runner, target, logger)
	}
	if opts.metrics {
		if perr := meters.Print(ctx, os.Stdout); perr != nil {
			logger.Warn("collect metrics", zap.Error(perr))
		}
	}
	return err
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	out := "stderr"
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, err
		}
		out = cfg.File
	}
	return logging.New(logging.Config{Level: cfg.Level, Development: cfg.Development, OutputPaths: []string{out}})
}

func vault(path string) *credentials.Vault {
	if path == "" {
		p, err := credentials.DefaultVaultPath()
		if err != nil {
			return nil
		}
		path = p
	}
	return credentials.NewVault(path)
}

// runHeadless drives the host without a terminal and prints one frame.
func runHeadless(ctx context.Context, h *host.Host, runner *preview.Runner, target preview.Scenario) error {
	loop := host.NewLoop(h)
	loop.Start()
	if target != nil {
		nav, err := preview.Nav()
		if err != nil {
			return err
		}
		if err := runner.RunScenario(ctx, target, nav); err != nil {
			return err
		}
	}
	fmt.Println(loop.Frame())
	return nil
}

// runInteractive starts the program and runs the scenario alongside it; the
// previewed page stays interactive afterwards.
func runInteractive(ctx context.Context, h *host.Host, runner *preview.Runner, target preview.Scenario, logger *zap.Logger) error {
	p := tea.NewProgram(h, tea.WithAltScreen(), tea.WithContext(ctx))
	h.Attach(p)

	if target != nil {
		go func() {
			nav, err := preview.Nav()
			if err == nil {
				err = runner.RunScenario(ctx, target, nav)
			}
			if err != nil {
				logger.Error("scenario failed", zap.String("scenario", target.Name()), zap.Error(err))
				p.Send(host.StatusMsg{Text: err.Error(), IsErr: true})
				return
			}
			p.Send(host.StatusMsg{Text: "previewing " + target.Name()})
		}()
	}

	_, err := p.Run()
	return err
}
