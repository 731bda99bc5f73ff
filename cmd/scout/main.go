package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	pkgconfig "github.com/heavybluesrocker/scout-ai/internal/pkg/config"
	"github.com/heavybluesrocker/scout-ai/internal/notify"
	"github.com/heavybluesrocker/scout-ai/internal/pipeline"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/browser"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/cache"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/httpx"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/logging"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/storage"
	"github.com/heavybluesrocker/scout-ai/internal/resolver"
	"github.com/heavybluesrocker/scout-ai/internal/resolver/transfermarkt"

	// Register all supported sources via init().
	_ "github.com/heavybluesrocker/scout-ai/internal/resolver/all"
)

const (
	defaultConfigPath = "configs/production.yaml"
	dateLayout        = "2006-01-02"
)

type cliConfig struct {
	inputPath  string
	outputPath string
	configPath string
	start      string
	end        string
	debug      bool
	runFor     time.Duration
}

func main() {
	if err := run(); err != nil {
		slog.Error("Scout failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()

	appConfig, err := pkgconfig.Load(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if appConfig.Logging.File == "" {
		appConfig.Logging.File = cfg.outputPath + ".log"
	}

	if _, err := logging.Setup(&appConfig.Logging, cfg.debug); err != nil {
		slog.Warn("Failed to setup logging, continuing with default logger", "error", err)
	}

	start, end, err := parseWindow(cfg.start, cfg.end)
	if err != nil {
		return err
	}
	slog.Info("Starting scout",
		"input", cfg.inputPath,
		"output", cfg.outputPath,
		"window_start", start.Format(dateLayout),
		"window_end", end.Format(dateLayout))

	players, err := pipeline.LoadPlayers(cfg.inputPath)
	if err != nil {
		return err
	}
	slog.Info("Input loaded", "players", len(players))

	store, err := cache.Load(cfg.outputPath + ".cache.json")
	if err != nil {
		return fmt.Errorf("failed to load cache: %w", err)
	}

	directory, sources, err := buildSources(appConfig, store)
	if err != nil {
		return err
	}

	sink, err := buildSink(appConfig)
	if err != nil {
		return err
	}
	if sink != nil {
		defer sink.Close()
	}

	var notifier *notify.TelegramNotifier
	if appConfig.Telegram.BotToken != "" && appConfig.Telegram.ChatID != 0 {
		notifier = notify.NewTelegramNotifier(appConfig.Telegram.BotToken, appConfig.Telegram.ChatID)
	}

	ctx, cancel := createContext(cfg.runFor)
	defer cancel()
	setupSignalHandler(ctx, cancel)

	started := time.Now()
	p := pipeline.New(directory, sources, store, sink, appConfig, cfg.outputPath)
	result, runErr := p.Run(ctx, players, start, end)

	slog.Info("Run finished",
		"rows", len(result.Rows),
		"conflict_rows", result.ConflictRows,
		"failed_players", len(result.FailedPlayers),
		"duration", time.Since(started).Round(time.Second))

	if notifier != nil {
		summary := notify.RunSummary{
			Players:       len(players),
			Fixtures:      len(result.Rows),
			Conflicts:     result.ConflictRows,
			FailedPlayers: result.FailedPlayers,
			Duration:      time.Since(started),
			ReportPath:    cfg.outputPath,
		}
		if err := notifier.SendRunSummary(summary); err != nil {
			slog.Warn("Run summary notification failed", "error", err)
		}
	}

	return runErr
}

func parseFlags() cliConfig {
	var cfg cliConfig

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&cfg.inputPath, "i", "players.csv", "Input CSV with player names and optional teams")
	flag.StringVar(&cfg.outputPath, "o", "report.csv", "Output report CSV path")
	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&cfg.start, "start", "", "Window start date (YYYY-MM-DD). Empty = 90 days before end")
	flag.StringVar(&cfg.end, "end", "", "Window end date (YYYY-MM-DD). Empty = today")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")
	flag.DurationVar(&cfg.runFor, "run-for", 0, "Auto-stop after duration (e.g. 10m, 1h). 0 = run until done or SIGINT/SIGTERM")
	flag.Parse()
	return cfg
}

func parseWindow(startStr, endStr string) (time.Time, time.Time, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	if endStr != "" {
		var err error
		end, err = time.Parse(dateLayout, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -end date %q: %w", endStr, err)
		}
	}

	start := end.AddDate(0, 0, -90)
	if startStr != "" {
		var err error
		start, err = time.Parse(dateLayout, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -start date %q: %w", startStr, err)
		}
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("window end %s is before start %s", end.Format(dateLayout), start.Format(dateLayout))
	}
	return start, end, nil
}

// buildSources assembles the enabled sources from the registry. The
// Transfermarkt resolver doubles as the entity directory and is always
// constructed, even when disabled as an observation source.
func buildSources(appConfig *pkgconfig.Config, store *cache.Cache) (resolver.ClubDirectory, []resolver.Source, error) {
	httpClient := httpx.NewClient(httpx.Options{
		Retries:     appConfig.Transport.Retries,
		MinInterval: appConfig.Transport.MinInterval,
		Timeout:     appConfig.Transport.Timeout,
		UserAgent:   appConfig.Transport.UserAgent,
		Headers:     appConfig.Transport.Headers,
	})

	enabledSet := buildEnabledSet(appConfig.Sources.Enabled)
	if err := validateEnabled(enabledSet); err != nil {
		return nil, nil, err
	}

	baseDeps := resolver.Deps{
		HTTP:   httpClient,
		Cache:  store,
		Config: appConfig,
	}

	directory := transfermarkt.New(baseDeps)

	var sources []resolver.Source
	for _, name := range resolver.AvailableNames() {
		if len(enabledSet) > 0 && !enabledSet[name] {
			continue
		}
		if name == transfermarkt.Name {
			sources = append(sources, directory)
			continue
		}
		factory, ok := resolver.FactoryByName(name)
		if !ok {
			continue
		}
		deps := baseDeps
		// Browser-driven sources each get their own serialized session.
		deps.Browser = browser.NewSession(
			appConfig.Browser.Headless,
			appConfig.Transport.UserAgent,
			appConfig.Browser.Timeout,
		)
		sources = append(sources, factory(deps))
	}
	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("no sources selected to run (sources.enabled=%v)", appConfig.Sources.Enabled)
	}

	printSelectedSources(sources)
	return directory, sources, nil
}

func buildEnabledSet(enabled []string) map[string]bool {
	set := make(map[string]bool)
	for _, name := range enabled {
		n := strings.ToLower(strings.TrimSpace(name))
		if n != "" {
			set[n] = true
		}
	}
	return set
}

func validateEnabled(enabledSet map[string]bool) error {
	if len(enabledSet) == 0 {
		return nil
	}

	available := resolver.AvailableNames()
	availableSet := make(map[string]bool, len(available))
	for _, name := range available {
		availableSet[name] = true
	}

	var unknown []string
	for name := range enabledSet {
		if !availableSet[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown sources in sources.enabled: %v (available: %v)", unknown, available)
	}
	return nil
}

func printSelectedSources(sources []resolver.Source) {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	sort.Strings(names)
	slog.Info("Using sources", "sources", strings.Join(names, ", "))
}

func buildSink(appConfig *pkgconfig.Config) (storage.Sink, error) {
	if appConfig.Postgres.DSN == "" {
		return nil, nil
	}
	sink, err := storage.NewPostgresSink(&appConfig.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to init postgres sink: %w", err)
	}
	return sink, nil
}

func createContext(runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		return context.WithTimeout(context.Background(), runFor)
	}
	return context.WithCancel(context.Background())
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal, stopping...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			signal.Stop(sigChan)
			close(sigChan)
		}
	}()
}
