package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"reversalbot/internal/scheduler"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration marks a configuration that must stop the process at startup.
var ErrConfiguration = errors.New("configuration error")

type Mode string

const (
	ModeLive   Mode = "live"
	ModeDryRun Mode = "dry-run"
)

type Schedule struct {
	Days     string `yaml:"days"`
	At       string `yaml:"at"`
	Timezone string `yaml:"timezone"`
}

type Config struct {
	Mode            Mode          `yaml:"mode"`
	Symbols         []string      `yaml:"symbols"`
	BuyQty          int           `yaml:"buy_qty"`
	TakeProfitPct   float64       `yaml:"take_profit_pct"`
	StopLossPct     float64       `yaml:"stop_loss_pct"`
	WindowDays      int           `yaml:"window_days"`
	Schedule        Schedule      `yaml:"schedule"`
	FetchWorkers    int           `yaml:"fetch_workers"`
	MaxRetries      int           `yaml:"max_retries"`
	RetryBackoff    time.Duration `yaml:"retry_backoff"`
	OrdersPerSecond float64       `yaml:"orders_per_second"`
	KillSwitch      bool          `yaml:"kill_switch"`
	RunOnce         bool          `yaml:"run_once"`
	Feed            string        `yaml:"feed"`
	PaperBaseURL    string        `yaml:"paper_base_url"`
	DecisionsPath   string        `yaml:"decisions_path"`
	StatusAddr      string        `yaml:"status_addr"`
	LogLevel        string        `yaml:"log_level"`
	APIKey          string        `yaml:"-"`
	APISecret       string        `yaml:"-"`
}

func Default() Config {
	return Config{
		Mode:          ModeLive,
		Symbols:       append([]string(nil), DefaultUniverse...),
		BuyQty:        10,
		TakeProfitPct: 5.01,
		StopLossPct:   -4.98,
		WindowDays:    365,
		Schedule: Schedule{
			Days:     "mon-fri",
			At:       "09:30",
			Timezone: "America/New_York",
		},
		FetchWorkers:    4,
		MaxRetries:      3,
		RetryBackoff:    2 * time.Second,
		OrdersPerSecond: 3,
		Feed:            "iex",
		PaperBaseURL:    "https://paper-api.alpaca.markets",
		DecisionsPath:   "decisions.ndjson",
		LogLevel:        "info",
	}
}

// Load resolves configuration from defaults, an optional YAML file, the
// environment (including .env) and finally any flags set on the command line.
func Load() (Config, error) {
	cfg := Default()
	flags := Default()
	var configPath string
	var mode string
	var symbols string

	loadDotEnvIfPresent(".env")

	flag.StringVar(&configPath, "config", "", "path to YAML config file")
	flag.StringVar(&mode, "mode", string(flags.Mode), "run mode: live or dry-run")
	flag.StringVar(&symbols, "symbols", "", "comma-separated symbol universe")
	flag.IntVar(&flags.BuyQty, "buy-qty", flags.BuyQty, "shares bought per buy signal")
	flag.Float64Var(&flags.TakeProfitPct, "take-profit-pct", flags.TakeProfitPct, "unrealized gain percent that triggers a sell")
	flag.Float64Var(&flags.StopLossPct, "stop-loss-pct", flags.StopLossPct, "unrealized loss percent that triggers a sell")
	flag.IntVar(&flags.WindowDays, "window-days", flags.WindowDays, "calendar days of history fetched per symbol")
	flag.StringVar(&flags.Schedule.Days, "days", flags.Schedule.Days, "weekday range for scheduled runs, e.g. mon-fri")
	flag.StringVar(&flags.Schedule.At, "at", flags.Schedule.At, "time of day for scheduled runs (HH:MM)")
	flag.StringVar(&flags.Schedule.Timezone, "timezone", flags.Schedule.Timezone, "exchange timezone")
	flag.IntVar(&flags.FetchWorkers, "fetch-workers", flags.FetchWorkers, "concurrent bar fetches")
	flag.IntVar(&flags.MaxRetries, "max-retries", flags.MaxRetries, "retries for throttled order submissions")
	flag.DurationVar(&flags.RetryBackoff, "retry-backoff", flags.RetryBackoff, "base backoff for throttled orders")
	flag.Float64Var(&flags.OrdersPerSecond, "orders-per-second", flags.OrdersPerSecond, "order submission rate limit")
	flag.BoolVar(&flags.KillSwitch, "kill-switch", flags.KillSwitch, "if true, never place orders")
	flag.BoolVar(&flags.RunOnce, "run-once", flags.RunOnce, "run a single cycle and exit")
	flag.StringVar(&flags.Feed, "feed", flags.Feed, "market data feed: iex or sip")
	flag.StringVar(&flags.PaperBaseURL, "paper-base-url", flags.PaperBaseURL, "trading API base URL")
	flag.StringVar(&flags.DecisionsPath, "decisions-path", flags.DecisionsPath, "path to decisions log, empty to disable")
	flag.StringVar(&flags.StatusAddr, "status-addr", flags.StatusAddr, "address for status and metrics HTTP server, empty to disable")
	flag.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "log level")
	flag.Parse()

	if configPath != "" {
		if err := loadFile(configPath, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)

	flags.Mode = Mode(mode)
	flags.Symbols = splitSymbols(symbols)
	flag.Visit(func(f *flag.Flag) {
		applyFlag(&cfg, flags, f.Name)
	})
	cfg.Symbols = normalizeSymbols(cfg.Symbols)

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadDotEnvIfPresent(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = loadDotEnv(path)
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv(path string) error {
	return godotenv.Load(path)
}

func loadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.APIKey = firstEnv("APCA_API_KEY_ID", "API_KEY")
	cfg.APISecret = firstEnv("APCA_API_SECRET_KEY", "SECRET_KEY")
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func applyFlag(cfg *Config, flags Config, name string) {
	switch name {
	case "mode":
		cfg.Mode = flags.Mode
	case "symbols":
		cfg.Symbols = flags.Symbols
	case "buy-qty":
		cfg.BuyQty = flags.BuyQty
	case "take-profit-pct":
		cfg.TakeProfitPct = flags.TakeProfitPct
	case "stop-loss-pct":
		cfg.StopLossPct = flags.StopLossPct
	case "window-days":
		cfg.WindowDays = flags.WindowDays
	case "days":
		cfg.Schedule.Days = flags.Schedule.Days
	case "at":
		cfg.Schedule.At = flags.Schedule.At
	case "timezone":
		cfg.Schedule.Timezone = flags.Schedule.Timezone
	case "fetch-workers":
		cfg.FetchWorkers = flags.FetchWorkers
	case "max-retries":
		cfg.MaxRetries = flags.MaxRetries
	case "retry-backoff":
		cfg.RetryBackoff = flags.RetryBackoff
	case "orders-per-second":
		cfg.OrdersPerSecond = flags.OrdersPerSecond
	case "kill-switch":
		cfg.KillSwitch = flags.KillSwitch
	case "run-once":
		cfg.RunOnce = flags.RunOnce
	case "feed":
		cfg.Feed = flags.Feed
	case "paper-base-url":
		cfg.PaperBaseURL = flags.PaperBaseURL
	case "decisions-path":
		cfg.DecisionsPath = flags.DecisionsPath
	case "status-addr":
		cfg.StatusAddr = flags.StatusAddr
	case "log-level":
		cfg.LogLevel = flags.LogLevel
	}
}

func splitSymbols(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.Split(value, ",")
}

// normalizeSymbols upper-cases, trims and de-duplicates while keeping order.
func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func validate(cfg Config) error {
	if cfg.Mode != ModeLive && cfg.Mode != ModeDryRun {
		return fmt.Errorf("%w: invalid mode: %s", ErrConfiguration, cfg.Mode)
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return fmt.Errorf("%w: APCA_API_KEY_ID and APCA_API_SECRET_KEY are required", ErrConfiguration)
	}
	if len(cfg.Symbols) == 0 {
		return fmt.Errorf("%w: symbol universe is empty", ErrConfiguration)
	}
	if cfg.BuyQty <= 0 {
		return fmt.Errorf("%w: buy-qty must be > 0", ErrConfiguration)
	}
	if cfg.TakeProfitPct <= 0 {
		return fmt.Errorf("%w: take-profit-pct must be > 0", ErrConfiguration)
	}
	if cfg.StopLossPct >= 0 {
		return fmt.Errorf("%w: stop-loss-pct must be < 0", ErrConfiguration)
	}
	if cfg.WindowDays <= 0 {
		return fmt.Errorf("%w: window-days must be > 0", ErrConfiguration)
	}
	if cfg.FetchWorkers <= 0 {
		return fmt.Errorf("%w: fetch-workers must be > 0", ErrConfiguration)
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("%w: max-retries must be >= 0", ErrConfiguration)
	}
	if cfg.RetryBackoff < 0 {
		return fmt.Errorf("%w: retry-backoff must be >= 0", ErrConfiguration)
	}
	if cfg.Feed != "iex" && cfg.Feed != "sip" {
		return fmt.Errorf("%w: invalid feed: %s", ErrConfiguration, cfg.Feed)
	}
	if _, err := scheduler.NewSchedule(cfg.Schedule.Days, cfg.Schedule.At, cfg.Schedule.Timezone); err != nil {
		return fmt.Errorf("%w: schedule: %v", ErrConfiguration, err)
	}
	return nil
}
