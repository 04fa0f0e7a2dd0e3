package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/indexnow"
	inhttp "github.com/fwojciec/indexnow/http"
	inslog "github.com/fwojciec/indexnow/slog"
	"github.com/fwojciec/indexnow/sqlite"
	"github.com/fwojciec/indexnow/submit"
	"github.com/fwojciec/indexnow/viper"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(). Overridden by --db.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Client replaces the outbound HTTP client when set.
	Client indexnow.HTTPClient

	// Service is the wired submission service, available after Run.
	Service *submit.Service
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("indexnow"),
		kong.Description("Queue changed URLs and submit them to IndexNow endpoints"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'indexnow --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	dbPath := m.DBPath
	if cli.DB != "" {
		dbPath = cli.DB
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set INDEXNOW_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()

	var settings indexnow.SettingsStore = sqlite.NewSettingsService(m.DB)
	if cli.Config != "" {
		settings = viper.NewSettingsStore(cli.Config)
	}

	client := m.Client
	if client == nil {
		client = inhttp.NewClient(inhttp.WithRateLimit(cli.RateLimit))
	}
	if cli.Debug {
		client = inslog.NewLoggingClient(client, logger)
	}
	var sitemaps indexnow.SitemapService = inhttp.NewSitemapService(client)
	if cli.Debug {
		sitemaps = inslog.NewLoggingSitemapService(sitemaps, logger)
	}

	m.Service = &submit.Service{
		Settings:  settings,
		Queue:     sqlite.NewQueueService(m.DB),
		State:     sqlite.NewStateService(m.DB),
		Scheduler: sqlite.NewSchedulerService(m.DB),
		Client:    client,
		Logger:    logger,
	}
	deps.Service = m.Service
	deps.Sitemaps = sitemaps
	deps.Logger = logger

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("INDEXNOW_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "indexnow.db"
	}
	dir := filepath.Join(home, ".indexnow")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "indexnow.db")
}
