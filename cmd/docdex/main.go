package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/docdex/docdex/goquery"
	"github.com/docdex/docdex/htmltomarkdown"
	dxhttp "github.com/docdex/docdex/http"
	"github.com/docdex/docdex/index"
	"github.com/docdex/docdex/intersphinx"
	dxslog "github.com/docdex/docdex/slog"
	"github.com/docdex/docdex/sqlite"
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
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database backing the config store and content cache.
	DB *sqlite.DB

	// Index for end-to-end testing.
	Index *index.Index
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Index != nil {
		if err := m.Index.Close(); err != nil {
			return err
		}
	}
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
		kong.Name("docdex"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docdex --help' to see available commands")
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

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOCDEX_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	store := sqlite.NewConfigStore(m.DB)
	cache := sqlite.NewContentCache(m.DB)
	if err := cache.Warm(ctx); err != nil {
		return fmt.Errorf("failed to warm content cache: %w", err)
	}

	limiter := dxhttp.NewDomainLimiter(2.0)
	invFetcher := dxslog.NewLoggingInventoryFetcher(
		intersphinx.NewFetcher(intersphinx.WithLimiter(limiter)), logger)

	pageFetcher := dxhttp.NewFetcher(dxhttp.WithLimiter(limiter))
	defer pageFetcher.Close()
	renderer := dxslog.NewLoggingRenderer(
		goquery.NewRenderer(pageFetcher, htmltomarkdown.NewConverter(), goquery.WithCache(cache)),
		logger)

	m.Index = index.New(invFetcher, store,
		index.WithLogger(logger),
		index.WithCache(cache),
		index.WithRenderer(renderer),
	)

	deps.DB = m.DB
	deps.Index = m.Index
	deps.Cache = cache

	// Lookup commands run in a fresh process, so the table must be built
	// from the persisted sources before they execute.
	if cmd == "get" || cmd == "search" {
		result, err := m.Index.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("failed to build symbol table: %w", err)
		}
		for _, pkg := range result.Failed {
			fmt.Fprintf(stderr, "warning: inventory for %q is malformed and was skipped\n", pkg)
		}
		for _, pkg := range result.Rescheduled {
			fmt.Fprintf(stderr, "warning: inventory for %q is unreachable and was skipped\n", pkg)
		}
	}

	return kongCtx.Run(deps)
}

func logLevel() slog.Level {
	if os.Getenv("DOCDEX_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

func defaultDBPath() string {
	if path := os.Getenv("DOCDEX_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "docdex.db"
	}
	dir := filepath.Join(home, ".docdex")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "docdex.db")
}
