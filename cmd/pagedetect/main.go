package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pagedetect"
	"github.com/fwojciec/pagedetect/detect"
	"github.com/fwojciec/pagedetect/gemini"
	"github.com/fwojciec/pagedetect/goquery"
	"github.com/fwojciec/pagedetect/rod"
	pdslog "github.com/fwojciec/pagedetect/slog"
	"github.com/fwojciec/pagedetect/sqlite"
	"google.golang.org/genai"
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

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	StrategyService pagedetect.StrategyService
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
		kong.Name("pagedetect"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pagedetect --help' to see available commands")
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
	if cli.Verbose {
		level = slog.LevelInfo
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PAGEDETECT_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.StrategyService = sqlite.NewStrategyService(m.DB)
	deps.DB = m.DB
	deps.Strategies = m.StrategyService

	// Detection commands need a browser and, optionally, a vision model.
	if cmd == "detect" || cmd == "batch" {
		noAI := cli.Detect.NoAI
		if cmd == "batch" {
			noAI = cli.Batch.NoAI
		}

		browser, err := rod.NewBrowserManager()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer browser.Close()
		deps.Pages = browser

		engine := detect.NewEngine(detect.DefaultConfig())
		engine.HTML = goquery.NewProcessor()

		if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" && !noAI {
			client, err := genai.NewClient(ctx, &genai.ClientConfig{
				APIKey:  apiKey,
				Backend: genai.BackendGeminiAPI,
			})
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
				return fmt.Errorf("failed to connect to Gemini API: %w", err)
			}
			engine.Vision = pdslog.NewLoggingVision(gemini.NewVision(client), deps.Logger)
		}

		deps.Detector = pdslog.NewLoggingDetector(engine, deps.Logger)
	}

	if cmd == "batch" {
		deps.Runner = &detect.BatchRunner{
			Pages:       deps.Pages,
			Detector:    deps.Detector,
			Strategies:  deps.Strategies,
			RateLimiter: detect.NewDomainLimiter(cli.Batch.RPS),
			Concurrency: cli.Batch.Concurrency,
		}
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("PAGEDETECT_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "pagedetect.db"
	}
	dir := filepath.Join(home, ".pagedetect")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pagedetect.db")
}
