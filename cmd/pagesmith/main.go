// Package main provides the pagesmith command line tool. It compacts
// accessibility snapshots into model-sized summaries, either from a text
// dump on disk or live from a browser page, and can open an interactive
// inspector for tuning compaction levels against a real page.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	appconfig "github.com/pagesmith/pagesmith/pkg/config"
	"github.com/pagesmith/pagesmith/pkg/dispatch"
	"github.com/pagesmith/pagesmith/pkg/inspect"
	"github.com/pagesmith/pagesmith/pkg/logging"
	"github.com/pagesmith/pagesmith/pkg/relay"
	"github.com/pagesmith/pagesmith/pkg/snapshot"
	"github.com/pagesmith/pagesmith/pkg/tools/browser"
)

const version = "0.1.0"

// cliConfig holds the parsed command line flags.
type cliConfig struct {
	InputPath   string
	URL         string
	Level       int
	MaxChars    int
	Delta       string
	ConfigPath  string
	Inspect     bool
	Headed      bool
	ShowVersion bool
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("pagesmith v%s\n", version)
		return
	}

	if err := cli.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx, cli); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func parseFlags() *cliConfig {
	cli := &cliConfig{}

	flag.StringVar(&cli.InputPath, "input", "", "Snapshot text file to compact ('-' for stdin)")
	flag.StringVar(&cli.URL, "url", "", "Navigate a browser to this URL and snapshot it")
	flag.IntVar(&cli.Level, "level", snapshot.LevelSection, "Detail level: 0 minimal, 1 sections, 2 full")
	flag.IntVar(&cli.MaxChars, "max-chars", 0, "Output character budget (0 uses the per-level default)")
	flag.StringVar(&cli.Delta, "delta", "off", "Delta mode: off, on, or auto")
	flag.StringVar(&cli.ConfigPath, "config", "", "Path to config file (default: ~/.pagesmith/config.yaml)")
	flag.BoolVar(&cli.Inspect, "inspect", false, "Open the interactive inspector instead of printing")
	flag.BoolVar(&cli.Headed, "headed", false, "Run the browser with a visible window")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pagesmith - accessibility snapshot compaction\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pagesmith [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pagesmith -input page.txt                 # compact a saved snapshot\n")
		fmt.Fprintf(os.Stderr, "  cat page.txt | pagesmith -input - -level 0\n")
		fmt.Fprintf(os.Stderr, "  pagesmith -input page.txt -inspect        # interactive tuning\n")
		fmt.Fprintf(os.Stderr, "  pagesmith -url https://example.com        # live browser snapshot\n")
	}

	flag.Parse()
	return cli
}

func (c *cliConfig) validate() error {
	if c.InputPath == "" && c.URL == "" {
		return fmt.Errorf("one of -input or -url is required")
	}
	if c.InputPath != "" && c.URL != "" {
		return fmt.Errorf("-input and -url are mutually exclusive")
	}
	switch c.Delta {
	case "off", "on", "auto":
	default:
		return fmt.Errorf("invalid -delta %q: want off, on, or auto", c.Delta)
	}
	return nil
}

func run(ctx context.Context, cli *cliConfig) error {
	cfgPath := cli.ConfigPath
	if cfgPath == "" {
		var err error
		if cfgPath, err = appconfig.DefaultPath(); err != nil {
			return err
		}
	}
	cfg, err := appconfig.Load(cfgPath)
	if err != nil {
		return err
	}

	raw, err := loadSnapshot(ctx, cli, cfg)
	if err != nil {
		return err
	}

	if cli.Inspect {
		return inspect.Run(cfg.SnapshotConfig(), raw, cli.Level)
	}

	out, _ := snapshot.Compact(cfg.SnapshotConfig(), raw, snapshot.Options{
		Level:    cli.Level,
		MaxChars: cli.MaxChars,
		Delta:    snapshot.DeltaMode(cli.Delta),
	}, snapshot.Memory{})
	fmt.Println(out)
	return nil
}

// loadSnapshot produces the raw snapshot text, either from a file or by
// navigating a live browser page through the relay stack.
func loadSnapshot(ctx context.Context, cli *cliConfig, cfg appconfig.Config) (string, error) {
	if cli.InputPath != "" {
		return readInput(cli.InputPath)
	}
	return browserSnapshot(ctx, cli, cfg)
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func browserSnapshot(ctx context.Context, cli *cliConfig, cfg appconfig.Config) (string, error) {
	logger, err := logging.New("main")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: session logging degraded: %v\n", err)
	}
	defer logger.Close()

	source := browser.NewSource(browser.Options{
		Headless:       cfg.Browser.Headless && !cli.Headed,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		TimeoutMillis:  cfg.Browser.TimeoutMillis,
	})
	if err := source.Start(); err != nil {
		return "", err
	}
	defer source.Close()

	policy, err := dispatch.NewTimeoutPolicy(cfg.TimeoutRules())
	if err != nil {
		return "", err
	}

	sessions := relay.NewManager(cfg.SnapshotConfig())
	sessions.SetMaxSessions(cfg.Sessions.MaxSessions)
	sessions.SetIdleTimeout(time.Duration(cfg.Sessions.IdleTimeout))
	defer sessions.CloseAll()

	executor := relay.NewExecutor(dispatch.New(source, policy, logger), sessions, logger)
	if _, err := sessions.Start("main"); err != nil {
		return "", err
	}

	if _, err := executor.CallTool(ctx, "main", "navigate_page", map[string]any{"url": cli.URL}); err != nil {
		return "", err
	}

	// Ask for the raw snapshot at the widest budget; compaction happens in
	// the caller so the inspector can show both forms.
	return executor.CallTool(ctx, "main", relay.SnapshotToolName, map[string]any{
		snapshot.ArgCompact:  false,
		snapshot.ArgDelta:    false,
		snapshot.ArgMaxChars: snapshot.MaxMaxChars,
	})
}
