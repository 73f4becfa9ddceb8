package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/domestika-downloader/internal/config"
	"github.com/handiism/domestika-downloader/internal/pipeline"
	"github.com/handiism/domestika-downloader/internal/progress"
	"github.com/mattn/go-isatty"
)

var levelStyles = map[progress.Level]lipgloss.Style{
	progress.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	progress.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D")),
	progress.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3")),
	progress.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A8DADC")),
	progress.LevelVerbose: lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D")),
}

var levelPrefixes = map[progress.Level]string{
	progress.LevelError:   "✗ ",
	progress.LevelWarning: "! ",
	progress.LevelSuccess: "✓ ",
	progress.LevelInfo:    "› ",
	progress.LevelVerbose: "  ",
}

func main() {
	// Command line flags
	var (
		urlFlag         = flag.String("url", "", "Domestika courses list or course URL (overrides config)")
		configFlag      = flag.String("config", "", "Path to config file")
		cookiesFlag     = flag.String("cookies", "", "Path to exported cookies (JSON or cookies.txt)")
		outputFlag      = flag.String("output", "", "Output directory (overrides config)")
		osFlag          = flag.String("os", "", "Downloader variant: mac (yt-dlp) or win (N_m3u8DL-RE)")
		subsFlag        = flag.String("subs", "", "Subtitle language requested in addition to en")
		concurrencyFlag = flag.String("concurrency", "", "Course scheduling: sequential or parallel")
		headfulFlag     = flag.Bool("headful", false, "Show the browser window")
		debugFlag       = flag.Bool("debug", false, "Log downloader output and write debug_log.json per course")
		verboseFlag     = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag      = flag.Bool("dry-run", false, "Traverse the catalogue without downloading")
	)

	flag.Parse()

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *urlFlag != "" {
		settings.CatalogueURL = *urlFlag
	} else if flag.NArg() > 0 {
		settings.CatalogueURL = flag.Arg(0)
	}
	if *cookiesFlag != "" {
		settings.CookiesPath = *cookiesFlag
	}
	if *outputFlag != "" {
		settings.OutputRoot = *outputFlag
	}
	if *osFlag != "" {
		settings.OSVariant = *osFlag
	}
	if *subsFlag != "" {
		settings.SubtitleLang = *subsFlag
	}
	if *concurrencyFlag != "" {
		settings.Concurrency = *concurrencyFlag
	}
	if *headfulFlag {
		settings.Headless = false
	}
	if *debugFlag {
		settings.Debug = true
	}

	if settings.CatalogueURL == "" {
		fmt.Println("Domestika Downloader - Download courses from Domestika")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  domestika-dl -url <URL> [options]")
		fmt.Println("  domestika-dl <URL> [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: domestika-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	showVerbose := *verboseFlag || settings.Debug
	color := isatty.IsTerminal(os.Stdout.Fd())
	onProgress := func(event progress.Event) {
		if event.Level == progress.LevelVerbose && !showVerbose {
			return
		}
		line := levelPrefixes[event.Level] + event.Message
		if color {
			line = levelStyles[event.Level].Render(line)
		}
		fmt.Println(line)
	}

	p, err := pipeline.New(settings, onProgress, pipeline.WithDryRun(*dryRunFlag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Domestika Downloader")
	fmt.Println()

	result, err := p.Run(ctx)
	if err != nil && ctx.Err() != nil {
		fmt.Println("\nRun cancelled.")
		os.Exit(130)
	}

	if result != nil {
		done, failed, total := p.Progress()
		fmt.Println()
		fmt.Printf("Courses: %d traversed, %d failed\n", len(result.Bundles()), len(result.Failed()))
		if !*dryRunFlag {
			fmt.Printf("Videos: %d/%d downloaded, %d failed\n", done, total, failed)
		}
		for _, f := range result.Failed() {
			fmt.Printf("  %s: %v\n", f.Course.Title, f.Err)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
