package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/deckforge/internal/config"
	"git.home.luguber.info/inful/deckforge/internal/deck"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"deckforge.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct{} `cmd:"" help:"Start the generation HTTP service"`

	Generate struct {
		Topic  string `arg:"" help:"Presentation topic"`
		Theme  string `short:"t" help:"Theme preset" default:"business"`
		Slides int    `short:"n" help:"Number of slides" default:"10"`
		Server string `short:"s" help:"Generate via a running deckforge server instead of in-process"`
	} `cmd:"" help:"Generate a slide deck for a topic"`

	Themes struct{} `cmd:"" help:"List the built-in theme presets"`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Secrets such as the LLM API key may live in a local .env file.
	_ = godotenv.Load()

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	logLevel := parseLogLevel(cfg.Logging.Level)
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "serve":
		if err := runServe(cfg); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	case "generate <topic>":
		if err := runGenerate(cfg, CLI.Generate.Server, CLI.Generate.Topic, CLI.Generate.Theme, CLI.Generate.Slides); err != nil {
			slog.Error("Generation failed", "error", err)
			os.Exit(1)
		}
	case "themes":
		runThemes()
	default:
		fmt.Fprintln(os.Stderr, "unknown command:", ctx.Command())
		os.Exit(1)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runThemes() {
	for _, p := range deck.ThemePresets {
		marker := "  "
		if p.Key == deck.DefaultThemeKey {
			marker = "* "
		}
		fmt.Printf("%s%-10s %-20s primary=%s background=%s\n",
			marker, p.Key, p.Name, p.Colors.Primary, p.Colors.Background)
	}
}
