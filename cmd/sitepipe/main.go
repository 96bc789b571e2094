package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitepipe/internal/build"
	"git.home.luguber.info/inful/sitepipe/internal/config"
	"git.home.luguber.info/inful/sitepipe/internal/version"
	"git.home.luguber.info/inful/sitepipe/internal/watch"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"sitepipe.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output         string `short:"o" help:"Output directory for the generated site"`
		Repo           string `short:"r" help:"Clone and build a remote documentation repository"`
		Branch         string `short:"b" help:"Branch to clone (defaults to the remote default)"`
		TargetLanguage string `short:"t" help:"Conditional-block language to render (python or js)"`
	} `cmd:"" help:"Build the documentation site once"`

	Watch struct{} `cmd:"" help:"Watch the docs directory and rebuild on changes"`

	Version struct{} `cmd:"" help:"Print the version and exit"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "build":
		if err := runBuild(); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "watch":
		if err := runWatch(); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("sitepipe %s (built %s, commit %s)\n",
			version.Version, version.BuildTime, version.GitCommit)
	}
}

func runBuild() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Build.Output != "" {
		cfg.SiteDir = CLI.Build.Output
	}

	signalCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := build.Run(signalCtx, cfg, build.Options{
		RepoURL:        CLI.Build.Repo,
		RepoBranch:     CLI.Build.Branch,
		TargetLanguage: CLI.Build.TargetLanguage,
	})
	if err != nil {
		return err
	}
	slog.Info("Build completed",
		"build_id", report.BuildID,
		"pages", report.Pages,
		"redirects", report.Redirects,
		"duration", report.FinishedAt.Sub(report.StartedAt))
	return nil
}

func runWatch() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("Watching for changes", "docs_dir", cfg.DocsDir)
	return watch.Run(signalCtx, cfg, build.Options{})
}
