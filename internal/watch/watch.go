// Package watch rebuilds the site whenever the docs tree changes. A single
// build failure does not stop the watcher; the failed build's report is
// recorded and the next change triggers a fresh run.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitepipe/internal/build"
	"git.home.luguber.info/inful/sitepipe/internal/config"
	"git.home.luguber.info/inful/sitepipe/internal/eventstore"
	"git.home.luguber.info/inful/sitepipe/internal/logfields"
	"git.home.luguber.info/inful/sitepipe/internal/metrics"
	"git.home.luguber.info/inful/sitepipe/internal/notify"
)

// Runner owns the watch loop and its supporting services.
type Runner struct {
	cfg       *config.Config
	opts      build.Options
	store     *eventstore.SQLiteStore
	publisher *notify.Publisher
	rebuild   chan struct{}
}

// Run watches the docs directory and rebuilds until ctx is canceled.
func Run(ctx context.Context, cfg *config.Config, opts build.Options) error {
	r := &Runner{cfg: cfg, opts: opts, rebuild: make(chan struct{}, 1)}

	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open build history: %w", err)
	}
	r.store = store
	defer store.Close()

	if cfg.Events.Enabled {
		pub, err := notify.NewPublisher(cfg.Events)
		if err != nil {
			return err
		}
		r.publisher = pub
		defer pub.Close()
	}

	if cfg.Metrics.Enabled {
		recorder := startMetricsServer(ctx, cfg.Metrics.Listen)
		r.opts.Recorder = recorder
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()
	if err := watchTree(watcher, cfg.DocsDir); err != nil {
		return err
	}

	scheduler, err := r.startScheduler()
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { _ = scheduler.Shutdown() }()
	}

	go r.debounceLoop(ctx, watcher)

	// Initial build before waiting for changes.
	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.rebuild:
			r.runOnce(ctx)
			// New directories may have appeared; re-arm the watch tree.
			if err := watchTree(watcher, cfg.DocsDir); err != nil {
				slog.Warn("Failed to refresh watch tree", "error", err)
			}
		}
	}
}

// startScheduler arms the periodic unconditional rebuild when configured.
func (r *Runner) startScheduler() (gocron.Scheduler, error) {
	if r.cfg.Watch.RebuildMinutes <= 0 {
		return nil, nil
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(time.Duration(r.cfg.Watch.RebuildMinutes)*time.Minute),
		gocron.NewTask(func() { r.trigger() }),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule periodic rebuild: %w", err)
	}
	s.Start()
	slog.Info("Periodic rebuild scheduled", "minutes", r.cfg.Watch.RebuildMinutes)
	return s, nil
}

func (r *Runner) trigger() {
	select {
	case r.rebuild <- struct{}{}:
	default:
	}
}

// debounceLoop coalesces bursts of filesystem events into one rebuild.
func (r *Runner) debounceLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	debounce := time.Duration(r.cfg.Watch.DebounceSeconds) * time.Second
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", "error", err)
		case <-timerC:
			timer = nil
			timerC = nil
			r.trigger()
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	report, err := build.Run(ctx, r.cfg, r.opts)
	if err != nil {
		slog.LogAttrs(ctx, slog.LevelError, "Build failed",
			logfields.BuildID(report.BuildID), logfields.Error(err))
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "Build completed",
			logfields.BuildID(report.BuildID),
			logfields.Pages(report.Pages),
			logfields.Redirects(report.Redirects))
	}

	reportJSON, _ := json.Marshal(report)
	rec := eventstore.BuildRecord{
		BuildID:    report.BuildID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Outcome:    report.Outcome,
		Pages:      report.Pages,
		Redirects:  report.Redirects,
		Report:     reportJSON,
	}
	if err := r.store.Append(ctx, rec); err != nil {
		slog.Warn("Failed to record build history", "error", err)
	}

	if r.publisher != nil {
		event := notify.BuildEvent{
			BuildID:   report.BuildID,
			Outcome:   report.Outcome,
			Pages:     report.Pages,
			Redirects: report.Redirects,
			SiteDir:   r.cfg.SiteDir,
		}
		if err := r.publisher.PublishBuildCompleted(event); err != nil {
			slog.Warn("Failed to publish build event", "error", err)
		}
	}
}

// watchTree adds the docs directory and every subdirectory to the watcher.
// Adding an already watched directory is a no-op.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func startMetricsServer(ctx context.Context, listen string) *metrics.PrometheusRecorder {
	rec := metrics.NewPrometheusRecorder(nil)
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: listen, Handler: mux}

	go func() {
		slog.Info("Metrics endpoint listening", "addr", listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Warn("Metrics server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return rec
}
