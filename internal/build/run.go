// Package build orchestrates a full site build: page discovery, parallel
// per-page transformation and rendering, and the redirect stub pass that runs
// once everything else has landed in the output tree.
package build

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitepipe/internal/config"
	"git.home.luguber.info/inful/sitepipe/internal/gitsource"
	"git.home.luguber.info/inful/sitepipe/internal/metrics"
	"git.home.luguber.info/inful/sitepipe/internal/pipeline"
	"git.home.luguber.info/inful/sitepipe/internal/redirects"
	"git.home.luguber.info/inful/sitepipe/internal/render"
	"git.home.luguber.info/inful/sitepipe/internal/site"
)

// Options tune a single build run.
type Options struct {
	Recorder metrics.Recorder
	// RepoURL, when set, clones a documentation repository and builds from
	// its docs directory instead of the local one.
	RepoURL    string
	RepoBranch string
	// TargetLanguage overrides the configured conditional-rendering default.
	TargetLanguage string
}

// Report summarizes a completed (or failed) build.
type Report struct {
	BuildID        string                   `json:"build_id"`
	StartedAt      time.Time                `json:"started_at"`
	FinishedAt     time.Time                `json:"finished_at"`
	Outcome        string                   `json:"outcome"`
	Pages          int                      `json:"pages"`
	Redirects      int                      `json:"redirects"`
	StageDurations map[string]time.Duration `json:"stage_durations"`
}

// State carries mutable state across stages.
type State struct {
	Config   *config.Config
	Options  Options
	Pipeline *pipeline.Pipeline
	Renderer *render.HTMLRenderer
	Recorder metrics.Recorder
	Report   *Report

	// DocsDir is the resolved source tree (configured directory, or the
	// docs directory of a cloned repository).
	DocsDir string
	Pages   []site.Page

	cloneDir string
}

// Run executes a complete build and returns its report. The report is
// returned even on failure so callers can persist it.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Report, error) {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}

	st := &State{
		Config:   cfg,
		Options:  opts,
		Pipeline: pipeline.New(cfg),
		Renderer: render.New(cfg),
		Recorder: opts.Recorder,
		DocsDir:  cfg.DocsDir,
		Report: &Report{
			BuildID:        uuid.NewString(),
			StartedAt:      time.Now(),
			StageDurations: make(map[string]time.Duration),
		},
	}

	stages := []namedStage{
		{"fetch_source", stageFetchSource},
		{"prepare_output", stagePrepareOutput},
		{"discover_pages", stageDiscoverPages},
		{"transform_render", stageTransformRender},
		{"redirects", stageRedirects},
	}

	err := runStages(ctx, st, stages)
	st.Report.FinishedAt = time.Now()
	st.Recorder.ObserveBuildDuration(st.Report.FinishedAt.Sub(st.Report.StartedAt))

	if st.cloneDir != "" {
		if rmErr := os.RemoveAll(st.cloneDir); rmErr != nil {
			slog.Warn("Failed to clean up clone workspace", "dir", st.cloneDir, "error", rmErr)
		}
	}

	switch {
	case err == nil:
		st.Report.Outcome = "success"
	case ctx.Err() != nil:
		st.Report.Outcome = "canceled"
	default:
		st.Report.Outcome = "failed"
	}
	st.Recorder.IncBuildOutcome(st.Report.Outcome)
	return st.Report, err
}

// stageFetchSource clones the remote documentation repository when one is
// configured; otherwise the local docs directory is used as-is.
func stageFetchSource(ctx context.Context, st *State) error {
	if st.Options.RepoURL == "" {
		return nil
	}
	dir, err := os.MkdirTemp("", "sitepipe-src-*")
	if err != nil {
		return err
	}
	st.cloneDir = dir
	if _, err := gitsource.Clone(ctx, st.Options.RepoURL, st.Options.RepoBranch, dir); err != nil {
		return err
	}
	st.DocsDir = filepath.Join(dir, st.Config.DocsDir)
	return nil
}

func stagePrepareOutput(ctx context.Context, st *State) error {
	return os.MkdirAll(st.Config.SiteDir, 0o755)
}

// stageDiscoverPages walks the docs tree for page sources. Notebook pages
// render at the markdown-normalized output path.
func stageDiscoverPages(ctx context.Context, st *State) error {
	var pages []site.Page
	err := filepath.WalkDir(st.DocsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".ipynb" {
			return nil
		}
		rel, err := filepath.Rel(st.DocsDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		pages = append(pages, site.Page{
			SourcePath: rel,
			OutputPath: strings.TrimSuffix(rel, ".ipynb") + mapExt(rel),
		})
		return nil
	})
	if err != nil {
		return err
	}
	st.Pages = pages
	slog.Info("Discovered pages", "count", len(pages), "docs_dir", st.DocsDir)
	return nil
}

func mapExt(rel string) string {
	if strings.HasSuffix(rel, ".ipynb") {
		return ".md"
	}
	return ""
}

// stageTransformRender runs the per-page pipeline across a worker pool.
// Pages share no mutable state, so the only coordination is the first-error
// abort.
func stageTransformRender(ctx context.Context, st *State) error {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if len(st.Pages) < workers {
		workers = len(st.Pages)
	}
	if workers == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan site.Page)
	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				if err := st.buildPage(page); err != nil {
					fail(err)
					return
				}
			}
		}()
	}

feed:
	for _, page := range st.Pages {
		select {
		case jobs <- page:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return newCanceledStageError("transform_render", err)
	}
	st.Report.Pages = len(st.Pages)
	st.Recorder.AddPagesTransformed(len(st.Pages))
	return nil
}

func (st *State) buildPage(pg site.Page) error {
	abs := filepath.Join(st.DocsDir, filepath.FromSlash(pg.SourcePath))
	raw := ""
	if !strings.HasSuffix(pg.SourcePath, ".ipynb") {
		data, err := os.ReadFile(abs)
		if err != nil {
			return err
		}
		raw = string(data)
	}

	page := pipeline.Page{SourcePath: pg.SourcePath, AbsSourcePath: abs}
	text, err := st.Pipeline.TransformPage(raw, page, pipeline.Options{
		TargetLanguage: st.Options.TargetLanguage,
	})
	if err != nil {
		return err
	}

	if err := st.Pipeline.WriteMirror(page, text); err != nil {
		return err
	}
	return st.Renderer.RenderPage(st.Config.SiteDir, pg, text)
}

// stageRedirects emits redirect stubs. It must run after every page has
// produced its final output location, because it writes into the same tree.
func stageRedirects(ctx context.Context, st *State) error {
	if len(st.Config.Redirects) == 0 {
		return nil
	}
	dirURLs := st.Config.UseDirectoryURLs == nil || *st.Config.UseDirectoryURLs
	resolver := redirects.NewResolver(site.DefaultURLBuilder{}, dirURLs)
	n, err := resolver.WriteAll(st.Config.SiteDir, st.Config.Redirects)
	if err != nil {
		return err
	}
	st.Report.Redirects = n
	st.Recorder.AddRedirectsWritten(n)
	slog.Info("Redirect stubs written", "count", n)
	return nil
}
