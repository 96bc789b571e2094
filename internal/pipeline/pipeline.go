// Package pipeline applies the per-page transform sequence: notebook
// conversion, autolink rewriting, API reference injection, highlight comment
// transpilation, conditional rendering, exec path annotation, and optional
// base64 image stripping, in that fixed order.
//
// Transformation is pure computation over one page's text; pages never share
// mutable state, so the pipeline is safe to run across pages in parallel.
package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitepipe/internal/apiref"
	"git.home.luguber.info/inful/sitepipe/internal/autolink"
	"git.home.luguber.info/inful/sitepipe/internal/config"
	"git.home.luguber.info/inful/sitepipe/internal/convert"
	sperrors "git.home.luguber.info/inful/sitepipe/internal/errors"
	"git.home.luguber.info/inful/sitepipe/internal/rewrite"
)

// Page identifies the document being transformed.
type Page struct {
	// SourcePath is relative to the docs root and is the identifier used in
	// exec path attributes and mirror output.
	SourcePath string
	// AbsSourcePath locates the file on disk for collaborators that read it.
	AbsSourcePath string
}

// Options tune a single transformation run.
type Options struct {
	// TargetLanguage overrides the configured default when non-empty.
	TargetLanguage string
}

// Pipeline holds the configuration and injected collaborators for page
// transformation.
type Pipeline struct {
	cfg      *config.Config
	convert  convert.Converter
	autolink autolink.Rewriter
	apiref   apiref.Injector
}

// New builds a Pipeline with the default collaborators.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		convert:  convert.Notebook,
		autolink: autolink.Default,
		apiref:   apiref.NewInjector(cfg.APIReferences),
	}
}

// NewWithCollaborators builds a Pipeline with explicit collaborators, used by
// tests and by embedders that bring their own conversion or link logic.
func NewWithCollaborators(cfg *config.Config, conv convert.Converter, al autolink.Rewriter, ar apiref.Injector) *Pipeline {
	return &Pipeline{cfg: cfg, convert: conv, autolink: al, apiref: ar}
}

// TransformPage runs the transform sequence over one page's text and returns
// the result. Collaborator failures propagate unchanged; an invalid target
// language aborts before any text is touched. When the pipeline is disabled
// the input is returned as-is.
func (p *Pipeline) TransformPage(markdown string, page Page, opts Options) (string, error) {
	if p.cfg.Disabled {
		return markdown, nil
	}

	target := p.cfg.TargetLanguage
	if opts.TargetLanguage != "" {
		target = opts.TargetLanguage
	}
	if err := rewrite.ValidateTarget(target); err != nil {
		return "", err
	}

	var err error
	if strings.HasSuffix(page.SourcePath, ".ipynb") {
		markdown, err = p.convert(page.AbsSourcePath)
		if err != nil {
			return "", err
		}
	}

	markdown, err = p.autolink(markdown, page.SourcePath, target)
	if err != nil {
		return "", err
	}

	if p.cfg.AddAPIReferences == nil || *p.cfg.AddAPIReferences {
		markdown, err = p.apiref(markdown, page.AbsSourcePath)
		if err != nil {
			return "", err
		}
	}

	markdown = rewrite.HighlightComments(markdown)

	markdown, err = rewrite.RenderConditional(markdown, target)
	if err != nil {
		return "", err
	}

	markdown = rewrite.AnnotateExecPaths(markdown, page.SourcePath)

	if p.cfg.RemoveBase64Images {
		markdown = rewrite.StripBase64Images(markdown)
	}

	return markdown, nil
}

// WriteMirror persists the transformed markdown under the configured mirror
// directory, preserving the page's source-relative path. It is a no-op when
// no mirror directory is configured.
func (p *Pipeline) WriteMirror(page Page, markdown string) error {
	if p.cfg.MirrorDir == "" {
		return nil
	}
	dest := filepath.Join(p.cfg.MirrorDir, filepath.FromSlash(page.SourcePath))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return sperrors.Wrap(err, sperrors.CategoryFileSystem, sperrors.SeverityFatal,
			"create mirror directory").WithContext("path", dest)
	}
	if err := os.WriteFile(dest, []byte(markdown), 0o644); err != nil {
		return sperrors.Wrap(err, sperrors.CategoryFileSystem, sperrors.SeverityFatal,
			"write mirror output").WithContext("path", dest)
	}
	return nil
}
