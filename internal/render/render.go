// Package render turns transformed markdown into HTML pages. Rendering is an
// external collaborator from the rewrite engine's point of view; this is the
// built-in goldmark-backed implementation.
package render

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/sitepipe/internal/config"
	sperrors "git.home.luguber.info/inful/sitepipe/internal/errors"
	"git.home.luguber.info/inful/sitepipe/internal/htmlpost"
	"git.home.luguber.info/inful/sitepipe/internal/site"
)

// HTMLRenderer renders pages into the site output tree.
type HTMLRenderer struct {
	cfg  *config.Config
	urls site.URLBuilder
	md   goldmark.Markdown
}

// New returns a renderer for the given configuration.
func New(cfg *config.Config) *HTMLRenderer {
	return &HTMLRenderer{
		cfg:  cfg,
		urls: site.DefaultURLBuilder{},
		md:   goldmark.New(),
	}
}

var h1Pattern = regexp.MustCompile(`(?m)^# (.+)$`)

// RenderPage converts a page's markdown to HTML, applies post-page injection,
// and writes the document at the page's output path under siteDir.
func (r *HTMLRenderer) RenderPage(siteDir string, page site.Page, markdown string) error {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &body); err != nil {
		return sperrors.Wrap(err, sperrors.CategoryRender, sperrors.SeverityFatal,
			"convert markdown").WithContext("page", page.SourcePath)
	}

	title := pageTitle(page, markdown)
	url := r.urls.URL(page.OutputPath, r.directoryURLs())
	doc := r.wrap(title, body.String())

	doc, err := htmlpost.InjectPagePayload(doc, htmlpost.PagePayload{
		Markdown: markdown,
		Title:    title,
		URL:      url,
	})
	if err != nil {
		return err
	}
	doc = htmlpost.InjectAnalytics(doc, r.cfg.Analytics.ContainerID)

	dest := filepath.Join(siteDir, filepath.FromSlash(r.urls.DestPath(page.OutputPath, r.directoryURLs())))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return sperrors.Wrap(err, sperrors.CategoryFileSystem, sperrors.SeverityFatal,
			"create page directory").WithContext("path", dest)
	}
	if err := os.WriteFile(dest, []byte(doc), 0o644); err != nil {
		return sperrors.Wrap(err, sperrors.CategoryFileSystem, sperrors.SeverityFatal,
			"write page").WithContext("path", dest)
	}
	return nil
}

func (r *HTMLRenderer) directoryURLs() bool {
	return r.cfg.UseDirectoryURLs == nil || *r.cfg.UseDirectoryURLs
}

func (r *HTMLRenderer) wrap(title, body string) string {
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s - %s</title>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(title), html.EscapeString(r.cfg.SiteTitle), body)
}

// pageTitle prefers the page's first H1; otherwise the file name stands in.
func pageTitle(page site.Page, markdown string) string {
	if m := h1Pattern.FindStringSubmatch(markdown); m != nil {
		return strings.TrimSpace(m[1])
	}
	name := path.Base(page.SourcePath)
	return strings.TrimSuffix(name, path.Ext(name))
}
