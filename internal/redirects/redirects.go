// Package redirects resolves a static old-path to new-path table into
// relative redirect targets and emits redirect stub documents into the built
// site tree. It runs once per build, after all pages have rendered.
package redirects

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	sperrors "git.home.luguber.info/inful/sitepipe/internal/errors"
	"git.home.luguber.info/inful/sitepipe/internal/site"
)

// Entry maps a retired page path to its replacement. The new target may carry
// an anchor fragment. Entries resolve independently: chains are never
// followed, so A→B stays B even when B→C is also present.
type Entry struct {
	Old string
	New string
}

// Table is the ordered, read-only redirect map loaded once at startup.
type Table []Entry

// UnmarshalYAML reads the table from a YAML mapping while preserving the
// document order of its keys.
func (t *Table) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("redirects must be a mapping of old path to new path")
	}
	entries := make(Table, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		entries = append(entries, Entry{
			Old: value.Content[i].Value,
			New: value.Content[i+1].Value,
		})
	}
	*t = entries
	return nil
}

// Resolver computes redirect stub locations and their relative targets.
type Resolver struct {
	urls          site.URLBuilder
	directoryURLs bool
}

// NewResolver returns a Resolver using the generator-supplied URL builder and
// the active URL style for old-page output locations.
func NewResolver(urls site.URLBuilder, directoryURLs bool) *Resolver {
	return &Resolver{urls: urls, directoryURLs: directoryURLs}
}

// Resolve returns the site-relative output path of the redirect stub for an
// entry, and the relative target (anchor included) the stub should point at.
//
// Both paths are normalized to the rendering extension first. The old page's
// output location follows the active URL style; the new target always
// resolves with directory-style semantics.
func (r *Resolver) Resolve(e Entry) (stubPath, target string) {
	oldPage := strings.ReplaceAll(e.Old, ".ipynb", ".md")
	newPage := strings.ReplaceAll(e.New, ".ipynb", ".md")

	newPath, anchor, found := strings.Cut(newPage, "#")
	if found {
		anchor = "#" + anchor
	}

	stubPath = r.urls.DestPath(oldPage, r.directoryURLs)
	newURL := r.urls.URL(newPath, true)

	target = site.Relpath(newURL, path.Dir(stubPath)) + anchor
	return stubPath, target
}

// WriteAll emits one redirect stub per table entry under siteDir, creating
// parent directories as needed and overwriting existing files. It returns the
// number of stubs written.
func (r *Resolver) WriteAll(siteDir string, table Table) (int, error) {
	for _, e := range table {
		stubPath, target := r.Resolve(e)
		if err := writeStub(siteDir, stubPath, target); err != nil {
			return 0, err
		}
	}
	return len(table), nil
}

func writeStub(siteDir, stubPath, target string) error {
	abs := filepath.Join(siteDir, filepath.FromSlash(stubPath))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return sperrors.Wrap(err, sperrors.CategoryFileSystem, sperrors.SeverityFatal,
			"create redirect stub directory").WithContext("path", abs)
	}
	if err := os.WriteFile(abs, []byte(StubHTML(target)), 0o644); err != nil {
		return sperrors.Wrap(err, sperrors.CategoryFileSystem, sperrors.SeverityFatal,
			"write redirect stub").WithContext("path", abs)
	}
	return nil
}

// StubHTML renders the redirect stub document: a canonical link for crawlers,
// a noindex directive, an immediate script redirect that preserves any URL
// fragment present at request time, and a zero-delay meta refresh fallback.
func StubHTML(target string) string {
	return fmt.Sprintf(`
<!doctype html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>Redirecting...</title>
    <link rel="canonical" href="%[1]s">
    <meta name="robots" content="noindex">
    <script>var anchor=window.location.hash.substr(1);location.href="%[1]s"+(anchor?"#"+anchor:"")</script>
    <meta http-equiv="refresh" content="0; url=%[1]s">
</head>
<body>
Redirecting...
</body>
</html>
`, target)
}
