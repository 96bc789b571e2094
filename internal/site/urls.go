// Package site maps logical page paths to output paths and URLs under the
// generator's URL scheme. Directory-style URLs render a page to
// `path/index.html` addressed as `path/`; flat-file URLs render to
// `path.html`.
package site

import (
	"path"
	"strings"
)

// Page is the identity of a document being built. SourcePath is relative to
// the docs root; OutputPath is relative to the site root.
type Page struct {
	SourcePath string
	OutputPath string
}

// URLBuilder maps a logical page path to its rendered output path and URL.
// The site generator supplies the implementation; DefaultURLBuilder matches
// the generator's standard scheme.
type URLBuilder interface {
	DestPath(pagePath string, directoryURLs bool) string
	URL(pagePath string, directoryURLs bool) string
}

// DefaultURLBuilder implements the standard URL scheme.
type DefaultURLBuilder struct{}

// DestPath returns the site-relative output path for a page path. Only
// markdown pages are mapped; any other path is returned unchanged.
func (DefaultURLBuilder) DestPath(pagePath string, directoryURLs bool) string {
	if !strings.HasSuffix(pagePath, ".md") {
		return pagePath
	}
	base := strings.TrimSuffix(pagePath, ".md")
	name := path.Base(base)
	if name == "index" || name == "README" {
		return path.Join(path.Dir(base), "index.html")
	}
	if directoryURLs {
		return path.Join(base, "index.html")
	}
	return base + ".html"
}

// URL returns the address of a page path under the given URL style.
func (b DefaultURLBuilder) URL(pagePath string, directoryURLs bool) string {
	dest := b.DestPath(pagePath, directoryURLs)
	if directoryURLs && strings.HasSuffix(dest, "index.html") {
		url := strings.TrimSuffix(dest, "index.html")
		if url == "" {
			return "."
		}
		return url
	}
	return dest
}

// Relpath computes the relative URL path from directory start to target using
// forward slashes, the same arithmetic as POSIX relpath. Trailing slashes on
// either argument do not affect the result.
func Relpath(target, start string) string {
	tsegs := splitSegments(target)
	ssegs := splitSegments(start)

	common := 0
	for common < len(tsegs) && common < len(ssegs) && tsegs[common] == ssegs[common] {
		common++
	}

	var out []string
	for range ssegs[common:] {
		out = append(out, "..")
	}
	out = append(out, tsegs[common:]...)
	if len(out) == 0 {
		return "."
	}
	return strings.Join(out, "/")
}

func splitSegments(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s == "" || s == "." {
			continue
		}
		segs = append(segs, s)
	}
	return segs
}
