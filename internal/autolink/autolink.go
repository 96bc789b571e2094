// Package autolink rewrites cross-reference link destinations in markdown
// before rendering. The pipeline takes the rewriter as an injected
// collaborator; Default covers the standard cases.
package autolink

import (
	"regexp"
	"strings"
)

// Rewriter rewrites link destinations in a page's markdown.
type Rewriter func(markdown, pagePath, defaultScope string) (string, error)

var linkPattern = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)]+)\)`)

// Default normalizes notebook link targets to the rendering extension and
// resolves scope-prefixed destinations (`@python/...`, `@js/...`) against the
// default scope: a matching scope prefix is stripped, a non-matching one is
// left verbatim. External URLs and bare anchors pass through untouched.
func Default(markdown, pagePath, defaultScope string) (string, error) {
	out := linkPattern.ReplaceAllStringFunc(markdown, func(match string) string {
		sub := linkPattern.FindStringSubmatch(match)
		bang, text, dest := sub[1], sub[2], sub[3]

		if strings.HasPrefix(dest, "http://") ||
			strings.HasPrefix(dest, "https://") ||
			strings.HasPrefix(dest, "mailto:") ||
			strings.HasPrefix(dest, "#") {
			return match
		}

		rewritten := rewriteDestination(dest, defaultScope)
		if rewritten == dest {
			return match
		}
		return bang + "[" + text + "](" + rewritten + ")"
	})
	return out, nil
}

func rewriteDestination(dest, defaultScope string) string {
	if scoped, ok := strings.CutPrefix(dest, "@"+defaultScope+"/"); ok {
		dest = scoped
	}

	path, anchor, found := strings.Cut(dest, "#")
	if strings.HasSuffix(path, ".ipynb") {
		path = strings.TrimSuffix(path, ".ipynb") + ".md"
	}
	if found {
		return path + "#" + anchor
	}
	return path
}
