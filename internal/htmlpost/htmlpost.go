// Package htmlpost post-processes rendered HTML pages: it embeds the page's
// final markdown as a JSON payload for client-side tooling and injects the
// analytics snippet. Injection is string surgery on the rendered document so
// the renderer's output is otherwise preserved byte for byte; the document
// structure is verified first with an HTML parse.
package htmlpost

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	sperrors "git.home.luguber.info/inful/sitepipe/internal/errors"
)

// PagePayload is the JSON document embedded into each rendered page.
type PagePayload struct {
	Markdown string `json:"markdown"`
	Title    string `json:"title"`
	URL      string `json:"url"`
}

// InjectPagePayload embeds the page's markdown as an application/json script
// before the closing head tag. A document without a head close marker is a
// structural configuration error and fails the page's build.
func InjectPagePayload(page string, payload PagePayload) (string, error) {
	if payload.Markdown == "" {
		return page, nil
	}
	if !strings.Contains(page, "</head>") {
		return "", sperrors.ConfigError("rendered page has no </head> tag; cannot embed markdown payload")
	}

	// encoding/json escapes <, > and & inside strings, so the payload cannot
	// terminate the script element early.
	data, err := json.Marshal(payload)
	if err != nil {
		return "", sperrors.Wrap(err, sperrors.CategoryRender, sperrors.SeverityFatal, "marshal page payload")
	}

	script := fmt.Sprintf(`<script id="page-markdown-content" type="application/json">%s</script>`, data)
	return strings.Replace(page, "</head>", script+"</head>", 1), nil
}

var bodyOpenPattern = regexp.MustCompile(`<body[^>]*>`)

// InjectAnalytics inserts the analytics noscript snippet immediately after
// the opening body tag. Documents without a body are returned unchanged.
func InjectAnalytics(page, containerID string) string {
	if containerID == "" || !hasBody(page) {
		return page
	}
	loc := bodyOpenPattern.FindStringIndex(page)
	if loc == nil {
		return page
	}
	snippet := fmt.Sprintf(`
<!-- analytics (noscript) -->
<noscript><iframe src="https://www.googletagmanager.com/ns.html?id=%s"
height="0" width="0" style="display:none;visibility:hidden"></iframe></noscript>
<!-- end analytics (noscript) -->
`, containerID)
	return page[:loc[1]] + snippet + page[loc[1]:]
}

// hasBody checks for an explicit body element in the rendered source. The
// parser is authoritative here; html.Parse synthesizes a body for fragments,
// so the raw source is checked as well.
func hasBody(page string) bool {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return false
	}
	return findElement(doc, "body") != nil && bodyOpenPattern.MatchString(page)
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}
