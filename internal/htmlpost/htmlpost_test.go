package htmlpost

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sperrors "git.home.luguber.info/inful/sitepipe/internal/errors"
)

const page = `<!doctype html>
<html lang="en">
<head>
<title>Demo</title>
</head>
<body>
<p>hello</p>
</body>
</html>
`

func TestInjectPagePayload(t *testing.T) {
	out, err := InjectPagePayload(page, PagePayload{
		Markdown: "# Demo\n",
		Title:    "Demo",
		URL:      "demo/",
	})
	require.NoError(t, err)

	assert.Contains(t, out, `<script id="page-markdown-content" type="application/json">`)
	assert.Contains(t, out, `"title":"Demo"`)
	assert.Contains(t, out, `"url":"demo/"`)
	// The payload lands inside head.
	headEnd := strings.Index(out, "</head>")
	scriptStart := strings.Index(out, "page-markdown-content")
	assert.Less(t, scriptStart, headEnd)
}

func TestInjectPagePayloadEscapesMarkup(t *testing.T) {
	out, err := InjectPagePayload(page, PagePayload{
		Markdown: "before </script> after & <b>",
		Title:    "t",
	})
	require.NoError(t, err)

	// encoding/json escapes angle brackets, so the embedded payload cannot
	// close the script element.
	assert.NotContains(t, out, "before </script>")
	assert.Contains(t, out, `</script>`)
}

func TestInjectPagePayloadEmptyMarkdownNoop(t *testing.T) {
	out, err := InjectPagePayload(page, PagePayload{})
	require.NoError(t, err)
	assert.Equal(t, page, out)
}

func TestInjectPagePayloadMissingHead(t *testing.T) {
	_, err := InjectPagePayload("<html><body>x</body></html>", PagePayload{Markdown: "m"})
	require.Error(t, err)
	assert.True(t, sperrors.IsCategory(err, sperrors.CategoryConfig))
}

func TestInjectAnalytics(t *testing.T) {
	out := InjectAnalytics(page, "GTM-ABC123")

	assert.Contains(t, out, "googletagmanager.com/ns.html?id=GTM-ABC123")
	// The snippet follows the opening body tag.
	bodyOpen := strings.Index(out, "<body>")
	snippet := strings.Index(out, "googletagmanager")
	assert.Greater(t, snippet, bodyOpen)
}

func TestInjectAnalyticsSkips(t *testing.T) {
	t.Run("no container id", func(t *testing.T) {
		assert.Equal(t, page, InjectAnalytics(page, ""))
	})

	t.Run("no body element", func(t *testing.T) {
		doc := "<head><title>x</title></head>"
		assert.Equal(t, doc, InjectAnalytics(doc, "GTM-ABC123"))
	})
}

func TestInjectAnalyticsBodyWithAttributes(t *testing.T) {
	doc := `<html><head></head><body class="docs">x</body></html>`
	out := InjectAnalytics(doc, "GTM-1")
	assert.Contains(t, out, `<body class="docs">`+"\n<!-- analytics (noscript) -->")
}
