package rewrite

import (
	"strconv"
	"strings"

	"git.home.luguber.info/inful/sitepipe/internal/fence"
)

const (
	hlAttrName       = "hl_lines"
	pyHighlightMark  = "# highlight-next-line"
	genHighlightMark = "// highlight-next-line"
)

// HighlightComments rewrites inline highlight-next-line marker comments inside
// fenced code blocks into an hl_lines attribute on the fence header.
//
// A fence whose attributes already carry hl_lines is returned untouched, which
// makes the transform idempotent. Marker lines are removed from the body; each
// recorded line number is the 1-based count of lines kept so far plus one, so
// it points at the line below the marker after marker removal and leading
// blank-line trimming.
func HighlightComments(text string) string {
	return fence.ReplaceAll(text, func(m fence.Match) string {
		if strings.Contains(m.Attributes, hlAttrName) {
			return m.Raw()
		}

		lines := strings.Split(m.Body, "\n")
		for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
			lines = lines[1:]
		}

		marker := genHighlightMark
		if m.Language == "py" || m.Language == "python" {
			marker = pyHighlightMark
		}

		var highlighted []string
		kept := make([]string, 0, len(lines))
		for _, line := range lines {
			if strings.Contains(line, marker) {
				highlighted = append(highlighted, strconv.Itoa(len(kept)+1))
			} else {
				kept = append(kept, line)
			}
		}

		opening := "```" + m.Language
		if m.Attributes != "" {
			opening += " " + m.Attributes
		}
		if len(highlighted) > 0 {
			opening += ` hl_lines="` + strings.Join(highlighted, " ") + `"`
		}

		// The kept body retains its own trailing newline, so the closing
		// delimiter lines up with the opener's indentation.
		return m.Indent + opening + "\n" + strings.Join(kept, "\n") + m.Indent + "```"
	})
}
