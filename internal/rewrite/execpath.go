package rewrite

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitepipe/internal/fence"
)

const execMarker = `exec="on"`

// AnnotateExecPaths appends a path attribute carrying the originating page's
// source path to every fence explicitly marked executable. Downstream tooling
// uses the path to associate executable snippets with fixture data keyed by
// source page. The attribute is assigned once and always lands last; fences
// without the marker (or already annotated) are returned unchanged.
func AnnotateExecPaths(text, sourcePath string) string {
	return fence.ReplaceAll(text, func(m fence.Match) string {
		if !strings.Contains(m.Attributes, execMarker) {
			return m.Raw()
		}
		if strings.Contains(m.Attributes, `path="`) {
			return m.Raw()
		}
		return fmt.Sprintf("%s```%s %s path=%q\n%s%s```",
			m.Indent, m.Language, m.Attributes, sourcePath, m.Body, m.Indent)
	})
}
