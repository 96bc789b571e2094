package rewrite

import (
	"fmt"
	"strings"

	sperrors "git.home.luguber.info/inful/sitepipe/internal/errors"
)

// Target languages understood by conditional blocks. Any other selector value
// is a usage error; any other block tag is inert content.
const (
	TargetPython = "python"
	TargetJS     = "js"
)

// ValidateTarget checks a conditional-rendering selector before any text is
// touched.
func ValidateTarget(target string) error {
	if target != TargetPython && target != TargetJS {
		return sperrors.ConfigError(fmt.Sprintf("target language must be %q or %q, got %q", TargetPython, TargetJS, target))
	}
	return nil
}

// RenderConditional evaluates `:::<language>` ... `:::` blocks against the
// selected target language.
//
// Blocks tagged with the target keep their inner content (delimiters
// stripped); blocks tagged with the other recognized language are removed
// entirely. Blocks with unrecognized tags pass through verbatim, so unrelated
// triple-colon content is never disturbed. The closing delimiter must start
// with the opener's indentation; additional whitespace before the closing
// colons is tolerated.
func RenderConditional(text, target string) (string, error) {
	if err := ValidateTarget(target); err != nil {
		return "", err
	}

	var b strings.Builder
	last := 0
	pos := 0
	for pos < len(text) {
		lineEnd := strings.IndexByte(text[pos:], '\n')
		if lineEnd < 0 {
			break
		}
		lineEnd += pos
		line := text[pos:lineEnd]

		indent, lang, ok := parseConditionalOpener(line)
		if !ok {
			pos = lineEnd + 1
			continue
		}

		bodyStart := lineEnd + 1
		bodyEnd, matchEnd, found := findConditionalCloser(text, bodyStart, indent)
		if !found {
			pos = lineEnd + 1
			continue
		}

		b.WriteString(text[last:pos])
		switch {
		case lang != TargetPython && lang != TargetJS:
			b.WriteString(text[pos:matchEnd])
		case lang == target:
			b.WriteString(text[bodyStart:bodyEnd])
		default:
			// Inactive language: drop the whole block.
		}
		last = matchEnd
		pos = matchEnd
	}

	if last == 0 {
		return text, nil
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// parseConditionalOpener matches `indent + ":::" + language` with nothing but
// whitespace after the tag.
func parseConditionalOpener(line string) (indent, lang string, ok bool) {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	indent = line[:i]
	if !strings.HasPrefix(line[i:], ":::") {
		return "", "", false
	}
	i += 3
	langStart := i
	for i < len(line) && isWordByte(line[i]) {
		i++
	}
	if i == langStart {
		return "", "", false
	}
	lang = line[langStart:i]
	if strings.TrimSpace(line[i:]) != "" {
		return "", "", false
	}
	return indent, lang, true
}

// findConditionalCloser locates the nearest line beginning with the opener's
// indentation, optional extra whitespace, and `:::`. It returns the body end
// (start of the closing line) and the offset just past the closing colons.
func findConditionalCloser(text string, bodyStart int, indent string) (bodyEnd, matchEnd int, found bool) {
	pos := bodyStart
	for pos <= len(text) {
		var lineEnd int
		if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
			lineEnd = pos + i
		} else {
			lineEnd = len(text)
		}
		line := text[pos:lineEnd]
		if strings.HasPrefix(line, indent) {
			rest := line[len(indent):]
			j := 0
			for j < len(rest) && (rest[j] == ' ' || rest[j] == '\t') {
				j++
			}
			if strings.HasPrefix(rest[j:], ":::") {
				return pos, pos + len(indent) + j + 3, true
			}
		}
		if lineEnd == len(text) {
			break
		}
		pos = lineEnd + 1
	}
	return 0, 0, false
}

func isWordByte(b byte) bool {
	return b == '_' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9')
}
