// Package fence locates indentation-consistent fenced code blocks in a
// markdown body. It is a deliberately shallow line scanner, not a markdown
// parser: anything that does not match the open/close rules passes through
// untouched, byte for byte.
package fence

import "strings"

// Fence is one matched fenced code block.
type Fence struct {
	Indent     string // leading whitespace, identical on opener and closer
	Language   string // identifier token after the opening backticks
	Attributes string // trailing attribute text on the opening line, right-trimmed
	Body       string // raw lines between the delimiters, trailing newline included
}

// Match is a Fence together with its byte span in the scanned text.
// Start is the offset of the opening line's indent; End is the offset just
// past the closing triple backticks (any trailing text on the closing line
// stays outside the match).
type Match struct {
	Fence
	Start int
	End   int
	raw   string
}

// Raw returns the matched span verbatim, for pass-through replacements.
func (m Match) Raw() string { return m.raw }

// Scanner yields non-overlapping fence matches in document order.
// It is restartable: a fresh Scanner over the same text yields the same
// sequence.
type Scanner struct {
	text string
	pos  int
}

// NewScanner returns a Scanner over text.
func NewScanner(text string) *Scanner { return &Scanner{text: text} }

// Next returns the next fence match, or ok=false when the text is exhausted.
// An opening line without a same-indent closer is not a match; scanning
// resumes on the following line so the unmatched opener passes through.
func (s *Scanner) Next() (Match, bool) {
	for s.pos < len(s.text) {
		lineStart := s.pos
		lineEnd := strings.IndexByte(s.text[lineStart:], '\n')
		if lineEnd < 0 {
			// Opening lines must be newline-terminated.
			s.pos = len(s.text)
			return Match{}, false
		}
		lineEnd += lineStart
		line := s.text[lineStart:lineEnd]

		indent, lang, attrs, ok := parseOpener(line)
		if !ok {
			s.pos = lineEnd + 1
			continue
		}

		if m, found := s.findCloser(lineStart, lineEnd+1, indent, lang, attrs); found {
			s.pos = m.End
			return m, true
		}
		// No correctly indented closer: leave the opener in place and move on.
		s.pos = lineEnd + 1
	}
	return Match{}, false
}

// findCloser scans forward from bodyStart for the nearest line beginning with
// exactly indent followed by three backticks (non-greedy close).
func (s *Scanner) findCloser(openStart, bodyStart int, indent, lang, attrs string) (Match, bool) {
	closer := indent + "```"
	pos := bodyStart
	for pos <= len(s.text) {
		var lineEnd int
		if i := strings.IndexByte(s.text[pos:], '\n'); i >= 0 {
			lineEnd = pos + i
		} else {
			lineEnd = len(s.text)
		}
		line := s.text[pos:lineEnd]
		if strings.HasPrefix(line, closer) {
			end := pos + len(closer)
			return Match{
				Fence: Fence{
					Indent:     indent,
					Language:   lang,
					Attributes: attrs,
					Body:       s.text[bodyStart:pos],
				},
				Start: openStart,
				End:   end,
				raw:   s.text[openStart:end],
			}, true
		}
		if lineEnd == len(s.text) {
			break
		}
		pos = lineEnd + 1
	}
	return Match{}, false
}

// parseOpener matches `indent + "```" + language + optional attributes`.
// A language token is required; bare ``` openers are ignored.
func parseOpener(line string) (indent, lang, attrs string, ok bool) {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	indent = line[:i]
	if !strings.HasPrefix(line[i:], "```") {
		return "", "", "", false
	}
	i += 3
	langStart := i
	for i < len(line) && isWordByte(line[i]) {
		i++
	}
	if i == langStart {
		return "", "", "", false
	}
	lang = line[langStart:i]
	for i < len(line) && line[i] == ' ' {
		i++
	}
	attrs = strings.TrimRight(line[i:], " \t")
	return indent, lang, attrs, true
}

func isWordByte(b byte) bool {
	return b == '_' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9')
}

// ReplaceAll rewrites every matched fence using fn and leaves everything else
// untouched. fn receives the match and returns the replacement text for the
// matched span; return m.Raw() to keep a fence as-is.
func ReplaceAll(text string, fn func(Match) string) string {
	var b strings.Builder
	last := 0
	sc := NewScanner(text)
	for {
		m, ok := sc.Next()
		if !ok {
			break
		}
		b.WriteString(text[last:m.Start])
		b.WriteString(fn(m))
		last = m.End
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}
