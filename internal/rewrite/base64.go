package rewrite

import "regexp"

// Inline images carrying their payload as a data URI. Converted notebooks
// embed matplotlib output this way, which bloats the mirrored markdown.
var base64ImagePattern = regexp.MustCompile(`!\[.*?\]\(data:image/[^;]+;base64,[^)]+\)`)

// StripBase64Images removes markdown images whose target is an embedded
// base64 payload. All other text is left untouched.
func StripBase64Images(text string) string {
	return base64ImagePattern.ReplaceAllString(text, "")
}
