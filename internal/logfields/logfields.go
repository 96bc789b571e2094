package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyOutcome    = "outcome"
	KeyPages      = "pages"
	KeyRedirects  = "redirects"
	KeyPage       = "page"
	KeyDocsDir    = "docs_dir"
	KeySiteDir    = "site_dir"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func Redirects(n int) slog.Attr       { return slog.Int(KeyRedirects, n) }
func Page(path string) slog.Attr      { return slog.String(KeyPage, path) }
func DocsDir(dir string) slog.Attr    { return slog.String(KeyDocsDir, dir) }
func SiteDir(dir string) slog.Attr    { return slog.String(KeySiteDir, dir) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
