// Package apiref appends API reference links below code blocks that import
// documented packages.
package apiref

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitepipe/internal/config"
	"git.home.luguber.info/inful/sitepipe/internal/fence"
)

// Injector appends reference links to a page's markdown. The absolute source
// path identifies the page for collaborators that need filesystem context;
// this implementation only uses the markdown itself.
type Injector func(markdown, absSourcePath string) (string, error)

var importPattern = regexp.MustCompile(`(?m)^\s*(?:from|import)\s+([A-Za-z_][\w.]*)`)

// NewInjector builds an Injector from configured import-prefix to base-URL
// mappings. Python fences importing a documented package get a reference line
// appended directly after the closing delimiter; everything else is left
// unchanged.
func NewInjector(refs []config.APIReference) Injector {
	return func(markdown, absSourcePath string) (string, error) {
		if len(refs) == 0 {
			return markdown, nil
		}
		out := fence.ReplaceAll(markdown, func(m fence.Match) string {
			if m.Language != "py" && m.Language != "python" {
				return m.Raw()
			}
			links := referenceLinks(m.Body, refs)
			if len(links) == 0 {
				return m.Raw()
			}
			return m.Raw() + "\n" + m.Indent + "API reference: " + strings.Join(links, ", ")
		})
		return out, nil
	}
}

func referenceLinks(body string, refs []config.APIReference) []string {
	seen := make(map[string]struct{})
	var links []string
	for _, sub := range importPattern.FindAllStringSubmatch(body, -1) {
		module := sub[1]
		for _, ref := range refs {
			if module != ref.Prefix && !strings.HasPrefix(module, ref.Prefix+".") {
				continue
			}
			if _, dup := seen[module]; dup {
				break
			}
			seen[module] = struct{}{}
			url := strings.TrimSuffix(ref.BaseURL, "/") + "/" + strings.ReplaceAll(module, ".", "/") + "/"
			links = append(links, "["+module+"]("+url+")")
			break
		}
	}
	return links
}
