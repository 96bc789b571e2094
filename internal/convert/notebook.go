// Package convert turns Jupyter notebooks into markdown page sources.
//
// The pipeline treats conversion as an injected collaborator, so this default
// implementation can be swapped out wholesale; it extracts cells from the
// notebook JSON without evaluating anything.
package convert

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	sperrors "git.home.luguber.info/inful/sitepipe/internal/errors"
)

// Converter turns a notebook source file into markdown text.
type Converter func(sourceFilePath string) (string, error)

type notebook struct {
	Cells    []cell `json:"cells"`
	Metadata struct {
		Kernelspec struct {
			Language string `json:"language"`
		} `json:"kernelspec"`
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
	} `json:"metadata"`
}

type cell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
}

// Notebook reads an .ipynb file and returns its cells as markdown: markdown
// cells verbatim, code cells as fenced blocks tagged with the notebook's
// kernel language.
func Notebook(sourceFilePath string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(sourceFilePath))
	if err != nil {
		return "", sperrors.Wrap(err, sperrors.CategoryConvert, sperrors.SeverityFatal,
			"read notebook").WithContext("path", sourceFilePath)
	}

	var nb notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return "", sperrors.Wrap(err, sperrors.CategoryConvert, sperrors.SeverityFatal,
			"parse notebook JSON").WithContext("path", sourceFilePath)
	}

	lang := nb.Metadata.Kernelspec.Language
	if lang == "" {
		lang = nb.Metadata.LanguageInfo.Name
	}
	if lang == "" {
		lang = "python"
	}

	var sections []string
	for _, c := range nb.Cells {
		src := cellSource(c.Source)
		switch c.CellType {
		case "markdown":
			if strings.TrimSpace(src) != "" {
				sections = append(sections, src)
			}
		case "code":
			if strings.TrimSpace(src) == "" {
				continue
			}
			if !strings.HasSuffix(src, "\n") {
				src += "\n"
			}
			sections = append(sections, "```"+lang+"\n"+src+"```")
		}
	}

	return strings.Join(sections, "\n\n") + "\n", nil
}

// cellSource handles both source encodings the format allows: a list of line
// strings or a single string.
func cellSource(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.Join(lines, "")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
