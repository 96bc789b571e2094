package redirects

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitepipe/internal/site"
)

func TestResolveDirectoryURLs(t *testing.T) {
	r := NewResolver(site.DefaultURLBuilder{}, true)

	tests := []struct {
		name       string
		entry      Entry
		wantStub   string
		wantTarget string
	}{
		{
			name:       "plain page move",
			entry:      Entry{Old: "a/b.md", New: "c/d.md"},
			wantStub:   "a/b/index.html",
			wantTarget: "../../c/d",
		},
		{
			name:       "anchor preserved",
			entry:      Entry{Old: "a/b.md", New: "c/d.md#section"},
			wantStub:   "a/b/index.html",
			wantTarget: "../../c/d#section",
		},
		{
			name:       "notebook paths normalized",
			entry:      Entry{Old: "nb.ipynb", New: "x.ipynb"},
			wantStub:   "nb/index.html",
			wantTarget: "../x",
		},
		{
			name:       "move within section",
			entry:      Entry{Old: "guide/old.md", New: "guide/new.md"},
			wantStub:   "guide/old/index.html",
			wantTarget: "../new",
		},
		{
			name:       "target at root index",
			entry:      Entry{Old: "old.md", New: "index.md"},
			wantStub:   "old/index.html",
			wantTarget: "..",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub, target := r.Resolve(tt.entry)
			assert.Equal(t, tt.wantStub, stub)
			assert.Equal(t, tt.wantTarget, target)
		})
	}
}

func TestResolveFlatURLs(t *testing.T) {
	r := NewResolver(site.DefaultURLBuilder{}, false)

	stub, target := r.Resolve(Entry{Old: "a/b.md", New: "c/d.md"})
	assert.Equal(t, "a/b.html", stub)
	// The new target always resolves with directory-style semantics.
	assert.Equal(t, "../c/d", target)
}

func TestResolveSingleHop(t *testing.T) {
	// A -> B resolves to B even when B -> C is also in the table; chains are
	// never followed.
	r := NewResolver(site.DefaultURLBuilder{}, true)

	_, targetA := r.Resolve(Entry{Old: "a.md", New: "b.md"})
	assert.Equal(t, "../b", targetA)

	_, targetB := r.Resolve(Entry{Old: "b.md", New: "c.md"})
	assert.Equal(t, "../c", targetB)
}

func TestWriteAll(t *testing.T) {
	siteDir := t.TempDir()
	r := NewResolver(site.DefaultURLBuilder{}, true)

	table := Table{
		{Old: "a/b.md", New: "c/d.md"},
		{Old: "old.md", New: "new.md#top"},
	}

	n, err := r.WriteAll(siteDir, table)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(filepath.Join(siteDir, "a", "b", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `href="../../c/d"`)
	assert.Contains(t, string(data), `content="noindex"`)

	data, err = os.ReadFile(filepath.Join(siteDir, "old", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "../new#top")
}

func TestStubHTML(t *testing.T) {
	html := StubHTML("../target/")

	assert.Contains(t, html, `<link rel="canonical" href="../target/">`)
	assert.Contains(t, html, `<meta name="robots" content="noindex">`)
	assert.Contains(t, html, `content="0; url=../target/"`)
	// The script redirect preserves any fragment present at request time.
	assert.Contains(t, html, `window.location.hash`)
}

func TestTableUnmarshalPreservesOrder(t *testing.T) {
	doc := "z.md: a.md\nb.md: c.md\nm.md: n.md\n"

	var table Table
	require.NoError(t, yaml.Unmarshal([]byte(doc), &table))

	require.Len(t, table, 3)
	assert.Equal(t, Entry{Old: "z.md", New: "a.md"}, table[0])
	assert.Equal(t, Entry{Old: "b.md", New: "c.md"}, table[1])
	assert.Equal(t, Entry{Old: "m.md", New: "n.md"}, table[2])
}

func TestTableUnmarshalRejectsNonMapping(t *testing.T) {
	var table Table
	err := yaml.Unmarshal([]byte("- a.md\n- b.md\n"), &table)
	assert.Error(t, err)
}
