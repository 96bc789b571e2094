package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnotateExecPaths(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		sourcePath string
		want       string
	}{
		{
			name:       "exec fence gets path attribute",
			in:         "```python exec=\"on\"\nrun()\n```\n",
			sourcePath: "guide/page.md",
			want:       "```python exec=\"on\" path=\"guide/page.md\"\nrun()\n```\n",
		},
		{
			name:       "fence without marker unchanged",
			in:         "```python\nrun()\n```\n",
			sourcePath: "guide/page.md",
			want:       "```python\nrun()\n```\n",
		},
		{
			name:       "already annotated fence unchanged",
			in:         "```python exec=\"on\" path=\"other.md\"\nrun()\n```\n",
			sourcePath: "guide/page.md",
			want:       "```python exec=\"on\" path=\"other.md\"\nrun()\n```\n",
		},
		{
			name:       "marker among other attributes",
			in:         "```js title=\"x\" exec=\"on\"\nf()\n```\n",
			sourcePath: "a/b.md",
			want:       "```js title=\"x\" exec=\"on\" path=\"a/b.md\"\nf()\n```\n",
		},
		{
			name:       "indented exec fence",
			in:         "  ```python exec=\"on\"\n  run()\n  ```\n",
			sourcePath: "p.md",
			want:       "  ```python exec=\"on\" path=\"p.md\"\n  run()\n  ```\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnnotateExecPaths(tt.in, tt.sourcePath))
		})
	}
}

func TestAnnotateExecPathsIdempotent(t *testing.T) {
	in := "```python exec=\"on\"\nrun()\n```\n"
	once := AnnotateExecPaths(in, "p.md")
	twice := AnnotateExecPaths(once, "p.md")
	assert.Equal(t, once, twice)
}

func TestStripBase64Images(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "embedded image removed",
			in:   "before\n![plot](data:image/png;base64,iVBORw0KGgo=)\nafter\n",
			want: "before\n\nafter\n",
		},
		{
			name: "normal image kept",
			in:   "![logo](images/logo.png)\n",
			want: "![logo](images/logo.png)\n",
		},
		{
			name: "no images",
			in:   "plain text\n",
			want: "plain text\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripBase64Images(tt.in))
		})
	}
}
