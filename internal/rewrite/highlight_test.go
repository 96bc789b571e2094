package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single marker",
			in:   "```python\nx = 1\n# highlight-next-line\ny = 2\n```\n",
			want: "```python hl_lines=\"2\"\nx = 1\ny = 2\n```\n",
		},
		{
			name: "multiple markers",
			in:   "```python\n# highlight-next-line\nx = 1\ny = 2\n# highlight-next-line\nz = 3\n```\n",
			want: "```python hl_lines=\"1 3\"\nx = 1\ny = 2\nz = 3\n```\n",
		},
		{
			name: "marker points at following line",
			in:   "```python\nx = 1\ny = 2\n# highlight-next-line\nz = 3\n```\n",
			want: "```python hl_lines=\"3\"\nx = 1\ny = 2\nz = 3\n```\n",
		},
		{
			name: "consecutive markers count kept lines only",
			in:   "```python\n# highlight-next-line\n# highlight-next-line\nx = 1\n```\n",
			want: "```python hl_lines=\"1 1\"\nx = 1\n```\n",
		},
		{
			name: "generic marker for js",
			in:   "```js\nconst a = 1;\n// highlight-next-line\nconst b = 2;\n```\n",
			want: "```js hl_lines=\"2\"\nconst a = 1;\nconst b = 2;\n```\n",
		},
		{
			name: "py alias uses python marker",
			in:   "```py\n# highlight-next-line\nx = 1\n```\n",
			want: "```py hl_lines=\"1\"\nx = 1\n```\n",
		},
		{
			name: "existing attributes preserved before hl_lines",
			in:   "```python title=\"demo\"\n# highlight-next-line\nx = 1\n```\n",
			want: "```python title=\"demo\" hl_lines=\"1\"\nx = 1\n```\n",
		},
		{
			name: "no markers leaves fence unchanged",
			in:   "```python\nx = 1\ny = 2\n```\n",
			want: "```python\nx = 1\ny = 2\n```\n",
		},
		{
			name: "leading blank lines stripped",
			in:   "```python\n\n\n# highlight-next-line\nx = 1\n```\n",
			want: "```python hl_lines=\"1\"\nx = 1\n```\n",
		},
		{
			name: "indented fence",
			in:   "  ```python\n  # highlight-next-line\n  x = 1\n  ```\n",
			want: "  ```python hl_lines=\"1\"\n  x = 1\n  ```\n",
		},
		{
			name: "wrong marker style ignored",
			in:   "```python\n// highlight-next-line\nx = 1\n```\n",
			want: "```python\n// highlight-next-line\nx = 1\n```\n",
		},
		{
			name: "text outside fences untouched",
			in:   "# highlight-next-line\nnot code\n",
			want: "# highlight-next-line\nnot code\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HighlightComments(tt.in))
		})
	}
}

func TestHighlightCommentsIdempotent(t *testing.T) {
	in := "```python\nx = 1\n# highlight-next-line\ny = 2\n```\n"
	once := HighlightComments(in)
	twice := HighlightComments(once)
	assert.Equal(t, once, twice)
}

func TestHighlightCommentsSkipsExistingAttribute(t *testing.T) {
	in := "```python hl_lines=\"5\"\n# highlight-next-line\nx = 1\n```\n"
	assert.Equal(t, in, HighlightComments(in))
}
