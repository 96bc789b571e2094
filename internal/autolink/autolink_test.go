package autolink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		scope string
		want  string
	}{
		{
			name:  "notebook link normalized",
			in:    "See [the guide](guide/intro.ipynb) for details.",
			scope: "python",
			want:  "See [the guide](guide/intro.md) for details.",
		},
		{
			name:  "notebook link with anchor",
			in:    "[section](guide/intro.ipynb#setup)",
			scope: "python",
			want:  "[section](guide/intro.md#setup)",
		},
		{
			name:  "matching scope prefix stripped",
			in:    "[api](@python/api/client.md)",
			scope: "python",
			want:  "[api](api/client.md)",
		},
		{
			name:  "non-matching scope kept",
			in:    "[api](@js/api/client.md)",
			scope: "python",
			want:  "[api](@js/api/client.md)",
		},
		{
			name:  "scoped notebook link gets both rewrites",
			in:    "[nb](@js/examples/demo.ipynb#run)",
			scope: "js",
			want:  "[nb](examples/demo.md#run)",
		},
		{
			name:  "external url untouched",
			in:    "[site](https://example.com/page.ipynb)",
			scope: "python",
			want:  "[site](https://example.com/page.ipynb)",
		},
		{
			name:  "mailto untouched",
			in:    "[mail](mailto:team@example.com)",
			scope: "python",
			want:  "[mail](mailto:team@example.com)",
		},
		{
			name:  "bare anchor untouched",
			in:    "[above](#section)",
			scope: "python",
			want:  "[above](#section)",
		},
		{
			name:  "image links rewritten too",
			in:    "![diagram](assets/flow.ipynb)",
			scope: "python",
			want:  "![diagram](assets/flow.md)",
		},
		{
			name:  "plain markdown link untouched",
			in:    "[page](other/page.md)",
			scope: "python",
			want:  "[page](other/page.md)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Default(tt.in, "current.md", tt.scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultMultipleLinks(t *testing.T) {
	in := "[a](x.ipynb) and [b](https://x.io) and [c](@python/y.md)"
	got, err := Default(in, "p.md", "python")
	require.NoError(t, err)
	assert.Equal(t, "[a](x.md) and [b](https://x.io) and [c](y.md)", got)
}
