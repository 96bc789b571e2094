package apiref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitepipe/internal/config"
)

var testRefs = []config.APIReference{
	{Prefix: "mypkg", BaseURL: "https://example.com/ref/"},
	{Prefix: "otherpkg", BaseURL: "https://docs.other.io/api"},
}

func TestInjectorAppendsReferences(t *testing.T) {
	inject := NewInjector(testRefs)

	in := "```python\nimport mypkg\nmypkg.run()\n```\n"
	got, err := inject(in, "/abs/page.md")
	require.NoError(t, err)
	assert.Equal(t, "```python\nimport mypkg\nmypkg.run()\n```\nAPI reference: [mypkg](https://example.com/ref/mypkg/)\n", got)
}

func TestInjectorSubmodulePath(t *testing.T) {
	inject := NewInjector(testRefs)

	in := "```python\nfrom mypkg.sub.mod import thing\n```\n"
	got, err := inject(in, "/abs/page.md")
	require.NoError(t, err)
	assert.Contains(t, got, "[mypkg.sub.mod](https://example.com/ref/mypkg/sub/mod/)")
}

func TestInjectorMultipleImportsDeduplicated(t *testing.T) {
	inject := NewInjector(testRefs)

	in := "```python\nimport mypkg\nimport mypkg\nimport otherpkg\n```\n"
	got, err := inject(in, "/abs/page.md")
	require.NoError(t, err)
	assert.Contains(t, got, "API reference: [mypkg](https://example.com/ref/mypkg/), [otherpkg](https://docs.other.io/api/otherpkg/)")
}

func TestInjectorSkips(t *testing.T) {
	inject := NewInjector(testRefs)

	tests := []struct {
		name string
		in   string
	}{
		{"non-python fence", "```js\nimport mypkg from 'mypkg';\n```\n"},
		{"undocumented import", "```python\nimport sys\n```\n"},
		{"prefix must match whole segment", "```python\nimport mypkgextra\n```\n"},
		{"no fences", "import mypkg outside code\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := inject(tt.in, "/abs/page.md")
			require.NoError(t, err)
			assert.Equal(t, tt.in, got)
		})
	}
}

func TestInjectorNoRefsConfigured(t *testing.T) {
	inject := NewInjector(nil)

	in := "```python\nimport mypkg\n```\n"
	got, err := inject(in, "/abs/page.md")
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestInjectorIndentedFence(t *testing.T) {
	inject := NewInjector(testRefs)

	in := "  ```python\n  import mypkg\n  ```\n"
	got, err := inject(in, "/abs/page.md")
	require.NoError(t, err)
	assert.Contains(t, got, "  ```\n  API reference: [mypkg](https://example.com/ref/mypkg/)")
}
