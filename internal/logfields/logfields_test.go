package logfields

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpers(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want string
	}{
		{"build id", BuildID("abc"), KeyBuildID, "abc"},
		{"stage", Stage("redirects"), KeyStage, "redirects"},
		{"outcome", Outcome("success"), KeyOutcome, "success"},
		{"page", Page("guide/a.md"), KeyPage, "guide/a.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.String())
		})
	}
}

func TestNumericHelpers(t *testing.T) {
	assert.Equal(t, int64(7), Pages(7).Value.Int64())
	assert.Equal(t, int64(3), Redirects(3).Value.Int64())
	assert.Equal(t, 12.5, DurationMS(12.5).Value.Float64())
}

func TestError(t *testing.T) {
	attr := Error(fmt.Errorf("boom"))
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, "boom", attr.Value.String())

	assert.Equal(t, "", Error(nil).Value.String())
}
