package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/bizdir/pkg/sanitizer"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("runs transforms in order", func(t *testing.T) {
		t.Parallel()
		got := sanitizer.Apply("  Hello  ", sanitizer.Trim, strings.ToUpper)
		assert.Equal(t, "HELLO", got)
	})

	t.Run("no transforms", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "x", sanitizer.Apply("x"))
	})

	t.Run("compose is reusable", func(t *testing.T) {
		t.Parallel()
		double := sanitizer.Compose(func(n int) int { return n * 2 })
		assert.Equal(t, 4, double(2))
		assert.Equal(t, 10, double(5))
	})
}

func TestTransforms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"trim", sanitizer.Trim, "\t a b \n", "a b"},
		{"collapse whitespace", sanitizer.CollapseWhitespace, " a \n\n b\t c ", "a b c"},
		{"control chars", sanitizer.RemoveControlChars, "a\x00b\x1bc\nd", "abc\nd"},
		{"strip html", sanitizer.StripHTML, "<b>too</b> &amp; expensive", "too & expensive"},
		{"free text", sanitizer.FreeText, "  <p>Moving\x00 to</p>\n\n another   provider ", "Moving to another provider"},
		{"free text empty", sanitizer.FreeText, " <br/> \n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}
