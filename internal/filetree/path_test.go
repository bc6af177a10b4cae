package filetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoin(t *testing.T) {
	assert.Equal(t, "/src", Join("", "src"))
	assert.Equal(t, "/src/components/Button.tsx", Join("/src/components", "Button.tsx"))
}

func TestRewritePrefix(t *testing.T) {
	got, ok := RewritePrefix("/src/util.ts", "/src", "/lib")
	assert.True(t, ok)
	assert.Equal(t, "/lib/util.ts", got)

	got, ok = RewritePrefix("/src/a/b/c.ts", "/src/a", "/src/alpha")
	assert.True(t, ok)
	assert.Equal(t, "/src/alpha/b/c.ts", got)

	got, ok = RewritePrefix("/other/util.ts", "/src", "/lib")
	assert.False(t, ok)
	assert.Equal(t, "/other/util.ts", got)

	_, ok = RewritePrefix("/s", "/src", "/lib")
	assert.False(t, ok)
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"main.go", ".env", "a b"} {
		assert.NoError(t, ValidateName(name), name)
	}
	for _, name := range []string{"", ".", "..", "a/b", "/"} {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidName, name)
	}
}

func TestLanguageFor(t *testing.T) {
	lang, ok := LanguageFor("Button.TSX")
	assert.True(t, ok)
	assert.Equal(t, "typescript", lang)

	lang, ok = LanguageFor("README.md")
	assert.True(t, ok)
	assert.Equal(t, "markdown", lang)

	_, ok = LanguageFor("Makefile")
	assert.False(t, ok)
}
