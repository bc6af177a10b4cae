// Package filetree holds the pure rules of the project file tree: path
// derivation, prefix rewriting on rename, and presentation ordering.
package filetree

import (
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Separator delimits path segments. Paths are absolute, e.g. "/src/main.ts".
const Separator = "/"

var ErrInvalidName = errors.New("name must be a single non-empty path segment")

// ValidateName checks that name can be used as one path segment.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.Contains(name, Separator) {
		return ErrInvalidName
	}
	return nil
}

// Join derives a node path from its parent's path. An empty parentPath means
// the node sits at the root.
func Join(parentPath, name string) string {
	return parentPath + Separator + name
}

// RewritePrefix moves p from under oldPrefix to under newPrefix by replacing
// its first len(oldPrefix) bytes. ok is false when p does not start with
// oldPrefix, in which case p is returned unchanged.
func RewritePrefix(p, oldPrefix, newPrefix string) (string, bool) {
	if !strings.HasPrefix(p, oldPrefix) {
		return p, false
	}
	return newPrefix + p[len(oldPrefix):], true
}

var languages = map[string]string{
	".ts":   "typescript",
	".tsx":  "typescript",
	".mts":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".css":  "css",
	".html": "html",
	".htm":  "html",
	".json": "json",
	".md":   "markdown",
	".py":   "python",
	".go":   "go",
}

// LanguageFor infers an editor language tag from the file extension.
func LanguageFor(name string) (string, bool) {
	lang, ok := languages[strings.ToLower(path.Ext(name))]
	return lang, ok
}
