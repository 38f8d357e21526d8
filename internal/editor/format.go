package editor

import (
	"path/filepath"
	"strings"
)

var formatsByExt = map[string]string{
	"md":       "markdown",
	"markdown": "markdown",
	"org":      "org",
	"txt":      "text",
	"json":     "json",
	"yaml":     "yaml",
	"yml":      "yaml",
	"toml":     "toml",
	"env":      "dotenv",
	"ini":      "ini",
	"go":       "go",
	"sh":       "shell",
}

// DetectFormat picks a content format from a file name, the way an editor
// picks a major mode. Unknown extensions map to their own name; no
// extension means plain text.
func DetectFormat(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return "text"
	}
	if f, ok := formatsByExt[ext]; ok {
		return f
	}
	return ext
}
