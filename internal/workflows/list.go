package workflows

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/PolarWolf314/ordo/internal/editor"
	kerrors "github.com/PolarWolf314/ordo/internal/errors"
	"github.com/PolarWolf314/ordo/internal/suffix"
)

// ListOptions configures the list workflow.
type ListOptions struct {
	// Root is the directory relative patterns are resolved against.
	// Defaults to the working directory.
	Root string

	// Patterns are file paths, directories, or globs (with ** support).
	// When empty, every encrypted file under Root is listed.
	Patterns []string
}

// ListedFile describes one encrypted file found by List.
type ListedFile struct {
	Path        string `json:"path"`
	LogicalName string `json:"logical_name"`
	Format      string `json:"format"`
	Backend     string `json:"backend"`
}

// ListResult contains the outcome of a list operation.
type ListResult struct {
	Files []ListedFile
}

// List finds files whose names carry a recognized encrypted suffix. Nothing
// is decrypted and no passphrase is asked for.
//
// Listing always reads the local file system, regardless of env.Storage.
//
// Returns ErrFileNotFound if a literal path does not exist.
func List(env Env, opts ListOptions) (*ListResult, error) {
	policy := env.Config.Policy()
	backends := NewBackends(env.Config, env.Prompter, env.Log)

	root := opts.Root
	if root == "" {
		root = "."
	}

	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := resolveListPattern(policy, root, pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	env.Log.Debugf("Found %d encrypted files for patterns %v", len(paths), patterns)

	result := &ListResult{Files: make([]ListedFile, 0, len(paths))}
	for _, p := range paths {
		logical := policy.StripSuffix(p)
		result.Files = append(result.Files, ListedFile{
			Path:        p,
			LogicalName: logical,
			Format:      editor.DetectFormat(logical),
			Backend:     backends.For(p).Name(),
		})
	}
	return result, nil
}

func resolveListPattern(policy suffix.Policy, root, pattern string) ([]string, error) {
	abs := pattern
	if !filepath.IsAbs(pattern) {
		abs = filepath.Join(root, pattern)
	}

	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return globEncrypted(policy, filepath.Join(abs, "**", "*."+suffixAlternatives(policy)))
	}

	if strings.ContainsAny(pattern, "*?[{") {
		return globEncrypted(policy, abs)
	}

	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, pattern)
	}
	if !policy.HasSuffix(abs) {
		return nil, fmt.Errorf("%s has no encrypted suffix (expected one of %s)", pattern, strings.Join(policy.Suffixes(), ", "))
	}
	return []string{abs}, nil
}

func globEncrypted(policy suffix.Policy, pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	var files []string
	for _, m := range matches {
		if policy.HasSuffix(m) {
			files = append(files, m)
		}
	}
	return files, nil
}

// suffixAlternatives renders the policy as a doublestar alternation, e.g.
// "{ordo,pgp,gpg}".
func suffixAlternatives(policy suffix.Policy) string {
	return "{" + strings.Join(policy.Suffixes(), ",") + "}"
}
