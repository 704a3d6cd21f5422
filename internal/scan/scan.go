package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathNotFound is returned when the root does not exist or is not a
// directory.
var ErrPathNotFound = errors.New("path not found")

// DefaultExtensions is the allow-set used when Options.Extensions is empty.
var DefaultExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".html", ".css"}

// DefaultExcludeDirs is the deny-set used when Options.ExcludeDirs is nil.
var DefaultExcludeDirs = []string{"node_modules", "dist", "build", ".git", ".vscode", "out"}

// Options controls which files Files returns.
type Options struct {
	// Extensions with or without the leading dot; compared case-insensitively.
	Extensions []string
	// ExcludeDirs are directory names pruned wherever they occur.
	ExcludeDirs []string
	// Exclude holds glob patterns matched against the slash-separated path
	// relative to the root.
	Exclude []string
}

func (o Options) withDefaults() Options {
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultExtensions
	}
	if o.ExcludeDirs == nil {
		o.ExcludeDirs = DefaultExcludeDirs
	}
	return o
}

// Files walks root depth-first and returns the absolute paths of eligible
// files. Entries within a directory are visited in lexical order, so the
// result is deterministic.
func Files(root string, opts Options) ([]string, error) {
	opts = opts.withDefaults()

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrPathNotFound, root)
	}

	exts := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	deny := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		deny[d] = true
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// An unreadable subdirectory is skipped; only the root is required.
			if path != abs && d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if path != abs && deny[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if len(opts.Exclude) > 0 {
			rel, relErr := filepath.Rel(abs, path)
			if relErr == nil && MatchesAny(filepath.ToSlash(rel), opts.Exclude) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// MatchesAny reports whether the slash-separated path matches any pattern.
// A leading "**/" matches at any depth; other patterns use filepath.Match
// semantics, where "*" does not cross a separator except as the final
// "/**" suffix, which matches everything below a directory.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchGlob(pattern, path) {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if clean == pattern {
			continue
		}
		if matchGlob(clean, path) || matchGlob(clean, filepath.Base(path)) {
			return true
		}
		// "**/dir/**" also matches dir nested below the root.
		parts := strings.Split(path, "/")
		for i := 1; i < len(parts); i++ {
			if matchGlob(clean, strings.Join(parts[i:], "/")) {
				return true
			}
		}
	}
	return false
}

func matchGlob(pattern, path string) bool {
	if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
		if path == dir || strings.HasPrefix(path, dir+"/") {
			return true
		}
		if m, err := filepath.Match(dir, path); err == nil && m {
			return true
		}
		if i := strings.Index(path, "/"); i > 0 {
			if m, err := filepath.Match(dir, path[:i]); err == nil && m && !strings.Contains(dir, "/") {
				return true
			}
		}
	}
	m, err := filepath.Match(pattern, path)
	return err == nil && m
}
