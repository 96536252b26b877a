package validate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidIgnoreGlob is returned for malformed ignore patterns.
var ErrInvalidIgnoreGlob = errors.New("invalid ignore glob")

type ignorePattern struct {
	glob   string
	negate bool
}

// IgnoreSpec decides which project-relative paths are excluded from
// validation. Patterns are doublestar globs evaluated in order with
// gitignore-like semantics: the last matching pattern wins, and a leading
// "!" re-includes a previously ignored path. Patterns without a slash match
// against the base name as well as the full relative path.
type IgnoreSpec struct {
	patterns []ignorePattern
}

// NewIgnoreSpec builds an [IgnoreSpec] from glob patterns.
func NewIgnoreSpec(globs ...string) (*IgnoreSpec, error) {
	s := &IgnoreSpec{}

	for _, g := range globs {
		err := s.add(g)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// ParseIgnore reads an ignore file: one glob per line, "#" comments, blank
// lines skipped, "!" negation prefix.
func ParseIgnore(r io.Reader) (*IgnoreSpec, error) {
	s := &IgnoreSpec{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		err := s.add(line)
		if err != nil {
			return nil, err
		}
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("read ignore file: %w", err)
	}

	return s, nil
}

// LoadIgnore combines inline globs with the project's ignore file, if one
// exists. A missing ignore file is not an error.
func LoadIgnore(root, fileName string, globs ...string) (*IgnoreSpec, error) {
	s, err := NewIgnoreSpec(globs...)
	if err != nil {
		return nil, err
	}

	if fileName == "" {
		return s, nil
	}

	f, err := os.Open(filepath.Join(root, fileName)) //nolint:gosec // G304: Path from config.
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}

		return nil, fmt.Errorf("open ignore file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file.

	fileSpec, err := ParseIgnore(f)
	if err != nil {
		return nil, err
	}

	s.patterns = append(s.patterns, fileSpec.patterns...)

	return s, nil
}

func (s *IgnoreSpec) add(g string) error {
	negate := false
	if rest, ok := strings.CutPrefix(g, "!"); ok {
		negate = true
		g = rest
	}

	g = strings.TrimPrefix(g, "/")
	if !doublestar.ValidatePattern(g) {
		return fmt.Errorf("%w: %q", ErrInvalidIgnoreGlob, g)
	}

	s.patterns = append(s.patterns, ignorePattern{glob: g, negate: negate})

	return nil
}

// Match reports whether the project-relative path is ignored.
func (s *IgnoreSpec) Match(relPath string) bool {
	if s == nil {
		return false
	}

	relPath = filepath.ToSlash(relPath)
	base := relPath
	if idx := strings.LastIndexByte(relPath, '/'); idx >= 0 {
		base = relPath[idx+1:]
	}

	ignored := false

	for _, p := range s.patterns {
		target := relPath
		if !strings.Contains(p.glob, "/") {
			target = base
		}

		ok, err := doublestar.Match(p.glob, target)
		if err != nil || !ok {
			continue
		}

		ignored = !p.negate
	}

	return ignored
}

// Len returns the number of patterns in the spec.
func (s *IgnoreSpec) Len() int {
	if s == nil {
		return 0
	}

	return len(s.patterns)
}
