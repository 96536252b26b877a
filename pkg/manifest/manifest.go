// Package manifest builds the package manifest: one checksummed row per
// deliverable file, CSV emission, and summary totals. Files carrying blocking
// validation errors never reach the manifest.
package manifest

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/infraworks/subpack/pkg/validate"
)

// Row is one manifest entry. PackagePath is empty until the layout mapper
// assigns archive locations.
type Row struct {
	// SourceModified is the source file's modification time in UTC.
	SourceModified time.Time `json:"sourceModified"`
	// PackagePath is the file's path inside the archive.
	PackagePath string `json:"packagePath,omitempty"`
	// RelPath is the source path relative to the project root.
	RelPath string `json:"relPath"`
	// Checksum is the hex digest of the file content.
	Checksum string `json:"checksum"`
	// Algorithm names the checksum algorithm.
	Algorithm Algorithm `json:"algorithm"`
	// Discipline is the extracted discipline code, if any.
	Discipline string `json:"discipline,omitempty"`
	// Stage is the submittal stage identifier.
	Stage string `json:"stage"`
	// Artifact is the stage artifact key the file satisfies, if any.
	Artifact string `json:"artifact,omitempty"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
}

// Builder computes manifest rows with bounded concurrent hashing.
type Builder struct {
	algo    Algorithm
	workers int
}

// Opt configures a [Builder].
type Opt func(*Builder)

// WithAlgorithm selects the checksum algorithm.
func WithAlgorithm(a Algorithm) Opt {
	return func(b *Builder) {
		b.algo = a
	}
}

// WithWorkers bounds concurrent hashing.
func WithWorkers(n int) Opt {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// NewBuilder creates a [Builder]. Defaults: sha256, GOMAXPROCS workers.
func NewBuilder(opts ...Opt) *Builder {
	b := &Builder{
		algo:    AlgorithmSHA256,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build hashes every eligible file and returns the manifest rows sorted by
// RelPath. Files that are the subject of a blocking issue are excluded; a
// file that cannot be hashed fails the build, since a package without its
// checksum register is not a package.
func (b *Builder) Build(ctx context.Context, root, stage string, files []validate.ProjectFile, issues validate.Issues) ([]Row, error) {
	blocked := map[string]bool{}
	for _, i := range issues {
		if i.Severity == validate.SeverityError {
			blocked[i.Subject] = true
		}
	}

	var eligible []validate.ProjectFile
	for _, f := range files {
		if blocked[f.RelPath] {
			continue
		}

		eligible = append(eligible, f)
	}

	rows := make([]Row, len(eligible))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for n, f := range eligible {
		g.Go(func() error {
			err := ctx.Err()
			if err != nil {
				return err //nolint:wrapcheck // Group context cancellation.
			}

			sum, err := b.algo.HashFile(filepath.Join(root, filepath.FromSlash(f.RelPath)))
			if err != nil {
				return fmt.Errorf("checksum %s: %w", f.RelPath, err)
			}

			rows[n] = Row{
				RelPath:        f.RelPath,
				Size:           f.Size,
				SourceModified: f.ModTime.UTC(),
				Checksum:       sum,
				Algorithm:      b.algo,
				Discipline:     f.Discipline,
				Stage:          stage,
				Artifact:       f.Artifact,
			}

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, fmt.Errorf("build manifest: %w", err)
	}

	sort.Slice(rows, func(a, b int) bool { return rows[a].RelPath < rows[b].RelPath })

	return rows, nil
}
