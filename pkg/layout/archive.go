package layout

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/infraworks/subpack/pkg/manifest"
)

// Entry is a generated, in-memory archive member, e.g. the manifest CSV
// placed under 0_Admin.
type Entry struct {
	// Modified is the entry timestamp inside the archive.
	Modified time.Time
	// Path is the full package path of the entry.
	Path string
	// Data is the entry content.
	Data []byte
}

// WriteArchive writes the package ZIP at dest: every assigned row streamed
// from its source under root, plus the generated entries. Archive members are
// written in package-path order so identical inputs produce identical entry
// sequences. Duplicate paths fail with [ErrPackagingConflict].
func WriteArchive(ctx context.Context, dest, root string, rows []manifest.Row, extra []Entry) (err error) {
	type member struct {
		modified time.Time
		path     string
		source   string // Source file, empty for generated entries.
		data     []byte
	}

	members := make([]member, 0, len(rows)+len(extra))
	claimed := map[string]bool{}

	for _, r := range rows {
		if claimed[r.PackagePath] {
			return fmt.Errorf("%w: duplicate archive path %s", ErrPackagingConflict, r.PackagePath)
		}
		claimed[r.PackagePath] = true

		members = append(members, member{
			path:     r.PackagePath,
			source:   filepath.Join(root, filepath.FromSlash(r.RelPath)),
			modified: r.SourceModified,
		})
	}

	for _, e := range extra {
		if claimed[e.Path] {
			return fmt.Errorf("%w: duplicate archive path %s", ErrPackagingConflict, e.Path)
		}
		claimed[e.Path] = true

		members = append(members, member{
			path:     e.Path,
			data:     e.Data,
			modified: e.Modified,
		})
	}

	sort.Slice(members, func(a, b int) bool { return members[a].path < members[b].path })

	f, err := os.Create(dest) //nolint:gosec // G304: Destination from config/flags.
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close archive: %w", closeErr)
		}
	}()

	zw := zip.NewWriter(f)

	for _, m := range members {
		err := ctx.Err()
		if err != nil {
			return fmt.Errorf("write archive: %w", err)
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     m.path,
			Method:   zip.Deflate,
			Modified: m.modified.UTC(),
		})
		if err != nil {
			return fmt.Errorf("create archive entry %s: %w", m.path, err)
		}

		err = writeMember(w, m.source, m.data)
		if err != nil {
			return fmt.Errorf("write archive entry %s: %w", m.path, err)
		}
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}

	return nil
}

func writeMember(w io.Writer, source string, data []byte) error {
	if source == "" {
		_, err := w.Write(data)
		if err != nil {
			return fmt.Errorf("write data: %w", err)
		}

		return nil
	}

	f, err := os.Open(source) //nolint:gosec // G304: Path from the validated tree.
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file.

	_, err = io.Copy(w, f)
	if err != nil {
		return fmt.Errorf("copy source: %w", err)
	}

	return nil
}
