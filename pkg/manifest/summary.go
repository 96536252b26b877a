package manifest

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// Bucket accumulates a file count and byte total.
type Bucket struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}

// Totals summarizes a manifest: overall counts plus breakdowns by package
// folder, discipline, and file extension.
type Totals struct {
	ByFolder     map[string]Bucket `json:"byFolder"`
	ByDiscipline map[string]Bucket `json:"byDiscipline"`
	ByExtension  map[string]Bucket `json:"byExtension"`
	Files        int               `json:"files"`
	Bytes        int64             `json:"bytes"`
}

// Summarize computes [Totals] for the given rows. Folder is the first
// segment of the package path (or of the source path for unplaced rows).
func Summarize(rows []Row) Totals {
	t := Totals{
		ByFolder:     map[string]Bucket{},
		ByDiscipline: map[string]Bucket{},
		ByExtension:  map[string]Bucket{},
	}

	add := func(m map[string]Bucket, key string, size int64) {
		if key == "" {
			return
		}

		b := m[key]
		b.Files++
		b.Bytes += size
		m[key] = b
	}

	for _, r := range rows {
		t.Files++
		t.Bytes += r.Size

		p := r.PackagePath
		if p == "" {
			p = r.RelPath
		}

		folder := p
		if idx := strings.IndexByte(p, '/'); idx >= 0 {
			folder = p[:idx]
		}

		add(t.ByFolder, folder, r.Size)
		add(t.ByDiscipline, r.Discipline, r.Size)
		add(t.ByExtension, strings.ToLower(path.Ext(p)), r.Size)
	}

	return t
}

// String renders a one-line human readable summary, e.g. for log output.
func (t Totals) String() string {
	folders := make([]string, 0, len(t.ByFolder))
	for f := range t.ByFolder {
		folders = append(folders, f)
	}
	sort.Strings(folders)

	parts := make([]string, 0, len(folders))
	for _, f := range folders {
		b := t.ByFolder[f]
		parts = append(parts, fmt.Sprintf("%s: %d (%s)", f, b.Files, humanize.IBytes(uint64(b.Bytes)))) //nolint:gosec // G115: Sizes are non-negative.
	}

	return fmt.Sprintf("%d files, %s [%s]",
		t.Files, humanize.IBytes(uint64(t.Bytes)), strings.Join(parts, ", ")) //nolint:gosec // G115: Sizes are non-negative.
}
