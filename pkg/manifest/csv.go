package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"
)

// manifestHeader is the column order of the manifest CSV.
var manifestHeader = []string{
	"package_path",
	"relative_path",
	"size_bytes",
	"checksum_algorithm",
	"checksum",
	"discipline",
	"stage",
	"artifact",
	"source_modified_utc",
}

// registerHeader is the column order of the checksum register CSV. Keeping
// both paths lets the register be cross-checked against the manifest and
// against the source tree.
var registerHeader = []string{
	"algorithm",
	"checksum",
	"relative_path",
	"package_path",
}

// sortRows orders rows by package path, falling back to the source path for
// rows the layout has not placed yet.
func sortRows(rows []Row) []Row {
	out := append([]Row(nil), rows...)
	sort.Slice(out, func(a, b int) bool {
		ka, kb := out[a].PackagePath, out[b].PackagePath
		if ka == "" {
			ka = out[a].RelPath
		}
		if kb == "" {
			kb = out[b].RelPath
		}

		return ka < kb
	})

	return out
}

// WriteCSV writes the manifest rows as CSV, sorted by package path.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	err := cw.Write(manifestHeader)
	if err != nil {
		return fmt.Errorf("write manifest header: %w", err)
	}

	for _, r := range sortRows(rows) {
		record := []string{
			r.PackagePath,
			r.RelPath,
			strconv.FormatInt(r.Size, 10),
			string(r.Algorithm),
			r.Checksum,
			r.Discipline,
			r.Stage,
			r.Artifact,
			r.SourceModified.UTC().Format(time.RFC3339),
		}

		err := cw.Write(record)
		if err != nil {
			return fmt.Errorf("write manifest row: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush manifest: %w", err)
	}

	return nil
}

// WriteChecksumRegister writes the standalone checksum register CSV.
func WriteChecksumRegister(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	err := cw.Write(registerHeader)
	if err != nil {
		return fmt.Errorf("write register header: %w", err)
	}

	for _, r := range sortRows(rows) {
		err := cw.Write([]string{string(r.Algorithm), r.Checksum, r.RelPath, r.PackagePath})
		if err != nil {
			return fmt.Errorf("write register row: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush register: %w", err)
	}

	return nil
}
