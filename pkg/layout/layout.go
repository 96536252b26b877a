// Package layout maps validated deliverables onto the canonical IDM package
// structure and writes the final archive. Folder assignment is pure: the same
// rows always map to the same package paths.
package layout

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/infraworks/subpack/pkg/manifest"
)

// ErrPackagingConflict is returned when two files resolve to the same
// package path. The conflict is fatal: silently overwriting a deliverable
// inside the archive would defeat the checksum register.
var ErrPackagingConflict = errors.New("packaging conflict")

// Canonical package folders, in archive order.
const (
	FolderAdmin          = "0_Admin"
	FolderCoverLetter    = "1_Cover_Letter"
	FolderPlanSet        = "2_Plan_Set"
	FolderSupportingDocs = "3_Supporting_Docs"
	FolderPCFS           = "4_PCFS"
)

// RootName renders the archive root folder from the configured template,
// substituting {Des} and {Stage}. Characters that are awkward in folder
// names are replaced with underscores.
func RootName(template, designation, stage string) string {
	name := strings.NewReplacer(
		"{Des}", designation,
		"{Stage}", stage,
	).Replace(template)

	return sanitize(name)
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '.' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// AdminPath returns the package path of a generated admin artifact.
func AdminPath(rootName, name string) string {
	return path.Join(rootName, FolderAdmin, name)
}

// Assign fills in PackagePath for every row and returns the rows sorted by
// package path. Fails with [ErrPackagingConflict] when two rows collide.
func Assign(rows []manifest.Row, rootName string) ([]manifest.Row, error) {
	out := append([]manifest.Row(nil), rows...)
	claimed := map[string]string{}

	for n := range out {
		r := &out[n]
		base := path.Base(r.RelPath)
		r.PackagePath = path.Join(rootName, folderFor(*r, base), base)

		if prev, ok := claimed[r.PackagePath]; ok {
			return nil, fmt.Errorf("%w: %s and %s both map to %s",
				ErrPackagingConflict, prev, r.RelPath, r.PackagePath)
		}
		claimed[r.PackagePath] = r.RelPath
	}

	sort.Slice(out, func(a, b int) bool { return out[a].PackagePath < out[b].PackagePath })

	return out, nil
}

// folderFor picks the canonical folder for one deliverable.
func folderFor(r manifest.Row, base string) string {
	upper := strings.ToUpper(base)

	switch {
	case isCoverLetter(r.Artifact, upper):
		return FolderCoverLetter

	case isPCFS(r.Artifact, upper):
		return FolderPCFS

	case r.Discipline != "":
		return path.Join(FolderPlanSet, r.Discipline)

	default:
		return FolderSupportingDocs
	}
}

func isCoverLetter(artifact, upper string) bool {
	if artifact == "cover_letter" || artifact == "transmittal" {
		return true
	}

	return strings.Contains(upper, "COVER") && strings.Contains(upper, "LETTER")
}

func isPCFS(artifact, upper string) bool {
	if strings.Contains(artifact, "pcf") || strings.Contains(artifact, "certification") {
		return true
	}

	return strings.Contains(upper, "PCF")
}
