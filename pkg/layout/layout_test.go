package layout_test

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infraworks/subpack/pkg/layout"
	"github.com/infraworks/subpack/pkg/manifest"
)

func TestRootName(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		template    string
		designation string
		stage       string
		want        string
	}{
		"default template": {
			template:    "{Des}_{Stage}_IDM",
			designation: "1234567",
			stage:       "Stage2",
			want:        "1234567_Stage2_IDM",
		},
		"spaces sanitized": {
			template:    "{Des} {Stage} submittal",
			designation: "1234567",
			stage:       "Final",
			want:        "1234567_Final_submittal",
		},
		"empty designation": {
			template:    "{Des}_{Stage}_IDM",
			designation: "",
			stage:       "Stage1",
			want:        "_Stage1_IDM",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, layout.RootName(tc.template, tc.designation, tc.stage))
		})
	}
}

func TestAssign(t *testing.T) {
	t.Parallel()

	rows := []manifest.Row{
		{RelPath: "plans/1234567_Stage2_RD_PLAN_0001.pdf", Discipline: "RD"},
		{RelPath: "1234567_Stage2_GN_TITLE_0001.pdf", Discipline: "GN", Artifact: "title_sheet"},
		{RelPath: "Cover Letter.pdf"},
		{RelPath: "1234567_Stage2_PCF_Summary.pdf"},
		{RelPath: "calcs/drainage_calcs.xlsx"},
	}

	assigned, err := layout.Assign(rows, "1234567_Stage2_IDM")
	require.NoError(t, err)

	got := map[string]string{}
	for _, r := range assigned {
		got[r.RelPath] = r.PackagePath
	}

	assert.Equal(t, map[string]string{
		"plans/1234567_Stage2_RD_PLAN_0001.pdf": "1234567_Stage2_IDM/2_Plan_Set/RD/1234567_Stage2_RD_PLAN_0001.pdf",
		"1234567_Stage2_GN_TITLE_0001.pdf":      "1234567_Stage2_IDM/2_Plan_Set/GN/1234567_Stage2_GN_TITLE_0001.pdf",
		"Cover Letter.pdf":                      "1234567_Stage2_IDM/1_Cover_Letter/Cover Letter.pdf",
		"1234567_Stage2_PCF_Summary.pdf":        "1234567_Stage2_IDM/4_PCFS/1234567_Stage2_PCF_Summary.pdf",
		"calcs/drainage_calcs.xlsx":             "1234567_Stage2_IDM/3_Supporting_Docs/drainage_calcs.xlsx",
	}, got)

	// Sorted by package path.
	for n := 1; n < len(assigned); n++ {
		assert.Less(t, assigned[n-1].PackagePath, assigned[n].PackagePath)
	}
}

func TestAssign_Conflict(t *testing.T) {
	t.Parallel()

	rows := []manifest.Row{
		{RelPath: "a/report.pdf"},
		{RelPath: "b/report.pdf"},
	}

	_, err := layout.Assign(rows, "1234567_Stage2_IDM")
	require.ErrorIs(t, err, layout.ErrPackagingConflict)
	assert.Contains(t, err.Error(), "a/report.pdf")
	assert.Contains(t, err.Error(), "b/report.pdf")
}

func TestWriteArchive(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "sheet.pdf"), []byte("sheet content"), 0o600))

	rows := []manifest.Row{{
		RelPath:        "sheet.pdf",
		PackagePath:    "1234567_Stage2_IDM/2_Plan_Set/RD/sheet.pdf",
		SourceModified: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}}

	extra := []layout.Entry{{
		Path:     layout.AdminPath("1234567_Stage2_IDM", "manifest.csv"),
		Data:     []byte("package_path,checksum\n"),
		Modified: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}}

	dest := filepath.Join(t.TempDir(), "package.zip")
	require.NoError(t, layout.WriteArchive(context.Background(), dest, root, rows, extra))

	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer zr.Close() //nolint:errcheck // Test cleanup.

	require.Len(t, zr.File, 2)

	// Entries in package-path order: 0_Admin sorts before 2_Plan_Set.
	assert.Equal(t, "1234567_Stage2_IDM/0_Admin/manifest.csv", zr.File[0].Name)
	assert.Equal(t, "1234567_Stage2_IDM/2_Plan_Set/RD/sheet.pdf", zr.File[1].Name)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	defer rc.Close() //nolint:errcheck // Test cleanup.

	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "sheet content", string(content))
}

func TestWriteArchive_DuplicatePath(t *testing.T) {
	t.Parallel()

	rows := []manifest.Row{
		{RelPath: "a.pdf", PackagePath: "root/3_Supporting_Docs/a.pdf"},
		{RelPath: "b.pdf", PackagePath: "root/3_Supporting_Docs/a.pdf"},
	}

	err := layout.WriteArchive(context.Background(), filepath.Join(t.TempDir(), "p.zip"), t.TempDir(), rows, nil)
	require.ErrorIs(t, err, layout.ErrPackagingConflict)
}

func TestWriteArchive_Canceled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.pdf"), []byte("x"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := []manifest.Row{{RelPath: "a.pdf", PackagePath: "root/3_Supporting_Docs/a.pdf"}}

	err := layout.WriteArchive(ctx, filepath.Join(t.TempDir(), "p.zip"), root, rows, nil)
	require.ErrorIs(t, err, context.Canceled)
}
