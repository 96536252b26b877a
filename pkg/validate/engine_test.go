package validate_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infraworks/subpack/pkg/config"
	"github.com/infraworks/subpack/pkg/pattern"
	"github.com/infraworks/subpack/pkg/preset"
	"github.com/infraworks/subpack/pkg/validate"
)

func stage2Requirement() preset.StageRequirement {
	return preset.StageRequirement{
		Stage: "Stage2",
		Required: []preset.Artifact{
			{Key: "title_sheet", Pattern: "*TITLE*.pdf", Description: "Title sheet."},
			{Key: "cross_sections", Pattern: "*XS*.pdf", Description: "Cross sections."},
		},
		Optional: []preset.Artifact{
			{Key: "drainage_design", Pattern: "*DRAIN*.pdf"},
		},
		Disciplines: []string{"GN", "RD", "XS"},
		Keywords:    []string{"STAGE 2"},
	}
}

func stage2Rules(t *testing.T, req preset.StageRequirement) []validate.Rule {
	t.Helper()

	rules, err := validate.CompileRules(config.DefaultConventions(), req, pattern.NewCache())
	require.NoError(t, err)

	return rules
}

func write(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func issueCodes(is validate.Issues) []string {
	codes := make([]string, 0, len(is))
	for _, i := range is {
		codes = append(codes, i.Code)
	}

	return codes
}

func TestEngine_Validate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, root, "1234567_Stage2_GN_TITLE_0001.pdf", "STAGE 2 title sheet")
	write(t, root, "1234567_Stage2_RD_XS_0001-0005.pdf", "cross sections")
	write(t, root, "scratch.tmp", "ignored")

	req := stage2Requirement()
	e := validate.NewEngine(stage2Rules(t, req))

	ignore, err := validate.NewIgnoreSpec("*.tmp")
	require.NoError(t, err)

	res, err := e.Validate(context.Background(), root, req, ignore)
	require.NoError(t, err)

	assert.Empty(t, res.Issues, "expected a clean run, got: %v", res.Issues)
	require.Len(t, res.Files, 2)

	title := res.Files[0]
	assert.Equal(t, "1234567_Stage2_GN_TITLE_0001.pdf", title.RelPath)
	assert.True(t, title.Matched)
	assert.Equal(t, "plan-sheets", title.Convention)
	assert.Equal(t, "GN", title.Discipline)
	assert.Equal(t, "title_sheet", title.Artifact)
	assert.Equal(t, "0001", title.Fields["SheetRange"])

	xs := res.Files[1]
	assert.Equal(t, "cross_sections", xs.Artifact)
	assert.Equal(t, "RD", xs.Discipline)
}

func TestEngine_Validate_Issues(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	// Title sheet present but no cross sections, plus an unnamed file.
	write(t, root, "1234567_Stage2_GN_TITLE_0001.pdf", "STAGE 2")
	write(t, root, "random-notes.docx", "notes")

	req := stage2Requirement()
	e := validate.NewEngine(stage2Rules(t, req))

	res, err := e.Validate(context.Background(), root, req, nil)
	require.NoError(t, err)

	codes := issueCodes(res.Issues)
	assert.Contains(t, codes, "naming/no-match")
	assert.Contains(t, codes, "artifact/missing")

	for _, i := range res.Issues {
		if i.Code == "artifact/missing" {
			assert.Equal(t, "artifact:cross_sections", i.Subject)
			assert.Equal(t, validate.SeverityError, i.Severity)
			assert.Contains(t, i.Message, "Cross sections.")
		}
	}
}

func TestEngine_Validate_ArtifactAlternatives(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	// No TITLE file; the cover sheet satisfies the second alternative.
	write(t, root, "1234567_Stage2_GN_COVER_0001.pdf", "cover sheet")

	req := preset.StageRequirement{
		Stage: "Stage2",
		Required: []preset.Artifact{
			{Key: "title_sheet", Pattern: "*TITLE*.pdf|*COVER*.pdf"},
		},
	}

	e := validate.NewEngine(stage2Rules(t, req), validate.WithoutKeywordScan())

	res, err := e.Validate(context.Background(), root, req, nil)
	require.NoError(t, err)

	assert.NotContains(t, issueCodes(res.Issues), "artifact/missing")
	require.Len(t, res.Files, 1)
	assert.Equal(t, "title_sheet", res.Files[0].Artifact)
}

func TestEngine_Validate_ForbiddenKeyword(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, root, "1234567_Stage2_GN_TITLE_0001.pdf", "STAGE 2 DRAFT title sheet")
	write(t, root, "1234567_Stage2_RD_XS_0001.pdf", "PRELIMINARY cross sections")

	req := stage2Requirement()
	req.ForbiddenKeywords = []string{"DRAFT"}

	// Stage and engine level lists are unioned.
	e := validate.NewEngine(stage2Rules(t, req), validate.WithForbiddenKeywords("PRELIMINARY"))

	res, err := e.Validate(context.Background(), root, req, nil)
	require.NoError(t, err)

	var hits validate.Issues
	for _, i := range res.Issues {
		if i.Category == validate.CategoryForbiddenKeyword {
			hits = append(hits, i)
		}
	}

	require.Len(t, hits, 2)
	assert.Equal(t, "1234567_Stage2_GN_TITLE_0001.pdf", hits[0].Subject)
	assert.Equal(t, validate.SeverityError, hits[0].Severity)
	assert.Equal(t, "keyword/forbidden", hits[0].Code)
	assert.Contains(t, hits[0].Message, "DRAFT")
	assert.Equal(t, "1234567_Stage2_RD_XS_0001.pdf", hits[1].Subject)
	assert.Contains(t, hits[1].Message, "PRELIMINARY")
	assert.True(t, res.Issues.HasErrors(), "forbidden phrases must block packaging")
}

func TestEngine_Validate_SheetRangeOverlap(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, root, "1234567_Stage2_GN_TITLE_0001.pdf", "STAGE 2")
	write(t, root, "1234567_Stage2_RD_XS_0001-0005.pdf", "sheets one through five")
	write(t, root, "1234567_Stage2_RD_XS_0004-0008.pdf", "sheets four through eight")
	// Same numbers in another discipline: ranges are grouped per discipline.
	write(t, root, "1234567_Stage2_XS_XS_0004-0008.pdf", "other discipline")

	req := stage2Requirement()
	e := validate.NewEngine(stage2Rules(t, req))

	res, err := e.Validate(context.Background(), root, req, nil)
	require.NoError(t, err)

	var overlaps validate.Issues
	for _, i := range res.Issues {
		if i.Code == "sheets/overlap" {
			overlaps = append(overlaps, i)
		}
	}

	require.Len(t, overlaps, 1)
	assert.Equal(t, validate.SeverityWarning, overlaps[0].Severity)
	assert.Equal(t, "1234567_Stage2_RD_XS_0004-0008.pdf", overlaps[0].Subject)
	assert.Contains(t, overlaps[0].Message, "0001-0005")
}

func TestEngine_Validate_Duplicates(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	newer := write(t, root, "1234567_Stage2_RD_XS_0001-0005.pdf", "v2")
	older := write(t, root, "plans/1234567_Stage2_RD_XS_0001-0005.pdf", "v1")
	write(t, root, "1234567_Stage2_GN_TITLE_0001.pdf", "STAGE 2")

	now := time.Now()
	require.NoError(t, os.Chtimes(older, now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(newer, now, now))

	req := stage2Requirement()
	e := validate.NewEngine(stage2Rules(t, req))

	res, err := e.Validate(context.Background(), root, req, nil)
	require.NoError(t, err)

	var dups validate.Issues
	for _, i := range res.Issues {
		if i.Category == validate.CategoryDuplicate {
			dups = append(dups, i)
		}
	}

	require.Len(t, dups, 1)
	assert.Equal(t, "plans/1234567_Stage2_RD_XS_0001-0005.pdf", dups[0].Subject)
	assert.Contains(t, dups[0].Message, "superseded by 1234567_Stage2_RD_XS_0001-0005.pdf")
}

func TestEngine_Validate_ExceptionCase(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, root, "cover letter.PDF", "transmittal")

	conventions := []*config.ConventionConfig{{
		Name:       "plan-sheets",
		Pattern:    "{Des}_{Stage}_{Discipline}_{SheetType}_{SheetRange}.{Ext}",
		Exceptions: []string{"Cover Letter.pdf"},
	}}

	req := preset.StageRequirement{Stage: "Stage1"}

	rules, err := validate.CompileRules(conventions, req, pattern.NewCache())
	require.NoError(t, err)

	e := validate.NewEngine(rules)

	res, err := e.Validate(context.Background(), root, req, nil)
	require.NoError(t, err)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, "naming/exception-case", res.Issues[0].Code)
	assert.Equal(t, validate.SeverityWarning, res.Issues[0].Severity)
}

func TestEngine_Validate_MissingKeyword(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, root, "1234567_Stage2_GN_TITLE_0001.pdf", "no stage marker here")
	write(t, root, "1234567_Stage2_RD_XS_0001.pdf", "sections")

	req := stage2Requirement()
	e := validate.NewEngine(stage2Rules(t, req))

	res, err := e.Validate(context.Background(), root, req, nil)
	require.NoError(t, err)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, validate.Issue{
		Severity: validate.SeverityWarning,
		Category: validate.CategoryMissingKeyword,
		Subject:  "keyword:STAGE 2",
		Code:     "keyword/not-found",
		Message:  `expected phrase "STAGE 2" was not found in any scanned document`,
	}, res.Issues[0])
}

type failingScanner struct{}

func (failingScanner) ScanForKeywords(context.Context, string, []string) ([]string, error) {
	return nil, errors.New("scan exploded")
}

func TestEngine_Validate_ScanFailureIsWarning(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, root, "1234567_Stage2_GN_TITLE_0001.pdf", "STAGE 2")
	write(t, root, "1234567_Stage2_RD_XS_0001.pdf", "sections")

	req := stage2Requirement()
	e := validate.NewEngine(stage2Rules(t, req), validate.WithScanner(failingScanner{}))

	res, err := e.Validate(context.Background(), root, req, nil)
	require.NoError(t, err)

	codes := issueCodes(res.Issues)
	assert.Contains(t, codes, "keyword/scan-failed")
	assert.Contains(t, codes, "keyword/not-found")
	assert.False(t, res.Issues.HasErrors(), "scan failures must stay warnings")
}

func TestEngine_Validate_Canceled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, root, "1234567_Stage2_GN_TITLE_0001.pdf", "STAGE 2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := stage2Requirement()
	e := validate.NewEngine(stage2Rules(t, req))

	res, err := e.Validate(ctx, root, req, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res, "partial results are returned on cancellation")
	assert.Len(t, res.Files, 1)
}

func TestEngine_Validate_MissingRoot(t *testing.T) {
	t.Parallel()

	req := stage2Requirement()
	e := validate.NewEngine(stage2Rules(t, req))

	_, err := e.Validate(context.Background(), filepath.Join(t.TempDir(), "nope"), req, nil)
	require.ErrorIs(t, err, validate.ErrProjectNotFound)
}

func TestEngine_Validate_Deterministic(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, root, "b/1234567_Stage2_RD_XS_0002.pdf", "x")
	write(t, root, "a/1234567_Stage2_RD_XS_0001.pdf", "x")
	write(t, root, "junk1.bin", "x")
	write(t, root, "junk2.bin", "x")

	req := stage2Requirement()
	e := validate.NewEngine(stage2Rules(t, req), validate.WithoutKeywordScan())

	first, err := e.Validate(context.Background(), root, req, nil)
	require.NoError(t, err)

	second, err := e.Validate(context.Background(), root, req, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Issues, second.Issues)
	assert.Equal(t, first.Files, second.Files)
}
