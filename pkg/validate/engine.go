package validate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/infraworks/subpack/pkg/config"
	"github.com/infraworks/subpack/pkg/pattern"
	"github.com/infraworks/subpack/pkg/preset"
)

// ErrProjectNotFound is returned when the project root does not exist or is
// not a directory.
var ErrProjectNotFound = errors.New("project root not found")

// ProjectFile is one discovered file and everything validation learned about
// it.
type ProjectFile struct {
	// ModTime is the file's last modification time.
	ModTime time.Time `json:"modTime"`
	// Fields holds the placeholder values extracted by the matching convention.
	Fields map[string]string `json:"fields,omitempty"`
	// RelPath is the slash-separated path relative to the project root.
	RelPath string `json:"relPath"`
	// Convention names the convention that claimed this file.
	Convention string `json:"convention,omitempty"`
	// Discipline is the extracted discipline code, if any.
	Discipline string `json:"discipline,omitempty"`
	// Artifact is the stage artifact key this file satisfies, if any.
	Artifact string `json:"artifact,omitempty"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
	// Matched reports whether any convention claimed the file.
	Matched bool `json:"matched"`
	// Exception reports whether the file matched via an exceptions list.
	Exception bool `json:"exception,omitempty"`
}

// Rule is one compiled filename convention.
type Rule struct {
	Pattern *pattern.Pattern
	// Name identifies the convention in issues and reports.
	Name string
	// Artifact ties every file claimed by this rule to a stage artifact key.
	Artifact string
}

// CompileRules compiles the configured conventions into the ordered rule set
// for one stage. The Discipline placeholder is narrowed to the stage's
// discipline codes unless a convention overrides the enum itself.
func CompileRules(conventions []*config.ConventionConfig, req preset.StageRequirement, cache *pattern.Cache) ([]Rule, error) {
	var stageOpts []pattern.Opt
	if len(req.Disciplines) > 0 {
		stageOpts = append(stageOpts, pattern.WithEnumValues("Discipline", req.Disciplines...))
	}

	rules := make([]Rule, 0, len(conventions))

	for _, cc := range conventions {
		opts := stageOpts
		if _, ok := cc.Enums["Discipline"]; ok {
			opts = nil // The convention's own enum wins.
		}

		p, err := cc.Compile(cache, opts...)
		if err != nil {
			return nil, err
		}

		rules = append(rules, Rule{Pattern: p, Name: cc.Name, Artifact: cc.Artifact})
	}

	return rules, nil
}

// Engine applies a stage's rules to a project tree.
type Engine struct {
	scanner      Scanner
	scanExts     map[string]bool
	rules        []Rule
	forbidden    []string
	scanTimeout  time.Duration
	scanKeywords bool
}

// Opt configures an [Engine].
type Opt func(*Engine)

// WithScanner replaces the default keyword scanner.
func WithScanner(s Scanner) Opt {
	return func(e *Engine) {
		e.scanner = s
	}
}

// WithScanTimeout bounds the keyword scan per file.
func WithScanTimeout(d time.Duration) Opt {
	return func(e *Engine) {
		if d > 0 {
			e.scanTimeout = d
		}
	}
}

// WithScanExtensions sets the file extensions considered for keyword scans.
func WithScanExtensions(exts ...string) Opt {
	return func(e *Engine) {
		e.scanExts = map[string]bool{}
		for _, ext := range exts {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}

			e.scanExts[strings.ToLower(ext)] = true
		}
	}
}

// WithForbiddenKeywords adds phrases that must not appear in any scanned
// document, on top of the stage's own forbidden list. A hit is an error.
func WithForbiddenKeywords(kws ...string) Opt {
	return func(e *Engine) {
		e.forbidden = append(e.forbidden, kws...)
	}
}

// WithoutKeywordScan disables the keyword scan entirely.
func WithoutKeywordScan() Opt {
	return func(e *Engine) {
		e.scanKeywords = false
	}
}

// NewEngine creates an [Engine] for the given ordered rule set.
func NewEngine(rules []Rule, opts ...Opt) *Engine {
	e := &Engine{
		rules:        rules,
		scanner:      NewTextScanner(0),
		scanTimeout:  10 * time.Second,
		scanExts:     map[string]bool{".pdf": true, ".txt": true},
		scanKeywords: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Result is the outcome of one validation run.
type Result struct {
	// Files lists every discovered file, sorted by RelPath.
	Files []ProjectFile `json:"files"`
	// Issues lists the findings, deduplicated and sorted.
	Issues Issues `json:"issues"`
}

// Validate walks the project tree under root and applies the stage
// requirements. Per-file problems become [Issue] values; only a missing root
// or cancellation fail the run. On cancellation the partial result is
// returned alongside the wrapped context error.
func (e *Engine) Validate(ctx context.Context, root string, req preset.StageRequirement, ignore *IgnoreSpec) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, root)
	}

	files, issues := e.enumerate(root, ignore)

	sort.Slice(files, func(a, b int) bool { return files[a].RelPath < files[b].RelPath })

	for n := range files {
		err := ctx.Err()
		if err != nil {
			return &Result{Files: files, Issues: issues.Normalize()},
				fmt.Errorf("validate: %w", err)
		}

		issues = append(issues, e.matchFile(&files[n])...)
	}

	issues = append(issues, assignArtifacts(files, req)...)
	issues = append(issues, checkDisciplines(files, req)...)
	issues = append(issues, findDuplicates(files)...)
	issues = append(issues, findRangeOverlaps(files)...)

	keywordIssues, err := e.scanKeywordPhrases(ctx, root, files, req)
	issues = append(issues, keywordIssues...)
	if err != nil {
		return &Result{Files: files, Issues: issues.Normalize()},
			fmt.Errorf("validate: %w", err)
	}

	issues = issues.Normalize()

	slog.Debug("validated project",
		slog.String("root", root),
		slog.String("stage", req.Stage),
		slog.Int("files", len(files)),
		slog.Int("errors", issues.Count(SeverityError)),
		slog.Int("warnings", issues.Count(SeverityWarning)),
	)

	return &Result{Files: files, Issues: issues}, nil
}

// enumerate walks the tree, applying the ignore spec. Unreadable entries
// become structural issues rather than aborting the walk.
func (e *Engine) enumerate(root string, ignore *IgnoreSpec) ([]ProjectFile, Issues) {
	var (
		files  []ProjectFile
		issues Issues
	)

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if walkErr != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Category: CategoryStructural,
				Subject:  rel,
				Code:     "fs/unreadable",
				Message:  walkErr.Error(),
			})

			return nil
		}

		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if ignore.Match(rel) {
				return filepath.SkipDir
			}

			return nil
		}

		if ignore.Match(rel) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Category: CategoryStructural,
				Subject:  rel,
				Code:     "fs/unreadable",
				Message:  err.Error(),
			})

			return nil
		}

		files = append(files, ProjectFile{
			RelPath: rel,
			Size:    fi.Size(),
			ModTime: fi.ModTime().UTC(),
		})

		return nil
	})

	return files, issues
}

// matchFile applies the ordered rules to one file. The first rule that
// matches claims it.
func (e *Engine) matchFile(f *ProjectFile) Issues {
	base := filepath.Base(f.RelPath)

	for _, rule := range e.rules {
		res, ok := rule.Pattern.Match(base)
		if !ok {
			continue
		}

		f.Matched = true
		f.Exception = res.Exception
		f.Convention = rule.Name
		f.Fields = res.Fields
		f.Discipline = res.Fields["Discipline"]
		f.Artifact = rule.Artifact

		return nil
	}

	// Not matched. An exception filename with the wrong casing is almost
	// certainly intended, so soften it to a warning.
	for _, rule := range e.rules {
		if rule.Pattern.MatchesExceptionFold(base) {
			return Issues{{
				Severity: SeverityWarning,
				Category: CategoryNaming,
				Subject:  f.RelPath,
				Code:     "naming/exception-case",
				Message:  fmt.Sprintf("filename matches an exception for convention %q except for letter case", rule.Name),
			}}
		}
	}

	return Issues{{
		Severity: SeverityError,
		Category: CategoryNaming,
		Subject:  f.RelPath,
		Code:     "naming/no-match",
		Message:  "filename does not match any configured convention",
	}}
}

// assignArtifacts maps files to the stage's artifact keys via the artifact
// glob patterns, then reports required artifacts with no file.
func assignArtifacts(files []ProjectFile, req preset.StageRequirement) Issues {
	artifacts := make([]preset.Artifact, 0, len(req.Required)+len(req.Optional))
	artifacts = append(artifacts, req.Required...)
	artifacts = append(artifacts, req.Optional...)

	satisfied := map[string]bool{}

	for n := range files {
		f := &files[n]
		base := strings.ToUpper(filepath.Base(f.RelPath))

		if f.Artifact == "" {
			for _, a := range artifacts {
				if !matchArtifact(a.Pattern, base) {
					continue
				}

				f.Artifact = a.Key

				break
			}
		}

		if f.Artifact != "" {
			satisfied[f.Artifact] = true
		}
	}

	var issues Issues

	for _, a := range req.Required {
		if satisfied[a.Key] {
			continue
		}

		msg := fmt.Sprintf("no file matches %q", a.Pattern)
		if a.Description != "" {
			msg = fmt.Sprintf("%s (%s)", a.Description, msg)
		}

		issues = append(issues, Issue{
			Severity: SeverityError,
			Category: CategoryMissingRequired,
			Subject:  "artifact:" + a.Key,
			Code:     "artifact/missing",
			Message:  msg,
		})
	}

	return issues
}

// matchArtifact matches an upper-cased base name against an artifact glob.
// "|" separates alternative globs; brace groups are handled by the glob
// matcher itself.
func matchArtifact(pattern, upperBase string) bool {
	for _, alt := range strings.Split(pattern, "|") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}

		ok, err := doublestar.Match(strings.ToUpper(alt), upperBase)
		if err == nil && ok {
			return true
		}
	}

	return false
}

// checkDisciplines flags files whose extracted discipline code is outside the
// stage's expected set. Patterns narrowed to the stage enum can't produce
// these; regex conventions and custom enums can.
func checkDisciplines(files []ProjectFile, req preset.StageRequirement) Issues {
	if len(req.Disciplines) == 0 {
		return nil
	}

	expected := make(map[string]bool, len(req.Disciplines))
	for _, d := range req.Disciplines {
		expected[d] = true
	}

	var issues Issues

	for _, f := range files {
		if f.Discipline == "" || expected[f.Discipline] {
			continue
		}

		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Category: CategoryNaming,
			Subject:  f.RelPath,
			Code:     "discipline/unexpected",
			Message:  fmt.Sprintf("discipline %q is not expected for stage %s", f.Discipline, req.Stage),
		})
	}

	return issues
}

// revisionOf extracts the revision component of the duplicate key from the
// matched fields, in decreasing order of specificity.
func revisionOf(f ProjectFile) string {
	for _, name := range []string{"Revision", "SheetRange", "Number", "Sheet"} {
		if v := f.Fields[name]; v != "" {
			return v
		}
	}

	return ""
}

// findDuplicates groups files by (discipline, artifact, revision) and flags
// every file in a group except the winner. The winner is the latest modified
// file; ties go to the lexicographically larger path so reruns are stable.
func findDuplicates(files []ProjectFile) Issues {
	type dupKey struct {
		discipline string
		artifact   string
		revision   string
	}

	groups := map[dupKey][]ProjectFile{}

	for _, f := range files {
		if !f.Matched || f.Exception || f.Artifact == "" {
			continue
		}

		rev := revisionOf(f)
		if rev == "" {
			continue
		}

		k := dupKey{f.Discipline, f.Artifact, rev}
		groups[k] = append(groups[k], f)
	}

	var issues Issues

	for _, group := range groups {
		if len(group) < 2 {
			continue
		}

		winner := group[0]
		for _, f := range group[1:] {
			if f.ModTime.After(winner.ModTime) ||
				(f.ModTime.Equal(winner.ModTime) && f.RelPath > winner.RelPath) {
				winner = f
			}
		}

		for _, f := range group {
			if f.RelPath == winner.RelPath {
				continue
			}

			issues = append(issues, Issue{
				Severity: SeverityError,
				Category: CategoryDuplicate,
				Subject:  f.RelPath,
				Code:     "duplicate/superseded",
				Message:  fmt.Sprintf("superseded by %s", winner.RelPath),
			})
		}
	}

	return issues
}

// parseSheetRange parses a sheet range field, either a single number "12" or
// an inclusive span "12-18".
func parseSheetRange(v string) (int, int, bool) {
	lo, hi, spanned := strings.Cut(v, "-")

	start, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, false
	}

	if !spanned {
		return start, start, true
	}

	end, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, false
	}

	return start, end, true
}

// findRangeOverlaps flags sheet ranges that overlap within a discipline.
// Overlapping ranges usually mean two plan set slices cover the same sheets,
// which is suspicious but not always wrong, so these are warnings.
func findRangeOverlaps(files []ProjectFile) Issues {
	type span struct {
		file       ProjectFile
		start, end int
	}

	byDiscipline := map[string][]span{}

	for _, f := range files {
		if !f.Matched || f.Exception {
			continue
		}

		v := f.Fields["SheetRange"]
		if v == "" {
			continue
		}

		start, end, ok := parseSheetRange(v)
		if !ok {
			continue
		}

		byDiscipline[f.Discipline] = append(byDiscipline[f.Discipline], span{f, start, end})
	}

	var issues Issues

	for _, spans := range byDiscipline {
		if len(spans) < 2 {
			continue
		}

		sort.Slice(spans, func(a, b int) bool {
			if spans[a].start != spans[b].start {
				return spans[a].start < spans[b].start
			}

			return spans[a].end < spans[b].end
		})

		for n := 1; n < len(spans); n++ {
			prev, cur := spans[n-1], spans[n]
			if cur.start > prev.end {
				continue
			}

			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Category: CategoryDuplicate,
				Subject:  cur.file.RelPath,
				Code:     "sheets/overlap",
				Message: fmt.Sprintf("sheet range %s overlaps %s in %s",
					cur.file.Fields["SheetRange"], prev.file.Fields["SheetRange"], prev.file.RelPath),
			})
		}
	}

	return issues
}

// scanKeywordPhrases runs the document phrase scan. Each expected phrase must
// appear in at least one scanned document; a phrase found nowhere is a
// warning, as is any document that could not be scanned. Forbidden phrases
// are the inverse: any document containing one is an error, so every
// scannable file is read when a forbidden list is in effect.
func (e *Engine) scanKeywordPhrases(ctx context.Context, root string, files []ProjectFile, req preset.StageRequirement) (Issues, error) {
	forbidden := map[string]bool{}
	for _, kw := range e.forbidden {
		forbidden[kw] = true
	}
	for _, kw := range req.ForbiddenKeywords {
		forbidden[kw] = true
	}

	if !e.scanKeywords || e.scanner == nil || (len(req.Keywords) == 0 && len(forbidden) == 0) {
		return nil, nil
	}

	remaining := make(map[string]bool, len(req.Keywords))
	for _, kw := range req.Keywords {
		remaining[kw] = true
	}

	var issues Issues

	for _, f := range files {
		if len(remaining) == 0 && len(forbidden) == 0 {
			break
		}

		if !e.scanExts[strings.ToLower(filepath.Ext(f.RelPath))] {
			continue
		}

		err := ctx.Err()
		if err != nil {
			return issues, err
		}

		phrases := make([]string, 0, len(remaining)+len(forbidden))
		for kw := range remaining {
			phrases = append(phrases, kw)
		}
		for kw := range forbidden {
			if !remaining[kw] {
				phrases = append(phrases, kw)
			}
		}
		sort.Strings(phrases)

		scanCtx, cancel := context.WithTimeout(ctx, e.scanTimeout)
		found, err := e.scanner.ScanForKeywords(scanCtx, filepath.Join(root, filepath.FromSlash(f.RelPath)), phrases)
		cancel()

		var hits []string

		for _, kw := range found {
			delete(remaining, kw)

			if forbidden[kw] {
				hits = append(hits, kw)
			}
		}

		if len(hits) > 0 {
			sort.Strings(hits)
			issues = append(issues, Issue{
				Severity: SeverityError,
				Category: CategoryForbiddenKeyword,
				Subject:  f.RelPath,
				Code:     "keyword/forbidden",
				Message:  fmt.Sprintf("forbidden phrases present: %s", strings.Join(hits, ", ")),
			})
		}

		if err != nil {
			if ctx.Err() != nil {
				return issues, ctx.Err()
			}

			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Category: CategoryMissingKeyword,
				Subject:  f.RelPath,
				Code:     "keyword/scan-failed",
				Message:  err.Error(),
			})
		}
	}

	for kw := range remaining {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Category: CategoryMissingKeyword,
			Subject:  "keyword:" + kw,
			Code:     "keyword/not-found",
			Message:  fmt.Sprintf("expected phrase %q was not found in any scanned document", kw),
		})
	}

	return issues, nil
}
