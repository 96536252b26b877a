// Package packager orchestrates a full submittal run: resolve the stage
// requirements, compile the filename conventions, validate the project tree,
// build the checksummed manifest, map files onto the package layout, and
// write the archive with its generated admin artifacts.
package packager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/infraworks/subpack/pkg/config"
	"github.com/infraworks/subpack/pkg/layout"
	"github.com/infraworks/subpack/pkg/log"
	"github.com/infraworks/subpack/pkg/manifest"
	"github.com/infraworks/subpack/pkg/pattern"
	"github.com/infraworks/subpack/pkg/preset"
	"github.com/infraworks/subpack/pkg/validate"
)

// ErrValidationFailed is returned by [Packager.Package] when blocking issues
// prevent packaging. The report carries the issues.
var ErrValidationFailed = errors.New("validation failed")

// Packager runs the validation and packaging pipeline for one project.
type Packager struct {
	cfg     *config.Config
	cache   *pattern.Cache
	scanner validate.Scanner
	runLog  *log.CircularBuffer
	strict  bool
}

// Opt configures a [Packager].
type Opt func(*Packager)

// WithStrict promotes warnings to blocking errors.
func WithStrict() Opt {
	return func(p *Packager) {
		p.strict = true
	}
}

// WithScanner replaces the default keyword scanner.
func WithScanner(s validate.Scanner) Opt {
	return func(p *Packager) {
		p.scanner = s
	}
}

// WithRunLog captures the given log buffer as 0_Admin/run.log in the
// package.
func WithRunLog(buf *log.CircularBuffer) Opt {
	return func(p *Packager) {
		p.runLog = buf
	}
}

// New creates a [Packager] for the given configuration.
func New(cfg *config.Config, opts ...Opt) *Packager {
	cfg.EnsureDefaults()

	p := &Packager{
		cfg:   cfg,
		cache: pattern.NewCache(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Validate runs validation only and returns the report. The error is non-nil
// only for fatal conditions (bad config, missing root, cancellation); issues
// are carried in the report.
func (p *Packager) Validate(ctx context.Context, root, stageID string) (*Report, error) {
	req, res, err := p.run(ctx, root, stageID)
	if err != nil {
		return nil, err
	}

	return p.report(req, res, nil), nil
}

// Package validates and, when nothing blocks, writes the archive at dest.
// Returns the report together with [ErrValidationFailed] when blocking
// issues exist.
func (p *Packager) Package(ctx context.Context, root, stageID, dest string) (*Report, error) {
	req, res, err := p.run(ctx, root, stageID)
	if err != nil {
		return nil, err
	}

	if res.Issues.HasErrors() {
		return p.report(req, res, nil), fmt.Errorf("%w: %d blocking issues",
			ErrValidationFailed, res.Issues.Count(validate.SeverityError))
	}

	algo, err := manifest.ParseAlgorithm(p.cfg.Packaging.ChecksumAlgorithm)
	if err != nil {
		return nil, err
	}

	builder := manifest.NewBuilder(
		manifest.WithAlgorithm(algo),
		manifest.WithWorkers(p.cfg.Packaging.Workers),
	)

	rows, err := builder.Build(ctx, root, stageID, res.Files, res.Issues)
	if err != nil {
		return p.report(req, res, nil), err
	}

	rootName := layout.RootName(p.cfg.Packaging.RootName, p.cfg.Project.Designation, stageID)

	rows, err = layout.Assign(rows, rootName)
	if err != nil {
		return p.report(req, res, nil), err
	}

	report := p.report(req, res, rows)

	entries, err := p.adminEntries(rootName, rows, report)
	if err != nil {
		return report, err
	}

	err = layout.WriteArchive(ctx, dest, root, rows, entries)
	if err != nil {
		return report, err
	}

	slog.Info("wrote package",
		slog.String("dest", dest),
		slog.String("root", rootName),
		slog.String("contents", report.Totals.String()),
	)

	return report, nil
}

// run executes the shared validation front half of both entry points.
func (p *Packager) run(ctx context.Context, root, stageID string) (preset.StageRequirement, *validate.Result, error) {
	req, err := p.cfg.StageRequirement(stageID)
	if err != nil {
		return preset.StageRequirement{}, nil, err
	}

	rules, err := validate.CompileRules(p.cfg.Conventions, req, p.cache)
	if err != nil {
		return preset.StageRequirement{}, nil, err
	}

	ignore, err := validate.LoadIgnore(root, p.cfg.Checks.IgnoreFile, p.cfg.Checks.Ignore...)
	if err != nil {
		return preset.StageRequirement{}, nil, err
	}

	kw := p.cfg.Checks.Keywords

	opts := []validate.Opt{
		validate.WithScanTimeout(kw.TimeoutDuration()),
		validate.WithScanExtensions(kw.Extensions...),
		validate.WithForbiddenKeywords(kw.Forbidden...),
	}
	if !*kw.Enabled {
		opts = append(opts, validate.WithoutKeywordScan())
	}
	if p.scanner != nil {
		opts = append(opts, validate.WithScanner(p.scanner))
	} else {
		opts = append(opts, validate.WithScanner(validate.NewTextScanner(kw.MaxScanBytes)))
	}

	engine := validate.NewEngine(rules, opts...)

	res, err := engine.Validate(ctx, root, req, ignore)
	if err != nil {
		return preset.StageRequirement{}, nil, err
	}

	if p.strict {
		res.Issues = res.Issues.Promote()
	}

	return req, res, nil
}

// adminEntries renders the generated 0_Admin artifacts: the manifest CSV,
// the checksum register, the machine readable report, and the captured run
// log when one is attached.
func (p *Packager) adminEntries(rootName string, rows []manifest.Row, report *Report) ([]layout.Entry, error) {
	stamp := report.GeneratedAt

	var manifestBuf bytes.Buffer

	err := manifest.WriteCSV(&manifestBuf, rows)
	if err != nil {
		return nil, err
	}

	var registerBuf bytes.Buffer

	err = manifest.WriteChecksumRegister(&registerBuf, rows)
	if err != nil {
		return nil, err
	}

	reportJSON, err := report.JSON()
	if err != nil {
		return nil, err
	}

	entries := []layout.Entry{
		{Path: layout.AdminPath(rootName, "manifest.csv"), Data: manifestBuf.Bytes(), Modified: stamp},
		{Path: layout.AdminPath(rootName, "checksums.csv"), Data: registerBuf.Bytes(), Modified: stamp},
		{Path: layout.AdminPath(rootName, "report.json"), Data: reportJSON, Modified: stamp},
	}

	if p.runLog != nil && p.runLog.Size() > 0 {
		var logBuf bytes.Buffer

		_, err := p.runLog.WriteTo(&logBuf)
		if err != nil {
			return nil, fmt.Errorf("capture run log: %w", err)
		}

		entries = append(entries, layout.Entry{
			Path:     layout.AdminPath(rootName, "run.log"),
			Data:     logBuf.Bytes(),
			Modified: stamp,
		})
	}

	return entries, nil
}

func (p *Packager) report(req preset.StageRequirement, res *validate.Result, rows []manifest.Row) *Report {
	r := &Report{
		GeneratedAt: time.Now().UTC(),
		Project:     p.cfg.Project,
		Stage:       req.Stage,
		StageName:   req.Name,
		Forms:       req.Forms,
		Issues:      res.Issues,
		Files:       len(res.Files),
		Errors:      res.Issues.Count(validate.SeverityError),
		Warnings:    res.Issues.Count(validate.SeverityWarning),
		Strict:      p.strict,
	}

	if rows != nil {
		totals := manifest.Summarize(rows)
		r.Totals = &totals
	}

	return r
}
