package packager

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/infraworks/subpack/pkg/config"
	"github.com/infraworks/subpack/pkg/manifest"
	"github.com/infraworks/subpack/pkg/validate"
)

// Report is the machine readable outcome of a run. It is written to stdout
// by the CLI and embedded in the package as 0_Admin/report.json.
type Report struct {
	// GeneratedAt is the UTC time the report was produced.
	GeneratedAt time.Time `json:"generatedAt"`
	// Project echoes the project metadata from the configuration.
	Project *config.ProjectConfig `json:"project,omitempty"`
	// Totals summarizes the packaged contents. Nil for validate-only runs.
	Totals *manifest.Totals `json:"totals,omitempty"`
	// Stage is the stage identifier the run targeted.
	Stage string `json:"stage"`
	// StageName is the human readable preset name, when one applies.
	StageName string `json:"stageName,omitempty"`
	// Forms lists agency form references attached to the stage.
	Forms []string `json:"forms,omitempty"`
	// Issues holds every finding, normalized and sorted.
	Issues validate.Issues `json:"issues"`
	// Files is the number of files considered.
	Files int `json:"files"`
	// Errors is the number of blocking issues.
	Errors int `json:"errors"`
	// Warnings is the number of advisory issues.
	Warnings int `json:"warnings"`
	// Strict records whether warnings were promoted to errors.
	Strict bool `json:"strict"`
}

// Passed reports whether the run produced no blocking issues.
func (r *Report) Passed() bool {
	return r.Errors == 0
}

// JSON renders the report as indented JSON with a trailing newline.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	return append(data, '\n'), nil
}

// Write writes the JSON report to w.
func (r *Report) Write(w io.Writer) error {
	data, err := r.JSON()
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
