// Package preset resolves stage requirement configurations against the
// built-in IDM catalog. Resolution is a two-pass merge over typed, immutable
// values with an explicit precedence rule per field: overrides win on key
// collision, preset entries survive otherwise, and a leading "!" negation
// marker removes a preset entry outright.
package preset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPreset is returned when a stage references a preset that is not
// in the catalog.
var ErrUnknownPreset = errors.New("unknown preset")

// negationPrefix marks an override entry that removes the matching preset
// entry instead of adding one.
const negationPrefix = "!"

// Artifact describes one required or optional deliverable: a stable key and
// a case-insensitive glob over filenames. Alternatives may be separated with
// "|" or expressed with brace groups, e.g. "*{SIGN,LIGHT}*.pdf".
type Artifact struct {
	// Key identifies the artifact, e.g. "title_sheet".
	Key string `json:"key" jsonschema:"title=Artifact Key"`
	// Pattern is a glob matched against filenames, ignoring case.
	Pattern string `json:"pattern" jsonschema:"title=Filename Glob"`
	// Description is shown in reports when the artifact is missing.
	Description string `json:"description,omitempty" jsonschema:"title=Description"`
}

// StageConfig is the user-supplied configuration for one submittal stage,
// before resolution against the catalog.
type StageConfig struct {
	// InheritDefaults merges the preset's entries into this configuration.
	// Defaults to true when a preset is named.
	InheritDefaults *bool `json:"inheritDefaults,omitempty" jsonschema:"title=Inherit Defaults"`
	// Preset names a catalog entry to inherit from.
	Preset string `json:"preset,omitempty" jsonschema:"title=Preset"`
	// Required artifacts. A key of "!name" removes the preset entry "name".
	Required []Artifact `json:"required,omitempty" jsonschema:"title=Required Artifacts"`
	// Optional artifacts, same semantics as Required.
	Optional []Artifact `json:"optional,omitempty" jsonschema:"title=Optional Artifacts"`
	// Disciplines are the sheet discipline codes expected for this stage.
	Disciplines []string `json:"disciplines,omitempty" jsonschema:"title=Discipline Codes"`
	// Forms are agency form references carried into the report.
	Forms []string `json:"forms,omitempty" jsonschema:"title=Form References"`
	// Keywords are phrases expected somewhere in the scanned documents.
	Keywords []string `json:"keywords,omitempty" jsonschema:"title=Expected Keywords"`
	// ForbiddenKeywords are phrases that must not appear in any scanned
	// document, e.g. "DRAFT" on a final submittal.
	ForbiddenKeywords []string `json:"forbiddenKeywords,omitempty" jsonschema:"title=Forbidden Keywords"`
}

// StageRequirement is a fully resolved stage: the effective rule set the
// validation engine runs against. Immutable after resolution; required and
// optional artifact sets are disjoint.
type StageRequirement struct {
	Stage             string     `json:"stage"`
	Name              string     `json:"name,omitempty"`
	Description       string     `json:"description,omitempty"`
	Required          []Artifact `json:"required"`
	Optional          []Artifact `json:"optional"`
	Disciplines       []string   `json:"disciplines"`
	Forms             []string   `json:"forms"`
	Keywords          []string   `json:"keywords"`
	ForbiddenKeywords []string   `json:"forbiddenKeywords"`
	Preset            string     `json:"preset,omitempty"`
}

// Catalog maps stage identifiers to curated requirement presets.
type Catalog map[string]StageRequirement

// Resolve merges a stage configuration with the catalog into an effective
// [StageRequirement]. When cfg names no preset, or sets inheritDefaults to
// false, the configuration is used verbatim (negation markers are dropped,
// since there is nothing to negate). Fails with [ErrUnknownPreset] when the
// named preset is absent from the catalog.
func Resolve(stageID string, cfg StageConfig, catalog Catalog) (StageRequirement, error) {
	inherit := cfg.Preset != ""
	if cfg.InheritDefaults != nil {
		inherit = *cfg.InheritDefaults
	}

	if cfg.Preset == "" || !inherit {
		req := StageRequirement{
			Stage:             stageID,
			Required:          dropNegatedArtifacts(cfg.Required),
			Optional:          dropNegatedArtifacts(cfg.Optional),
			Disciplines:       dropNegatedStrings(cfg.Disciplines),
			Forms:             dropNegatedStrings(cfg.Forms),
			Keywords:          dropNegatedStrings(cfg.Keywords),
			ForbiddenKeywords: dropNegatedStrings(cfg.ForbiddenKeywords),
			Preset:            cfg.Preset,
		}

		return enforceDisjoint(req), nil
	}

	base, ok := catalog[cfg.Preset]
	if !ok {
		return StageRequirement{}, fmt.Errorf("%w: %q (have %v)", ErrUnknownPreset, cfg.Preset, catalog.Names())
	}

	req := StageRequirement{
		Stage:             stageID,
		Name:              base.Name,
		Description:       base.Description,
		Required:          mergeArtifacts(base.Required, cfg.Required),
		Optional:          mergeArtifacts(base.Optional, cfg.Optional),
		Disciplines:       mergeStrings(base.Disciplines, cfg.Disciplines),
		Forms:             mergeStrings(base.Forms, cfg.Forms),
		Keywords:          mergeStrings(base.Keywords, cfg.Keywords),
		ForbiddenKeywords: mergeStrings(base.ForbiddenKeywords, cfg.ForbiddenKeywords),
		Preset:            cfg.Preset,
	}

	return enforceDisjoint(req), nil
}

// mergeArtifacts overlays override artifacts onto preset artifacts. On key
// collision the override replaces the preset entry in full, in place; this
// deliberately never mixes fields from two unrelated rules. New keys are
// appended in override order. "!key" overrides remove the preset entry.
func mergeArtifacts(base, override []Artifact) []Artifact {
	removed := map[string]bool{}
	replace := map[string]Artifact{}

	var appended []Artifact

	baseKeys := map[string]bool{}
	for _, a := range base {
		baseKeys[a.Key] = true
	}

	for _, o := range override {
		if key, neg := strings.CutPrefix(o.Key, negationPrefix); neg {
			removed[key] = true
			continue
		}

		if baseKeys[o.Key] {
			replace[o.Key] = o
		} else {
			appended = append(appended, o)
		}
	}

	merged := make([]Artifact, 0, len(base)+len(appended))
	for _, a := range base {
		if removed[a.Key] {
			continue
		}
		if r, ok := replace[a.Key]; ok {
			a = r
		}

		merged = append(merged, a)
	}

	return append(merged, appended...)
}

// mergeStrings set-unions two string lists, preserving preset order followed
// by new override entries, minus values negated with "!".
func mergeStrings(base, override []string) []string {
	removed := map[string]bool{}

	var extra []string

	for _, o := range override {
		if v, neg := strings.CutPrefix(o, negationPrefix); neg {
			removed[v] = true
		} else {
			extra = append(extra, o)
		}
	}

	seen := map[string]bool{}
	merged := make([]string, 0, len(base)+len(extra))

	for _, v := range append(append([]string(nil), base...), extra...) {
		if removed[v] || seen[v] {
			continue
		}

		seen[v] = true
		merged = append(merged, v)
	}

	return merged
}

// enforceDisjoint removes from Optional any artifact whose key is also in
// Required. Required wins: listing an artifact as required is the stronger
// statement.
func enforceDisjoint(req StageRequirement) StageRequirement {
	required := map[string]bool{}
	for _, a := range req.Required {
		required[a.Key] = true
	}

	optional := make([]Artifact, 0, len(req.Optional))
	for _, a := range req.Optional {
		if required[a.Key] {
			continue
		}

		optional = append(optional, a)
	}

	req.Optional = optional

	return req
}

func dropNegatedArtifacts(artifacts []Artifact) []Artifact {
	out := make([]Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		if strings.HasPrefix(a.Key, negationPrefix) {
			continue
		}

		out = append(out, a)
	}

	return out
}

func dropNegatedStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.HasPrefix(v, negationPrefix) {
			continue
		}

		out = append(out, v)
	}

	return out
}
