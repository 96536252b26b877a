package config

import (
	"fmt"

	"github.com/infraworks/subpack/pkg/pattern"
)

// ConventionConfig describes one filename convention. Conventions are tried
// in document order; the first one that matches a filename claims it.
type ConventionConfig struct {
	// Enums narrows or extends the allowed values for enum fields, keyed by
	// field name, e.g. Discipline.
	Enums map[string][]string `json:"enums,omitempty" jsonschema:"title=Enum Values"`
	// Name identifies the convention in reports, e.g. "plan-sheets".
	Name string `json:"name" jsonschema:"title=Name"`
	// Artifact ties matched files to a stage artifact key, e.g. "cross_sections".
	Artifact string `json:"artifact,omitempty" jsonschema:"title=Artifact Key"`
	// Pattern is a placeholder pattern, e.g. "{Des}_{Stage}_{Discipline}_{SheetType}_{SheetRange}.{Ext}".
	Pattern string `json:"pattern,omitempty" jsonschema:"title=Filename Pattern"`
	// Regex is a verbatim regular expression with named groups. Mutually
	// exclusive with Pattern.
	Regex string `json:"regex,omitempty" jsonschema:"title=Filename Regex"`
	// Exceptions are exact filenames exempt from this convention.
	Exceptions []string `json:"exceptions,omitempty" jsonschema:"title=Exceptions"`
	// CaseInsensitive makes the pattern match regardless of letter case.
	CaseInsensitive bool `json:"caseInsensitive,omitempty" jsonschema:"title=Case Insensitive"`
}

// Compile builds the matcher for this convention using the provided cache.
// Extra options are applied after the convention's own, so callers can narrow
// enum fields per stage.
func (c *ConventionConfig) Compile(cache *pattern.Cache, extra ...pattern.Opt) (*pattern.Pattern, error) {
	opts := append(c.patternOpts(), extra...)

	if c.Regex != "" {
		p, err := pattern.FromRegexp(c.Name, c.Regex, opts...)
		if err != nil {
			return nil, fmt.Errorf("convention %q: %w", c.Name, err)
		}

		return p, nil
	}

	p, err := cache.Compile(c.Pattern, opts...)
	if err != nil {
		return nil, fmt.Errorf("convention %q: %w", c.Name, err)
	}

	return p, nil
}

func (c *ConventionConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("convention with pattern %q: name is required", c.Pattern)
	}

	switch {
	case c.Pattern == "" && c.Regex == "":
		return fmt.Errorf("convention %q: one of pattern or regex is required", c.Name)
	case c.Pattern != "" && c.Regex != "":
		return fmt.Errorf("convention %q: pattern and regex are mutually exclusive", c.Name)
	}

	_, err := c.Compile(pattern.NewCache())

	return err
}

func (c *ConventionConfig) patternOpts() []pattern.Opt {
	var opts []pattern.Opt

	for field, values := range c.Enums {
		opts = append(opts, pattern.WithEnumValues(field, values...))
	}

	if len(c.Exceptions) > 0 {
		opts = append(opts, pattern.WithExceptions(c.Exceptions...))
	}

	if c.CaseInsensitive {
		opts = append(opts, pattern.WithCaseInsensitive())
	}

	return opts
}

// DefaultConventions returns the IDM sheet and supporting document naming
// conventions used when the configuration defines none.
func DefaultConventions() []*ConventionConfig {
	return []*ConventionConfig{
		{
			Name:    "plan-sheets",
			Pattern: "{Des}_{Stage}_{Discipline}_{SheetType}_{SheetRange}.{Ext}",
		},
		{
			Name:    "supporting-docs",
			Pattern: "{Des}_{Stage}_{SheetType}.{Ext}",
		},
	}
}
