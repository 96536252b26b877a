package config

import (
	"fmt"
	"regexp"
)

// designationRE matches INDOT designation numbers, e.g. "2101845".
var designationRE = regexp.MustCompile(`^[0-9]{7}$`)

// ProjectConfig holds the submittal project metadata. The designation and
// route are stamped into the manifest and the package root folder name.
type ProjectConfig struct {
	// Designation is the seven digit project designation number.
	Designation string `json:"designation,omitempty" jsonschema:"title=Designation Number"`
	// Route is the state route or interstate designation, e.g. "SR 37".
	Route string `json:"route,omitempty" jsonschema:"title=Route"`
	// Description is a short human readable project description.
	Description string `json:"description,omitempty" jsonschema:"title=Description"`
	// District is the INDOT district responsible for the project.
	District string `json:"district,omitempty" jsonschema:"title=District"`
	// County is the primary county of the project limits.
	County string `json:"county,omitempty" jsonschema:"title=County"`
	// Submitter identifies who prepared the submittal.
	Submitter *SubmitterConfig `json:"submitter,omitempty" jsonschema:"title=Submitter"`
}

// SubmitterConfig identifies the engineer or firm preparing the submittal.
type SubmitterConfig struct {
	// Name is the preparer's full name.
	Name string `json:"name,omitempty" jsonschema:"title=Name"`
	// Organization is the design firm or agency unit.
	Organization string `json:"organization,omitempty" jsonschema:"title=Organization"`
	// Email is the preparer's contact address.
	Email string `json:"email,omitempty" jsonschema:"title=Email"`
}

func (c *ProjectConfig) EnsureDefaults() {
	if c.Submitter == nil {
		c.Submitter = &SubmitterConfig{}
	}
}

func (c *ProjectConfig) Validate() error {
	if c.Designation != "" && !designationRE.MatchString(c.Designation) {
		return fmt.Errorf("project designation %q: must be a seven digit number", c.Designation)
	}

	return nil
}
