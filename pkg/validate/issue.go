package validate

import (
	"fmt"
	"sort"
)

// Severity classifies how blocking an issue is. Errors block packaging,
// warnings do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// severityRank orders severities for sorting, most blocking first.
var severityRank = map[Severity]int{
	SeverityError:   0,
	SeverityWarning: 1,
}

// Category groups issues by the check that produced them.
type Category string

const (
	CategoryNaming           Category = "naming"
	CategoryMissingRequired  Category = "missing-required"
	CategoryMissingKeyword   Category = "missing-keyword"
	CategoryForbiddenKeyword Category = "forbidden-keyword"
	CategoryDuplicate        Category = "duplicate"
	CategoryStructural       Category = "structural"
)

// Issue is one validation finding. Subject is the file's project-relative
// path, or a synthetic subject like "artifact:title_sheet" for findings not
// tied to a single file.
type Issue struct {
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	Subject  string   `json:"subject"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", i.Severity, i.Code, i.Subject, i.Message)
}

// Issues is an ordered list of findings.
type Issues []Issue

// Normalize deduplicates issues by (severity, category, subject, code) and
// sorts them by severity, then subject, then category. The result is
// independent of the order issues were produced in.
func (is Issues) Normalize() Issues {
	type key struct {
		severity Severity
		category Category
		subject  string
		code     string
	}

	seen := map[key]bool{}
	out := make(Issues, 0, len(is))

	for _, i := range is {
		k := key{i.Severity, i.Category, i.Subject, i.Code}
		if seen[k] {
			continue
		}

		seen[k] = true
		out = append(out, i)
	}

	sort.SliceStable(out, func(a, b int) bool {
		ia, ib := out[a], out[b]
		if ia.Severity != ib.Severity {
			return severityRank[ia.Severity] < severityRank[ib.Severity]
		}
		if ia.Subject != ib.Subject {
			return ia.Subject < ib.Subject
		}

		return ia.Category < ib.Category
	})

	return out
}

// Count returns the number of issues with the given severity.
func (is Issues) Count(sev Severity) int {
	n := 0
	for _, i := range is {
		if i.Severity == sev {
			n++
		}
	}

	return n
}

// HasErrors reports whether any issue is blocking.
func (is Issues) HasErrors() bool {
	return is.Count(SeverityError) > 0
}

// Promote raises every warning to an error. Used by strict mode.
func (is Issues) Promote() Issues {
	out := make(Issues, len(is))
	for n, i := range is {
		if i.Severity == SeverityWarning {
			i.Severity = SeverityError
		}

		out[n] = i
	}

	return out.Normalize()
}
