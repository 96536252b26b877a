package preset

import "sort"

// Builtin is the curated catalog of IDM stage requirement presets. The
// contents mirror the Indiana Design Manual submittal checklists; they are
// configuration data, not logic, and user overrides can extend or trim them
// per stage.
var Builtin = Catalog{
	"Stage1": {
		Stage:       "Stage1",
		Name:        "Stage 1 - Preliminary Field Check",
		Description: "Early plan development package used for the preliminary field check review.",
		Required: []Artifact{
			{Key: "title_sheet", Pattern: "*TITLE*.pdf", Description: "Title sheet with designation, route, project limits, and PE seal block."},
			{Key: "index_sheet", Pattern: "*INDEX*.pdf", Description: "Plan index identifying drawing sequence and sheet totals."},
			{Key: "typical_sections", Pattern: "*TYP*.pdf", Description: "Typical section sheets covering each roadway segment."},
			{Key: "plan_and_profile", Pattern: "*PLAN*PROFILE*.pdf", Description: "Combined plan and profile depicting horizontal and vertical control."},
			{Key: "preliminary_quantities", Pattern: "*QTY*.pdf", Description: "Summary of preliminary quantities with pay item numbers."},
		},
		Optional: []Artifact{
			{Key: "structure_concepts", Pattern: "*STRUCT*.pdf", Description: "Structure layout sheets or bridge concept report attachments."},
			{Key: "traffic_memorandum", Pattern: "*TRAFFIC*.pdf", Description: "Supporting traffic engineering memorandum or capacity worksheets."},
		},
		Disciplines: []string{"GN", "TS", "PL", "RD", "TMP", "BR"},
		Forms: []string{
			"Form IC-701 Preliminary Field Check Transmittal",
			"Form IC-730 Stage 1 Quantities Checklist",
		},
		Keywords: []string{"STAGE 1", "PRELIMINARY", "FIELD CHECK"},
	},
	"Stage2": {
		Stage:       "Stage2",
		Name:        "Stage 2 - Design Development",
		Description: "Approximately 60 percent design deliverable used for design development review.",
		Required: []Artifact{
			{Key: "title_sheet", Pattern: "*TITLE*.pdf", Description: "Title sheet updated with design development revision block."},
			{Key: "index_sheet", Pattern: "*INDEX*.pdf", Description: "Updated plan index reflecting added sheet series."},
			{Key: "plan_and_profile", Pattern: "*PLAN*PROFILE*.pdf", Description: "Plan and profile sheets with design speeds, superelevation, and references."},
			{Key: "cross_sections", Pattern: "*XS*.pdf", Description: "Cross section sheets covering the entire project limits."},
			{Key: "traffic_control", Pattern: "*MOT*.pdf", Description: "Maintenance of traffic / traffic control plan set."},
			{Key: "drainage_design", Pattern: "*DRAIN*.pdf", Description: "Drainage layout, structure sizing summaries, and hydraulics computations."},
			{Key: "quantity_summary", Pattern: "*QTY*.pdf", Description: "Updated quantity summary and cost estimate."},
		},
		Optional: []Artifact{
			{Key: "lighting_signing", Pattern: "*{SIGN,LIGHT}*.pdf", Description: "Signing and lighting layouts if applicable."},
			{Key: "environmental_commitments", Pattern: "*ENV*.pdf", Description: "Environmental commitments status report."},
		},
		Disciplines: []string{"GN", "TS", "RD", "XS", "TMP", "DR", "SG", "LT"},
		Forms: []string{
			"Form IC-702 Stage 2 Transmittal",
			"Form IC-733 Stage 2 Design Development Checklist",
		},
		Keywords: []string{"STAGE 2", "DESIGN DEVELOPMENT"},
	},
	"Stage3": {
		Stage:       "Stage3",
		Name:        "Stage 3 - Final Check Plans",
		Description: "Ninety percent design package used for the final check review.",
		Required: []Artifact{
			{Key: "title_sheet", Pattern: "*TITLE*.pdf", Description: "Title sheet with final check signature and revision history."},
			{Key: "index_sheet", Pattern: "*INDEX*.pdf", Description: "Complete plan index cross-referencing sheet numbering."},
			{Key: "plan_and_profile", Pattern: "*PLAN*PROFILE*.pdf", Description: "Plan and profile sheets incorporating final horizontal and vertical control."},
			{Key: "cross_sections", Pattern: "*XS*.pdf", Description: "Cross sections annotated with earthwork quantities and slope limits."},
			{Key: "traffic_control", Pattern: "*MOT*.pdf", Description: "Maintenance of traffic / traffic control plans including detours."},
			{Key: "signing_and_marking", Pattern: "*{SIGN,MARKING}*.pdf", Description: "Signing and pavement marking sheets."},
			{Key: "special_provisions", Pattern: "*SP*.pdf", Description: "Draft special provisions and unique project requirements."},
			{Key: "final_quantities", Pattern: "*QTY*.pdf", Description: "Final quantity book and cost estimate."},
		},
		Optional: []Artifact{
			{Key: "utility_coordination", Pattern: "*UTILITY*.pdf", Description: "Utility coordination status, agreements, and conflict matrix."},
			{Key: "right_of_way", Pattern: "*ROW*.pdf", Description: "Right-of-way plans or parcel status summary."},
		},
		Disciplines: []string{"GN", "RD", "XS", "TMP", "SG", "MK", "UT", "RW"},
		Forms: []string{
			"Form IC-703 Stage 3 Transmittal",
			"Form IC-735 Final Check QA Checklist",
		},
		Keywords: []string{"STAGE 3", "FINAL CHECK"},
	},
	"Final": {
		Stage:       "Final",
		Name:        "Final Tracings / RFC",
		Description: "Release for construction deliverable with sealed plans and letting forms.",
		Required: []Artifact{
			{Key: "title_sheet", Pattern: "*TITLE*.pdf", Description: "Sealed title sheet with signatures and INDOT approval block."},
			{Key: "index_sheet", Pattern: "*INDEX*.pdf", Description: "Index of final tracing sheets with revision references."},
			{Key: "plan_set", Pattern: "*.pdf", Description: "Complete sealed plan set including all discipline sheet series."},
			{Key: "as_readied_specifications", Pattern: "*SPEC*.pdf", Description: "Approved special provisions and unique project specifications."},
			{Key: "final_quantities", Pattern: "*QTY*.pdf", Description: "Engineer's estimate and final quantities recap."},
			{Key: "affidavit_of_approval", Pattern: "*AFFIDAVIT*.pdf", Description: "Affidavit of final plan approval and professional engineer certification."},
		},
		Optional: []Artifact{
			{Key: "contract_documents", Pattern: "*CONTRACT*.pdf", Description: "Contract book excerpts for letting coordination."},
			{Key: "as_built_supplements", Pattern: "*ASBUILT*.pdf", Description: "Known as-built constraints or supplemental survey data."},
		},
		Disciplines: []string{"GN", "RD", "XS", "TMP", "SG", "MK", "DR", "UT", "RW", "EL"},
		Forms: []string{
			"Form IC-704 Final Tracings Transmittal",
			"Form IC-736 RFC Certification",
			"Form IC-762 Design Approval Checklist",
		},
		Keywords: []string{"FINAL", "RFC", "RELEASE FOR CONSTRUCTION"},
	},
}

// Names returns the catalog's stage identifiers in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
