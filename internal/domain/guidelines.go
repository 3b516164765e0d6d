package domain

import "strings"

// ProfileField names a PatientProfile input as it appears on the intake form
type ProfileField string

const (
	FieldBirthDate             ProfileField = "birthDate"
	FieldDiagnosisDate         ProfileField = "diagnosisDate"
	FieldSubdiagnosis          ProfileField = "subdiagnosis"
	FieldANAPositive           ProfileField = "anaPositive"
	FieldMethotrexate          ProfileField = "methotrexate"
	FieldDiscontinuedTreatment ProfileField = "discontinuedTreatment"
	FieldBiologicalTreatment   ProfileField = "biologicalTreatment"
)

// Words splits the camel-cased field name into lower-case words,
// e.g. "birthDate" -> "birth date".
func (f ProfileField) Words() string {
	var b strings.Builder
	for i, r := range string(f) {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte(' ')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// GuidelineInfo describes a guideline for the intake surfaces
type GuidelineInfo struct {
	ID             Guideline      `json:"id"`
	Name           string         `json:"name"`
	Slug           string         `json:"slug"`
	Subdiagnoses   []string       `json:"subdiagnoses"`
	RequiredFields []ProfileField `json:"required_fields"`
}

// Requires reports whether the guideline needs the given field to be answered
func (g GuidelineInfo) Requires(field ProfileField) bool {
	for _, f := range g.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}

// HasSubdiagnosis reports whether s is one of the guideline's listed subtypes
func (g GuidelineInfo) HasSubdiagnosis(s string) bool {
	for _, option := range g.Subdiagnoses {
		if option == s {
			return true
		}
	}
	return false
}

var (
	baseFields = []ProfileField{FieldBirthDate, FieldDiagnosisDate, FieldSubdiagnosis, FieldANAPositive}

	standardSubdiagnoses = []string{
		"Oligoarthritis",
		"RF Negative Polyarthritis",
		"Psoriatic Arthritis",
		"RF Positive Arthritis",
		"Enthesitis related Arthritis",
		"Systemic onset Arthritis",
		"Undifferentiated Arthritis",
	}
)

var guidelineCatalog = map[Guideline]GuidelineInfo{
	GuidelineNordic: {
		Subdiagnoses: standardSubdiagnoses,
		RequiredFields: []ProfileField{
			FieldBirthDate, FieldDiagnosisDate, FieldSubdiagnosis, FieldANAPositive,
			FieldMethotrexate, FieldDiscontinuedTreatment, FieldBiologicalTreatment,
		},
	},
	GuidelineUSPakistan: {
		Subdiagnoses:   standardSubdiagnoses,
		RequiredFields: baseFields,
	},
	GuidelineGermany: {
		Subdiagnoses:   standardSubdiagnoses,
		RequiredFields: baseFields,
	},
	GuidelineSpainPortugal: {
		Subdiagnoses:   standardSubdiagnoses,
		RequiredFields: baseFields,
	},
	GuidelineUK: {
		Subdiagnoses: []string{
			"Oligoarthritis",
			"RF Negative Polyarthritis",
			"Psoriatic Arthritis",
			"Enthesitis-related Arthritis",
			"RF Positive Polyarthritis",
			"Systemic Onset Arthritis",
		},
		RequiredFields: baseFields,
	},
	GuidelineCzechSlovak: {
		Subdiagnoses: []string{
			"Oligoarthritis",
			"RF Negative Polyarthritis",
			"Psoriatic Arthritis",
			"RF Positive Polyarthritis",
			"Systemic Onset Arthritis",
			"HLAB27+ Arthritis",
		},
		RequiredFields: baseFields,
	},
	GuidelineArgentina: {
		Subdiagnoses: []string{
			"Oligoarthritis",
			"RF Negative Polyarthritis",
			"Psoriatic Arthritis",
			"RF Positive Arthritis",
			"Enthesitis related Arthritis",
			"Systemic onset Arthritis",
		},
		RequiredFields: baseFields,
	},
	GuidelineMIWGUC: {
		Subdiagnoses:   []string{"Juvenile Idiopathic Arthritis", "Systemic-onset Arthritis"},
		RequiredFields: []ProfileField{FieldBirthDate, FieldDiagnosisDate, FieldSubdiagnosis},
	},
}

// LookupGuideline returns the catalog entry for a guideline
func LookupGuideline(g Guideline) (GuidelineInfo, bool) {
	info, ok := guidelineCatalog[g]
	if !ok {
		return GuidelineInfo{}, false
	}
	info.ID = g
	info.Name = string(g)
	info.Slug = g.Slug()
	return info, true
}

// Guidelines returns the catalog entries in canonical order
func Guidelines() []GuidelineInfo {
	infos := make([]GuidelineInfo, 0, len(AllGuidelines))
	for _, g := range AllGuidelines {
		info, _ := LookupGuideline(g)
		infos = append(infos, info)
	}
	return infos
}
