package domain

import (
	"strings"
	"time"
)

// Keys used in CalculationResult.Details
const (
	DetailAge                = "age"
	DetailCurrentAge         = "currentAge"
	DetailTimeSinceDiagnosis = "timeSinceDiagnosis"
	DetailAgeAtOnset         = "ageAtOnset"
	DetailAgeAtDiagnosis     = "ageAtDiagnosis"
)

// DateLayout is the wire format for dates
const DateLayout = "2006-01-02"

// dateLayouts are tried in order by ParseDate
var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// PatientProfile is the input to a guideline evaluation.
// A zero BirthDate or DiagnosisDate means no date was supplied.
type PatientProfile struct {
	BirthDate             time.Time           `json:"birth_date"`
	DiagnosisDate         time.Time           `json:"diagnosis_date"`
	Subdiagnosis          string              `json:"subdiagnosis"`
	ANAPositive           TriState            `json:"ana_positive"`
	MethotrexateUse       TriState            `json:"methotrexate_use"`
	TreatmentDiscontinued TriState            `json:"treatment_discontinued"`
	BiologicalTreatment   BiologicalTreatment `json:"biological_treatment"`
}

// Normalized returns a copy with defaults applied to optional fields
func (p PatientProfile) Normalized() PatientProfile {
	p.Subdiagnosis = strings.TrimSpace(p.Subdiagnosis)
	p.BiologicalTreatment = p.BiologicalTreatment.Normalize()
	return p
}

// CalculationResult is the outcome of a single guideline evaluation
type CalculationResult struct {
	RiskLevel      RiskLevel              `json:"risk_level"`
	Recommendation string                 `json:"recommendation"`
	FollowUp       string                 `json:"follow_up"`
	Details        map[string]interface{} `json:"details"`
}

// ParseDate parses a calendar date. Empty or unparseable input yields the
// zero time, which downstream date arithmetic treats as "no date supplied".
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// FormatDate renders a date as YYYY-MM-DD, or "" for the zero time
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
