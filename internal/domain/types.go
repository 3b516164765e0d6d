package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Guideline identifies a regional uveitis screening protocol
type Guideline string

const (
	GuidelineNordic        Guideline = "Nordic"
	GuidelineUSPakistan    Guideline = "US & Pakistan"
	GuidelineGermany       Guideline = "Germany"
	GuidelineSpainPortugal Guideline = "Spain & Portugal"
	GuidelineUK            Guideline = "UK"
	GuidelineCzechSlovak   Guideline = "Czech & Slovak"
	GuidelineArgentina     Guideline = "Argentina"
	GuidelineMIWGUC        Guideline = "MIWGUC"
)

// String returns the guideline identifier
func (g Guideline) String() string {
	return string(g)
}

// Slug returns the URL-safe form of the guideline identifier
func (g Guideline) Slug() string {
	switch g {
	case GuidelineNordic:
		return "nordic"
	case GuidelineUSPakistan:
		return "us-pakistan"
	case GuidelineGermany:
		return "germany"
	case GuidelineSpainPortugal:
		return "spain-portugal"
	case GuidelineUK:
		return "uk"
	case GuidelineCzechSlovak:
		return "czech-slovak"
	case GuidelineArgentina:
		return "argentina"
	case GuidelineMIWGUC:
		return "miwguc"
	default:
		return ""
	}
}

// ParseGuideline resolves an identifier or slug (case-insensitive) to a Guideline
func ParseGuideline(s string) (Guideline, error) {
	needle := strings.TrimSpace(s)
	for _, g := range AllGuidelines {
		if strings.EqualFold(needle, string(g)) || strings.EqualFold(needle, g.Slug()) {
			return g, nil
		}
	}
	return "", NewUnsupportedGuidelineError(s)
}

// AllGuidelines lists the supported guidelines in canonical order
var AllGuidelines = []Guideline{
	GuidelineNordic,
	GuidelineUSPakistan,
	GuidelineGermany,
	GuidelineSpainPortugal,
	GuidelineUK,
	GuidelineCzechSlovak,
	GuidelineArgentina,
	GuidelineMIWGUC,
}

// RiskLevel is the uveitis risk tier. Order only matters for display emphasis.
type RiskLevel int

const (
	NoRisk RiskLevel = iota
	LowRisk
	MediumRisk
	HighRisk
)

// String returns the display label of the risk level
func (r RiskLevel) String() string {
	switch r {
	case NoRisk:
		return "No Risk"
	case LowRisk:
		return "Low Risk"
	case MediumRisk:
		return "Medium Risk"
	case HighRisk:
		return "High Risk"
	default:
		return "Undefined"
	}
}

// ScreeningMessage returns the generic screening advice shown next to the tier
func (r RiskLevel) ScreeningMessage() string {
	switch r {
	case HighRisk:
		return "Screening every 3 months"
	case MediumRisk:
		return "Screening every 6 months"
	case LowRisk:
		return "Screening every 12 months"
	case NoRisk:
		return "No elevated risk detected. Follow standard clinical advice."
	default:
		return "Consult with a specialist for screening recommendations."
	}
}

// Color returns the display color associated with the risk level
func (r RiskLevel) Color() string {
	switch r {
	case HighRisk:
		return "red"
	case MediumRisk:
		return "amber"
	case LowRisk:
		return "green"
	case NoRisk:
		return "slate"
	default:
		return "gray"
	}
}

// MarshalJSON encodes the risk level as its display label
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a risk level from its display label
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	for _, candidate := range []RiskLevel{NoRisk, LowRisk, MediumRisk, HighRisk} {
		if candidate.String() == label {
			*r = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown risk level: %q", label)
}

// TriState is a yes/no answer that may be left unanswered
type TriState int

const (
	NotApplicable TriState = iota
	Yes
	No
)

// ParseTriState converts a form answer into a TriState.
// Unrecognized input is treated as NotApplicable.
func ParseTriState(s string) TriState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true":
		return Yes
	case "n", "no", "false":
		return No
	default:
		return NotApplicable
	}
}

// String returns the wire form of the answer
func (t TriState) String() string {
	switch t {
	case Yes:
		return "y"
	case No:
		return "n"
	default:
		return "na"
	}
}

// IsAnswered reports whether the field carries a yes or no answer
func (t TriState) IsAnswered() bool {
	return t == Yes || t == No
}

// MarshalJSON encodes the answer in its wire form
func (t TriState) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the wire form, yes/no words, or JSON booleans
func (t *TriState) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*t = Yes
		} else {
			*t = No
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid tri-state value: %s", string(data))
	}
	*t = ParseTriState(s)
	return nil
}

// BiologicalTreatment names the biologic therapy a patient receives
type BiologicalTreatment string

const (
	BiologicalNone          BiologicalTreatment = "None / Other"
	BiologicalTNFInhibitors BiologicalTreatment = "TNF - Inhibitors"
	BiologicalAdalimumab    BiologicalTreatment = "Adalimumab"
	BiologicalCertolizumab  BiologicalTreatment = "Certolizumab"
	BiologicalGolimumab     BiologicalTreatment = "Golimumab"
	BiologicalInfliximab    BiologicalTreatment = "Infliximab"
)

// BiologicalTreatments lists the selectable biologic therapies
var BiologicalTreatments = []BiologicalTreatment{
	BiologicalNone,
	BiologicalTNFInhibitors,
	BiologicalAdalimumab,
	BiologicalCertolizumab,
	BiologicalGolimumab,
	BiologicalInfliximab,
}

// Normalize maps an empty selection to BiologicalNone
func (b BiologicalTreatment) Normalize() BiologicalTreatment {
	if strings.TrimSpace(string(b)) == "" {
		return BiologicalNone
	}
	return b
}

// IsBiologic reports whether any therapy other than "None / Other" is selected
func (b BiologicalTreatment) IsBiologic() bool {
	return b.Normalize() != BiologicalNone
}

// String returns the treatment name
func (b BiologicalTreatment) String() string {
	return string(b.Normalize())
}
