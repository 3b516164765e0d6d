package service

import (
	"fmt"

	"github.com/uvecheck-mcp-server/internal/domain"
)

// RuleProcedure maps a patient profile to a recommendation under one guideline.
// Procedures never fail: unknown subtypes fall through to a default branch.
type RuleProcedure func(dates DateCalculator, profile *domain.PatientProfile) *domain.CalculationResult

// Screening intervals shared by the whole-year guidelines
const (
	every3Months  = "Every 3 Months"
	every6Months  = "Every 6 Months"
	every12Months = "Every 12 Months"
	noneText      = "None"
)

// Subtype groups, verbatim from the published guideline option lists
var (
	nordicGroup1 = []string{"Oligoarthritis", "RF Negative Polyarthritis", "Psoriatic Arthritis", "Undifferentiated Arthritis"}
	nordicGroup3 = []string{"RF Positive Arthritis", "Systemic onset Arthritis"}

	usPakistanHighRisk     = []string{"Oligoarthritis", "RF Negative Polyarthritis", "Psoriatic Arthritis", "Undifferentiated Arthritis"}
	germanyHighRisk        = []string{"Oligoarthritis", "RF Negative Polyarthritis", "Psoriatic Arthritis", "Undifferentiated Arthritis"}
	spainPortugalHighRisk  = []string{"Oligoarthritis", "RF Negative Polyarthritis", "Psoriatic Arthritis"}
	ukScreenAtDiagnosis    = []string{"Systemic Onset Arthritis", "RF Positive Polyarthritis"}
	ukGroup1               = []string{"Oligoarthritis", "Psoriatic Arthritis", "Enthesitis-related Arthritis"}
	czechScreenAtDiagnosis = []string{"RF Positive Polyarthritis", "Systemic Onset Arthritis"}
	czechGroup1            = []string{"Oligoarthritis", "Psoriatic Arthritis", "RF Negative Polyarthritis"}
)

func inSet(s string, set []string) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}

// wholeYearDetails builds the detail map used by the whole-year guidelines
func wholeYearDetails(age, timeSinceDiagnosis, ageAtOnset int) map[string]interface{} {
	return map[string]interface{}{
		domain.DetailAge:                age,
		domain.DetailTimeSinceDiagnosis: timeSinceDiagnosis,
		domain.DetailAgeAtOnset:         ageAtOnset,
	}
}

// fractionalDetails builds the detail map used by the fractional-age guidelines
func fractionalDetails(age, timeSinceDiagnosis, ageAtOnset float64) map[string]interface{} {
	return map[string]interface{}{
		domain.DetailAge:                fmt.Sprintf("%.1f", age),
		domain.DetailTimeSinceDiagnosis: fmt.Sprintf("%.1f", timeSinceDiagnosis),
		domain.DetailAgeAtOnset:         fmt.Sprintf("%.1f", ageAtOnset),
	}
}

func evaluateNordic(dates DateCalculator, p *domain.PatientProfile) *domain.CalculationResult {
	age := dates.WholeYearsSince(p.BirthDate)
	timeu := dates.WholeYearsSince(p.DiagnosisDate)
	ageAtOnset := WholeYearsBetween(p.BirthDate, p.DiagnosisDate)

	subd := 0
	switch {
	case inSet(p.Subdiagnosis, nordicGroup1):
		subd = 1
	case p.Subdiagnosis == "Enthesitis related Arthritis":
		subd = 2
	case inSet(p.Subdiagnosis, nordicGroup3):
		subd = 3
	}

	ana, mtx := p.ANAPositive, p.MethotrexateUse
	risk := domain.NoRisk
	recommendation := noneText
	followUp := noneText

	switch subd {
	case 1:
		if ageAtOnset <= 6 {
			switch {
			case ana == domain.Yes && mtx == domain.No && timeu <= 4:
				recommendation, risk = every3Months, domain.HighRisk
			case ana == domain.Yes && mtx == domain.Yes && timeu <= 4:
				recommendation, risk = every6Months, domain.MediumRisk
			case ana == domain.Yes && mtx == domain.No && timeu > 4 && timeu < 7:
				recommendation, risk = every6Months, domain.MediumRisk
			case ana == domain.Yes && mtx == domain.Yes && timeu > 4 && timeu < 7:
				recommendation, risk = every12Months, domain.LowRisk
			case ana == domain.Yes && timeu >= 7:
				recommendation, risk = every12Months, domain.LowRisk
			case ana == domain.No && mtx == domain.No && timeu <= 4:
				recommendation, risk = every6Months, domain.MediumRisk
			case ana == domain.No && timeu > 4:
				recommendation, risk = every12Months, domain.LowRisk
			}
			followUp = "Follow-up continues until 16 Years of age"
		} else {
			switch {
			case ana == domain.Yes && mtx == domain.No && timeu <= 2:
				recommendation, risk = every6Months, domain.MediumRisk
			case ana == domain.Yes && timeu > 2:
				recommendation, risk = every12Months, domain.LowRisk
			case ana == domain.No:
				recommendation, risk = every12Months, domain.LowRisk
			}
			followUp = "Follow-up for 2 - 4 years, max 16 years of age"
		}
	case 2:
		recommendation, risk = every12Months, domain.LowRisk
		if ageAtOnset <= 6 {
			followUp = "Follow-up for 4 - 7 years, max 16 years of age"
		} else {
			followUp = "Follow-up for 2 - 4 years, max 16 years of age"
		}
	case 3:
		recommendation, risk = "Screen at Diagnosis", domain.LowRisk
	}

	// Recent withdrawal of methotrexate or TNF inhibition overrides the tier.
	if p.TreatmentDiscontinued == domain.Yes {
		risk = domain.MediumRisk
		recommendation = every6Months
	}

	// Biologic therapy lowers High and Medium by one step.
	if p.BiologicalTreatment.IsBiologic() {
		switch risk {
		case domain.HighRisk:
			risk, recommendation = domain.MediumRisk, every6Months
		case domain.MediumRisk:
			risk, recommendation = domain.LowRisk, every12Months
		}
	}

	return &domain.CalculationResult{
		RiskLevel:      risk,
		Recommendation: recommendation,
		FollowUp:       followUp,
		Details:        wholeYearDetails(age, timeu, ageAtOnset),
	}
}

func evaluateUSPakistan(dates DateCalculator, p *domain.PatientProfile) *domain.CalculationResult {
	age := dates.WholeYearsSince(p.BirthDate)
	timeu := dates.WholeYearsSince(p.DiagnosisDate)
	onsetAge := WholeYearsBetween(p.BirthDate, p.DiagnosisDate)

	var recommendation string
	var risk domain.RiskLevel

	if inSet(p.Subdiagnosis, usPakistanHighRisk) {
		if onsetAge <= 7 {
			if p.ANAPositive == domain.Yes {
				switch {
				case timeu <= 4:
					recommendation, risk = every3Months, domain.HighRisk
				case timeu < 7:
					recommendation, risk = every6Months, domain.MediumRisk
				default:
					recommendation, risk = every12Months, domain.LowRisk
				}
			} else if timeu <= 4 {
				recommendation, risk = every6Months, domain.MediumRisk
			} else {
				recommendation, risk = every12Months, domain.LowRisk
			}
		} else {
			if p.ANAPositive == domain.Yes && timeu <= 4 {
				recommendation, risk = every6Months, domain.MediumRisk
			} else {
				recommendation, risk = every12Months, domain.LowRisk
			}
		}
	} else {
		recommendation, risk = every12Months, domain.LowRisk
	}

	return &domain.CalculationResult{
		RiskLevel:      risk,
		Recommendation: recommendation,
		FollowUp:       "Follow-up continues into adulthood",
		Details:        wholeYearDetails(age, timeu, onsetAge),
	}
}

func evaluateGermany(dates DateCalculator, p *domain.PatientProfile) *domain.CalculationResult {
	age := dates.WholeYearsSince(p.BirthDate)
	timeu := dates.WholeYearsSince(p.DiagnosisDate)
	ageAtOnset := WholeYearsBetween(p.BirthDate, p.DiagnosisDate)

	var recommendation string
	var risk domain.RiskLevel

	if inSet(p.Subdiagnosis, germanyHighRisk) {
		if ageAtOnset <= 6 {
			if p.ANAPositive == domain.Yes {
				if timeu <= 4 {
					recommendation, risk = every3Months, domain.HighRisk
				} else {
					recommendation, risk = every6Months, domain.MediumRisk
				}
			} else if timeu <= 4 {
				recommendation, risk = every6Months, domain.MediumRisk
			} else {
				recommendation, risk = every12Months, domain.LowRisk
			}
		} else {
			if p.ANAPositive == domain.Yes && timeu <= 2 {
				recommendation, risk = every6Months, domain.MediumRisk
			} else {
				recommendation, risk = every12Months, domain.LowRisk
			}
		}
	} else {
		recommendation, risk = every12Months, domain.LowRisk
	}

	return &domain.CalculationResult{
		RiskLevel:      risk,
		Recommendation: recommendation,
		FollowUp:       "Follow-up continues for 7 Years from the diagnosis",
		Details:        wholeYearDetails(age, timeu, ageAtOnset),
	}
}

func evaluateSpainPortugal(dates DateCalculator, p *domain.PatientProfile) *domain.CalculationResult {
	age := dates.WholeYearsSince(p.BirthDate)
	timeu := dates.WholeYearsSince(p.DiagnosisDate)
	onsetAge := WholeYearsBetween(p.BirthDate, p.DiagnosisDate)

	var recommendation string
	var risk domain.RiskLevel

	if inSet(p.Subdiagnosis, spainPortugalHighRisk) {
		if onsetAge <= 6 {
			if p.ANAPositive == domain.Yes {
				switch {
				case timeu <= 4:
					recommendation, risk = every3Months, domain.HighRisk
				case timeu <= 7:
					recommendation, risk = every6Months, domain.MediumRisk
				default:
					recommendation, risk = every12Months, domain.LowRisk
				}
			} else if timeu <= 4 {
				recommendation, risk = every6Months, domain.MediumRisk
			} else {
				recommendation, risk = every12Months, domain.LowRisk
			}
		} else {
			if p.ANAPositive == domain.Yes && timeu <= 2 {
				recommendation, risk = every6Months, domain.MediumRisk
			} else {
				recommendation, risk = every12Months, domain.LowRisk
			}
		}
	} else {
		recommendation, risk = every12Months, domain.LowRisk
	}

	return &domain.CalculationResult{
		RiskLevel:      risk,
		Recommendation: recommendation,
		FollowUp:       "Follow-up continues until 16 Years of age",
		Details:        wholeYearDetails(age, timeu, onsetAge),
	}
}

func evaluateUK(dates DateCalculator, p *domain.PatientProfile) *domain.CalculationResult {
	age := dates.FractionalYearsSince(p.BirthDate)
	timeu := dates.FractionalYearsSince(p.DiagnosisDate)
	ageAtOnset := age - timeu
	details := fractionalDetails(age, timeu, ageAtOnset)

	if inSet(p.Subdiagnosis, ukScreenAtDiagnosis) {
		return &domain.CalculationResult{
			RiskLevel:      domain.LowRisk,
			Recommendation: "Screen at diagnosis",
			FollowUp:       "As per clinician advice",
			Details:        details,
		}
	}

	group := 0
	switch {
	case inSet(p.Subdiagnosis, ukGroup1):
		group = 1
	case p.Subdiagnosis == "RF Negative Polyarthritis":
		group = 2
	}

	risk := domain.NoRisk
	recommendation := noneText
	followUp := noneText

	switch group {
	case 1:
		risk, recommendation = domain.HighRisk, "every 3 - 4 Months"
		switch {
		case ageAtOnset < 3:
			followUp = "Follow up continues for 8 years"
		case ageAtOnset < 5:
			followUp = "Follow up continues for 6 years"
		case ageAtOnset < 9:
			followUp = "Follow up continues for 3 years"
		case ageAtOnset < 12:
			followUp = "Follow up continues for 1 year"
		}
	case 2:
		risk, recommendation = domain.HighRisk, "every 3 - 4 Months"
		if p.ANAPositive == domain.Yes {
			switch {
			case ageAtOnset < 6:
				followUp = "Follow up continues for 5 years"
			case ageAtOnset < 9:
				followUp = "Follow up continues for 2 years"
			case ageAtOnset < 12:
				followUp = "Follow up continues for 1 year"
			}
		} else if ageAtOnset < 7 {
			followUp = "Follow up continues for 5 years"
		} else {
			followUp = "Follow up continues for 1 year"
		}
	}

	if risk != domain.NoRisk {
		recommendation = "Screen for every 2 months, for the first 6 months. Then screen " + recommendation
	}

	return &domain.CalculationResult{
		RiskLevel:      risk,
		Recommendation: recommendation,
		FollowUp:       followUp,
		Details:        details,
	}
}

func evaluateCzechSlovak(dates DateCalculator, p *domain.PatientProfile) *domain.CalculationResult {
	age := dates.FractionalYearsSince(p.BirthDate)
	timeu := dates.FractionalYearsSince(p.DiagnosisDate)
	ageAtOnset := age - timeu
	details := fractionalDetails(age, timeu, ageAtOnset)

	if inSet(p.Subdiagnosis, czechScreenAtDiagnosis) {
		return &domain.CalculationResult{
			RiskLevel:      domain.MediumRisk,
			Recommendation: "Screen at diagnosis, then every 6 months until 18 years of age",
			FollowUp:       "Until 18 years of age",
			Details:        details,
		}
	}

	risk := domain.NoRisk
	recommendation := "No specific recommendation"
	followUp := "Not specified"

	group1 := inSet(p.Subdiagnosis, czechGroup1)
	hlaB27 := p.Subdiagnosis == "HLAB27+ Arthritis"
	earlyANA := ageAtOnset < 6 && p.ANAPositive == domain.Yes

	switch {
	case group1 || (hlaB27 && earlyANA):
		switch {
		case earlyANA:
			switch {
			case timeu < 0.5:
				recommendation, risk = "Every 2 months", domain.HighRisk
			case timeu <= 4:
				recommendation, risk = "Every 3 months", domain.HighRisk
			case age < 18:
				recommendation, risk = "Every 6 months", domain.MediumRisk
			}
			followUp = "Follow-up continue into adulthood"
		case age > 18 && p.ANAPositive == domain.Yes:
			recommendation, risk = "Every 6-12 months", domain.LowRisk
			followUp = "Follow-up continue into adulthood"
		case ageAtOnset > 6 && p.ANAPositive == domain.No:
			if timeu < 4 {
				recommendation, risk = "Every 3 months", domain.HighRisk
			} else {
				recommendation, risk = "Every 6 months", domain.MediumRisk
			}
			followUp = "Until 18 years of age"
		}
	case hlaB27:
		switch {
		case ageAtOnset >= 6 && ageAtOnset <= 11:
			if timeu < 4 {
				recommendation, risk = "Every 3 months", domain.HighRisk
			} else {
				recommendation, risk = "Every 6 months", domain.MediumRisk
			}
			followUp = "Until 18 years of age"
		case ageAtOnset >= 11 && ageAtOnset < 18:
			recommendation, risk = "Every 6 months", domain.MediumRisk
			followUp = "Until 18 years of age"
		case ageAtOnset >= 18:
			recommendation, risk = "Every 6-12 months", domain.LowRisk
			followUp = "Follow-up continue into adulthood"
		}
	}

	return &domain.CalculationResult{
		RiskLevel:      risk,
		Recommendation: recommendation,
		FollowUp:       followUp,
		Details:        details,
	}
}

func evaluateArgentina(dates DateCalculator, p *domain.PatientProfile) *domain.CalculationResult {
	ageYears := dates.WholeYearsSince(p.BirthDate)
	diagYears := dates.WholeYearsSince(p.DiagnosisDate)
	ageOnsetYears := WholeYearsBetween(p.BirthDate, p.DiagnosisDate)

	var recommendation string
	var risk domain.RiskLevel

	switch {
	case p.Subdiagnosis == "Systemic onset Arthritis":
		recommendation, risk = every12Months, domain.LowRisk
	case ageOnsetYears <= 6:
		if p.ANAPositive == domain.Yes {
			switch {
			case diagYears <= 4:
				recommendation, risk = every3Months, domain.HighRisk
			case diagYears <= 7:
				recommendation, risk = every6Months, domain.MediumRisk
			default:
				recommendation, risk = every12Months, domain.LowRisk
			}
		} else if diagYears <= 4 {
			recommendation, risk = every6Months, domain.MediumRisk
		} else {
			recommendation, risk = every12Months, domain.LowRisk
		}
	default:
		recommendation, risk = every12Months, domain.LowRisk
	}

	return &domain.CalculationResult{
		RiskLevel:      risk,
		Recommendation: recommendation,
		FollowUp:       "Follow-up continues until 21 Years of age",
		Details: map[string]interface{}{
			domain.DetailCurrentAge:         ageYears,
			domain.DetailTimeSinceDiagnosis: diagYears,
			domain.DetailAgeAtOnset:         ageOnsetYears,
		},
	}
}

func evaluateMIWGUC(dates DateCalculator, p *domain.PatientProfile) *domain.CalculationResult {
	ageAtDiagnosis := WholeYearsBetween(p.BirthDate, p.DiagnosisDate)
	timeu := dates.WholeYearsSince(p.DiagnosisDate)
	details := map[string]interface{}{
		domain.DetailAgeAtDiagnosis:     ageAtDiagnosis,
		domain.DetailTimeSinceDiagnosis: timeu,
	}

	if p.Subdiagnosis == "Systemic-onset Arthritis" {
		return &domain.CalculationResult{
			RiskLevel:      domain.NoRisk,
			Recommendation: "No screening required",
			FollowUp:       "As per clinician advice",
			Details:        details,
		}
	}

	var recommendation string
	var risk domain.RiskLevel

	if ageAtDiagnosis < 7 {
		switch {
		case timeu <= 1:
			recommendation, risk = "Every 2 Months", domain.HighRisk
		case timeu <= 4:
			recommendation, risk = "Every 3-4 Months", domain.HighRisk
		case timeu <= 7:
			recommendation, risk = every6Months, domain.MediumRisk
		default:
			recommendation, risk = every12Months, domain.LowRisk
		}
	} else {
		switch {
		case timeu <= 1:
			recommendation, risk = "Every 3-4 Months", domain.HighRisk
		case timeu <= 4:
			recommendation, risk = every6Months, domain.MediumRisk
		default:
			recommendation, risk = every12Months, domain.LowRisk
		}
	}

	return &domain.CalculationResult{
		RiskLevel:      risk,
		Recommendation: recommendation,
		FollowUp:       "Follow-up continues into adulthood",
		Details:        details,
	}
}
