package service

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/uvecheck-mcp-server/internal/domain"
)

// MissingFieldsMessage prefixes the error reported for an incomplete profile
const MissingFieldsMessage = "Please fill out all required fields. Missing: "

// ProfileValidator checks that a profile answers every field its guideline requires
type ProfileValidator struct {
	logger *logrus.Logger
}

// NewProfileValidator creates a new profile validator
func NewProfileValidator(logger *logrus.Logger) *ProfileValidator {
	return &ProfileValidator{logger: logger}
}

// ValidateRequiredFields returns a ValidationError naming the first required
// field that is empty or answered "not applicable".
func (v *ProfileValidator) ValidateRequiredFields(guideline domain.Guideline, profile *domain.PatientProfile) error {
	info, ok := domain.LookupGuideline(guideline)
	if !ok {
		return domain.NewUnsupportedGuidelineError(string(guideline))
	}
	if profile == nil {
		profile = &domain.PatientProfile{}
	}

	for _, field := range info.RequiredFields {
		if answered(field, profile) {
			continue
		}
		v.logger.WithFields(logrus.Fields{
			"guideline": guideline,
			"field":     field,
		}).Debug("Profile is missing a required field")
		return domain.NewValidationError(string(field), MissingFieldsMessage+field.Words(), nil)
	}
	return nil
}

// MissingFields lists every unanswered required field in declaration order
func (v *ProfileValidator) MissingFields(guideline domain.Guideline, profile *domain.PatientProfile) ([]domain.ProfileField, error) {
	info, ok := domain.LookupGuideline(guideline)
	if !ok {
		return nil, domain.NewUnsupportedGuidelineError(string(guideline))
	}
	if profile == nil {
		profile = &domain.PatientProfile{}
	}

	var missing []domain.ProfileField
	for _, field := range info.RequiredFields {
		if !answered(field, profile) {
			missing = append(missing, field)
		}
	}
	return missing, nil
}

func answered(field domain.ProfileField, p *domain.PatientProfile) bool {
	switch field {
	case domain.FieldBirthDate:
		return !p.BirthDate.IsZero()
	case domain.FieldDiagnosisDate:
		return !p.DiagnosisDate.IsZero()
	case domain.FieldSubdiagnosis:
		s := strings.TrimSpace(p.Subdiagnosis)
		return s != "" && !strings.EqualFold(s, "na")
	case domain.FieldANAPositive:
		return p.ANAPositive.IsAnswered()
	case domain.FieldMethotrexate:
		return p.MethotrexateUse.IsAnswered()
	case domain.FieldDiscontinuedTreatment:
		return p.TreatmentDiscontinued.IsAnswered()
	case domain.FieldBiologicalTreatment:
		// empty defaults to None / Other
		return !strings.EqualFold(strings.TrimSpace(p.BiologicalTreatment.String()), "na")
	default:
		return false
	}
}

var _ domain.ProfileChecker = (*ProfileValidator)(nil)
