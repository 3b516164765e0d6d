package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/uvecheck-mcp-server/internal/domain"
)

// CalculatorService runs the intake workflow: parse, validate, evaluate
type CalculatorService struct {
	logger    *logrus.Logger
	validator *ProfileValidator
	evaluator *GuidelineEvaluator
}

// NewCalculatorService creates a new calculator service
func NewCalculatorService(logger *logrus.Logger, evaluator *GuidelineEvaluator) *CalculatorService {
	if evaluator == nil {
		evaluator = NewGuidelineEvaluator(WithLogger(logger))
	}
	return &CalculatorService{
		logger:    logger,
		validator: NewProfileValidator(logger),
		evaluator: evaluator,
	}
}

// Calculate validates the profile against the guideline's required fields and
// returns the screening recommendation.
func (c *CalculatorService) Calculate(ctx context.Context, params *CalculateParams) (*CalculateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, domain.NewValidationError("guideline", "parameters are required", nil)
	}
	startTime := time.Now()

	guideline, err := domain.ParseGuideline(params.Guideline)
	if err != nil {
		return nil, fmt.Errorf("invalid input parameters: %w", err)
	}
	profile := params.Profile()

	c.logger.WithFields(logrus.Fields{
		"guideline":    guideline,
		"subdiagnosis": profile.Subdiagnosis,
	}).Debug("Starting screening calculation")

	if err := c.validator.ValidateRequiredFields(guideline, profile); err != nil {
		return nil, fmt.Errorf("incomplete patient profile: %w", err)
	}
	c.warnOnUnknownSubdiagnosis(guideline, profile)

	result, err := c.evaluator.Evaluate(guideline, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate guideline: %w", err)
	}

	dates := c.evaluator.Dates()
	response := &CalculateResult{
		Guideline:            guideline,
		RiskLevel:            result.RiskLevel,
		Recommendation:       result.Recommendation,
		FollowUp:             result.FollowUp,
		Details:              result.Details,
		ScreeningMessage:     result.RiskLevel.ScreeningMessage(),
		Color:                result.RiskLevel.Color(),
		EvaluatedOn:          domain.FormatDate(dates.Now()),
		MonthsSinceDiagnosis: dates.MonthsSince(profile.DiagnosisDate),
		ProcessingTime:       time.Since(startTime),
	}

	c.logger.WithFields(logrus.Fields{
		"guideline":       guideline,
		"risk_level":      response.RiskLevel,
		"recommendation":  response.Recommendation,
		"processing_time": response.ProcessingTime,
	}).Info("Screening calculation completed")

	return response, nil
}

// ValidateProfile reports which required fields are missing without evaluating
func (c *CalculatorService) ValidateProfile(ctx context.Context, params *CalculateParams) (*ValidateProfileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, domain.NewValidationError("guideline", "parameters are required", nil)
	}

	guideline, err := domain.ParseGuideline(params.Guideline)
	if err != nil {
		return nil, fmt.Errorf("invalid input parameters: %w", err)
	}
	profile := params.Profile()

	missing, err := c.validator.MissingFields(guideline, profile)
	if err != nil {
		return nil, err
	}

	info, _ := domain.LookupGuideline(guideline)
	result := &ValidateProfileResult{
		Guideline:           guideline,
		Valid:               len(missing) == 0,
		MissingFields:       missing,
		UnknownSubdiagnosis: profile.Subdiagnosis != "" && !info.HasSubdiagnosis(profile.Subdiagnosis),
	}
	if len(missing) > 0 {
		result.Message = MissingFieldsMessage + missing[0].Words()
	}

	c.logger.WithFields(logrus.Fields{
		"guideline": guideline,
		"valid":     result.Valid,
		"missing":   len(missing),
	}).Debug("Profile validated")

	return result, nil
}

// EvaluationDate is today's date as seen by the evaluator, YYYY-MM-DD
func (c *CalculatorService) EvaluationDate() string {
	return domain.FormatDate(c.evaluator.Dates().Now())
}

// ListGuidelines returns the supported guidelines in canonical order
func (c *CalculatorService) ListGuidelines() []domain.GuidelineInfo {
	return domain.Guidelines()
}

// DescribeGuideline resolves an identifier or slug to its catalog entry
func (c *CalculatorService) DescribeGuideline(id string) (*domain.GuidelineInfo, error) {
	guideline, err := domain.ParseGuideline(id)
	if err != nil {
		return nil, err
	}
	info, ok := domain.LookupGuideline(guideline)
	if !ok {
		return nil, domain.NewUnsupportedGuidelineError(id)
	}
	return &info, nil
}

func (c *CalculatorService) warnOnUnknownSubdiagnosis(guideline domain.Guideline, profile *domain.PatientProfile) {
	info, ok := domain.LookupGuideline(guideline)
	if !ok || info.HasSubdiagnosis(profile.Subdiagnosis) {
		return
	}
	c.logger.WithFields(logrus.Fields{
		"guideline":    guideline,
		"subdiagnosis": profile.Subdiagnosis,
	}).Warn("Subdiagnosis not listed for guideline, default branch applies")
}

// Data structures for the service API

// CalculateParams carries the raw intake answers. Dates are YYYY-MM-DD;
// tri-state answers accept y/n/na.
type CalculateParams struct {
	Guideline             string `json:"guideline"`
	BirthDate             string `json:"birth_date"`
	DiagnosisDate         string `json:"diagnosis_date"`
	Subdiagnosis          string `json:"subdiagnosis"`
	ANAPositive           string `json:"ana_positive,omitempty"`
	MethotrexateUse       string `json:"methotrexate_use,omitempty"`
	TreatmentDiscontinued string `json:"treatment_discontinued,omitempty"`
	BiologicalTreatment   string `json:"biological_treatment,omitempty"`
}

// Profile converts the raw answers into a PatientProfile. An omitted
// biological treatment becomes None / Other.
func (p *CalculateParams) Profile() *domain.PatientProfile {
	profile := domain.PatientProfile{
		BirthDate:             domain.ParseDate(p.BirthDate),
		DiagnosisDate:         domain.ParseDate(p.DiagnosisDate),
		Subdiagnosis:          p.Subdiagnosis,
		ANAPositive:           domain.ParseTriState(p.ANAPositive),
		MethotrexateUse:       domain.ParseTriState(p.MethotrexateUse),
		TreatmentDiscontinued: domain.ParseTriState(p.TreatmentDiscontinued),
		BiologicalTreatment:   domain.BiologicalTreatment(p.BiologicalTreatment),
	}
	normalized := profile.Normalized()
	return &normalized
}

// CalculateResult is the screening recommendation returned to callers
type CalculateResult struct {
	Guideline            domain.Guideline       `json:"guideline"`
	RiskLevel            domain.RiskLevel       `json:"risk_level"`
	Recommendation       string                 `json:"recommendation"`
	FollowUp             string                 `json:"follow_up"`
	Details              map[string]interface{} `json:"details"`
	ScreeningMessage     string                 `json:"screening_message"`
	Color                string                 `json:"color"`
	EvaluatedOn          string                 `json:"evaluated_on"`
	MonthsSinceDiagnosis int                    `json:"months_since_diagnosis"`
	ProcessingTime       time.Duration          `json:"processing_time"`
}

// ValidateProfileResult lists the required fields a profile is still missing
type ValidateProfileResult struct {
	Guideline           domain.Guideline      `json:"guideline"`
	Valid               bool                  `json:"valid"`
	MissingFields       []domain.ProfileField `json:"missing_fields,omitempty"`
	Message             string                `json:"message,omitempty"`
	UnknownSubdiagnosis bool                  `json:"unknown_subdiagnosis"`
}
