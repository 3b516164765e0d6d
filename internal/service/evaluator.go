package service

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/uvecheck-mcp-server/internal/domain"
)

// GuidelineEvaluator dispatches a patient profile to the rule procedure of
// the selected guideline. It holds no mutable state and is safe for
// concurrent use.
type GuidelineEvaluator struct {
	logger *logrus.Logger
	dates  DateCalculator
	rules  map[domain.Guideline]RuleProcedure
}

// EvaluatorOption configures a GuidelineEvaluator
type EvaluatorOption func(*GuidelineEvaluator)

// WithClock sets the clock used as "now" by every date computation
func WithClock(clock Clock) EvaluatorOption {
	return func(e *GuidelineEvaluator) {
		e.dates = NewDateCalculator(clock)
	}
}

// WithLogger sets the evaluator logger
func WithLogger(logger *logrus.Logger) EvaluatorOption {
	return func(e *GuidelineEvaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewGuidelineEvaluator creates an evaluator with all supported guidelines registered
func NewGuidelineEvaluator(opts ...EvaluatorOption) *GuidelineEvaluator {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &GuidelineEvaluator{
		logger: discard,
		dates:  NewDateCalculator(SystemClock),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.initializeRules()
	return e
}

func (e *GuidelineEvaluator) initializeRules() {
	e.rules = map[domain.Guideline]RuleProcedure{
		domain.GuidelineNordic:        evaluateNordic,
		domain.GuidelineUSPakistan:    evaluateUSPakistan,
		domain.GuidelineGermany:       evaluateGermany,
		domain.GuidelineSpainPortugal: evaluateSpainPortugal,
		domain.GuidelineUK:            evaluateUK,
		domain.GuidelineCzechSlovak:   evaluateCzechSlovak,
		domain.GuidelineArgentina:     evaluateArgentina,
		domain.GuidelineMIWGUC:        evaluateMIWGUC,
	}
}

// Dates returns the date calculator shared by the rule procedures
func (e *GuidelineEvaluator) Dates() DateCalculator {
	return e.dates
}

// Supports reports whether a rule procedure is registered for the guideline
func (e *GuidelineEvaluator) Supports(guideline domain.Guideline) bool {
	_, ok := e.rules[guideline]
	return ok
}

// Evaluate applies the guideline's rule procedure to the profile.
// The only error is an unsupported guideline; every profile yields a result.
func (e *GuidelineEvaluator) Evaluate(guideline domain.Guideline, profile *domain.PatientProfile) (*domain.CalculationResult, error) {
	rule, ok := e.rules[guideline]
	if !ok {
		e.logger.WithField("guideline", guideline).Warn("Unsupported guideline requested")
		return nil, domain.NewUnsupportedGuidelineError(string(guideline))
	}

	var normalized domain.PatientProfile
	if profile != nil {
		normalized = profile.Normalized()
	}
	normalized.BiologicalTreatment = normalized.BiologicalTreatment.Normalize()

	e.logger.WithFields(logrus.Fields{
		"guideline":    guideline,
		"subdiagnosis": normalized.Subdiagnosis,
	}).Debug("Evaluating guideline")

	if normalized.BirthDate.IsZero() || normalized.DiagnosisDate.IsZero() {
		e.logger.WithField("guideline", guideline).Warn("Profile is missing a date, ages default to 0")
	}

	result := rule(e.dates, &normalized)

	e.logger.WithFields(logrus.Fields{
		"guideline":  guideline,
		"risk_level": result.RiskLevel,
	}).Debug("Guideline evaluated")

	return result, nil
}

var _ domain.Evaluator = (*GuidelineEvaluator)(nil)
