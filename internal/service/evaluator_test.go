package service

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uvecheck-mcp-server/internal/domain"
)

func TestGuidelineEvaluator_SupportsAllGuidelines(t *testing.T) {
	evaluator := NewGuidelineEvaluator()

	for _, g := range domain.AllGuidelines {
		assert.True(t, evaluator.Supports(g), g)
	}
	assert.False(t, evaluator.Supports("Atlantis"))
}

func TestGuidelineEvaluator_UnsupportedGuideline(t *testing.T) {
	evaluator := NewGuidelineEvaluator(WithClock(FixedClock(testNow)))
	profile := patient(3*y, 1*y, "Oligoarthritis", domain.Yes)

	result, err := evaluator.Evaluate("not-a-real-guideline", &profile)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedGuideline))

	var unsupported *domain.UnsupportedGuidelineError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "not-a-real-guideline", unsupported.Guideline)
}

func TestGuidelineEvaluator_NilProfileFailsOpen(t *testing.T) {
	evaluator := NewGuidelineEvaluator(WithClock(FixedClock(testNow)))

	for _, g := range domain.AllGuidelines {
		t.Run(string(g), func(t *testing.T) {
			result, err := evaluator.Evaluate(g, nil)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.NotEmpty(t, result.Recommendation)
		})
	}
}

func TestGuidelineEvaluator_MissingDatesDefaultToZero(t *testing.T) {
	evaluator := NewGuidelineEvaluator(WithClock(FixedClock(testNow)))
	profile := domain.PatientProfile{Subdiagnosis: "Oligoarthritis", ANAPositive: domain.Yes}

	result, err := evaluator.Evaluate(domain.GuidelineUSPakistan, &profile)
	require.NoError(t, err)

	// zero onset and zero time since diagnosis land in the earliest branch
	assert.Equal(t, domain.HighRisk, result.RiskLevel)
	assert.Equal(t, 0, result.Details[domain.DetailAge])
	assert.Equal(t, 0, result.Details[domain.DetailAgeAtOnset])
}

func TestGuidelineEvaluator_Idempotent(t *testing.T) {
	evaluator := NewGuidelineEvaluator(WithClock(FixedClock(testNow)))
	profile := nordicPatient(3*y, 2*y, "Oligoarthritis", domain.Yes, domain.No)
	before := profile

	first, err := evaluator.Evaluate(domain.GuidelineNordic, &profile)
	require.NoError(t, err)
	second, err := evaluator.Evaluate(domain.GuidelineNordic, &profile)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, profile, "profile must not be mutated")
}

func TestGuidelineEvaluator_DoesNotMutateBiologicSelection(t *testing.T) {
	evaluator := NewGuidelineEvaluator(WithClock(FixedClock(testNow)))
	profile := patient(3*y, 2*y, "Oligoarthritis", domain.Yes)
	profile.BiologicalTreatment = ""

	_, err := evaluator.Evaluate(domain.GuidelineNordic, &profile)
	require.NoError(t, err)
	assert.Equal(t, domain.BiologicalTreatment(""), profile.BiologicalTreatment)
}

func TestGuidelineEvaluator_ClockDrivesResult(t *testing.T) {
	profile := patient(3*y, 0, "Oligoarthritis", domain.Yes)

	now := NewGuidelineEvaluator(WithClock(FixedClock(testNow)))
	later := NewGuidelineEvaluator(WithClock(FixedClock(testNow.AddDate(6, 0, 0))))

	early, err := now.Evaluate(domain.GuidelineGermany, &profile)
	require.NoError(t, err)
	late, err := later.Evaluate(domain.GuidelineGermany, &profile)
	require.NoError(t, err)

	assert.Equal(t, domain.HighRisk, early.RiskLevel)
	assert.Equal(t, domain.MediumRisk, late.RiskLevel)
}

func TestGuidelineEvaluator_ConcurrentUse(t *testing.T) {
	evaluator := NewGuidelineEvaluator(WithClock(FixedClock(testNow)))
	profile := patient(3*y, 2*y, "Oligoarthritis", domain.Yes)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(g domain.Guideline) {
			defer wg.Done()
			p := profile
			_, err := evaluator.Evaluate(g, &p)
			assert.NoError(t, err)
		}(domain.AllGuidelines[i%len(domain.AllGuidelines)])
	}
	wg.Wait()
}

func TestGuidelineEvaluator_LogsUnsupportedGuideline(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)

	evaluator := NewGuidelineEvaluator(WithLogger(logger), WithClock(FixedClock(time.Now())))
	_, err := evaluator.Evaluate("Atlantis", nil)
	require.Error(t, err)

	assert.Contains(t, buf.String(), "Unsupported guideline requested")
}
