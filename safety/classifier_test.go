package safety

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/medgate/ai/mock"
	"github.com/poiesic/medgate/core"
	"github.com/poiesic/medgate/eval"
)

func TestNewClassifier(t *testing.T) {
	t.Run("nil judge", func(t *testing.T) {
		_, err := NewClassifier(nil)
		assert.ErrorIs(t, err, ErrJudgeRequired)
	})

	t.Run("valid", func(t *testing.T) {
		c, err := NewClassifier(mock.NewMockJudge())
		require.NoError(t, err)
		assert.NotNil(t, c)
	})
}

func passingScores() *core.QualityScores {
	return &core.QualityScores{
		ContextPrecision:   0.9,
		ContextRecall:      0.9,
		Faithfulness:       0.95,
		AnswerRelevancy:    0.9,
		GatePassed:         true,
		FaithfulnessPassed: true,
		PrecisionPassed:    true,
	}
}

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantSafe   bool
		wantReason string
	}{
		{
			name:     "benign general query",
			response: `{"is_medical_query": true, "is_harmful": false, "query_type": "general", "risk_level": "low", "reasoning": "educational"}`,
			wantSafe: true,
		},
		{
			name:       "harmful query",
			response:   `{"is_medical_query": true, "is_harmful": true, "query_type": "general", "risk_level": "medium", "reasoning": "asks about lethal dose"}`,
			wantSafe:   false,
			wantReason: "potentially harmful",
		},
		{
			name:       "diagnosis query",
			response:   `{"is_medical_query": true, "is_harmful": false, "query_type": "diagnosis", "risk_level": "low", "reasoning": "asks for a diagnosis"}`,
			wantSafe:   false,
			wantReason: "Query type 'diagnosis' requires professional medical consultation",
		},
		{
			name:       "treatment query",
			response:   `{"is_medical_query": true, "is_harmful": false, "query_type": "treatment", "risk_level": "low", "reasoning": ""}`,
			wantSafe:   false,
			wantReason: "Query type 'treatment'",
		},
		{
			name:       "medication query",
			response:   `{"is_medical_query": true, "is_harmful": false, "query_type": "medication", "risk_level": "low", "reasoning": ""}`,
			wantSafe:   false,
			wantReason: "Query type 'medication'",
		},
		{
			name:       "high risk query",
			response:   `{"is_medical_query": true, "is_harmful": false, "query_type": "general", "risk_level": "high", "reasoning": "serious harm possible"}`,
			wantSafe:   false,
			wantReason: "high risk",
		},
		{
			name:     "case-insensitive fields",
			response: `{"is_medical_query": true, "is_harmful": false, "query_type": "General", "risk_level": "Low", "reasoning": ""}`,
			wantSafe: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			judge := mock.NewMockJudge()
			judge.Response = tt.response

			c, err := NewClassifier(judge)
			require.NoError(t, err)

			verdict := c.ValidateQuery(context.Background(), "What is hypertension?")
			assert.Equal(t, tt.wantSafe, verdict.IsSafe)
			assert.Equal(t, !tt.wantSafe, verdict.ContentBlocked)
			require.NotNil(t, verdict.Classification)

			if tt.wantReason != "" {
				assert.Contains(t, verdict.BlockReason, tt.wantReason)
			} else {
				assert.Empty(t, verdict.BlockReason)
			}
		})
	}
}

func TestValidateQueryReasonAggregation(t *testing.T) {
	judge := mock.NewMockJudge()
	judge.Response = `{"is_medical_query": true, "is_harmful": true, "query_type": "medication", "risk_level": "high", "reasoning": "dangerous dosing question"}`

	c, err := NewClassifier(judge)
	require.NoError(t, err)

	verdict := c.ValidateQuery(context.Background(), "How much warfarin should I take?")
	require.False(t, verdict.IsSafe)

	parts := strings.Split(verdict.BlockReason, "; ")
	assert.Len(t, parts, 4)
	assert.Contains(t, verdict.BlockReason, "potentially harmful")
	assert.Contains(t, verdict.BlockReason, "Query type 'medication'")
	assert.Contains(t, verdict.BlockReason, "high risk")
	assert.Contains(t, verdict.BlockReason, "Reasoning: dangerous dosing question")
}

func TestValidateQueryFailsClosed(t *testing.T) {
	judge := mock.NewMockJudge()
	judge.JudgeFunc = func(ctx context.Context, system, user string, out any) error {
		return errors.New("judge unavailable")
	}

	c, err := NewClassifier(judge)
	require.NoError(t, err)

	verdict := c.ValidateQuery(context.Background(), "What is diabetes?")
	assert.False(t, verdict.IsSafe)
	assert.True(t, verdict.ContentBlocked)
	assert.Contains(t, verdict.BlockReason, "judge unavailable")
	assert.Nil(t, verdict.Classification)
}

func TestValidateQueryPrompt(t *testing.T) {
	judge := mock.NewMockJudge()
	c, err := NewClassifier(judge)
	require.NoError(t, err)

	c.ValidateQuery(context.Background(), "What causes migraines?")

	assert.Contains(t, judge.LastSystem(), "is_harmful")
	assert.Contains(t, judge.LastSystem(), "risk_level")
	assert.Contains(t, judge.LastUser(), "What causes migraines?")
}

func TestValidateResponse(t *testing.T) {
	safeAssessment := `{"is_safe": true, "contains_diagnosis": false, "contains_treatment": false, "safety_concerns": [], "recommendations": []}`

	t.Run("safe answer with passing scores", func(t *testing.T) {
		judge := mock.NewMockJudge()
		judge.Response = safeAssessment

		c, err := NewClassifier(judge)
		require.NoError(t, err)

		verdict := c.ValidateResponse(context.Background(), "q", "a", passingScores())
		assert.True(t, verdict.IsSafe)
		assert.False(t, verdict.ContentBlocked)
		assert.False(t, verdict.QualityBlocked)
		assert.Empty(t, verdict.BlockReason)
		require.NotNil(t, verdict.Assessment)
		assert.True(t, verdict.Assessment.IsSafe)
	})

	t.Run("unsafe content blocks despite passing scores", func(t *testing.T) {
		judge := mock.NewMockJudge()
		judge.Response = `{"is_safe": false, "contains_diagnosis": true, "contains_treatment": false, "safety_concerns": ["provides a diagnosis"], "recommendations": ["consult a doctor"]}`

		c, err := NewClassifier(judge)
		require.NoError(t, err)

		verdict := c.ValidateResponse(context.Background(), "q", "a", passingScores())
		assert.False(t, verdict.IsSafe)
		assert.True(t, verdict.ContentBlocked)
		assert.False(t, verdict.QualityBlocked)
		assert.Contains(t, verdict.BlockReason, "provides a diagnosis")
	})

	t.Run("failed gate blocks despite safe content", func(t *testing.T) {
		judge := mock.NewMockJudge()
		judge.Response = safeAssessment

		c, err := NewClassifier(judge)
		require.NoError(t, err)

		scores := passingScores()
		scores.Faithfulness = 0.5
		scores.GatePassed = false
		scores.FaithfulnessPassed = false

		verdict := c.ValidateResponse(context.Background(), "q", "a", scores)
		assert.False(t, verdict.IsSafe)
		assert.False(t, verdict.ContentBlocked)
		assert.True(t, verdict.QualityBlocked)
		assert.Contains(t, verdict.BlockReason, "Low faithfulness score")
	})

	t.Run("threshold messages precede safety concerns", func(t *testing.T) {
		judge := mock.NewMockJudge()
		judge.Response = `{"is_safe": false, "contains_diagnosis": false, "contains_treatment": true, "safety_concerns": ["recommends dosing"], "recommendations": []}`

		c, err := NewClassifier(judge)
		require.NoError(t, err)

		scores := passingScores()
		scores.ContextPrecision = 0.2
		scores.GatePassed = false
		scores.PrecisionPassed = false

		verdict := c.ValidateResponse(context.Background(), "q", "a", scores)
		require.False(t, verdict.IsSafe)
		assert.True(t, verdict.ContentBlocked)
		assert.True(t, verdict.QualityBlocked)

		parts := strings.Split(verdict.BlockReason, "; ")
		require.Len(t, parts, 2)
		assert.Contains(t, parts[0], "context precision")
		assert.Equal(t, "recommends dosing", parts[1])
	})

	t.Run("nil scores block", func(t *testing.T) {
		judge := mock.NewMockJudge()
		judge.Response = safeAssessment

		c, err := NewClassifier(judge)
		require.NoError(t, err)

		verdict := c.ValidateResponse(context.Background(), "q", "a", nil)
		assert.False(t, verdict.IsSafe)
		assert.True(t, verdict.QualityBlocked)
	})
}

func TestValidateResponseFailsClosed(t *testing.T) {
	judge := mock.NewMockJudge()
	judge.JudgeFunc = func(ctx context.Context, system, user string, out any) error {
		return errors.New("timeout")
	}

	c, err := NewClassifier(judge)
	require.NoError(t, err)

	verdict := c.ValidateResponse(context.Background(), "q", "a", passingScores())
	assert.False(t, verdict.IsSafe)
	assert.True(t, verdict.ContentBlocked)
	assert.Contains(t, verdict.BlockReason, "timeout")
	assert.Nil(t, verdict.Assessment)
}

func TestValidateResponseCustomGate(t *testing.T) {
	judge := mock.NewMockJudge()
	judge.Response = `{"is_safe": true, "contains_diagnosis": false, "contains_treatment": false, "safety_concerns": [], "recommendations": []}`

	gate, err := eval.NewGate(0.5, 0.5)
	require.NoError(t, err)

	c, err := NewClassifier(judge, WithGate(gate))
	require.NoError(t, err)

	scores := &core.QualityScores{
		ContextPrecision: 0.6,
		Faithfulness:     0.6,
	}
	gate.Apply(scores)

	verdict := c.ValidateResponse(context.Background(), "q", "a", scores)
	assert.True(t, verdict.IsSafe)
}

func TestDisclaimer(t *testing.T) {
	d := Disclaimer()
	assert.Contains(t, d, "MEDICAL DISCLAIMER")
	assert.Contains(t, d, "educational purposes")
	assert.Contains(t, d, "qualified")
}
