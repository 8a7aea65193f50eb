package eval

import (
	"testing"

	"github.com/poiesic/medgate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGate(t *testing.T) {
	g := DefaultGate()
	assert.Equal(t, float32(0.90), g.FaithfulnessThreshold)
	assert.Equal(t, float32(0.85), g.PrecisionThreshold)
}

func TestNewGate(t *testing.T) {
	t.Run("valid thresholds", func(t *testing.T) {
		g, err := NewGate(0.8, 0.7)
		require.NoError(t, err)
		assert.Equal(t, float32(0.8), g.FaithfulnessThreshold)
		assert.Equal(t, float32(0.7), g.PrecisionThreshold)
	})

	t.Run("faithfulness out of range", func(t *testing.T) {
		_, err := NewGate(1.2, 0.7)
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	})

	t.Run("precision out of range", func(t *testing.T) {
		_, err := NewGate(0.9, -0.1)
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	})
}

func TestGateCheck(t *testing.T) {
	g := DefaultGate()

	tests := []struct {
		name   string
		scores *core.QualityScores
		want   bool
	}{
		{
			name:   "both above threshold",
			scores: &core.QualityScores{Faithfulness: 0.95, ContextPrecision: 0.90},
			want:   true,
		},
		{
			name:   "exactly at thresholds",
			scores: &core.QualityScores{Faithfulness: 0.90, ContextPrecision: 0.85},
			want:   true,
		},
		{
			name:   "faithfulness below threshold",
			scores: &core.QualityScores{Faithfulness: 0.89, ContextPrecision: 0.95},
			want:   false,
		},
		{
			name:   "precision below threshold",
			scores: &core.QualityScores{Faithfulness: 0.95, ContextPrecision: 0.84},
			want:   false,
		},
		{
			name:   "both below threshold",
			scores: &core.QualityScores{Faithfulness: 0.1, ContextPrecision: 0.1},
			want:   false,
		},
		{
			name:   "nil scores fail closed",
			scores: nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Check(tt.scores))
		})
	}
}

func TestGateApply(t *testing.T) {
	g := DefaultGate()

	t.Run("passing scores", func(t *testing.T) {
		s := &core.QualityScores{Faithfulness: 0.92, ContextPrecision: 0.88}
		g.Apply(s)

		assert.True(t, s.GatePassed)
		assert.True(t, s.FaithfulnessPassed)
		assert.True(t, s.PrecisionPassed)
	})

	t.Run("mixed scores", func(t *testing.T) {
		s := &core.QualityScores{Faithfulness: 0.92, ContextPrecision: 0.5}
		g.Apply(s)

		assert.False(t, s.GatePassed)
		assert.True(t, s.FaithfulnessPassed)
		assert.False(t, s.PrecisionPassed)
	})

	t.Run("nil scores tolerated", func(t *testing.T) {
		g.Apply(nil)
	})
}

func TestGateFailureMessages(t *testing.T) {
	g := DefaultGate()

	t.Run("no failures", func(t *testing.T) {
		s := &core.QualityScores{Faithfulness: 0.95, ContextPrecision: 0.9}
		assert.Empty(t, g.FailureMessages(s))
	})

	t.Run("both thresholds failed", func(t *testing.T) {
		s := &core.QualityScores{Faithfulness: 0.5, ContextPrecision: 0.4}
		messages := g.FailureMessages(s)

		require.Len(t, messages, 2)
		assert.Contains(t, messages[0], "Low faithfulness score")
		assert.Contains(t, messages[0], "0.500")
		assert.Contains(t, messages[1], "Low context precision")
		assert.Contains(t, messages[1], "0.400")
	})

	t.Run("nil scores", func(t *testing.T) {
		messages := g.FailureMessages(nil)
		require.Len(t, messages, 1)
		assert.Contains(t, messages[0], "unavailable")
	})
}

// Custom thresholds must flow through without any code change.
func TestGateCustomThresholds(t *testing.T) {
	g, err := NewGate(0.5, 0.5)
	require.NoError(t, err)

	s := &core.QualityScores{Faithfulness: 0.6, ContextPrecision: 0.55}
	g.Apply(s)
	assert.True(t, s.GatePassed)
}
