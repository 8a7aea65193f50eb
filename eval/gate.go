package eval

import (
	"fmt"

	"github.com/poiesic/medgate/core"
)

// Default quality gate thresholds. Overridable through configuration;
// never compiled into callers.
const (
	DefaultFaithfulnessThreshold = 0.90
	DefaultPrecisionThreshold    = 0.85
)

// Gate is the pass/fail decision derived from thresholding faithfulness and
// context precision. Thresholds are injected at construction time.
type Gate struct {
	FaithfulnessThreshold float32
	PrecisionThreshold    float32
}

// DefaultGate returns a Gate with the default thresholds.
func DefaultGate() Gate {
	return Gate{
		FaithfulnessThreshold: DefaultFaithfulnessThreshold,
		PrecisionThreshold:    DefaultPrecisionThreshold,
	}
}

// NewGate creates a Gate with the given thresholds.
// Thresholds outside [0,1] are rejected.
func NewGate(faithfulness, precision float32) (Gate, error) {
	if faithfulness < 0 || faithfulness > 1 {
		return Gate{}, fmt.Errorf("%w: faithfulness threshold %f", ErrInvalidThreshold, faithfulness)
	}
	if precision < 0 || precision > 1 {
		return Gate{}, fmt.Errorf("%w: precision threshold %f", ErrInvalidThreshold, precision)
	}
	return Gate{FaithfulnessThreshold: faithfulness, PrecisionThreshold: precision}, nil
}

// Check reports whether the scores pass both thresholds.
func (g Gate) Check(scores *core.QualityScores) bool {
	if scores == nil {
		return false
	}
	return scores.Faithfulness >= g.FaithfulnessThreshold &&
		scores.ContextPrecision >= g.PrecisionThreshold
}

// Apply sets the gate decision and per-threshold pass flags on the scores.
func (g Gate) Apply(scores *core.QualityScores) {
	if scores == nil {
		return
	}
	scores.FaithfulnessPassed = scores.Faithfulness >= g.FaithfulnessThreshold
	scores.PrecisionPassed = scores.ContextPrecision >= g.PrecisionThreshold
	scores.GatePassed = scores.FaithfulnessPassed && scores.PrecisionPassed
}

// FailureMessages returns one human-readable message per failed threshold,
// in a fixed order. Empty when the gate passes.
func (g Gate) FailureMessages(scores *core.QualityScores) []string {
	if scores == nil {
		return []string{"quality scores unavailable"}
	}

	var messages []string
	if scores.Faithfulness < g.FaithfulnessThreshold {
		messages = append(messages, fmt.Sprintf(
			"Low faithfulness score: %.3f < %.2f",
			scores.Faithfulness, g.FaithfulnessThreshold))
	}
	if scores.ContextPrecision < g.PrecisionThreshold {
		messages = append(messages, fmt.Sprintf(
			"Low context precision: %.3f < %.2f",
			scores.ContextPrecision, g.PrecisionThreshold))
	}
	return messages
}
