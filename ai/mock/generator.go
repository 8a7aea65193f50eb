package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/medgate/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields. Recorded
// state is safe for concurrent use.
type MockGenerator struct {
	// CompleteFunc is called by Complete if set.
	// If nil, uses default canned-answer behavior.
	CompleteFunc func(ctx context.Context, prompt string, maxTokens int) (*ai.Completion, error)

	mu          sync.Mutex
	callCount   int
	lastPrompt  string
	lastMaxToks int
}

// NewMockGenerator creates a mock generator with default behavior.
// Note: Returns concrete type to allow behavior injection and assertions.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Complete returns a short deterministic answer derived from the prompt.
func (m *MockGenerator) Complete(ctx context.Context, prompt string, maxTokens int) (*ai.Completion, error) {
	m.mu.Lock()
	m.callCount++
	m.lastPrompt = prompt
	m.lastMaxToks = maxTokens
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, maxTokens)
	}

	// Default: echo the tail of the prompt so tests can see the question
	// flowed through, with fixed usage accounting.
	tail := prompt
	if idx := strings.LastIndex(prompt, "Question:"); idx >= 0 {
		tail = strings.TrimSpace(prompt[idx+len("Question:"):])
	}
	return &ai.Completion{
		Text:       "Mock answer for: " + tail,
		TokensUsed: 42,
		Cost:       0.001,
	}, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastPrompt returns the prompt from the most recent Complete call.
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

// LastMaxTokens returns the token cap from the most recent Complete call.
func (m *MockGenerator) LastMaxTokens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastMaxToks
}

// Reset clears the call count and custom functions.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastPrompt = ""
	m.lastMaxToks = 0
	m.CompleteFunc = nil
}
