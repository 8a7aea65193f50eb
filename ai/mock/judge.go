package mock

import (
	"context"
	"encoding/json"
	"sync"
)

// MockJudge is a test double for ai.Judge.
// It allows custom behavior injection via function fields or a canned
// JSON response. Recorded state is safe for concurrent use; an injected
// JudgeFunc must provide its own synchronization.
type MockJudge struct {
	// JudgeFunc is called by Judge if set. It takes precedence over Response.
	JudgeFunc func(ctx context.Context, system, user string, out any) error

	// Response is a canned JSON payload unmarshaled into out when
	// JudgeFunc is nil. If empty, an empty object is used, leaving out
	// at its zero values.
	Response string

	mu         sync.Mutex
	callCount  int
	lastSystem string
	lastUser   string
}

// NewMockJudge creates a mock judge with default behavior.
// Note: Returns concrete type to allow behavior injection and assertions.
func NewMockJudge() *MockJudge {
	return &MockJudge{}
}

// Judge records the call and fills out from JudgeFunc or Response.
func (m *MockJudge) Judge(ctx context.Context, system, user string, out any) error {
	m.mu.Lock()
	m.callCount++
	m.lastSystem = system
	m.lastUser = user
	m.mu.Unlock()

	if m.JudgeFunc != nil {
		return m.JudgeFunc(ctx, system, user, out)
	}

	response := m.Response
	if response == "" {
		response = "{}"
	}
	return json.Unmarshal([]byte(response), out)
}

// CallCount returns the number of times Judge was called.
func (m *MockJudge) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastSystem returns the system prompt from the most recent call.
func (m *MockJudge) LastSystem() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSystem
}

// LastUser returns the user prompt from the most recent call.
func (m *MockJudge) LastUser() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUser
}

// Reset clears the call count, prompts, and custom behavior.
func (m *MockJudge) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastSystem = ""
	m.lastUser = ""
	m.JudgeFunc = nil
	m.Response = ""
}
