package llm

import (
	"context"
	"sync"

	"github.com/dvirpinch/noa-chatbot-web/internal/domain"
)

// Canned completions for the mock backend, one per pipeline stage, so the
// whole service runs offline in dev.
var mockStageResponses = []string{
	`{"readiness_percentage": 35, "trend": "stable", "buying_signals": [], "resistance_signs": [], "engagement_level": "medium", "timing_recommendation": "soft_approach", "concerns": "None identified", "strategic_insight": "Mock assessment", "reasoning": "Mock backend"}`,
	`{"plan_status": "new", "strategy": "build_rapport", "target_product": "none", "approach_style": "casual", "urgency_level": 0.1, "escalation_level": 0, "reasoning": "Mock plan"}`,
	"<response>Hey, good to hear from you. What have you been up to today?</response>",
}

// MockLLM returns scripted completions in order, cycling when the script is
// exhausted. With no script it cycles three canned stage replies.
type MockLLM struct {
	mu        sync.Mutex
	responses []string
	calls     int

	// Prompts records every prompt received, in order. Tests use it to
	// assert on assembled prompt content.
	Prompts []string
}

func NewMockLLM(responses ...string) *MockLLM {
	return &MockLLM{responses: responses}
}

// Complete implements domain.LLMClient.
func (m *MockLLM) Complete(_ context.Context, prompt string, _ domain.CompletionOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)

	script := m.responses
	if len(script) == 0 {
		script = mockStageResponses
	}

	reply := script[m.calls%len(script)]
	m.calls++
	return reply, nil
}
