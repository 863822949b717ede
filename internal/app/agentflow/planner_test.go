package agentflow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvirpinch/noa-chatbot-web/internal/domain"
)

func TestPlanDefaultsApplyPerField(t *testing.T) {
	// A plan carrying a single field keeps it and receives every other
	// default independently.
	p := NewPlanner(scripted(`{"strategy": "direct_sell"}`), 0.2)

	got := p.Plan(context.Background(), PlanInput{UserMessage: "hi", Stage: domain.StageEarly})

	assert.Equal(t, "direct_sell", got.Strategy)
	assert.Equal(t, domain.PlanNew, got.PlanStatus)
	assert.Equal(t, "none", got.TargetProduct)
	assert.Equal(t, "casual", got.ApproachStyle)
	assert.Equal(t, 0.1, got.UrgencyLevel)
	assert.Equal(t, 0, got.EscalationLevel)
	assert.Equal(t, "none", got.PriceRange)
	assert.Equal(t, []string{"Execute planned approach"}, got.NextSteps)
	assert.Equal(t, []string{"build_rapport", "gauge_interest", "adapt"}, got.PlannedSequence)
}

func TestPlanClampsNumericFields(t *testing.T) {
	p := NewPlanner(scripted(`{"urgency_level": 1.8, "escalation_level": 9}`), 0.2)

	got := p.Plan(context.Background(), PlanInput{UserMessage: "hi", Stage: domain.StageEarly})
	assert.Equal(t, 1.0, got.UrgencyLevel)
	assert.Equal(t, 5, got.EscalationLevel)

	p = NewPlanner(scripted(`{"urgency_level": -0.4, "escalation_level": -2}`), 0.2)
	got = p.Plan(context.Background(), PlanInput{UserMessage: "hi", Stage: domain.StageEarly})
	assert.Equal(t, 0.0, got.UrgencyLevel)
	assert.Equal(t, 0, got.EscalationLevel)
}

func TestPlanTransportErrorFallback(t *testing.T) {
	p := NewPlanner(failing(), 0.2)

	got := p.Plan(context.Background(), PlanInput{UserMessage: "hi", Stage: domain.StageEarly})

	assert.Equal(t, domain.PlanNew, got.PlanStatus)
	assert.Equal(t, "build_rapport", got.Strategy)
	assert.Contains(t, got.Reasoning, "API call failed")
	assert.Equal(t, "Using safe fallback plan", got.StrategicDecision)
	assert.Equal(t, []string{"Focus on building rapport and connection"}, got.NextSteps)
}

func TestPlanParseFailureFallback(t *testing.T) {
	long := strings.Repeat("x", 150)
	p := NewPlanner(scripted("not json "+long), 0.2)

	got := p.Plan(context.Background(), PlanInput{UserMessage: "hi", Stage: domain.StageEarly})

	assert.Equal(t, "build_rapport", got.Strategy)
	assert.Contains(t, got.Reasoning, "JSON parsing failed from response")
	// The offending text is truncated, not embedded whole.
	assert.Less(t, len(got.Reasoning), 150)
	assert.Contains(t, got.Reasoning, "...")
}

func TestPlanPromptCarriesAssessmentAndTrend(t *testing.T) {
	llm := scripted(`{"plan_status": "continue"}`)
	p := NewPlanner(llm, 0.2)

	p.Plan(context.Background(), PlanInput{
		UserMessage: "what do you have?",
		History: []*domain.Message{
			{Role: domain.RoleUser, Content: "hello"},
		},
		Assessment: domain.ReadinessAssessment{
			ReadinessPercentage:  65,
			Trend:                domain.TrendImproving,
			TimingRecommendation: domain.TimingDirectApproach,
			EngagementLevel:      domain.EngagementHigh,
			BuyingSignals:        []string{"content_requests"},
		},
		Stage: domain.StageDeveloping,
		ReadinessHistory: []domain.ReadinessAssessment{
			{ReadinessPercentage: 45},
			{ReadinessPercentage: 65},
		},
	})

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "what do you have?")
	assert.Contains(t, prompt, "user: hello")
	assert.Contains(t, prompt, "Current Readiness: 65%")
	assert.Contains(t, prompt, "Previous Readiness: 45%")
	assert.Contains(t, prompt, "+20 percentage points")
	assert.Contains(t, prompt, "NO CURRENT PLAN")
	assert.Contains(t, prompt, string(domain.StageDeveloping))

	require.NotNil(t, llm.opts[0].Temperature)
	assert.Equal(t, 0.2, *llm.opts[0].Temperature)
}

func TestPlanPromptEvaluatesCurrentPlan(t *testing.T) {
	llm := scripted(`{"plan_status": "continue"}`)
	p := NewPlanner(llm, 0.2)

	p.Plan(context.Background(), PlanInput{
		UserMessage: "ok",
		CurrentPlan: &domain.SalesPlan{
			Strategy:        "soft_sell",
			TargetProduct:   "photo_set",
			PlanStatus:      domain.PlanContinue,
			EscalationLevel: 3,
		},
		Stage: domain.StageEstablished,
	})

	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "CURRENT PLAN EVALUATION")
	assert.Contains(t, prompt, "soft_sell")
	assert.Contains(t, prompt, "Escalation Level: 3")
	assert.NotContains(t, prompt, "NO CURRENT PLAN")
}
