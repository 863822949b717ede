package agentflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvirpinch/noa-chatbot-web/internal/domain"
)

func TestAssessPromptCarriesMessageAndHistory(t *testing.T) {
	llm := scripted(`{"readiness_percentage": 40}`)
	a := NewAssessor(llm, 0.2)

	history := []*domain.Message{
		{Role: domain.RoleUser, Content: "hey there"},
		{Role: domain.RoleAssistant, Content: "hi, how are you"},
	}
	a.Assess(context.Background(), AssessInput{
		UserMessage: "what do you have for sale?",
		History:     history,
	})

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "what do you have for sale?")
	assert.Contains(t, prompt, "user: hey there")
	assert.Contains(t, prompt, "assistant: hi, how are you")

	require.NotNil(t, llm.opts[0].Temperature)
	assert.Equal(t, 0.2, *llm.opts[0].Temperature)
}

func TestAssessPromptIncludesPlanAndPreviousContext(t *testing.T) {
	llm := scripted(`{"readiness_percentage": 40}`)
	a := NewAssessor(llm, 0.2)

	a.Assess(context.Background(), AssessInput{
		UserMessage: "hmm",
		CurrentPlan: &domain.SalesPlan{Strategy: "soft_sell", TargetProduct: "photo_set"},
		PreviousReadiness: &domain.ReadinessAssessment{
			ReadinessPercentage: 55,
			EngagementLevel:     domain.EngagementHigh,
			BuyingSignals:       []string{"content_requests"},
		},
	})

	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "soft_sell")
	assert.Contains(t, prompt, "photo_set")
	assert.Contains(t, prompt, "55%")
	assert.Contains(t, prompt, "content_requests")
}

func TestAssessTransportErrorFallback(t *testing.T) {
	a := NewAssessor(failing(), 0.2)

	got := a.Assess(context.Background(), AssessInput{UserMessage: "hi"})

	assert.Equal(t, 20, got.ReadinessPercentage)
	assert.Equal(t, domain.TrendNew, got.Trend)
	assert.Equal(t, []string{"system_error"}, got.ResistanceSigns)
	assert.Equal(t, domain.EngagementLow, got.EngagementLevel)
	assert.Equal(t, domain.TimingWait, got.TimingRecommendation)
	assert.Contains(t, got.Concerns, "System error")
}

func TestAssessParseFailureFallback(t *testing.T) {
	a := NewAssessor(scripted("I cannot answer in JSON today."), 0.2)

	got := a.Assess(context.Background(), AssessInput{UserMessage: "hi"})

	assert.Equal(t, 30, got.ReadinessPercentage)
	assert.Equal(t, domain.TrendNew, got.Trend)
	assert.Empty(t, got.ResistanceSigns)
	assert.Equal(t, domain.EngagementMedium, got.EngagementLevel)
	assert.Equal(t, domain.TimingSoftApproach, got.TimingRecommendation)
	assert.Equal(t, "JSON parsing failed", got.Reasoning)
}

func TestAssessClampsReadiness(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{`{"readiness_percentage": 150}`, 100},
		{`{"readiness_percentage": -10}`, 0},
		{`{"readiness_percentage": 65}`, 65},
	}
	for _, tc := range cases {
		a := NewAssessor(scripted(tc.raw), 0.2)
		got := a.Assess(context.Background(), AssessInput{UserMessage: "hi"})
		assert.Equal(t, tc.want, got.ReadinessPercentage, "raw %s", tc.raw)
	}
}

func TestAssessFillsMissingFields(t *testing.T) {
	a := NewAssessor(scripted(`{"readiness_percentage": 72, "trend": "improving"}`), 0.2)

	got := a.Assess(context.Background(), AssessInput{UserMessage: "show me"})

	assert.Equal(t, 72, got.ReadinessPercentage)
	assert.Equal(t, domain.TrendImproving, got.Trend)
	assert.Equal(t, domain.EngagementMedium, got.EngagementLevel)
	assert.Equal(t, domain.TimingSoftApproach, got.TimingRecommendation)
	assert.Equal(t, "No concerns identified", got.Concerns)
	assert.Equal(t, "Assessment completed", got.StrategicInsight)
	assert.Equal(t, "Standard assessment", got.Reasoning)
	assert.Empty(t, got.BuyingSignals)
	assert.Empty(t, got.ResistanceSigns)
}

func TestAssessToleratesBareStringSignal(t *testing.T) {
	a := NewAssessor(scripted(`{"buying_signals": "content_requests"}`), 0.2)

	got := a.Assess(context.Background(), AssessInput{UserMessage: "hi"})
	assert.Equal(t, []string{"content_requests"}, got.BuyingSignals)
}
