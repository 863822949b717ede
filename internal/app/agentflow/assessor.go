package agentflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvirpinch/noa-chatbot-web/internal/domain"
)

// Assessor is the first pipeline stage: it scores how close the user is to
// a purchase and tags the trend against the previous assessment.
type Assessor struct {
	llm         domain.LLMClient
	temperature float64
}

func NewAssessor(llm domain.LLMClient, temperature float64) *Assessor {
	return &Assessor{llm: llm, temperature: temperature}
}

func (a *Assessor) Name() string {
	return "readiness"
}

type AssessInput struct {
	UserMessage       string
	History           []*domain.Message
	CurrentPlan       *domain.SalesPlan
	PreviousReadiness *domain.ReadinessAssessment
}

// Assess runs stage one. It never fails: transport errors yield the
// documented low-readiness fallback and parse failures yield the neutral
// one, both terminal for this turn.
func (a *Assessor) Assess(ctx context.Context, in AssessInput) domain.ReadinessAssessment {
	prompt := buildAssessmentPrompt(in.UserMessage, historyTranscript(in.History), in.CurrentPlan, in.PreviousReadiness)

	content, err := a.llm.Complete(ctx, prompt, domain.CompletionOptions{Temperature: &a.temperature})
	if err != nil {
		return domain.ReadinessAssessment{
			ReadinessPercentage:  20,
			Trend:                domain.TrendNew,
			BuyingSignals:        []string{},
			ResistanceSigns:      []string{"system_error"},
			EngagementLevel:      domain.EngagementLow,
			TimingRecommendation: domain.TimingWait,
			Concerns:             fmt.Sprintf("System error: %v", err),
			StrategicInsight:     "Error occurred during assessment",
			Reasoning:            "Using fallback due to error",
		}
	}

	obj, ok := ExtractJSON(content)
	if !ok {
		return domain.ReadinessAssessment{
			ReadinessPercentage:  30,
			Trend:                domain.TrendNew,
			BuyingSignals:        []string{},
			ResistanceSigns:      []string{},
			EngagementLevel:      domain.EngagementMedium,
			TimingRecommendation: domain.TimingSoftApproach,
			Concerns:             "Assessment parsing failed",
			StrategicInsight:     "Using fallback assessment",
			Reasoning:            "JSON parsing failed",
		}
	}

	return assessmentFromFields(obj)
}

// assessmentFromFields fills every missing field with its documented default
// and clamps the score to [0,100].
func assessmentFromFields(obj map[string]any) domain.ReadinessAssessment {
	return domain.ReadinessAssessment{
		ReadinessPercentage:  clampInt(intField(obj, "readiness_percentage", 30), 0, 100),
		Trend:                stringField(obj, "trend", domain.TrendNew),
		BuyingSignals:        stringListField(obj, "buying_signals", []string{}),
		ResistanceSigns:      stringListField(obj, "resistance_signs", []string{}),
		EngagementLevel:      stringField(obj, "engagement_level", domain.EngagementMedium),
		TimingRecommendation: stringField(obj, "timing_recommendation", domain.TimingSoftApproach),
		Concerns:             stringField(obj, "concerns", "No concerns identified"),
		StrategicInsight:     stringField(obj, "strategic_insight", "Assessment completed"),
		Reasoning:            stringField(obj, "reasoning", "Standard assessment"),
	}
}

func buildAssessmentPrompt(userMessage, chatHistory string, currentPlan *domain.SalesPlan, previous *domain.ReadinessAssessment) string {
	var planContext string
	if currentPlan != nil {
		planContext = fmt.Sprintf(`
CURRENT SALES PLAN IN PROGRESS:
- Strategy: %s
- Target Product: %s
- Approach: %s
- Plan Status: %s

Consider: Is this plan working? Is user responding positively to current strategy?
`,
			orDefault(currentPlan.Strategy, "None"),
			orDefault(currentPlan.TargetProduct, "None"),
			orDefault(currentPlan.ApproachStyle, "None"),
			orDefault(currentPlan.PlanStatus, "new"))
	}

	var trendContext string
	if previous != nil {
		trendContext = fmt.Sprintf(`
PREVIOUS READINESS ASSESSMENT:
- Previous Readiness: %d%%
- Previous Engagement: %s
- Previous Signals: %s

TREND ANALYSIS REQUIRED:
- Compare current vs previous readiness
- Determine if user is becoming more or less interested
- Identify if current approach is working
`,
			previous.ReadinessPercentage,
			orDefault(previous.EngagementLevel, "unknown"),
			joinOrNone(previous.BuyingSignals))
	}

	return fmt.Sprintf(`You are a user readiness assessment agent for a content creator persona named Noa.

MISSION: Analyze user's readiness to purchase content AND track progress/trends.

%s

%s

CONVERSATION HISTORY:
%s

USER'S CURRENT MESSAGE:
%s

ASSESSMENT FRAMEWORK:

1. READINESS PERCENTAGE (0-100):
- 0-20%%: Just curious, browsing
- 21-40%%: Showing interest, needs warming up
- 41-60%%: Engaged, considering purchase
- 61-80%%: Very interested, ready for soft sell
- 81-100%%: Hot lead, ready for direct approach

CRITICAL PURCHASE INTENT SIGNALS (should result in 70%%+ readiness):
- Direct content requests: "what can you show me?", "show me something", "let me see"
- Urgency indicators: "just show me", frustration with teasing
- Purchase exploration: "what do you have?", "what's available?", pricing questions

Return ONLY valid JSON:
{
  "readiness_percentage": 65,
  "trend": "improving",
  "buying_signals": ["content_requests"],
  "resistance_signs": [],
  "engagement_level": "high",
  "timing_recommendation": "direct_approach",
  "concerns": "None identified",
  "strategic_insight": "User showing strong interest",
  "reasoning": "User asking for content indicates purchase intent"
}`, planContext, trendContext, chatHistory, userMessage)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
