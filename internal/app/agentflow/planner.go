package agentflow

import (
	"context"
	"fmt"

	"github.com/dvirpinch/noa-chatbot-web/internal/domain"
)

// Planner is the second pipeline stage: it decides whether to keep, adjust,
// or replace the current sales plan given the fresh readiness assessment.
type Planner struct {
	llm         domain.LLMClient
	temperature float64
}

func NewPlanner(llm domain.LLMClient, temperature float64) *Planner {
	return &Planner{llm: llm, temperature: temperature}
}

func (p *Planner) Name() string {
	return "planner"
}

type PlanInput struct {
	UserMessage      string
	History          []*domain.Message
	Assessment       domain.ReadinessAssessment
	CurrentPlan      *domain.SalesPlan
	Stage            domain.ConversationStage
	ReadinessHistory []domain.ReadinessAssessment
}

// planDefaults is the fixed default-plan template. Each pair is applied
// independently: a parsed plan missing only two fields keeps everything else
// it produced.
var planDefaults = []struct {
	field string
	value any
}{
	{"plan_status", domain.PlanNew},
	{"strategy", "build_rapport"},
	{"target_product", "none"},
	{"approach_style", "casual"},
	{"urgency_level", 0.1},
	{"escalation_level", 0},
	{"price_range", "none"},
	{"reasoning", "Strategic plan created successfully"},
	{"strategic_decision", "Plan created based on readiness assessment"},
	{"next_steps", []string{"Execute planned approach"}},
	{"planned_sequence", []string{"build_rapport", "gauge_interest", "adapt"}},
	{"plan_adaptation", "Adapt based on user response"},
	{"expected_user_response", "User will respond naturally to conversation"},
}

func applyPlanDefaults(obj map[string]any) {
	for _, d := range planDefaults {
		if v, ok := obj[d.field]; !ok || v == nil {
			obj[d.field] = d.value
		}
	}
}

// Plan runs stage two. Transport or total parse failure yields the default
// plan template verbatim, with the cause recorded in the reasoning field.
func (p *Planner) Plan(ctx context.Context, in PlanInput) domain.SalesPlan {
	prompt := buildPlannerPrompt(in)

	content, err := p.llm.Complete(ctx, prompt, domain.CompletionOptions{Temperature: &p.temperature})
	if err != nil {
		return fallbackPlan(fmt.Sprintf("API call failed (%v), using safe defaults", err))
	}

	obj, ok := ExtractJSON(content)
	if !ok {
		return fallbackPlan(fmt.Sprintf("JSON parsing failed from response: %s", truncate(content, 100)))
	}

	applyPlanDefaults(obj)
	return planFromFields(obj)
}

func fallbackPlan(reason string) domain.SalesPlan {
	obj := map[string]any{}
	applyPlanDefaults(obj)
	plan := planFromFields(obj)
	plan.Reasoning = reason
	plan.StrategicDecision = "Using safe fallback plan"
	plan.NextSteps = []string{"Focus on building rapport and connection"}
	return plan
}

// planFromFields assumes defaults are already applied and only clamps the
// numeric fields to their documented ranges.
func planFromFields(obj map[string]any) domain.SalesPlan {
	return domain.SalesPlan{
		PlanStatus:           stringField(obj, "plan_status", domain.PlanNew),
		Strategy:             stringField(obj, "strategy", "build_rapport"),
		TargetProduct:        stringField(obj, "target_product", "none"),
		ApproachStyle:        stringField(obj, "approach_style", "casual"),
		UrgencyLevel:         clampFloat(floatField(obj, "urgency_level", 0.1), 0.0, 1.0),
		EscalationLevel:      clampInt(intField(obj, "escalation_level", 0), 0, 5),
		PriceRange:           stringField(obj, "price_range", "none"),
		Reasoning:            stringField(obj, "reasoning", "Strategic plan created successfully"),
		StrategicDecision:    stringField(obj, "strategic_decision", "Plan created based on readiness assessment"),
		NextSteps:            stringListField(obj, "next_steps", []string{"Execute planned approach"}),
		PlannedSequence:      stringListField(obj, "planned_sequence", []string{"build_rapport", "gauge_interest", "adapt"}),
		PlanAdaptation:       stringField(obj, "plan_adaptation", "Adapt based on user response"),
		ExpectedUserResponse: stringField(obj, "expected_user_response", "User will respond naturally to conversation"),
	}
}

func buildPlannerPrompt(in PlanInput) string {
	assessment := in.Assessment

	var trendContext string
	if len(in.ReadinessHistory) > 1 {
		prev := in.ReadinessHistory[len(in.ReadinessHistory)-2].ReadinessPercentage
		delta := assessment.ReadinessPercentage - prev
		sign := ""
		if delta >= 0 {
			sign = "+"
		}
		trendContext = fmt.Sprintf(`
READINESS TREND ANALYSIS:
- Previous Readiness: %d%%
- Current Readiness: %d%%
- Trend: %s
- Change: %s%d percentage points
`, prev, assessment.ReadinessPercentage, assessment.Trend, sign, delta)
	}

	var planAnalysis string
	if in.CurrentPlan != nil {
		planAnalysis = fmt.Sprintf(`
CURRENT PLAN EVALUATION:
- Current Strategy: %s
- Target Product: %s
- Approach Style: %s
- Plan Status: %s
- Escalation Level: %d

STRATEGIC DECISION NEEDED:
- If trend is "improving": Continue current plan
- If trend is "stable" and readiness >60%%: Escalate approach
- If trend is "declining": Change strategy completely
- If readiness <30%% for >5 messages: Try different approach
`,
			orDefault(in.CurrentPlan.Strategy, "None"),
			orDefault(in.CurrentPlan.TargetProduct, "None"),
			orDefault(in.CurrentPlan.ApproachStyle, "None"),
			orDefault(in.CurrentPlan.PlanStatus, "new"),
			in.CurrentPlan.EscalationLevel)
	} else {
		planAnalysis = `
NO CURRENT PLAN - CREATE NEW STRATEGY:
- This is a new conversation or previous plan was completed
- Base strategy on current readiness level and conversation stage
`
	}

	return fmt.Sprintf(`You are a strategic sales planning agent for the content creator persona Noa.

MISSION: Make strategic decisions about sales approach based on user readiness and trends.

CONVERSATION HISTORY:
%s

USER'S CURRENT MESSAGE:
%s

READINESS ASSESSMENT:
- Current Readiness: %d%%
- Trend: %s
- Timing Recommendation: %s
- Engagement: %s
- Buying Signals: %s
- Resistance Signs: %s

%s

%s

CONVERSATION STAGE: %s

STRATEGIC PLANNING FRAMEWORK:

1. PLAN STATUS (choose one):
   - "continue": Keep current plan, it's working
   - "modify": Adjust current plan approach
   - "escalate": Increase intensity/urgency of current plan
   - "change": Complete strategy change needed
   - "new": Create fresh plan (no current plan exists)

2. STRATEGY OPTIONS:
   - "build_rapport": Focus on connection, personality, getting to know each other
   - "generate_interest": Share teasers, hint at content, create curiosity
   - "nurture": Warm up with friendly attention, build connection
   - "soft_sell": Gentle mentions of content, gauge interest
   - "direct_sell": Clear sales approach, discuss products and prices
   - "urgency_close": Create urgency, limited time offers
   - "relationship_maintain": Focus on existing customer relationship

3. ESCALATION LEVEL (0-5):
   - 0: Pure rapport building
   - 1: Light playful teasing
   - 2: More personal conversation, content hints
   - 3: Soft sales mentions, gentle nudges
   - 4: Direct sales approach, clear product offers
   - 5: Urgent closing, time-sensitive offers

4. STRATEGIC DECISION LOGIC:
   - If trend "improving" + readiness <50%%: Continue current approach
   - If trend "stable" + readiness >60%%: Escalate current approach
   - If trend "declining": Change strategy completely
   - If readiness >80%%: Direct sales approach
   - If readiness <20%% for multiple messages: Try different personality approach

5. MULTI-STEP PLANNING (Think 3-5 steps ahead):
   - Create a sequence of planned moves, not just immediate response
   - Consider: Current move, user's likely response, next move, purchase opportunity
   - Adapt plan when user reality differs from expectations

6. PLAN ADAPTATION LOGIC:
   - If user makes direct content requests: Skip rapport building, move toward sales
   - If user shows urgency/frustration: Skip teasing, go direct
   - If user explicitly asks for content: This is a purchase signal, not casual chat
   - If plan isn't working (declining trend): Change strategy completely

CRITICAL: Return ONLY a valid JSON object. No explanations, no markdown, no additional text.

Example:
{
  "plan_status": "escalate",
  "strategy": "soft_sell",
  "target_product": "photo_set",
  "approach_style": "playful_teasing",
  "urgency_level": 0.4,
  "escalation_level": 3,
  "price_range": "medium",
  "reasoning": "User readiness improved from 45%% to 65%%, escalating from rapport to soft sales approach",
  "strategic_decision": "Continue current playful approach but add gentle product mentions",
  "next_steps": ["Introduce custom photo sets casually", "Gauge price sensitivity"],
  "planned_sequence": ["tease_with_hints", "gauge_interest", "purchase_request", "handle_response", "follow_up"],
  "plan_adaptation": "If user asks directly for content, skip to purchase_request immediately",
  "expected_user_response": "User will likely ask for more details about available content"
}

Your response must be valid JSON starting with { and ending with }.`,
		historyTranscript(in.History),
		in.UserMessage,
		assessment.ReadinessPercentage,
		orDefault(assessment.Trend, domain.TrendNew),
		orDefault(assessment.TimingRecommendation, domain.TimingSoftApproach),
		orDefault(assessment.EngagementLevel, domain.EngagementMedium),
		joinOrNone(assessment.BuyingSignals),
		joinOrNone(assessment.ResistanceSigns),
		trendContext,
		planAnalysis,
		in.Stage)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
