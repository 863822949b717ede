package agentflow

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dvirpinch/noa-chatbot-web/internal/domain"
	"github.com/dvirpinch/noa-chatbot-web/internal/observability"
)

// Defaults for the tunables an empty Options leaves unset.
const (
	defaultAssessorTemperature = 0.2
	defaultPlannerTemperature  = 0.2
	defaultEarlyStageLimit     = 3
	defaultDevelopingLimit     = 10
)

// Orchestrator runs the three stages strictly in order, feeding each stage's
// structured output into the next prompt. Stages recover their own failures,
// so a turn always produces a complete result.
type Orchestrator struct {
	assessor *Assessor
	planner  *Planner
	writer   *Writer

	earlyLimit      int
	developingLimit int

	now func() time.Time
}

type Options struct {
	AssessorTemperature  float64
	PlannerTemperature   float64
	EarlyStageLimit      int
	DevelopingStageLimit int
}

func NewOrchestrator(llm domain.LLMClient, opts Options) *Orchestrator {
	if opts.AssessorTemperature == 0 {
		opts.AssessorTemperature = defaultAssessorTemperature
	}
	if opts.PlannerTemperature == 0 {
		opts.PlannerTemperature = defaultPlannerTemperature
	}
	if opts.EarlyStageLimit == 0 {
		opts.EarlyStageLimit = defaultEarlyStageLimit
	}
	if opts.DevelopingStageLimit == 0 {
		opts.DevelopingStageLimit = defaultDevelopingLimit
	}

	return &Orchestrator{
		assessor:        NewAssessor(llm, opts.AssessorTemperature),
		planner:         NewPlanner(llm, opts.PlannerTemperature),
		writer:          NewWriter(llm),
		earlyLimit:      opts.EarlyStageLimit,
		developingLimit: opts.DevelopingStageLimit,
		now:             time.Now,
	}
}

type TurnInput struct {
	UserMessage      string
	History          []*domain.Message
	Personality      domain.PersonalitySettings
	CurrentPlan      *domain.SalesPlan
	ReadinessHistory []domain.ReadinessAssessment
}

type TurnResult struct {
	Message     string
	Offer       *domain.PurchaseRequest
	Assessment  domain.ReadinessAssessment
	Plan        domain.SalesPlan
	Stage       domain.ConversationStage
	RawResponse string
	Latency     time.Duration
	Logs        []domain.AgentLog
}

// Run executes one full turn: readiness, planning, writer.
func (o *Orchestrator) Run(ctx context.Context, in TurnInput) *TurnResult {
	log := observability.LoggerFromContext(ctx)
	turnStart := o.now()

	stage := o.stageFor(len(in.History))
	result := &TurnResult{Stage: stage}

	var previous *domain.ReadinessAssessment
	if n := len(in.ReadinessHistory); n > 0 {
		previous = &in.ReadinessHistory[n-1]
	}

	// Stage 1: readiness.
	log.Info("stage start", "agent", o.assessor.Name())
	start := o.now()
	result.Assessment = o.assessor.Assess(ctx, AssessInput{
		UserMessage:       in.UserMessage,
		History:           in.History,
		CurrentPlan:       in.CurrentPlan,
		PreviousReadiness: previous,
	})
	result.Logs = append(result.Logs, o.stageLog(o.assessor.Name(), start,
		map[string]any{"user_message": in.UserMessage, "previous_readiness": snapshot(previous)},
		snapshot(result.Assessment)))
	log.Info("stage end", "agent", o.assessor.Name(),
		"readiness", result.Assessment.ReadinessPercentage,
		"trend", result.Assessment.Trend,
		"elapsed_ms", o.now().Sub(start).Milliseconds())

	// Stage 2: planning, fed the fresh assessment.
	log.Info("stage start", "agent", o.planner.Name())
	start = o.now()
	result.Plan = o.planner.Plan(ctx, PlanInput{
		UserMessage:      in.UserMessage,
		History:          in.History,
		Assessment:       result.Assessment,
		CurrentPlan:      in.CurrentPlan,
		Stage:            stage,
		ReadinessHistory: in.ReadinessHistory,
	})
	result.Logs = append(result.Logs, o.stageLog(o.planner.Name(), start,
		map[string]any{"readiness_assessment": snapshot(result.Assessment), "current_plan": snapshot(in.CurrentPlan)},
		snapshot(result.Plan)))
	log.Info("stage end", "agent", o.planner.Name(),
		"strategy", result.Plan.Strategy,
		"plan_status", result.Plan.PlanStatus,
		"elapsed_ms", o.now().Sub(start).Milliseconds())

	// Stage 3: writer, fed both.
	log.Info("stage start", "agent", o.writer.Name())
	start = o.now()
	written := o.writer.Write(ctx, WriteInput{
		Personality: in.Personality,
		History:     in.History,
		UserMessage: in.UserMessage,
		Assessment:  result.Assessment,
		Plan:        result.Plan,
		Stage:       stage,
	})
	result.Message = written.Message
	result.Offer = written.Offer
	result.RawResponse = written.Raw
	result.Logs = append(result.Logs, o.stageLog(o.writer.Name(), start,
		map[string]any{"user_message": in.UserMessage, "conversation_stage": string(stage)},
		map[string]any{"message": written.Message, "purchase_request": snapshot(written.Offer)}))
	log.Info("stage end", "agent", o.writer.Name(),
		"offer", written.Offer != nil,
		"elapsed_ms", o.now().Sub(start).Milliseconds())

	result.Latency = o.now().Sub(turnStart)
	log.Info("turn complete", "stage", stage, "latency_ms", result.Latency.Milliseconds())
	return result
}

func (o *Orchestrator) stageFor(historyLen int) domain.ConversationStage {
	switch {
	case historyLen < o.earlyLimit:
		return domain.StageEarly
	case historyLen < o.developingLimit:
		return domain.StageDeveloping
	default:
		return domain.StageEstablished
	}
}

func (o *Orchestrator) stageLog(agent string, start time.Time, input, output map[string]any) domain.AgentLog {
	return domain.AgentLog{
		ID:               "log_" + uuid.NewString(),
		Agent:            agent,
		Input:            input,
		Output:           output,
		ProcessingTimeMS: o.now().Sub(start).Milliseconds(),
		CreatedAt:        o.now(),
	}
}

// snapshot converts any value to a generic map for the invocation log.
// Nil pointers and unmarshalable values become nil.
func snapshot(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// historyTranscript renders turns as "role: content" lines for the
// assessment and planning prompts.
func historyTranscript(msgs []*domain.Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, string(m.Role)+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// personaTranscript renders turns with persona labels for the writer prompt.
func personaTranscript(msgs []*domain.Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case domain.RoleUser:
			lines = append(lines, "User: "+m.Content)
		case domain.RoleAssistant:
			lines = append(lines, "Noa: "+m.Content)
		}
	}
	return strings.Join(lines, "\n")
}
