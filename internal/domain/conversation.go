package domain

// Message is one turn in the conversation timeline (user or assistant).
// Messages are immutable once appended; only a full session reset removes them.
type Message struct {
	ID        MessageID `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"timestamp"`
}

// AgentLog records one pipeline stage invocation: opaque input/output
// snapshots plus wall-clock duration. The pipeline never reads these back;
// they exist for the debug surface only.
type AgentLog struct {
	ID               string         `json:"id"`
	Agent            string         `json:"agent"`
	Input            map[string]any `json:"input"`
	Output           map[string]any `json:"output"`
	ProcessingTimeMS int64          `json:"processing_time_ms"`
	CreatedAt        Timestamp      `json:"timestamp"`
}

// Session owns every collection accumulated over one conversation.
// Nothing here is shared across sessions and nothing survives Clear.
type Session struct {
	ID        SessionID `json:"id"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`

	Preset      string              `json:"preset"`
	Personality PersonalitySettings `json:"personality"`

	Messages         []*Message            `json:"messages"`
	ReadinessHistory []ReadinessAssessment `json:"readiness_history"`
	PlanHistory      []SalesPlan           `json:"plan_history"`
	CurrentPlan      *SalesPlan            `json:"current_plan,omitempty"`
	PendingOffer     *PurchaseRequest      `json:"pending_offer,omitempty"`
	PurchaseHistory  []PurchaseDecision    `json:"purchase_history"`
	AgentLogs        []AgentLog            `json:"agent_logs"`
}

// TurnCommit is the atomic state transition applied once all three pipeline
// stages have resolved. The user's own message is the one exception: it is
// appended eagerly, before stage one runs.
type TurnCommit struct {
	AssistantMessage *Message
	Assessment       ReadinessAssessment
	Plan             SalesPlan
	Offer            *PurchaseRequest
	Logs             []AgentLog
}

// Clone returns a deep copy safe to hand outside the store's lock.
func (s *Session) Clone() *Session {
	out := *s

	out.Messages = make([]*Message, len(s.Messages))
	for i, m := range s.Messages {
		mc := *m
		out.Messages[i] = &mc
	}

	out.ReadinessHistory = append([]ReadinessAssessment(nil), s.ReadinessHistory...)
	out.PlanHistory = append([]SalesPlan(nil), s.PlanHistory...)
	out.PurchaseHistory = append([]PurchaseDecision(nil), s.PurchaseHistory...)
	out.AgentLogs = append([]AgentLog(nil), s.AgentLogs...)

	if s.CurrentPlan != nil {
		p := *s.CurrentPlan
		out.CurrentPlan = &p
	}
	if s.PendingOffer != nil {
		o := *s.PendingOffer
		out.PendingOffer = &o
	}

	out.Personality.ThemeControls = append([]string(nil), s.Personality.ThemeControls...)
	return &out
}
