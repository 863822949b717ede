package domain

// Plan status tags chosen by the planning stage.
const (
	PlanContinue = "continue"
	PlanModify   = "modify"
	PlanEscalate = "escalate"
	PlanChange   = "change"
	PlanNew      = "new"
)

// SalesPlan is the stage-two strategy record. Exactly one current plan exists
// per session at a time; superseded plans stay in the plan history.
type SalesPlan struct {
	PlanStatus           string   `json:"plan_status"`
	Strategy             string   `json:"strategy"`
	TargetProduct        string   `json:"target_product"`
	ApproachStyle        string   `json:"approach_style"`
	UrgencyLevel         float64  `json:"urgency_level"`
	EscalationLevel      int      `json:"escalation_level"`
	PriceRange           string   `json:"price_range"`
	Reasoning            string   `json:"reasoning"`
	StrategicDecision    string   `json:"strategic_decision"`
	NextSteps            []string `json:"next_steps"`
	PlannedSequence      []string `json:"planned_sequence"`
	PlanAdaptation       string   `json:"plan_adaptation"`
	ExpectedUserResponse string   `json:"expected_user_response"`
}
