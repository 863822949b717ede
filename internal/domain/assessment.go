package domain

// Trend tags produced by the readiness stage.
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
	TrendNew       = "new"
)

// Timing recommendation tags.
const (
	TimingSoftApproach   = "soft_approach"
	TimingGentleNudge    = "gentle_nudge"
	TimingDirectApproach = "direct_approach"
	TimingImmediateClose = "immediate_close"
	TimingWait           = "wait"
)

// Engagement tiers.
const (
	EngagementLow      = "low"
	EngagementMedium   = "medium"
	EngagementHigh     = "high"
	EngagementVeryHigh = "very_high"
)

// ReadinessAssessment is the stage-one estimate of how close the user is to
// a purchase, appended to an ordered per-session history. Later stages only
// ever consult the latest entry and the one before it.
type ReadinessAssessment struct {
	ReadinessPercentage  int      `json:"readiness_percentage"`
	Trend                string   `json:"trend"`
	BuyingSignals        []string `json:"buying_signals"`
	ResistanceSigns      []string `json:"resistance_signs"`
	EngagementLevel      string   `json:"engagement_level"`
	TimingRecommendation string   `json:"timing_recommendation"`
	Concerns             string   `json:"concerns"`
	StrategicInsight     string   `json:"strategic_insight"`
	Reasoning            string   `json:"reasoning"`
}
