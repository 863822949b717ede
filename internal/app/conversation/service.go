package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvirpinch/noa-chatbot-web/internal/app/agentflow"
	"github.com/dvirpinch/noa-chatbot-web/internal/domain"
	"github.com/dvirpinch/noa-chatbot-web/internal/observability"
)

// Service owns session lifecycle and turn processing. Turns within one
// session are serialized by a per-session mutex so a second submission can
// never interleave its state mutations with an in-flight one.
type Service struct {
	store    domain.SessionStore
	pipeline *agentflow.Orchestrator
	now      func() time.Time

	mu        sync.Mutex
	turnLocks map[domain.SessionID]*sync.Mutex
}

func NewService(store domain.SessionStore, pipeline *agentflow.Orchestrator) *Service {
	return &Service{
		store:     store,
		pipeline:  pipeline,
		now:       time.Now,
		turnLocks: make(map[domain.SessionID]*sync.Mutex),
	}
}

func (s *Service) turnLock(id domain.SessionID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.turnLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.turnLocks[id] = l
	}
	return l
}

type StartSessionInput struct {
	Preset string
}

// StartSession creates an empty session seeded with the named personality
// preset, or the defaults when the name is unknown.
func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*domain.Session, error) {
	now := s.now()
	settings, preset := domain.PresetPersonality(in.Preset)

	log := observability.LoggerFromContext(ctx).With("preset", preset)
	log.Info("starting new session")

	session := &domain.Session{
		ID:          domain.SessionID(uuid.NewString()),
		CreatedAt:   now,
		UpdatedAt:   now,
		Preset:      preset,
		Personality: settings,
	}

	if err := s.store.Create(session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	log.Info("session started", "session_id", session.ID)
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	return s.store.Get(id)
}

type SendMessageInput struct {
	SessionID domain.SessionID
	Text      string
}

type SendMessageOutput struct {
	UserMessage      *domain.Message
	AssistantMessage *domain.Message
	Offer            *domain.PurchaseRequest
	Assessment       domain.ReadinessAssessment
	Plan             domain.SalesPlan
	Stage            domain.ConversationStage
	RawResponse      string
	Latency          time.Duration
}

// SendMessage runs one full turn. The user's message is appended before the
// pipeline starts; everything else commits only after stage three resolves.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	lock := s.turnLock(in.SessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.store.Get(in.SessionID)
	if err != nil {
		return nil, err
	}

	log := observability.LoggerFromContext(ctx).With("session_id", session.ID)
	log.Info("processing turn", "history_len", len(session.Messages))

	userMsg := &domain.Message{
		ID:        domain.MessageID("msg_" + uuid.NewString()),
		Role:      domain.RoleUser,
		Content:   strings.TrimSpace(in.Text),
		CreatedAt: s.now(),
	}
	if err := s.store.AppendUserMessage(session.ID, userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	// The pipeline sees the history as it stood before this turn; the new
	// user text travels separately.
	result := s.pipeline.Run(ctx, agentflow.TurnInput{
		UserMessage:      userMsg.Content,
		History:          session.Messages,
		Personality:      session.Personality,
		CurrentPlan:      session.CurrentPlan,
		ReadinessHistory: session.ReadinessHistory,
	})

	assistantMsg := &domain.Message{
		ID:        domain.MessageID("msg_" + uuid.NewString()),
		Role:      domain.RoleAssistant,
		Content:   result.Message,
		CreatedAt: s.now(),
	}

	commit := &domain.TurnCommit{
		AssistantMessage: assistantMsg,
		Assessment:       result.Assessment,
		Plan:             result.Plan,
		Offer:            result.Offer,
		Logs:             result.Logs,
	}
	if err := s.store.CommitTurn(session.ID, commit); err != nil {
		log.Error("failed to commit turn", "error", err)
		return nil, err
	}

	log.Info("turn committed",
		"readiness", result.Assessment.ReadinessPercentage,
		"strategy", result.Plan.Strategy,
		"offer", result.Offer != nil)

	return &SendMessageOutput{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Offer:            result.Offer,
		Assessment:       result.Assessment,
		Plan:             result.Plan,
		Stage:            result.Stage,
		RawResponse:      result.RawResponse,
		Latency:          result.Latency,
	}, nil
}

// RecordPurchaseDecision resolves the session's pending offer.
func (s *Service) RecordPurchaseDecision(ctx context.Context, id domain.SessionID, outcome domain.PurchaseOutcome) (*domain.PurchaseDecision, error) {
	decision := &domain.PurchaseDecision{
		ID:        "decision_" + uuid.NewString(),
		Decision:  outcome,
		CreatedAt: s.now(),
	}

	recorded, err := s.store.RecordPurchaseDecision(id, decision)
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info("purchase decision recorded",
		"session_id", id, "decision", outcome, "request_id", recorded.Request.ID)
	return recorded, nil
}

// UpdatePersonality replaces the session's settings. The handler layer
// merges partial edits into the current snapshot before calling this.
func (s *Service) UpdatePersonality(ctx context.Context, id domain.SessionID, preset string, settings domain.PersonalitySettings) error {
	return s.store.SetPersonality(id, preset, settings)
}

// ClearSession atomically resets the conversation.
func (s *Service) ClearSession(ctx context.Context, id domain.SessionID) error {
	lock := s.turnLock(id)
	lock.Lock()
	defer lock.Unlock()

	observability.LoggerFromContext(ctx).Info("clearing session", "session_id", id)
	return s.store.Clear(id)
}
