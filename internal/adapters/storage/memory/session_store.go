// Package memory holds the in-memory session store. Sessions are transient
// by design: nothing here survives the process and nothing survives Clear.
package memory

import (
	"sync"
	"time"

	"github.com/dvirpinch/noa-chatbot-web/internal/domain"
)

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionID]*domain.Session),
		now:      time.Now,
	}
}

func (s *SessionStore) Create(session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return domain.ErrSessionExists
	}

	s.sessions[session.ID] = session.Clone()
	return nil
}

// Get returns a deep copy; callers never share memory with the store.
func (s *SessionStore) Get(id domain.SessionID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	return sess.Clone(), nil
}

// AppendUserMessage is the eager half of a turn: the user's own message is
// visible even if the pipeline later falls back.
func (s *SessionStore) AppendUserMessage(id domain.SessionID, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}

	mc := *msg
	sess.Messages = append(sess.Messages, &mc)
	sess.UpdatedAt = s.now()
	return nil
}

// CommitTurn applies everything a resolved turn produced in one transition:
// the assistant message, the readiness and plan history entries, the current
// plan pointer, any new pending offer, and the stage logs.
func (s *SessionStore) CommitTurn(id domain.SessionID, commit *domain.TurnCommit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}

	if commit.AssistantMessage != nil {
		mc := *commit.AssistantMessage
		sess.Messages = append(sess.Messages, &mc)
	}

	sess.ReadinessHistory = append(sess.ReadinessHistory, commit.Assessment)

	plan := commit.Plan
	sess.PlanHistory = append(sess.PlanHistory, plan)
	sess.CurrentPlan = &plan

	if commit.Offer != nil {
		oc := *commit.Offer
		sess.PendingOffer = &oc
	}

	sess.AgentLogs = append(sess.AgentLogs, commit.Logs...)
	sess.UpdatedAt = s.now()
	return nil
}

// RecordPurchaseDecision resolves the pending offer: the decision's Request
// is filled from the pending slot, the slot is cleared, and the completed
// decision is appended to the history and returned.
func (s *SessionStore) RecordPurchaseDecision(id domain.SessionID, decision *domain.PurchaseDecision) (*domain.PurchaseDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if sess.PendingOffer == nil {
		return nil, domain.ErrNoPendingOffer
	}

	dc := *decision
	dc.Request = *sess.PendingOffer
	sess.PurchaseHistory = append(sess.PurchaseHistory, dc)
	sess.PendingOffer = nil
	sess.UpdatedAt = s.now()

	out := dc
	return &out, nil
}

func (s *SessionStore) SetPersonality(id domain.SessionID, preset string, settings domain.PersonalitySettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}

	settings.ThemeControls = append([]string(nil), settings.ThemeControls...)
	sess.Preset = preset
	sess.Personality = settings
	sess.UpdatedAt = s.now()
	return nil
}

// Clear empties every collection and nulls the current-plan and
// pending-offer pointers under one lock; no partial reset is observable.
func (s *SessionStore) Clear(id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}

	sess.Messages = nil
	sess.ReadinessHistory = nil
	sess.PlanHistory = nil
	sess.CurrentPlan = nil
	sess.PendingOffer = nil
	sess.PurchaseHistory = nil
	sess.AgentLogs = nil
	sess.UpdatedAt = s.now()
	return nil
}
