package domain

import (
	"context"
	"errors"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
	ErrNoPendingOffer  = errors.New("no pending purchase offer")
)

// CompletionOptions tunes a single completion call. A nil Temperature leaves
// the provider default in place.
type CompletionOptions struct {
	Temperature *float64
}

// LLMClient performs exactly one request/response exchange with a remote
// text-completion service. Implementations never retry; fallback handling
// belongs to the caller.
type LLMClient interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// SessionStore owns session state. Every method is one atomic transition;
// readers get deep copies and never observe a half-applied turn.
type SessionStore interface {
	Create(session *Session) error
	Get(id SessionID) (*Session, error)
	AppendUserMessage(id SessionID, msg *Message) error
	CommitTurn(id SessionID, commit *TurnCommit) error
	RecordPurchaseDecision(id SessionID, decision *PurchaseDecision) (*PurchaseDecision, error)
	SetPersonality(id SessionID, preset string, settings PersonalitySettings) error
	Clear(id SessionID) error
}
