package domain

import "time"

type SessionID string
type MessageID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationStage describes how far along a conversation is,
// derived from the number of messages exchanged before the current turn.
type ConversationStage string

const (
	StageEarly       ConversationStage = "early"
	StageDeveloping  ConversationStage = "developing"
	StageEstablished ConversationStage = "established"
)

type Timestamp = time.Time
