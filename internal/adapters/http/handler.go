package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dvirpinch/noa-chatbot-web/internal/app/conversation"
	"github.com/dvirpinch/noa-chatbot-web/internal/domain"
)

type Server struct {
	svc              *conversation.Service
	accessCode       string
	settingsPassword string
}

func NewServer(svc *conversation.Service, accessCode, settingsPassword string) http.Handler {
	s := &Server{
		svc:              svc,
		accessCode:       accessCode,
		settingsPassword: settingsPassword,
	}

	r := chi.NewRouter()
	r.Use(withRequestID, withLogging, withCORS, withRecovery)

	r.Get("/healthz", s.handleHealthz)
	r.Post("/sessions", s.handleCreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Post("/messages", s.handleSendMessage)
		r.Post("/purchase-decision", s.handlePurchaseDecision)
		r.Put("/personality", s.handleUpdatePersonality)
		r.Post("/clear", s.handleClearSession)
	})
	r.Post("/validate-settings-password", s.handleValidateSettingsPassword)

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	Preset string `json:"preset,omitempty"`
}

type sessionResponse struct {
	ID          string                     `json:"id"`
	Preset      string                     `json:"preset"`
	Personality domain.PersonalitySettings `json:"personality"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

type sessionSnapshotResponse struct {
	Session          sessionResponse               `json:"session"`
	Messages         []*domain.Message             `json:"messages"`
	CurrentPlan      *domain.SalesPlan             `json:"current_plan,omitempty"`
	ReadinessHistory []domain.ReadinessAssessment  `json:"readiness_history"`
	PendingOffer     *domain.PurchaseRequest       `json:"pending_offer,omitempty"`
	PurchaseHistory  []domain.PurchaseDecision     `json:"purchase_history"`
	AgentLogs        []domain.AgentLog             `json:"agent_logs"`
}

type sendMessageRequest struct {
	Text       string `json:"text"`
	AccessCode string `json:"access_code"`
}

type agentReply struct {
	Message         string                  `json:"message"`
	PurchaseRequest *domain.PurchaseRequest `json:"purchase_request,omitempty"`
	RawResponse     string                  `json:"raw_response,omitempty"`
}

type agentData struct {
	ReadinessAssessment domain.ReadinessAssessment `json:"readiness_assessment"`
	StrategicPlan       domain.SalesPlan           `json:"strategic_plan"`
	ProcessingTimeMS    int64                      `json:"processing_time_ms"`
	ConversationStage   domain.ConversationStage   `json:"conversation_stage"`
}

type chatResponse struct {
	Success   bool        `json:"success"`
	Error     string      `json:"error,omitempty"`
	Response  *agentReply `json:"response,omitempty"`
	AgentData *agentData  `json:"agent_data,omitempty"`
}

type purchaseDecisionRequest struct {
	Decision string `json:"decision"`
}

type updatePersonalityRequest struct {
	Preset   string          `json:"preset,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

type validatePasswordRequest struct {
	Password string `json:"password"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
	}

	session, err := s.svc.StartSession(r.Context(), conversation.StartSessionInput{Preset: req.Preset})
	if err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"session": toSessionResponse(session)})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.svc.GetSession(r.Context(), sessionID(r))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, sessionSnapshotResponse{
		Session:          toSessionResponse(session),
		Messages:         nonNilMessages(session.Messages),
		CurrentPlan:      session.CurrentPlan,
		ReadinessHistory: emptyIfNil(session.ReadinessHistory),
		PendingOffer:     session.PendingOffer,
		PurchaseHistory:  emptyIfNil(session.PurchaseHistory),
		AgentLogs:        emptyIfNil(session.AgentLogs),
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	// Authentication failure is the only error that rejects a turn outright;
	// no pipeline stage runs.
	if req.AccessCode == "" || req.AccessCode != s.accessCode {
		writeJSON(w, http.StatusUnauthorized, chatResponse{
			Success: false,
			Error:   "Authentication required",
			Response: &agentReply{
				Message:     "Please enter the access code to continue.",
				RawResponse: "Authentication failed",
			},
		})
		return
	}

	out, err := s.svc.SendMessage(r.Context(), conversation.SendMessageInput{
		SessionID: sessionID(r),
		Text:      req.Text,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusInternalServerError, apologeticFailure(err))
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Success: true,
		Response: &agentReply{
			Message:         out.AssistantMessage.Content,
			PurchaseRequest: out.Offer,
			RawResponse:     out.RawResponse,
		},
		AgentData: &agentData{
			ReadinessAssessment: out.Assessment,
			StrategicPlan:       out.Plan,
			ProcessingTimeMS:    out.Latency.Milliseconds(),
			ConversationStage:   out.Stage,
		},
	})
}

func (s *Server) handlePurchaseDecision(w http.ResponseWriter, r *http.Request) {
	var req purchaseDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if !domain.ValidPurchaseOutcome(req.Decision) {
		badRequest(w, "decision must be one of accepted, declined, ignored, timeout")
		return
	}

	decision, err := s.svc.RecordPurchaseDecision(r.Context(), sessionID(r), domain.PurchaseOutcome(req.Decision))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			http.NotFound(w, r)
		case errors.Is(err, domain.ErrNoPendingOffer):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "no pending purchase offer"})
		default:
			internalError(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"decision": decision})
}

func (s *Server) handleUpdatePersonality(w http.ResponseWriter, r *http.Request) {
	var req updatePersonalityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	id := sessionID(r)
	session, err := s.svc.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w)
		return
	}

	// Start from the preset if one was named, otherwise from the current
	// settings, then merge any field-level edits over the top.
	settings := session.Personality
	preset := session.Preset
	if req.Preset != "" {
		settings, preset = domain.PresetPersonality(req.Preset)
	}
	if len(req.Settings) > 0 {
		if err := json.Unmarshal(req.Settings, &settings); err != nil {
			badRequest(w, "invalid settings object")
			return
		}
	}

	if err := s.svc.UpdatePersonality(r.Context(), id, preset, settings); err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"preset": preset, "personality": settings})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearSession(r.Context(), sessionID(r)); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleValidateSettingsPassword is stateless: it answers the validity
// question and nothing else.
func (s *Server) handleValidateSettingsPassword(w http.ResponseWriter, r *http.Request) {
	var req validatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, map[string]bool{"valid": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": req.Password == s.settingsPassword})
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func sessionID(r *http.Request) domain.SessionID {
	return domain.SessionID(chi.URLParam(r, "id"))
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:          string(s.ID),
		Preset:      s.Preset,
		Personality: s.Personality,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func nonNilMessages(msgs []*domain.Message) []*domain.Message {
	if msgs == nil {
		return []*domain.Message{}
	}
	return msgs
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// apologeticFailure is the user-visible shape for unexpected failures: a
// neutral in-character message plus a machine-readable error, never a trace.
func apologeticFailure(err error) chatResponse {
	return chatResponse{
		Success: false,
		Error:   err.Error(),
		Response: &agentReply{
			Message: "Sorry, I'm having trouble thinking right now. Can you try again?",
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func internalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
