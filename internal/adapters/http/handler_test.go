package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/dvirpinch/noa-chatbot-web/internal/adapters/http"
	"github.com/dvirpinch/noa-chatbot-web/internal/adapters/llm"
	"github.com/dvirpinch/noa-chatbot-web/internal/adapters/storage/memory"
	"github.com/dvirpinch/noa-chatbot-web/internal/app/agentflow"
	"github.com/dvirpinch/noa-chatbot-web/internal/app/conversation"
)

const (
	testAccessCode       = "open-sesame"
	testSettingsPassword = "letmein"
)

func newTestServer(t *testing.T, llmClient *llm.MockLLM) *httptest.Server {
	t.Helper()

	store := memory.NewSessionStore()
	pipeline := agentflow.NewOrchestrator(llmClient, agentflow.Options{})
	svc := conversation.NewService(store, pipeline)
	handler := httpadapter.NewServer(svc, testAccessCode, testSettingsPassword)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func putJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func createSession(t *testing.T, ts *httptest.Server, preset string) string {
	t.Helper()

	resp := postJSON(t, ts.URL+"/sessions", map[string]string{"preset": preset})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Session.ID)
	return body.Session.ID
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, llm.NewMockLLM())

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndFetchSession(t *testing.T) {
	ts := newTestServer(t, llm.NewMockLLM())
	id := createSession(t, ts, "Chen")

	resp, err := http.Get(ts.URL + "/sessions/" + id)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Session struct {
			Preset string `json:"preset"`
		} `json:"session"`
		Messages []any `json:"messages"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "Chen", body.Session.Preset)
	assert.NotNil(t, body.Messages)
}

func TestFetchUnknownSession(t *testing.T) {
	ts := newTestServer(t, llm.NewMockLLM())

	resp, err := http.Get(ts.URL + "/sessions/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSendMessageRequiresAccessCode(t *testing.T) {
	ts := newTestServer(t, llm.NewMockLLM())
	id := createSession(t, ts, "")

	resp := postJSON(t, ts.URL+"/sessions/"+id+"/messages", map[string]string{
		"text":        "hi",
		"access_code": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Success  bool   `json:"success"`
		Error    string `json:"error"`
		Response struct {
			Message string `json:"message"`
		} `json:"response"`
	}
	decodeBody(t, resp, &body)
	assert.False(t, body.Success)
	assert.Equal(t, "Authentication required", body.Error)
	assert.Equal(t, "Please enter the access code to continue.", body.Response.Message)
}

func TestSendMessageSuccessShape(t *testing.T) {
	ts := newTestServer(t, llm.NewMockLLM())
	id := createSession(t, ts, "")

	resp := postJSON(t, ts.URL+"/sessions/"+id+"/messages", map[string]string{
		"text":        "hey there",
		"access_code": testAccessCode,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success  bool `json:"success"`
		Response struct {
			Message     string `json:"message"`
			RawResponse string `json:"raw_response"`
		} `json:"response"`
		AgentData struct {
			ReadinessAssessment struct {
				ReadinessPercentage int `json:"readiness_percentage"`
			} `json:"readiness_assessment"`
			StrategicPlan struct {
				Strategy string `json:"strategy"`
			} `json:"strategic_plan"`
			ConversationStage string `json:"conversation_stage"`
		} `json:"agent_data"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Response.Message)
	assert.NotEmpty(t, body.Response.RawResponse)
	assert.Equal(t, 35, body.AgentData.ReadinessAssessment.ReadinessPercentage)
	assert.Equal(t, "build_rapport", body.AgentData.StrategicPlan.Strategy)
	assert.Equal(t, "early", body.AgentData.ConversationStage)
}

func TestSendMessageRequiresText(t *testing.T) {
	ts := newTestServer(t, llm.NewMockLLM())
	id := createSession(t, ts, "")

	resp := postJSON(t, ts.URL+"/sessions/"+id+"/messages", map[string]string{
		"text":        "   ",
		"access_code": testAccessCode,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPurchaseDecisionFlow(t *testing.T) {
	offerReply := "<response>Want this?</response>\n" +
		`{"type": "purchase_request", "content": "Photo set", "price": 25, "description": "Ten shots"}`
	ts := newTestServer(t, llm.NewMockLLM(
		`{"readiness_percentage": 80}`,
		`{"plan_status": "escalate", "strategy": "direct_sell"}`,
		offerReply,
	))
	id := createSession(t, ts, "")

	// No offer yet.
	resp := postJSON(t, ts.URL+"/sessions/"+id+"/purchase-decision", map[string]string{"decision": "accepted"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/sessions/"+id+"/messages", map[string]string{
		"text":        "show me",
		"access_code": testAccessCode,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var chat struct {
		Response struct {
			PurchaseRequest *struct {
				ID string `json:"id"`
			} `json:"purchase_request"`
		} `json:"response"`
	}
	decodeBody(t, resp, &chat)
	require.NotNil(t, chat.Response.PurchaseRequest)

	resp = postJSON(t, ts.URL+"/sessions/"+id+"/purchase-decision", map[string]string{"decision": "accepted"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decided struct {
		Decision struct {
			Decision string `json:"decision"`
			Request  struct {
				ID string `json:"id"`
			} `json:"request"`
		} `json:"decision"`
	}
	decodeBody(t, resp, &decided)
	assert.Equal(t, "accepted", decided.Decision.Decision)
	assert.Equal(t, chat.Response.PurchaseRequest.ID, decided.Decision.Request.ID)
}

func TestPurchaseDecisionRejectsUnknownOutcome(t *testing.T) {
	ts := newTestServer(t, llm.NewMockLLM())
	id := createSession(t, ts, "")

	resp := postJSON(t, ts.URL+"/sessions/"+id+"/purchase-decision", map[string]string{"decision": "maybe"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdatePersonalityMergesPartialEdits(t *testing.T) {
	ts := newTestServer(t, llm.NewMockLLM())
	id := createSession(t, ts, "Chen")

	resp := putJSON(t, ts.URL+"/sessions/"+id+"/personality", map[string]any{
		"settings": map[string]any{"pet_names": "champ"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Preset      string `json:"preset"`
		Personality struct {
			PetNames          string `json:"pet_names"`
			QuestionFrequency int    `json:"question_frequency"`
		} `json:"personality"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "Chen", body.Preset)
	assert.Equal(t, "champ", body.Personality.PetNames)
	// Untouched fields keep the Chen preset values.
	assert.Equal(t, 40, body.Personality.QuestionFrequency)
}

func TestUpdatePersonalitySwitchesPreset(t *testing.T) {
	ts := newTestServer(t, llm.NewMockLLM())
	id := createSession(t, ts, "Chen")

	resp := putJSON(t, ts.URL+"/sessions/"+id+"/personality", map[string]any{"preset": "Riley"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Preset string `json:"preset"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "Riley", body.Preset)
}

func TestClearSessionEndpoint(t *testing.T) {
	ts := newTestServer(t, llm.NewMockLLM())
	id := createSession(t, ts, "")

	resp := postJSON(t, ts.URL+"/sessions/"+id+"/messages", map[string]string{
		"text":        "hi",
		"access_code": testAccessCode,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/sessions/"+id+"/clear", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	getResp, err := http.Get(ts.URL + "/sessions/" + id)
	require.NoError(t, err)
	var snapshot struct {
		Messages []any `json:"messages"`
	}
	decodeBody(t, getResp, &snapshot)
	assert.Empty(t, snapshot.Messages)
}

func TestValidateSettingsPassword(t *testing.T) {
	ts := newTestServer(t, llm.NewMockLLM())

	resp := postJSON(t, ts.URL+"/validate-settings-password", map[string]string{"password": testSettingsPassword})
	var body struct {
		Valid bool `json:"valid"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, body.Valid)

	resp = postJSON(t, ts.URL+"/validate-settings-password", map[string]string{"password": "nope"})
	decodeBody(t, resp, &body)
	assert.False(t, body.Valid)
}
