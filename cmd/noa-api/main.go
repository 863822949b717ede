package main

import (
	"context"
	"log"
	"net/http"

	httpadapter "github.com/dvirpinch/noa-chatbot-web/internal/adapters/http"
	"github.com/dvirpinch/noa-chatbot-web/internal/adapters/llm"
	memstore "github.com/dvirpinch/noa-chatbot-web/internal/adapters/storage/memory"
	"github.com/dvirpinch/noa-chatbot-web/internal/app/agentflow"
	"github.com/dvirpinch/noa-chatbot-web/internal/app/conversation"
	"github.com/dvirpinch/noa-chatbot-web/internal/config"
	"github.com/dvirpinch/noa-chatbot-web/internal/domain"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	var (
		llmClient domain.LLMClient
		err       error
	)

	switch cfg.Backend {
	case config.BackendMock:
		log.Println("[LLM] Using MOCK LLM client")
		llmClient = llm.NewMockLLM()
	case config.BackendGemini:
		log.Printf("[LLM] Using Gemini LLM client (project=%s, model=%s)", cfg.GCPProjectID, cfg.GeminiModel)
		llmClient, err = llm.NewGeminiClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("error initializing Gemini LLM client: %v", err)
		}
	default:
		log.Printf("[LLM] Using chat-completions LLM client (model=%s)", cfg.ModelName)
		llmClient = llm.NewDeepSeekClient(cfg.APIURL, cfg.APIKey, cfg.ModelName, cfg.RequestTimeout)
	}

	log.Println("[STORE] Using in-memory session storage")
	store := memstore.NewSessionStore()

	pipeline := agentflow.NewOrchestrator(llmClient, agentflow.Options{
		AssessorTemperature:  cfg.AssessorTemperature,
		PlannerTemperature:   cfg.PlannerTemperature,
		EarlyStageLimit:      cfg.EarlyStageLimit,
		DevelopingStageLimit: cfg.DevelopingStageLimit,
	})

	svc := conversation.NewService(store, pipeline)
	handler := httpadapter.NewServer(svc, cfg.AccessCode, cfg.SettingsPassword)

	addr := ":" + cfg.Port
	log.Println("Noa API listening on port:", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
