package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend selects which LLM client the pipeline talks to.
type Backend string

const (
	BackendDeepSeek Backend = "deepseek"
	BackendGemini   Backend = "gemini"
	BackendMock     Backend = "mock"
)

type Config struct {
	Port string

	Backend Backend

	// Chat-completions backend (OpenAI-style wire contract).
	APIURL    string
	APIKey    string
	ModelName string

	// Gemini backend.
	GCPProjectID string
	GCPLocation  string
	GeminiModel  string

	// One bound per remote call; a stage that exceeds it takes its
	// fallback path.
	RequestTimeout time.Duration

	// Stage one and two run cooler than the writer for steadier
	// structured output. The writer keeps the provider default.
	AssessorTemperature float64
	PlannerTemperature  float64

	// Conversation-stage thresholds: fewer prior messages than
	// EarlyStageLimit is "early", fewer than DevelopingStageLimit is
	// "developing", anything beyond is "established".
	EarlyStageLimit      int
	DevelopingStageLimit int

	// Credentials for the two exposed boundaries.
	AccessCode       string
	SettingsPassword string

	DefaultPreset string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getFloatEnv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Load reads all env vars (a local .env is honored if present) and builds
// the config. The result is immutable after startup.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("NOA_PORT", "8080"),

		Backend: Backend(getEnv("NOA_LLM_BACKEND", string(BackendDeepSeek))),

		APIURL:    getEnv("NOA_API_URL", "https://api.deepseek.com/v1/chat/completions"),
		APIKey:    getEnv("NOA_API_KEY", ""),
		ModelName: getEnv("NOA_MODEL_NAME", "deepseek-chat"),

		GCPProjectID: getEnv("NOA_GCP_PROJECT", ""),
		GCPLocation:  getEnv("NOA_GCP_LOCATION", "us-central1"),
		GeminiModel:  getEnv("NOA_GEMINI_MODEL", "gemini-2.5-flash"),

		RequestTimeout: time.Duration(getIntEnv("NOA_REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,

		AssessorTemperature: getFloatEnv("NOA_ASSESSOR_TEMPERATURE", 0.2),
		PlannerTemperature:  getFloatEnv("NOA_PLANNER_TEMPERATURE", 0.2),

		EarlyStageLimit:      getIntEnv("NOA_STAGE_EARLY_LIMIT", 3),
		DevelopingStageLimit: getIntEnv("NOA_STAGE_DEVELOPING_LIMIT", 10),

		AccessCode:       getEnv("NOA_ACCESS_CODE", ""),
		SettingsPassword: getEnv("NOA_SETTINGS_PASSWORD", ""),

		DefaultPreset: getEnv("NOA_DEFAULT_PRESET", "Chen"),
	}

	switch cfg.Backend {
	case BackendDeepSeek:
		if cfg.APIKey == "" {
			log.Fatal("NOA_API_KEY must be set for the deepseek backend")
		}
	case BackendGemini:
		if cfg.GCPProjectID == "" {
			log.Fatal("NOA_GCP_PROJECT must be set for the gemini backend")
		}
	case BackendMock:
	default:
		log.Fatalf("unknown NOA_LLM_BACKEND %q", cfg.Backend)
	}

	if cfg.AccessCode == "" {
		log.Fatal("NOA_ACCESS_CODE must be set")
	}
	if cfg.SettingsPassword == "" {
		log.Fatal("NOA_SETTINGS_PASSWORD must be set")
	}

	return cfg
}
