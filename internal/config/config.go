package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	VerifyToken     string
	MetaPageToken   string
	MetaAppSecret   string
	GraphAPIBaseURL string

	LLMProvider  string
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string

	NotionToken      string
	NotionDatabaseID string

	DataDir     string
	CORSOrigins string
	AdminAPIKey string

	// Session aggregation knobs.
	InactivityWindow time.Duration
	MaxLiveTurns     int
	SweepInterval    time.Duration
}

var AppConfig *Config

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	AppConfig = &Config{
		Port:            getEnv("PORT", "3000"),
		VerifyToken:     getEnv("VERIFY_TOKEN", ""),
		MetaPageToken:   getEnv("META_PAGE_TOKEN", ""),
		MetaAppSecret:   getEnv("META_APP_SECRET", ""),
		GraphAPIBaseURL: getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v19.0"),

		LLMProvider:  getEnv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp"),

		NotionToken:      getEnv("NOTION_TOKEN", ""),
		NotionDatabaseID: getEnv("NOTION_DATABASE_ID", ""),

		DataDir:     getEnv("DATA_DIR", "data"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000"),
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),

		InactivityWindow: getEnvMillis("INACTIVITY_WINDOW_MS", 60_000),
		MaxLiveTurns:     getEnvInt("MAX_LIVE_TURNS", 10),
		SweepInterval:    getEnvMillis("SWEEP_INTERVAL_MS", 0),
	}

	if AppConfig.VerifyToken == "" {
		log.Println("⚠️  WARNING: VERIFY_TOKEN not set - webhook verification will always fail")
	}

	if AppConfig.MetaAppSecret == "" {
		log.Println("⚠️  WARNING: META_APP_SECRET not set - webhook signatures will NOT be checked!")
	}

	if AppConfig.AdminAPIKey == "" {
		log.Println("⚠️  WARNING: ADMIN_API_KEY not set - Admin endpoints will be UNPROTECTED!")
	} else {
		log.Println("✅ Admin API protection enabled")
	}

	log.Printf("Config loaded - Port: %s, Provider: %s, Window: %s, DataDir: %s",
		AppConfig.Port, AppConfig.LLMProvider, AppConfig.InactivityWindow, AppConfig.DataDir)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s (%q), using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Millisecond
}
