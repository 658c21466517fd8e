package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Upload   UploadConfig
	Azure    AzureConfig
	Ai       AIConfig
	SMTP     SMTPConfig
	Client   ClientConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JwtSecret   string
	TokenExpiry time.Duration
}

type UploadConfig struct {
	Directory        string
	MaxFileSizeMB    int
	AllowedMimeTypes []string
	JobTopic         string
}

type AzureConfig struct {
	Endpoint string
	Key      string
	ModelID  string
}

type AIConfig struct {
	LLMProvider           string // "ollama" or "azure-openai"
	LLMModel              string
	OllamaBaseURL         string
	AzureOpenAIEndpoint   string
	AzureOpenAIKey        string
	AzureOpenAIDeployment string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

// ClientConfig drives the upload CLI (cmd/upload).
type ClientConfig struct {
	ServerURL    string
	Token        string
	StatusSource string // "websocket" or "simulated"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret:   getEnv("JWT_SECRET", ""),
			TokenExpiry: time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		},
		Upload: UploadConfig{
			Directory:        getEnv("UPLOAD_DIRECTORY", "/tmp/uploads"),
			MaxFileSizeMB:    getEnvAsInt("MAX_FILE_SIZE_MB", 50),
			AllowedMimeTypes: getEnvAsSlice("ALLOWED_MIME_TYPES", []string{"application/pdf"}),
			JobTopic:         getEnv("PROCESS_DOCUMENT_TOPIC_NAME", "PROCESS_DOCUMENT"),
		},
		Azure: AzureConfig{
			Endpoint: getEnv("AZURE_DOC_INTELLIGENCE_ENDPOINT", ""),
			Key:      getEnv("AZURE_DOC_INTELLIGENCE_KEY", ""),
			ModelID:  getEnv("AZURE_DOC_INTELLIGENCE_MODEL", "prebuilt-document"),
		},
		Ai: AIConfig{
			LLMProvider:           getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:              getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:         getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			AzureOpenAIEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
			AzureOpenAIKey:        getEnv("AZURE_OPENAI_KEY", ""),
			AzureOpenAIDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT", "gpt-4"),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "DocIntelligence"),
		},
		Client: ClientConfig{
			ServerURL:    getEnv("CLIENT_SERVER_URL", "http://localhost:3000"),
			Token:        getEnv("CLIENT_TOKEN", ""),
			StatusSource: getEnv("CLIENT_STATUS_SOURCE", "websocket"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	parts := strings.Split(strValue, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
