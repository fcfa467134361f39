package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Razorpay RazorpayConfig
	OpenAI   OpenAIConfig
	Qdrant   QdrantConfig
	Storage  StorageConfig
	Google   GoogleConfig
	Email    EmailConfig
	Credits  CreditsConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret       string
	APIKeySecret string
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

type OpenAIConfig struct {
	APIKey         string
	EmbeddingModel string
	ChatModel      string
}

type QdrantConfig struct {
	Host   string
	Port   string
	APIKey string
	UseTLS bool
}

type StorageConfig struct {
	Bucket string
	Region string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	FrontendURL  string
}

type EmailConfig struct {
	ResendAPIKey string
	From         string
}

type CreditsConfig struct {
	// When true, a failed retrieval call refunds the credits deducted for it.
	// Off by default: the attempt is billable, not the outcome.
	RefundOnFailure bool
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "5000"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", ""),
			APIKeySecret: getEnv("API_KEY_SECRET", ""),
		},
		Razorpay: RazorpayConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			ChatModel:      getEnv("OPENAI_CHAT_MODEL", "gpt-4.1-mini"),
		},
		Qdrant: QdrantConfig{
			Host:   getEnv("QDRANT_HOST", "localhost"),
			Port:   getEnv("QDRANT_PORT", "6334"),
			APIKey: getEnv("QDRANT_API_KEY", ""),
			UseTLS: getEnvBool("QDRANT_USE_TLS", true),
		},
		Storage: StorageConfig{
			Bucket: getEnv("S3_BUCKET", "chatstack-uploads"),
			Region: getEnv("S3_REGION", "ap-south-1"),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
			FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:5173"),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", "ChatStack <noreply@chatstack.app>"),
		},
		Credits: CreditsConfig{
			RefundOnFailure: getEnvBool("CREDIT_REFUND_ON_FAILURE", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
