package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Provider ProviderConfig
	Storage  StorageConfig
	SMTP     SMTPConfig
	Ai       AIConfig
	Tiers    TierConfig
	Payment  PaymentConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
	DevMode            bool
}

type DatabaseConfig struct {
	Connection string
}

// ProviderConfig holds the identity-provider settings. AuthorityURL and
// DomainURL are derived from region/pool/domain but can be overridden via
// env, which is also how tests point the OAuth service at a local provider.
type ProviderConfig struct {
	Region         string
	UserPoolID     string
	ClientID       string
	ClientSecret   string
	RedirectURI    string
	FallbackDomain string
	AuthorityURL   string
	DomainURL      string
}

type StorageConfig struct {
	Bucket          string
	CredentialsFile string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AIConfig struct {
	OpenAIKey      string
	SummaryModel   string
	SpeechLanguage string
	SpeechVoice    string
}

type TierConfig struct {
	ConfigPath string // optional JSON file overriding the built-in tier table
}

type PaymentConfig struct {
	MidtransServerKey string
	MidtransEnv       string // "sandbox" or "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	region := getEnv("IDP_REGION", "us-east-1")
	poolID := getEnv("IDP_USER_POOL_ID", "")
	fallbackDomain := getEnv("IDP_FALLBACK_DOMAIN", "")

	authority := getEnv("IDP_AUTHORITY_URL",
		fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, poolID))
	domainURL := getEnv("IDP_DOMAIN_URL", "")
	if domainURL == "" && fallbackDomain != "" {
		domainURL = fmt.Sprintf("https://%s.auth.%s.amazoncognito.com", fallbackDomain, region)
	}

	environment := getEnv("GO_ENV", "development")
	devMode := getEnv("DEV_MODE", "false") == "true"
	if devMode && environment == "production" {
		// The auth bypass must never ride into a production build silently.
		log.Println("WARNING: DEV_MODE ignored because GO_ENV=production")
		devMode = false
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        environment,
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			DevMode:            devMode,
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Provider: ProviderConfig{
			Region:         region,
			UserPoolID:     poolID,
			ClientID:       getEnv("IDP_CLIENT_ID", ""),
			ClientSecret:   getEnv("IDP_CLIENT_SECRET", ""),
			RedirectURI:    getEnv("IDP_REDIRECT_URI", "http://localhost:5173/callback"),
			FallbackDomain: fallbackDomain,
			AuthorityURL:   authority,
			DomainURL:      domainURL,
		},
		Storage: StorageConfig{
			Bucket:          getEnv("STORAGE_BUCKET", "visionvoice-uploads"),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "VisionVoice"),
		},
		Ai: AIConfig{
			OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
			SummaryModel:   getEnv("SUMMARY_MODEL", "gpt-4o-mini"),
			SpeechLanguage: getEnv("SPEECH_LANGUAGE", "en-US"),
			SpeechVoice:    getEnv("SPEECH_VOICE", "en-US-Standard-C"),
		},
		Tiers: TierConfig{
			ConfigPath: getEnv("TIERS_CONFIG_PATH", ""),
		},
		Payment: PaymentConfig{
			MidtransServerKey: getEnv("MIDTRANS_SERVER_KEY", ""),
			MidtransEnv:       getEnv("MIDTRANS_ENV", "sandbox"),
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
