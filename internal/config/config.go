package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	BaseURL         string
	SessionDuration time.Duration
	SessionSecret   string
	MigrationsPath  string

	// Database (sqlite, postgres, mysql)
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	// LLM provider (openai, gemini, claude, ollama)
	LLMProvider  string
	OpenAIAPIKey string
	GeminiAPIKey string
	ClaudeAPIKey string
	OllamaURL    string
	OllamaModel  string

	// Storage backend (local, s3, r2, drive)
	StorageType      string
	LocalStoragePath string
	AWSRegion        string
	S3Bucket         string
	R2AccountID      string
	R2AccessKey      string
	R2SecretKey      string
	R2Bucket         string
	DriveCredentials string
	DriveFolderID    string

	// Email (ses, smtp)
	EmailProvider string
	EmailFrom     string
	EmailFromName string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string

	// Twilio (SMS and voice)
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	// Face recognition sidecar
	FaceRecognizerURL string
	FaceTolerance     float64

	// OAuth login
	GoogleClientID     string
	GoogleClientSecret string

	// Feature toggles
	EnableFaceRecognition bool
	EnableAIChat          bool
	EnableVoiceCalls      bool
	EnableSMS             bool

	// Limits
	MaxFileSizeMB      int64
	MaxFilesPerUpload  int
	PhotoRetentionDays int
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
		SessionDuration: getDuration("SESSION_DURATION", 24*time.Hour),
		SessionSecret:   getEnv("SESSION_SECRET", "dev-only-secret-change-me"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),

		DatabaseType: getEnv("DB_TYPE", "sqlite"),
		DatabasePath: getEnv("DB_PATH", "./daycare.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		LLMProvider:  getEnv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		ClaudeAPIKey: getEnv("CLAUDE_API_KEY", ""),
		OllamaURL:    getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:  getEnv("OLLAMA_MODEL", "llama3"),

		StorageType:      getEnv("STORAGE_TYPE", "local"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./uploads"),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:         getEnv("AWS_S3_BUCKET", ""),
		R2AccountID:      getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKey:      getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey:      getEnv("R2_SECRET_KEY", ""),
		R2Bucket:         getEnv("R2_BUCKET", ""),
		DriveCredentials: getEnv("GOOGLE_DRIVE_CREDENTIALS", ""),
		DriveFolderID:    getEnv("GOOGLE_DRIVE_FOLDER_ID", ""),

		EmailProvider: getEnv("EMAIL_PROVIDER", "smtp"),
		EmailFrom:     getEnv("EMAIL_FROM_ADDRESS", "noreply@daycaremoments.example"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "DaycareMoments"),
		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getInt("SMTP_PORT", 587),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),

		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),

		FaceRecognizerURL: getEnv("FACE_RECOGNIZER_URL", "http://localhost:8100"),
		FaceTolerance:     getFloat("FACE_TOLERANCE", 0.6),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),

		EnableFaceRecognition: getBool("ENABLE_FACE_RECOGNITION", true),
		EnableAIChat:          getBool("ENABLE_AI_CHAT", true),
		EnableVoiceCalls:      getBool("ENABLE_VOICE_CALLS", false),
		EnableSMS:             getBool("ENABLE_SMS_NOTIFICATIONS", false),

		MaxFileSizeMB:      int64(getInt("MAX_FILE_SIZE_MB", 10)),
		MaxFilesPerUpload:  getInt("MAX_FILES_PER_UPLOAD", 10),
		PhotoRetentionDays: getInt("PHOTO_RETENTION_DAYS", 90),
	}
}

// Validate checks that provider selections are recognized and that the keys
// they need are present. Errors here are fatal at startup, never at call time.
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case "sqlite", "sqlite3", "":
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_TYPE=%s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	case "claude":
		if c.ClaudeAPIKey == "" {
			return fmt.Errorf("CLAUDE_API_KEY is required when LLM_PROVIDER=claude")
		}
	case "ollama":
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.LLMProvider)
	}

	switch c.StorageType {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required when STORAGE_TYPE=s3")
		}
	case "r2":
		if c.R2AccountID == "" || c.R2Bucket == "" {
			return fmt.Errorf("R2_ACCOUNT_ID and R2_BUCKET are required when STORAGE_TYPE=r2")
		}
	case "drive":
		if c.DriveCredentials == "" {
			return fmt.Errorf("GOOGLE_DRIVE_CREDENTIALS is required when STORAGE_TYPE=drive")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}

	switch c.EmailProvider {
	case "ses", "smtp":
	default:
		return fmt.Errorf("unsupported email provider: %s", c.EmailProvider)
	}

	if (c.EnableSMS || c.EnableVoiceCalls) && (c.TwilioAccountSID == "" || c.TwilioAuthToken == "") {
		return fmt.Errorf("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN are required when SMS or voice calls are enabled")
	}

	return nil
}

// MaxFileSizeBytes returns the upload size cap in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
