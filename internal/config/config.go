package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	Mode       string
	ServerPort string
	JwtSecret  string
	Issuer     string

	DbDriver   string
	DbHost     string
	DbPort     string
	DbUser     string
	DbPassword string
	DbName     string
	DbDSN      string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string
	PresignTTL     time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EventsChannel string

	CORSAllowedOrigins string

	DispersionThreshold float64
	AreaPrefixLength    int
	ScoreScale          float64
	WorkflowPolicyFile  string
	AutoCloseInterval   time.Duration
)

func LoadConfig() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	Mode = getEnv("APP_MODE", "development")
	ServerPort = getEnv("SERVER_PORT", "8080")
	JwtSecret = getEnv("JWT_SECRET", "defaultsecret")
	Issuer = getEnv("JWT_ISSUER", "grant-review")

	DbDriver = getEnv("DB_DRIVER", "postgres")
	DbHost = getEnv("DB_HOST", "localhost")
	DbPort = getEnv("DB_PORT", "5432")
	DbUser = getEnv("DB_USER", "postgres")
	DbPassword = getEnv("DB_PASSWORD", "password")
	DbName = getEnv("DB_NAME", "grant_review")
	DbDSN = getEnv("DB_DSN", "")

	MinioEndpoint = getEnv("MINIO_ENDPOINT", "")
	MinioAccessKey = getEnv("MINIO_ACCESS_KEY", "minioadmin")
	MinioSecretKey = getEnv("MINIO_SECRET_KEY", "minioadmin")
	MinioBucket = getEnv("MINIO_BUCKET", "proposal-attachments")
	MinioUseSSL = getEnvBool("MINIO_USE_SSL", false)
	PresignTTL = getEnvDuration("ATTACHMENT_URL_TTL", 15*time.Minute)

	SMTPHost = getEnv("SMTP_HOST", "")
	SMTPPort = getEnvInt("SMTP_PORT", 587)
	SMTPUser = getEnv("SMTP_USER", "")
	SMTPPassword = getEnv("SMTP_PASSWORD", "")
	SMTPFrom = getEnv("SMTP_FROM", "no-reply@grant-review.local")

	RedisAddr = getEnv("REDIS_ADDR", "")
	RedisPassword = getEnv("REDIS_PASSWORD", "")
	RedisDB = getEnvInt("REDIS_DB", 0)
	EventsChannel = getEnv("EVENTS_CHANNEL", "grant-review.events")

	CORSAllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	DispersionThreshold = getEnvFloat("DISPERSION_THRESHOLD", 3.0)
	AreaPrefixLength = getEnvInt("AREA_PREFIX_LENGTH", 1)
	ScoreScale = getEnvFloat("SCORE_SCALE", 10)
	WorkflowPolicyFile = getEnv("WORKFLOW_POLICY_FILE", "")
	AutoCloseInterval = getEnvDuration("AUTO_CLOSE_INTERVAL", 0)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
