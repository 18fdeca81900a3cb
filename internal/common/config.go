package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Storage   StorageConfig
	OCR       OCRConfig
	Translate TranslateConfig
	Cache     CacheConfig
	Render    RenderConfig
	Queue     QueueConfig
	Log       LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // "postgres" | "sqlite"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	// RetryAttempts and RetryDelay apply to job writes made during a run.
	RetryAttempts int
	RetryDelay    time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr      string
	GRPCAddr      string
	PublicBaseURL string
}

type StorageConfig struct {
	Root           string
	UploadsBucket  string
	OutputsBucket  string
	SigningSecret  string
	UploadURLTTL   time.Duration
	DownloadURLTTL time.Duration
	MaxUploadBytes int64
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftoppm            string
	Tesseract           string
	TessdataDir         string
	Lang                string
	DPI                 int
	MaxPages            int
	MinTextChars        int
	ScannedDensityRatio float64
}

type TranslateConfig struct {
	APIURL         string
	APIKey         string
	MaxChars       int
	Timeout        time.Duration
	Retries        int
	RetryDelay     time.Duration
	RateLimitDelay time.Duration
	Formality      string
	Model          string
	ChunkMode      string // "plain" | "structural"
}

type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

type RenderConfig struct {
	ChromePath   string
	Timeout      time.Duration
	ReviewExport bool
}

type QueueConfig struct {
	Workers    int
	Size       int
	JobTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string // "text" | "json"
}

// LoadConfig loads configuration from environment variables. A .env file in the
// working directory, when present, is applied first without overriding the environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "postgres"),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:      getEnv("HTTP_ADDR", ":8000"),
			GRPCAddr:      getEnv("GRPC_ADDR", ":8081"),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8000"), "/"),
		},
		Storage: StorageConfig{
			Root:           getEnv("STORAGE_ROOT", "./data/blobs"),
			UploadsBucket:  getEnv("UPLOADS_BUCKET", "uploads"),
			OutputsBucket:  getEnv("OUTPUTS_BUCKET", "outputs"),
			SigningSecret:  getEnv("SIGNING_SECRET", ""),
			UploadURLTTL:   getEnvAsDuration("UPLOAD_URL_TTL", 60*time.Second),
			DownloadURLTTL: getEnvAsDuration("DOWNLOAD_URL_TTL", time.Hour),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 50<<20)),
		},
		OCR: OCRConfig{
			Pdftoppm:            getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:           getEnv("TESSERACT_BIN", "tesseract"),
			TessdataDir:         getEnv("TESSDATA_PREFIX", ""),
			Lang:                getEnv("OCR_LANG", "guj+eng"),
			DPI:                 getEnvAsInt("OCR_DPI", 200),
			MaxPages:            getEnvAsInt("OCR_MAX_PAGES", 0),
			MinTextChars:        getEnvAsInt("MIN_TEXT_CHARS", 100),
			ScannedDensityRatio: getEnvAsFloat64("SCANNED_DENSITY_RATIO", 0.0005),
		},
		Translate: TranslateConfig{
			APIURL:         getEnv("SARVAM_API_URL", "https://api.sarvam.ai/v1"),
			APIKey:         getEnv("SARVAM_API_KEY", ""),
			MaxChars:       getEnvAsInt("SARVAM_MAX_CHARS", 1000),
			Timeout:        getEnvAsDuration("TRANSLATE_TIMEOUT", 30*time.Second),
			Retries:        getEnvAsInt("TRANSLATE_RETRIES", 3),
			RetryDelay:     getEnvAsDuration("TRANSLATE_RETRY_DELAY", time.Second),
			RateLimitDelay: getEnvAsDuration("TRANSLATE_RATE_LIMIT", 500*time.Millisecond),
			Formality:      getEnv("TRANSLATE_FORMALITY", "formal"),
			Model:          getEnv("TRANSLATE_MODEL", "mayura:v1"),
			ChunkMode:      getEnv("CHUNK_MODE", "plain"),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			TTL:           getEnvAsDuration("CACHE_TTL", 24*time.Hour),
		},
		Render: RenderConfig{
			ChromePath:   getEnv("CHROME_PATH", ""),
			Timeout:      getEnvAsDuration("RENDER_TIMEOUT", 60*time.Second),
			ReviewExport: getEnvAsBool("REVIEW_EXPORT", false),
		},
		Queue: QueueConfig{
			Workers:    getEnvAsInt("WORKERS", 4),
			Size:       getEnvAsInt("QUEUE_SIZE", 128),
			JobTimeout: getEnvAsDuration("JOB_TIMEOUT", 15*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return NewAppError("CONFIG_ERROR", "DB_DRIVER must be postgres or sqlite", ErrInvalidInput)
	}
	if c.Translate.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "SARVAM_API_KEY is required", ErrInvalidInput)
	}
	if c.Translate.MaxChars < 1 {
		return NewAppError("CONFIG_ERROR", "SARVAM_MAX_CHARS must be positive", ErrInvalidInput)
	}
	switch c.Translate.ChunkMode {
	case "plain", "structural":
	default:
		return NewAppError("CONFIG_ERROR", "CHUNK_MODE must be plain or structural", ErrInvalidInput)
	}
	if c.Storage.SigningSecret == "" {
		return NewAppError("CONFIG_ERROR", "SIGNING_SECRET is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}
