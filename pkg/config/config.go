package config

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Storage    StorageConfig
	JWT        JWTConfig
	OpenAI     OpenAIConfig
	AssemblyAI AssemblyAIConfig
	Speech     SpeechConfig
	Pipeline   PipelineConfig
	Checkpoint CheckpointConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development" validate:"oneof=development staging production test"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10" validate:"gte=0"`
}

// DatabaseConfig holds database configuration.
// The artifact persister is only started when Enabled is true.
type DatabaseConfig struct {
	Enabled     bool   `envconfig:"ENABLED" default:"false"`
	Host        string `envconfig:"HOST" default:"localhost"`
	Port        string `envconfig:"PORT" default:"5432"`
	User        string `envconfig:"USER" default:"postgres"`
	Password    string `envconfig:"PASSWORD" default:"postgres"`
	Name        string `envconfig:"NAME" default:"talk_assistant"`
	SSLMode     string `envconfig:"SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"MAX_CONNS" default:"25" validate:"gte=1"`
	MinConns    int    `envconfig:"MIN_CONNS" default:"5" validate:"gte=0"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

// StorageConfig holds object storage configuration for generated media
type StorageConfig struct {
	Enabled         bool          `envconfig:"ENABLED" default:"false"`
	Endpoint        string        `envconfig:"ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string        `envconfig:"ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string        `envconfig:"SECRET_KEY" default:"minioadmin"`
	BucketName      string        `envconfig:"BUCKET" default:"talk-assistant"`
	UseSSL          bool          `envconfig:"USE_SSL" default:"false"`
	PublicURL       string        `envconfig:"PUBLIC_URL"`
	URLExpiry       time.Duration `envconfig:"URL_EXPIRY" default:"24h"`
}

// JWTConfig holds JWT configuration. An empty secret disables API auth.
type JWTConfig struct {
	AccessSecret string        `envconfig:"ACCESS_SECRET"`
	AccessExpiry time.Duration `envconfig:"ACCESS_EXPIRY" default:"12h"`
	Issuer       string        `envconfig:"ISSUER" default:"talk-assistant"`
}

// OpenAIConfig holds settings for the chat, image and transcription API
type OpenAIConfig struct {
	APIKey             string        `envconfig:"API_KEY"`
	BaseURL            string        `envconfig:"BASE_URL" default:"https://api.openai.com" validate:"url"`
	ChatModel          string        `envconfig:"CHAT_MODEL" default:"gpt-4-0613"`
	QuestionModel      string        `envconfig:"QUESTION_MODEL" default:"gpt-4"`
	ImageModel         string        `envconfig:"IMAGE_MODEL"`
	ImageSize          string        `envconfig:"IMAGE_SIZE" default:"1024x1024"`
	TranscriptionModel string        `envconfig:"TRANSCRIPTION_MODEL" default:"whisper-1"`
	Timeout            time.Duration `envconfig:"TIMEOUT" default:"90s"`
}

// AssemblyAIConfig holds settings for the alternate transcriber
type AssemblyAIConfig struct {
	APIKey  string `envconfig:"API_KEY"`
	BaseURL string `envconfig:"BASE_URL"`
}

// SpeechConfig holds Google text-to-speech settings.
// Without an API key the client falls back to application default credentials.
type SpeechConfig struct {
	APIKey        string        `envconfig:"API_KEY"`
	BaseURL       string        `envconfig:"BASE_URL" default:"https://texttospeech.googleapis.com" validate:"url"`
	LanguageCode  string        `envconfig:"LANGUAGE_CODE" default:"en-US"`
	AudioEncoding string        `envconfig:"AUDIO_ENCODING" default:"MP3"`
	SpeakingRate  float64       `envconfig:"SPEAKING_RATE" default:"1.2" validate:"gt=0"`
	Pitch         float64       `envconfig:"PITCH" default:"0"`
	Timeout       time.Duration `envconfig:"TIMEOUT" default:"30s"`
}

// PipelineConfig holds orchestration settings
type PipelineConfig struct {
	ChunksPerChapter      int           `envconfig:"CHUNKS_PER_CHAPTER" default:"6" validate:"gte=1"`
	ChunksPerIllustration int           `envconfig:"CHUNKS_PER_ILLUSTRATION" default:"6" validate:"gte=1"`
	IllustrationStyle     string        `envconfig:"ILLUSTRATION_STYLE" default:"Sumi-e."`
	Transcriber           string        `envconfig:"TRANSCRIBER" default:"openai" validate:"oneof=openai assemblyai"`
	CallAttempts          int           `envconfig:"CALL_ATTEMPTS" default:"3" validate:"gte=1"`
	CallTimeout           time.Duration `envconfig:"CALL_TIMEOUT" default:"60s"`
	TaskTimeout           time.Duration `envconfig:"TASK_TIMEOUT" default:"5m"`
	PoolSize              int           `envconfig:"POOL_SIZE" default:"64" validate:"gte=1"`
	PullQuoteCutoff       int           `envconfig:"PULL_QUOTE_CUTOFF" default:"50" validate:"gte=0,lte=100"`
	TermScoreCutoff       int           `envconfig:"TERM_SCORE_CUTOFF" default:"70" validate:"gte=0,lte=100"`
	TermMatchThreshold    float64       `envconfig:"TERM_MATCH_THRESHOLD" default:"0.6" validate:"gte=0,lte=1"`
	AutoAskQuestions      bool          `envconfig:"AUTO_ASK_QUESTIONS" default:"false"`
}

// CheckpointConfig selects where recording snapshots are written
type CheckpointConfig struct {
	Backend    string        `envconfig:"BACKEND" default:"memory" validate:"oneof=none memory redis sqlite"`
	TTL        time.Duration `envconfig:"TTL" default:"24h"`
	SQLitePath string        `envconfig:"SQLITE_PATH" default:"checkpoints.sqlite"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{}
	sections := []struct {
		prefix string
		target interface{}
	}{
		{"", &config.Server},
		{"DB", &config.Database},
		{"REDIS", &config.Redis},
		{"STORAGE", &config.Storage},
		{"JWT", &config.JWT},
		{"OPENAI", &config.OpenAI},
		{"ASSEMBLYAI", &config.AssemblyAI},
		{"TTS", &config.Speech},
		{"PIPELINE", &config.Pipeline},
		{"CHECKPOINT", &config.Checkpoint},
	}
	for _, s := range sections {
		if err := envconfig.Process(s.prefix, s.target); err != nil {
			return nil, fmt.Errorf("failed to process %s config: %w", s.prefix, err)
		}
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Pipeline.Transcriber == "assemblyai" && c.AssemblyAI.APIKey == "" {
		return fmt.Errorf("ASSEMBLYAI_API_KEY is required when PIPELINE_TRANSCRIBER=assemblyai")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
