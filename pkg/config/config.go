package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Transcript sources
const (
	TranscriptSourceMinIO      = "minio"
	TranscriptSourceAssemblyAI = "assemblyai"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Cache drivers
const (
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Storage    StorageConfig
	Scheduler  SchedulerConfig
	Pipeline   PipelineConfig
	Groq       GroqConfig
	Jira       JiraConfig
	AssemblyAI AssemblyAIConfig
	LiveKit    LiveKitConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Driver   string
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// JWTConfig holds JWT configuration. An empty AccessSecret disables API auth.
type JWTConfig struct {
	AccessSecret string
	Issuer       string
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Prefix          string
	UseSSL          bool
}

// SchedulerConfig controls the polling loop
type SchedulerConfig struct {
	PollInterval     time.Duration `envconfig:"SCHEDULER_POLL_INTERVAL" default:"30s"`
	MaxConcurrent    int           `envconfig:"SCHEDULER_MAX_CONCURRENT" default:"4"`
	AutoStart        bool          `envconfig:"SCHEDULER_AUTOSTART" default:"true"`
	FetchTimeout     time.Duration `envconfig:"SCHEDULER_FETCH_TIMEOUT" default:"30s"`
	TranscriptSource string        `envconfig:"TRANSCRIPT_SOURCE" default:"minio"`
}

// PipelineConfig controls per-run behaviour
type PipelineConfig struct {
	StageTimeout time.Duration `envconfig:"PIPELINE_STAGE_TIMEOUT" default:"60s"`
	// RunTimeout bounds a whole scheduled run; zero relies on StageTimeout
	RunTimeout time.Duration `envconfig:"PIPELINE_RUN_TIMEOUT" default:"0s"`
	LogStarted bool          `envconfig:"PIPELINE_LOG_STARTED" default:"false"`
}

// GroqConfig holds Groq API configuration
type GroqConfig struct {
	APIKey  string `envconfig:"GROQ_API_KEY"`
	BaseURL string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com"`
	Model   string `envconfig:"GROQ_MODEL" default:"llama-3.1-8b-instant"`
}

// JiraConfig holds Jira Cloud configuration
type JiraConfig struct {
	Server     string   `envconfig:"JIRA_SERVER"`
	Email      string   `envconfig:"JIRA_EMAIL"`
	APIToken   string   `envconfig:"JIRA_API_TOKEN"`
	OAuthToken string   `envconfig:"JIRA_OAUTH_TOKEN"`
	ProjectKey string   `envconfig:"JIRA_PROJECT_KEY"`
	IssueType  string   `envconfig:"JIRA_ISSUE_TYPE" default:"Task"`
	Labels     []string `envconfig:"JIRA_LABELS" default:"meeting-action-item"`

	// TeamMembers restricts assignees to this roster when set
	TeamMembers   []string          `envconfig:"JIRA_TEAM_MEMBERS"`
	MemberAliases map[string]string `envconfig:"JIRA_MEMBER_ALIASES"`
}

// AssemblyAIConfig holds AssemblyAI configuration
type AssemblyAIConfig struct {
	APIKey        string `envconfig:"ASSEMBLYAI_API_KEY"`
	BaseURL       string `envconfig:"ASSEMBLYAI_BASE_URL"`
	WebhookSecret string `envconfig:"ASSEMBLYAI_WEBHOOK_SECRET"`
	ListLimit     int64  `envconfig:"ASSEMBLYAI_LIST_LIMIT" default:"50"`
}

// LiveKitConfig holds the credentials used to verify LiveKit webhooks
type LiveKitConfig struct {
	APIKey    string `envconfig:"LIVEKIT_API_KEY"`
	APISecret string `envconfig:"LIVEKIT_API_SECRET"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("STORE_DRIVER", StoreDriverPostgres),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "meeting_processor"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),

			// sql-migrate runs the embedded migrations at startup
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Driver:   getEnv("CACHE_DRIVER", CacheDriverRedis),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("REDIS_COMPLETION_TTL", "24h"),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", ""),
			Issuer:       getEnv("JWT_ISSUER", "meeting-processor"),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "meeting-transcripts"),
			Prefix:          getEnv("STORAGE_TRANSCRIPT_PREFIX", "transcripts/"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
	}

	if err := config.loadProcessing(); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadProcessing decodes the scheduler, pipeline and collaborator sections
func (c *Config) loadProcessing() error {
	sections := map[string]interface{}{
		"scheduler":  &c.Scheduler,
		"pipeline":   &c.Pipeline,
		"groq":       &c.Groq,
		"jira":       &c.Jira,
		"assemblyai": &c.AssemblyAI,
		"livekit":    &c.LiveKit,
	}
	for name, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return fmt.Errorf("failed to load %s config: %w", name, err)
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Scheduler.PollInterval <= 0 {
		return fmt.Errorf("SCHEDULER_POLL_INTERVAL must be positive")
	}
	if c.Scheduler.MaxConcurrent <= 0 {
		return fmt.Errorf("SCHEDULER_MAX_CONCURRENT must be positive")
	}
	switch c.Scheduler.TranscriptSource {
	case TranscriptSourceMinIO, TranscriptSourceAssemblyAI:
	default:
		return fmt.Errorf("unknown TRANSCRIPT_SOURCE %q", c.Scheduler.TranscriptSource)
	}
	switch c.Database.Driver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Database.Driver)
	}
	switch c.Redis.Driver {
	case CacheDriverRedis, CacheDriverMemory:
	default:
		return fmt.Errorf("unknown CACHE_DRIVER %q", c.Redis.Driver)
	}
	return nil
}

// JiraConfigured reports whether issue creation has enough credentials to run
func (c *Config) JiraConfigured() bool {
	j := c.Jira
	if j.Server == "" || j.ProjectKey == "" {
		return false
	}
	return j.OAuthToken != "" || (j.Email != "" && j.APIToken != "")
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

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
