package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	OpenAI     OpenAIConfig
	Moderation ModerationConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	// JWTSecret enables bearer-token auth on /api/v1 when non-empty.
	JWTSecret string
}

type OpenAIConfig struct {
	APIKey         string
	EmbeddingModel string
}

// ModerationConfig holds the scoring knobs and input limits. Read once
// at startup; the analyzer gets an immutable copy.
type ModerationConfig struct {
	WordThreshold       float64
	SemanticThreshold   float64
	ChunkSize           int
	ChunkOverlap        int
	MaxWords            int
	MaxChars            int
	AllowlistPath       string
	CacheTTLSeconds     int
	KeepHighestPerLabel bool
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	wordThreshold, err := getEnvFloat("WORD_THRESHOLD", 0.95)
	if err != nil {
		return nil, fmt.Errorf("invalid WORD_THRESHOLD: %w", err)
	}

	semanticThreshold, err := getEnvFloat("SEMANTIC_THRESHOLD", 0.96)
	if err != nil {
		return nil, fmt.Errorf("invalid SEMANTIC_THRESHOLD: %w", err)
	}

	chunkSize, err := getEnvInt("CHUNK_SIZE", 25)
	if err != nil {
		return nil, fmt.Errorf("invalid CHUNK_SIZE: %w", err)
	}

	chunkOverlap, err := getEnvInt("CHUNK_OVERLAP", 8)
	if err != nil {
		return nil, fmt.Errorf("invalid CHUNK_OVERLAP: %w", err)
	}

	maxWords, err := getEnvInt("MAX_WORDS", 35)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_WORDS: %w", err)
	}

	maxChars, err := getEnvInt("MAX_CHARS", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_CHARS: %w", err)
	}

	cacheTTL, err := getEnvInt("SIMILARITY_CACHE_TTL", 300)
	if err != nil {
		return nil, fmt.Errorf("invalid SIMILARITY_CACHE_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel: getEnv("EMBEDDING_MODEL", ""),
		},
		Moderation: ModerationConfig{
			WordThreshold:       wordThreshold,
			SemanticThreshold:   semanticThreshold,
			ChunkSize:           chunkSize,
			ChunkOverlap:        chunkOverlap,
			MaxWords:            maxWords,
			MaxChars:            maxChars,
			AllowlistPath:       getEnv("ALLOWLIST_PATH", ""),
			CacheTTLSeconds:     cacheTTL,
			KeepHighestPerLabel: getEnvBool("KEEP_HIGHEST_PER_LABEL", false),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.OpenAI.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
