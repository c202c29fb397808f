package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort               = "8000"
	DefaultSessionTTL         = 2 * time.Hour
	DefaultAgentActionTimeout = 10 * time.Minute
	DefaultChatRateLimit      = "20-M"
)

// loads configuration from environment variables. a missing .env file is
// not an error: production environments inject variables directly.
func LoadEnvironmentVariables(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = DefaultPort
	}

	remoteActionURL := os.Getenv("REMOTE_ACTION_URL")
	if remoteActionURL == "" {
		remoteActionURL = "http://localhost:" + port
	}

	sessionTTL, err := durationEnv("SESSION_TTL", DefaultSessionTTL)
	if err != nil {
		return nil, err
	}

	actionTimeout, err := durationEnv("AGENT_ACTION_TIMEOUT", DefaultAgentActionTimeout)
	if err != nil {
		return nil, err
	}

	chatRateLimit := os.Getenv("CHAT_RATE_LIMIT")
	if chatRateLimit == "" {
		chatRateLimit = DefaultChatRateLimit
	}

	return &Config{
		Environment:        environment,
		Port:               port,
		RemoteActionURL:    strings.TrimRight(remoteActionURL, "/"),
		RedisURL:           os.Getenv("REDIS_URL"),
		SessionTTL:         sessionTTL,
		AgentActionTimeout: actionTimeout,
		ChatRateLimit:      chatRateLimit,
		AllowedOrigins:     splitList(os.Getenv("ALLOWED_ORIGINS")),
	}, nil
}

// applies command-line overrides on top of the environment
func (c *Config) Apply(f Flags) {
	if f.Port != "" {
		c.Port = f.Port
	}

	if f.RemoteActionURL != "" {
		c.RemoteActionURL = strings.TrimRight(f.RemoteActionURL, "/")
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}

	return d, nil
}

func splitList(raw string) []string {
	var out []string

	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
