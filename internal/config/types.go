package config

import "time"

type Config struct {
	Environment        string
	Port               string
	RemoteActionURL    string
	RedisURL           string
	SessionTTL         time.Duration
	AgentActionTimeout time.Duration
	ChatRateLimit      string
	AllowedOrigins     []string
}

// command-line overrides for cmd/server
type Flags struct {
	Port            string
	EnvFile         string
	RemoteActionURL string
}

// command-line options for cmd/tui
type ClientFlags struct {
	ServerURL string
	SessionID string
}
