package tui

import (
	"strings"
	"time"
)

const (
	// agent turns can wait on a human decision for minutes
	chatRequestTimeout = 15 * time.Minute

	connectTimeout = 10 * time.Second
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10

	eventBufferSize = 64
)

// maps http(s)://host to ws(s)://host
func websocketURL(serverURL string) string {
	base := strings.TrimRight(serverURL, "/")

	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}

	return base + "/api/v1/ws"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n]) + "…"
}
