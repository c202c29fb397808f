package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"codeberg.org/notecanvas/server/internal/logger"
)

func getAllowedWebSocketOrigins() []string {
	var origins []string

	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return origins
}

func CheckOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	if os.Getenv("ENVIRONMENT") != "production" {
		return true
	}

	if origin == "" {
		logger.Warn("websocket connection with no origin header")
		return false
	}

	allowedOrigins := getAllowedWebSocketOrigins()

	if len(allowedOrigins) == 0 {
		logger.Warn("websocket origin rejected - ALLOWED_ORIGINS not configured",
			"origin", origin,
		)
		return false
	}

	if slices.Contains(allowedOrigins, origin) {
		return true
	}

	logger.Warn("websocket origin rejected - not in allowed origins",
		"origin", origin,
		"allowed_origins", allowedOrigins,
	)

	return false
}

func GenerateClientID() string {
	return uuid.New().String()
}

// builds a message with payload encoded as JSON
func NewMessage(msgType, sessionID string, payload any) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}

	return &Message{
		Type:      msgType,
		SessionID: sessionID,
		Timestamp: time.Now(),
		Payload:   raw,
	}, nil
}

func (m *Message) UnmarshalPayload(v any) error {
	if len(m.Payload) == 0 {
		return ErrInvalidMessage
	}

	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	return nil
}

// hides internals from error details in production
func sanitizeErrorString(details string) string {
	if os.Getenv("ENVIRONMENT") != "production" {
		return details
	}

	lower := strings.ToLower(details)

	switch {
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		return "request timed out"
	case strings.Contains(lower, "connection") || strings.Contains(lower, "network"):
		return "connection error occurred"
	case strings.Contains(lower, "invalid") || strings.Contains(lower, "unmarshal"):
		return "invalid request"
	}

	return "an error occurred"
}
