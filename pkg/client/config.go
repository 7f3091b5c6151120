package client

import (
	"net/http"
	"time"
)

// Config controls how the client connects.
type Config struct {
	URL              string
	Header           http.Header
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

// DefaultConfig returns sensible defaults. A zero timeout disables it.
func DefaultConfig() Config {
	return Config{
		URL:              "ws://localhost:8080/api/ws/signal",
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
	}
}
