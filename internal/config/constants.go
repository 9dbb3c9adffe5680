package config

import "time"

// Application constants.
const (
	AppName    = "Pontos Pulse"
	AppVersion = "1.2.0"

	// Rate limiting
	DefaultRateLimit = 100 // requests per minute
	DefaultBurstSize = 50

	// Cache settings
	DefaultCacheTTL = 5 * time.Minute

	// Network timeouts
	DefaultHTTPTimeout  = 30 * time.Second
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// File paths (relative to working directory)
	DefaultDataDir = "data"
	DefaultLogsDir = "logs"
)

// NeutralColor is used for entities without a configured display color.
const NeutralColor = "#9E9E9E"

// EntityColors maps entity names to their fixed dashboard colors.
var EntityColors = map[string]string{
	"Ana":     "#4CAF50",
	"Bruno":   "#2196F3",
	"Carla":   "#FF9800",
	"Diego":   "#9C27B0",
	"Marcelo": "#607D8B",
}

// ColorFor returns the display color for an entity, falling back to the
// neutral default for unmapped names.
func ColorFor(entity string) string {
	if c, ok := EntityColors[entity]; ok {
		return c
	}
	return NeutralColor
}
