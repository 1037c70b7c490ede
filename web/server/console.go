package server

import (
	"context"
	"time"

	"github.com/df07/go-satellite-raytracer/internal/logging"
)

// ConsoleMessage is a log line mirrored to connected viewers
type ConsoleMessage struct {
	Type      string    `json:"type"` // always "log"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// consoleLogger forwards info and above to the hub in addition to the base logger
type consoleLogger struct {
	base logging.Logger
	hub  *Hub
}

// NewConsoleLogger wraps base so viewers see server log messages in their console
func NewConsoleLogger(base logging.Logger, hub *Hub) logging.Logger {
	if base == nil {
		base = logging.Noop()
	}
	return &consoleLogger{base: base, hub: hub}
}

func (c *consoleLogger) With(fields ...logging.Field) logging.Logger {
	return &consoleLogger{base: c.base.With(fields...), hub: c.hub}
}

func (c *consoleLogger) Debug(ctx context.Context, msg string, fields ...logging.Field) {
	c.base.Debug(ctx, msg, fields...)
}

func (c *consoleLogger) Info(ctx context.Context, msg string, fields ...logging.Field) {
	c.base.Info(ctx, msg, fields...)
	c.publish(msg, "info")
}

func (c *consoleLogger) Warn(ctx context.Context, msg string, fields ...logging.Field) {
	c.base.Warn(ctx, msg, fields...)
	c.publish(msg, "warning")
}

func (c *consoleLogger) Error(ctx context.Context, msg string, fields ...logging.Field) {
	c.base.Error(ctx, msg, fields...)
	c.publish(msg, "error")
}

// publish never blocks; viewers with a full queue miss the line
func (c *consoleLogger) publish(msg, level string) {
	if c.hub == nil || c.hub.Count() == 0 {
		return
	}
	c.hub.BroadcastJSON(ConsoleMessage{
		Type:      "log",
		Message:   msg,
		Timestamp: time.Now(),
		Level:     level,
	})
}
