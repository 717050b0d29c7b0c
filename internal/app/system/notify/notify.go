// Package notify delivers operator-facing notices (success and error
// messages after an action). The HTTP layer also echoes the message in the
// JSON envelope; a Sink is where the notice goes beyond that response.
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Kinds of notice.
const (
	Success = "success"
	Error   = "error"
	Info    = "info"
)

// Sink receives notices.
type Sink interface {
	Notify(ctx context.Context, kind, message string)
}

// Log writes notices to zap.
type Log struct {
	L *zap.Logger
}

// Notify implements Sink.
func (s Log) Notify(_ context.Context, kind, message string) {
	if s.L == nil {
		return
	}
	fields := []zap.Field{zap.String("kind", kind), zap.String("message", message)}
	if kind == Error {
		s.L.Warn("notice", fields...)
		return
	}
	s.L.Info("notice", fields...)
}

// Notice is one delivered message.
type Notice struct {
	Kind    string
	Message string
}

// Memory keeps notices in order. Handler tests use it to assert on what the
// operator was told.
type Memory struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Sink.
func (m *Memory) Notify(_ context.Context, kind, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, Notice{Kind: kind, Message: message})
}

// Notices returns a copy of everything received.
func (m *Memory) Notices() []Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notice(nil), m.notices...)
}

// Nop discards notices.
type Nop struct{}

// Notify implements Sink.
func (Nop) Notify(context.Context, string, string) {}
