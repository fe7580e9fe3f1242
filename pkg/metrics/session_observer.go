package metrics

import (
	"context"
	"encoding/hex"
	"time"
)

// SessionObserver provides observability hooks for a cascade-crypt session:
// the hybrid handshake and the triple-cascade encrypt/decrypt calls that
// follow it. Attach one per session to automatically record metrics and
// traces.
type SessionObserver struct {
	collector *Collector
	tracer    Tracer
	logger    *Logger
	sessionID string
	role      string
}

// SessionObserverConfig configures a session observer.
type SessionObserverConfig struct {
	Collector *Collector
	Tracer    Tracer
	Logger    *Logger
	SessionID []byte
	Role      string // "initiator" or "responder"
}

// NewSessionObserver creates a new session observer.
func NewSessionObserver(cfg SessionObserverConfig) *SessionObserver {
	if cfg.Collector == nil {
		cfg.Collector = Global()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = GetTracer()
	}
	if cfg.Logger == nil {
		cfg.Logger = GetLogger()
	}

	sessionID := ""
	if len(cfg.SessionID) > 0 {
		sessionID = hex.EncodeToString(cfg.SessionID[:min(8, len(cfg.SessionID))])
	}

	return &SessionObserver{
		collector: cfg.Collector,
		tracer:    cfg.Tracer,
		logger: cfg.Logger.Named("session").With(Fields{
			"session_id": sessionID,
			"role":       cfg.Role,
		}),
		sessionID: sessionID,
		role:      cfg.Role,
	}
}

// OnSessionStart should be called when a new session is created.
func (o *SessionObserver) OnSessionStart() {
	o.collector.SessionStarted()
	o.logger.Info("session started")
}

// OnSessionEnd should be called when a session ends.
func (o *SessionObserver) OnSessionEnd() {
	o.collector.SessionEnded()
	o.logger.Info("session ended")
}

// OnSessionFailed should be called when a session fails to establish.
func (o *SessionObserver) OnSessionFailed(err error) {
	o.collector.SessionFailed()
	o.logger.Error("session failed", Fields{"error": err.Error()})
}

// OnHandshakeStart returns a context and completion function for handshake tracing.
func (o *SessionObserver) OnHandshakeStart(ctx context.Context) (context.Context, func(error)) {
	spanName := SpanHandshakeInitiator
	if o.role == "responder" {
		spanName = SpanHandshakeResponder
	}

	start := time.Now()
	ctx, endSpan := o.tracer.StartSpan(ctx, spanName, WithSpanKind(SpanKindServer))

	o.logger.Debug("handshake started")

	return ctx, func(err error) {
		duration := time.Since(start)
		o.collector.RecordHandshakeLatency(duration)

		if err != nil {
			o.logger.Error("handshake failed", Fields{
				"error":    err.Error(),
				"duration": duration.String(),
			})
		} else {
			o.logger.Info("handshake completed", Fields{
				"duration": duration.String(),
			})
		}

		endSpan(err)
	}
}

// OnEncrypt records cascade encryption metrics.
func (o *SessionObserver) OnEncrypt(ctx context.Context, plaintextLen int) (context.Context, func(error)) {
	start := time.Now()
	ctx, endSpan := o.tracer.StartSpan(ctx, SpanEncrypt)

	return ctx, func(err error) {
		duration := time.Since(start)
		o.collector.RecordEncryptLatency(duration)

		if err != nil {
			o.collector.RecordEncryptError()
			o.logger.Debug("encrypt failed", Fields{"error": err.Error()})
		} else {
			o.collector.RecordBytesSent(uint64(plaintextLen))
			o.collector.RecordMessageSent()
		}

		endSpan(err)
	}
}

// OnDecrypt records cascade decryption metrics.
func (o *SessionObserver) OnDecrypt(ctx context.Context, ciphertextLen int) (context.Context, func(error)) {
	start := time.Now()
	ctx, endSpan := o.tracer.StartSpan(ctx, SpanDecrypt)

	return ctx, func(err error) {
		duration := time.Since(start)
		o.collector.RecordDecryptLatency(duration)

		if err != nil {
			o.collector.RecordDecryptError()
			o.logger.Debug("decrypt failed", Fields{"error": err.Error()})
		} else {
			o.collector.RecordBytesReceived(uint64(ciphertextLen))
			o.collector.RecordMessageReceived()
		}

		endSpan(err)
	}
}

// OnReplayDetected records a blocked replay attack (a reused or out-of-window
// cascade nonce counter).
func (o *SessionObserver) OnReplayDetected() {
	o.collector.RecordReplayBlocked()
	o.logger.Warn("replay attack blocked")
}

// OnAuthFailure records an Ed25519 transcript signature verification failure
// during the handshake.
func (o *SessionObserver) OnAuthFailure() {
	o.collector.RecordAuthFailure()
	o.logger.Warn("authentication failed")
}

// OnProtocolError records a wire-framing or message-validation error.
func (o *SessionObserver) OnProtocolError(err error) {
	o.collector.RecordProtocolError()
	o.logger.Error("protocol error", Fields{"error": err.Error()})
}

// Logger returns the observer's logger for custom logging.
func (o *SessionObserver) Logger() *Logger {
	return o.logger
}

// --- Directory Observability ---

// DirectoryObserver provides observability hooks for the peer directory's
// Publish/Lookup/CleanupExpired operations.
type DirectoryObserver struct {
	collector *Collector
	tracer    Tracer
	logger    *Logger
}

// NewDirectoryObserver creates a new directory observer.
func NewDirectoryObserver(collector *Collector, tracer Tracer, logger *Logger) *DirectoryObserver {
	if collector == nil {
		collector = Global()
	}
	if tracer == nil {
		tracer = GetTracer()
	}
	if logger == nil {
		logger = GetLogger()
	}
	return &DirectoryObserver{
		collector: collector,
		tracer:    tracer,
		logger:    logger.Named("directory"),
	}
}

// OnPublish records a successful peer record publish.
func (o *DirectoryObserver) OnPublish(ctx context.Context, username string) (context.Context, func(error)) {
	ctx, endSpan := o.tracer.StartSpan(ctx, SpanDirectoryPublish)
	return ctx, func(err error) {
		if err != nil {
			o.logger.Debug("publish failed", Fields{"username": username, "error": err.Error()})
		} else {
			o.collector.RecordPublish()
			o.logger.Debug("record published", Fields{"username": username})
		}
		endSpan(err)
	}
}

// OnLookup records a directory lookup outcome.
func (o *DirectoryObserver) OnLookup(ctx context.Context, username string) (context.Context, func(found bool)) {
	ctx, endSpan := o.tracer.StartSpan(ctx, SpanDirectoryLookup)
	return ctx, func(found bool) {
		if found {
			o.collector.RecordLookupHit()
		} else {
			o.collector.RecordLookupMiss()
		}
		o.logger.Debug("lookup completed", Fields{"username": username, "found": found})
		endSpan(nil)
	}
}

// OnExpired records a record evicted by TTL expiry.
func (o *DirectoryObserver) OnExpired(username string) {
	o.collector.RecordExpired()
	o.logger.Debug("record expired", Fields{"username": username})
}

// --- Instrumented Wrappers ---

// InstrumentedSession wraps session metrics collection.
// This can be used to wrap encrypt/decrypt calls.
type InstrumentedSession struct {
	observer *SessionObserver
}

// NewInstrumentedSession creates a new instrumented session wrapper.
func NewInstrumentedSession(observer *SessionObserver) *InstrumentedSession {
	return &InstrumentedSession{observer: observer}
}

// WrapEncrypt wraps an encrypt operation with metrics.
func (s *InstrumentedSession) WrapEncrypt(ctx context.Context, plaintextLen int, fn func() error) error {
	_, done := s.observer.OnEncrypt(ctx, plaintextLen)
	err := fn()
	done(err)
	return err
}

// WrapDecrypt wraps a decrypt operation with metrics.
func (s *InstrumentedSession) WrapDecrypt(ctx context.Context, ciphertextLen int, fn func() error) error {
	_, done := s.observer.OnDecrypt(ctx, ciphertextLen)
	err := fn()
	done(err)
	return err
}

// --- Event Types ---

// EventType represents a type of session event for logging.
type EventType string

const (
	EventSessionStart   EventType = "session.start"
	EventSessionEnd     EventType = "session.end"
	EventSessionFailed  EventType = "session.failed"
	EventHandshakeStart EventType = "handshake.start"
	EventHandshakeEnd   EventType = "handshake.end"
	EventDataSent       EventType = "data.sent"
	EventDataReceived   EventType = "data.received"
	EventDirectoryPublish EventType = "directory.publish"
	EventDirectoryLookup  EventType = "directory.lookup"
	EventReplayBlocked  EventType = "security.replay_blocked"
	EventAuthFailed     EventType = "security.auth_failed"
	EventError          EventType = "error"
)

// Event represents a structured session event.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	SessionID string                 `json:"session_id,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// min returns the smaller of two integers.
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
