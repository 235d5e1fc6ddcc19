package logging

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RowanDark/enigma/internal/redact"
)

type EventType string

const (
	EventMachineConfigured EventType = "machine_configured"
	EventConfigRejected    EventType = "config_rejected"
	EventMessageProcessed  EventType = "message_processed"
	EventRecipeSaved       EventType = "recipe_saved"
	EventRecipeDeleted     EventType = "recipe_deleted"
	EventServerLifecycle   EventType = "server_lifecycle"
	EventRPCCall           EventType = "rpc_call"
)

type Decision string

const (
	DecisionInfo  Decision = "info"
	DecisionAllow Decision = "allow"
	DecisionDeny  Decision = "deny"
)

// AuditEvent is one JSON line in the audit stream. Metadata and Reason are
// redacted before they are written.
type AuditEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Component string         `json:"component"`
	RequestID string         `json:"request_id,omitempty"`
	EventType EventType      `json:"event_type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Decision  Decision       `json:"decision,omitempty"`
	Reason    string         `json:"reason,omitempty"`
}

// NewRequestID returns a fresh identifier for correlating the events of one
// request.
func NewRequestID() string {
	return uuid.NewString()
}

type Option func(*config) error

type config struct {
	writers          []io.Writer
	closers          []io.Closer
	useDefaultWriter bool
}

func defaultConfig() *config {
	return &config{writers: []io.Writer{os.Stdout}, useDefaultWriter: true}
}

func WithWriter(w io.Writer) Option {
	return func(cfg *config) error {
		if w == nil {
			return errors.New("writer cannot be nil")
		}
		cfg.writers = append(cfg.writers, w)
		return nil
	}
}

// WithFile appends events to path, creating it with owner-only permissions.
func WithFile(path string) Option {
	return func(cfg *config) error {
		if strings.TrimSpace(path) == "" {
			return errors.New("file path cannot be empty")
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return err
		}
		cfg.writers = append(cfg.writers, f)
		cfg.closers = append(cfg.closers, f)
		return nil
	}
}

func WithoutStdout() Option {
	return func(cfg *config) error {
		cfg.useDefaultWriter = false
		kept := make([]io.Writer, 0, len(cfg.writers))
		for _, w := range cfg.writers {
			if w != os.Stdout {
				kept = append(kept, w)
			}
		}
		cfg.writers = kept
		return nil
	}
}

type auditCore struct {
	mu      sync.Mutex
	encoder *json.Encoder
	closers []io.Closer
}

// AuditLogger writes AuditEvents as JSON lines. Child loggers created with
// WithComponent share the parent's writers and lock.
type AuditLogger struct {
	component   string
	core        *auditCore
	ownsClosers bool
}

func NewAuditLogger(component string, opts ...Option) (*AuditLogger, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			for _, closer := range cfg.closers {
				_ = closer.Close()
			}
			return nil, err
		}
	}
	if len(cfg.writers) == 0 {
		return nil, errors.New("no writers configured for audit logger")
	}
	enc := json.NewEncoder(io.MultiWriter(cfg.writers...))
	enc.SetEscapeHTML(false)
	return &AuditLogger{
		component:   component,
		core:        &auditCore{encoder: enc, closers: cfg.closers},
		ownsClosers: true,
	}, nil
}

func MustNewAuditLogger(component string, opts ...Option) *AuditLogger {
	logger, err := NewAuditLogger(component, opts...)
	if err != nil {
		panic(err)
	}
	return logger
}

// Discard returns a logger that drops every event.
func Discard() *AuditLogger {
	return MustNewAuditLogger("discard", WithoutStdout(), WithWriter(io.Discard))
}

func (l *AuditLogger) Close() error {
	if l == nil || !l.ownsClosers || l.core == nil {
		return nil
	}
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	var firstErr error
	for _, closer := range l.core.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.core.closers = nil
	return firstErr
}

func (l *AuditLogger) Emit(event AuditEvent) error {
	if l == nil || l.core == nil {
		return errors.New("nil audit logger")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Timestamp = event.Timestamp.UTC()
	if event.Component == "" {
		event.Component = l.component
	}
	event.Reason = redact.String(event.Reason)
	if len(event.Metadata) > 0 {
		event.Metadata = redact.Map(event.Metadata)
	}
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	return l.core.encoder.Encode(event)
}

// Record emits an informational event. Errors from the writer are dropped:
// audit output never fails a request.
func (l *AuditLogger) Record(eventType EventType, requestID string, metadata map[string]any) {
	_ = l.Emit(AuditEvent{
		EventType: eventType,
		RequestID: requestID,
		Decision:  DecisionInfo,
		Metadata:  metadata,
	})
}

// Reject emits a deny event carrying err as the reason.
func (l *AuditLogger) Reject(eventType EventType, requestID string, err error, metadata map[string]any) {
	event := AuditEvent{
		EventType: eventType,
		RequestID: requestID,
		Decision:  DecisionDeny,
		Metadata:  metadata,
	}
	if err != nil {
		event.Reason = err.Error()
	}
	_ = l.Emit(event)
}

func (l *AuditLogger) WithComponent(component string) *AuditLogger {
	if l == nil || l.core == nil {
		return nil
	}
	return &AuditLogger{
		component:   component,
		core:        l.core,
		ownsClosers: false,
	}
}
