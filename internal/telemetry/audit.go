package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"friendship-service/internal/observability"
	"friendship-service/internal/rabbitmq"
)

const AuditRoutingKey = "friendship-service.audit"

const auditSchemaVersion = 1

// AuditEnvelope matches the log-collector audit_log schema.
type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventID       string       `json:"event_id"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	UserID        *int64       `json:"user_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

// AuditPayload is the payload for audit_log events.
type AuditPayload struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

type AuditEmitter struct {
	publisher rabbitmq.Publisher
	cfg       Config
	logger    *slog.Logger
}

func NewAuditEmitter(publisher rabbitmq.Publisher, cfg Config, logger *slog.Logger) *AuditEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditEmitter{publisher: publisher, cfg: cfg, logger: logger}
}

func (e *AuditEmitter) EmitAudit(ctx context.Context, level, text, requestID string, userID *int64) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := AuditEnvelope{
		SchemaVersion: auditSchemaVersion,
		EventID:       uuid.NewString(),
		EventType:     "audit_log",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.cfg.ServiceName,
		Environment:   e.cfg.Environment,
		RequestID:     requestID,
		UserID:        userID,
		Payload: AuditPayload{
			Level: level,
			Text:  text,
		},
	}

	if err := e.publisher.Publish(ctx, AuditRoutingKey, envelope); err != nil {
		observability.IncAMQPPublishError()
		e.logger.WarnContext(ctx, "failed to publish audit log", "error", err)
		return
	}
	observability.IncEventPublished("audit_log")
}
