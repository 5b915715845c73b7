package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"friendship-service/internal/observability"
	"friendship-service/internal/rabbitmq"
)

const (
	EventRequestCreated    = "friend.request.created"
	EventRequestAccepted   = "friend.request.accepted"
	EventRequestRejected   = "friend.request.rejected"
	EventFriendshipCreated = "friendship.created"
	EventFriendshipDeleted = "friendship.deleted"
	EventPresenceUpdated   = "presence.updated"

	eventVersion = "v1"
)

type Config struct {
	Environment string
	ServiceName string
}

type EventEnvelope struct {
	EventID     string `json:"event_id"`
	EventType   string `json:"event_type"`
	Version     string `json:"version"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	Service     string `json:"service"`
	Payload     any    `json:"payload"`
}

func NewEventEnvelope(cfg Config, eventType string, payload any) EventEnvelope {
	return EventEnvelope{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		Version:     eventVersion,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Environment: cfg.Environment,
		Service:     cfg.ServiceName,
		Payload:     payload,
	}
}

type FriendRequestPayload struct {
	RequestID  int64     `json:"request_id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type FriendshipPayload struct {
	UserID   int64     `json:"user_id"`
	FriendID int64     `json:"friend_id"`
	At       time.Time `json:"at"`
}

type PresencePayload struct {
	UserID      int64 `json:"user_id"`
	IsCoworking bool  `json:"is_coworking"`
}

// EventEmitter publishes domain events after a change is committed. Failures
// are logged and counted, never returned.
type EventEmitter struct {
	publisher rabbitmq.Publisher
	cfg       Config
	logger    *slog.Logger
}

func NewEventEmitter(publisher rabbitmq.Publisher, cfg Config, logger *slog.Logger) *EventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventEmitter{publisher: publisher, cfg: cfg, logger: logger}
}

func (e *EventEmitter) Emit(ctx context.Context, eventType string, payload any) {
	if e == nil || e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, eventType, NewEventEnvelope(e.cfg, eventType, payload)); err != nil {
		observability.IncAMQPPublishError()
		e.logger.WarnContext(ctx, "failed to publish event", "event_type", eventType, "error", err)
		return
	}
	observability.IncEventPublished(eventType)
}
