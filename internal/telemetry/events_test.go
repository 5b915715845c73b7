package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"friendship-service/internal/mocks"
)

func TestEmitWrapsPayloadInEnvelope(t *testing.T) {
	pub := new(mocks.RecordingPublisher)
	emitter := NewEventEmitter(pub, Config{Environment: "test", ServiceName: "friendship-service"}, nil)

	emitter.Emit(context.Background(), EventPresenceUpdated, PresencePayload{UserID: 3, IsCoworking: true})

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, EventPresenceUpdated, msgs[0].RoutingKey)
	env, ok := msgs[0].Event.(EventEnvelope)
	require.True(t, ok)
	assert.Equal(t, EventPresenceUpdated, env.EventType)
	assert.Equal(t, "friendship-service", env.Service)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, PresencePayload{UserID: 3, IsCoworking: true}, env.Payload)
}

func TestNilEmitterIsNoop(t *testing.T) {
	var emitter *EventEmitter
	emitter.Emit(context.Background(), EventFriendshipCreated, nil)

	var audit *AuditEmitter
	audit.EmitAudit(context.Background(), "INFO", "ignored", "req", nil)
}

func TestEmitAudit(t *testing.T) {
	pub := new(mocks.MockPublisher)
	audit := NewAuditEmitter(pub, Config{Environment: "test", ServiceName: "friendship-service"}, nil)
	userID := int64(9)

	pub.On("Publish", mock.Anything, AuditRoutingKey, mock.MatchedBy(func(env AuditEnvelope) bool {
		return env.RequestID == "req-1" && *env.UserID == 9 && env.Payload.Text == "Friend request accepted"
	})).Return(nil).Once()

	audit.EmitAudit(context.Background(), "INFO", "Friend request accepted", "req-1", &userID)

	pub.AssertExpectations(t)
}
