package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairKeyIsUnordered(t *testing.T) {
	assert.Equal(t, PairKey(7, 3), PairKey(3, 7))
	assert.Equal(t, Pair{Low: 3, High: 7}, PairKey(7, 3))
	assert.NotEqual(t, PairKey(1, 2).LockID(), PairKey(1, 3).LockID())
	assert.Equal(t, "3:7", PairKey(7, 3).String())
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		status  RequestStatus
		actor   int64
		to      RequestStatus
		wantErr error
		want    RequestStatus
	}{
		{"receiver accepts", RequestPending, 2, RequestAccepted, nil, RequestAccepted},
		{"receiver rejects", RequestPending, 2, RequestRejected, nil, RequestRejected},
		{"sender cannot accept", RequestPending, 1, RequestAccepted, ErrUnauthorized, RequestPending},
		{"stranger cannot reject", RequestPending, 9, RequestRejected, ErrUnauthorized, RequestPending},
		{"accepted is terminal", RequestAccepted, 2, RequestRejected, ErrAlreadyResolved, RequestAccepted},
		{"rejected is terminal", RequestRejected, 2, RequestAccepted, ErrAlreadyResolved, RequestRejected},
		{"back to pending", RequestPending, 2, RequestPending, ErrInvalidTransition, RequestPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &FriendRequest{ID: 1, SenderID: 1, ReceiverID: 2, Status: tt.status}
			err := req.Resolve(tt.actor, tt.to)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, req.Status)
		})
	}
}

func TestFriendshipOther(t *testing.T) {
	f := NewFriendship(9, 4, time.Now())

	assert.Equal(t, int64(4), f.UserLowID)
	assert.Equal(t, int64(9), f.UserHighID)
	assert.Equal(t, int64(9), f.Other(4))
	assert.Equal(t, int64(4), f.Other(9))
}
