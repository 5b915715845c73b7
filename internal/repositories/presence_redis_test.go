package repositories

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendship-service/internal/models"
)

func TestRedisPresence(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	repo := NewRedisPresenceRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.SetPresence(ctx, 1, true))
	require.NoError(t, repo.SetPresence(ctx, 2, true))
	require.NoError(t, repo.SetPresence(ctx, 2, false))

	got, err := mr.Get(presenceKey(1))
	require.NoError(t, err)
	assert.Equal(t, "1", got)
	assert.Zero(t, mr.TTL(presenceKey(1)))

	present, err := repo.ArePresent(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{1: true, 2: false, 3: false}, present)

	empty, err := repo.ArePresent(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRedisPresenceWriteFaultIsTransient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	repo := NewRedisPresenceRepository(client)

	mr.Close()

	err := repo.SetPresence(context.Background(), 1, true)
	require.ErrorIs(t, err, models.ErrTransient)
}

func TestRedisPresenceReadFaultIsTransient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	repo := NewRedisPresenceRepository(client)

	mr.SetError("LOADING Redis is loading the dataset in memory")
	_, err := repo.ArePresent(context.Background(), []int64{1})
	require.ErrorIs(t, err, models.ErrTransient)

	mr.SetError("")
	mr.Close()
	_, err = repo.ArePresent(context.Background(), []int64{1})
	require.ErrorIs(t, err, models.ErrTransient)
}

func TestRedisPresenceReadErrorReplyIsNotRetried(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	hook := &failingMGet{failures: 1, err: errors.New("boom")}
	client.AddHook(hook)
	repo := NewRedisPresenceRepository(client)

	_, err := repo.ArePresent(context.Background(), []int64{1})
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrTransient)
	assert.Equal(t, int32(1), hook.calls.Load())
}

func TestRedisPresenceReadRetriedOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	require.NoError(t, mr.Set(presenceKey(1), "1"))
	hook := &failingMGet{failures: 1, err: &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}}
	client.AddHook(hook)
	repo := NewRedisPresenceRepository(client)

	present, err := repo.ArePresent(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{1: true, 2: false}, present)
	assert.Equal(t, int32(2), hook.calls.Load())
}

// failingMGet fails the first failures MGET calls with err.
type failingMGet struct {
	failures int32
	err      error
	calls    atomic.Int32
}

func (h *failingMGet) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *failingMGet) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *failingMGet) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() != "mget" {
			return next(ctx, cmd)
		}
		if h.calls.Add(1) <= h.failures {
			cmd.SetErr(h.err)
			return h.err
		}
		return next(ctx, cmd)
	}
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "://nope", 0)
	require.Error(t, err)
}

type replyError string

func (e replyError) Error() string { return string(e) }
func (replyError) RedisError()     {}

func TestIsTransientRedisReplies(t *testing.T) {
	assert.True(t, isTransient(replyError("LOADING Redis is loading the dataset in memory")))
	assert.True(t, isTransient(replyError("TRYAGAIN Multiple keys request during rehashing of slot")))
	assert.False(t, isTransient(replyError("WRONGTYPE Operation against a key holding the wrong kind of value")))
	assert.True(t, isTransient(io.EOF))
	assert.False(t, isTransient(redis.Nil))
}
