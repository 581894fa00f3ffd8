package otp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSender) Name() string { return "fake" }

func (f *fakeSender) Send(ctx context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+"|"+body)
	return nil
}

func newTestService(t *testing.T, sender Sender) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	s := NewService(rdb, sender, 5*time.Minute, time.Minute, nil)
	s.generate = func() (string, error) { return "123456", nil }
	return s, mr
}

func TestRequestAndVerify(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	s, mr := newTestService(t, sender)

	require.NoError(t, s.Request(ctx, "u1", "+85291234567"))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "123456")
	assert.True(t, mr.Exists(codeKey("u1", "+85291234567")))

	assert.ErrorIs(t, s.Verify(ctx, "u1", "+85291234567", "000000"), ErrInvalidCode)
	require.NoError(t, s.Verify(ctx, "u1", "+85291234567", "123456"))

	// consumed
	assert.ErrorIs(t, s.Verify(ctx, "u1", "+85291234567", "123456"), ErrInvalidCode)
}

func TestRequest_RejectsBadPhone(t *testing.T) {
	sender := &fakeSender{}
	s, _ := newTestService(t, sender)

	for _, p := range []string{"", "91234567", "+0123456789", "+852"} {
		assert.ErrorIs(t, s.Request(context.Background(), "u1", p), ErrInvalidPhone, p)
	}
	assert.Empty(t, sender.sent)
}

func TestRequest_Cooldown(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestService(t, &fakeSender{})

	require.NoError(t, s.Request(ctx, "u1", "+85291234567"))
	assert.ErrorIs(t, s.Request(ctx, "u1", "+85291234567"), ErrCooldown)

	mr.FastForward(2 * time.Minute)
	assert.NoError(t, s.Request(ctx, "u1", "+85291234567"))
}

func TestRequest_SendFailureClearsState(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{err: &SendError{Status: 400, Message: "invalid To"}}
	s, mr := newTestService(t, sender)

	err := s.Request(ctx, "u1", "+85291234567")
	var se *SendError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 400, se.Status)
	assert.False(t, mr.Exists(codeKey("u1", "+85291234567")))
	assert.False(t, mr.Exists(cooldownKey("+85291234567")))

	sender.err = nil
	assert.NoError(t, s.Request(ctx, "u1", "+85291234567"))
}

func TestVerify_CodeFormatAndExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestService(t, &fakeSender{})

	require.NoError(t, s.Request(ctx, "u1", "+85291234567"))
	for _, c := range []string{"", "12345", "1234567", "abcdef"} {
		assert.ErrorIs(t, s.Verify(ctx, "u1", "+85291234567", c), ErrInvalidCode, c)
	}

	mr.FastForward(6 * time.Minute)
	assert.ErrorIs(t, s.Verify(ctx, "u1", "+85291234567", "123456"), ErrInvalidCode)
}

func TestVerify_TooManyAttempts(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, &fakeSender{})

	require.NoError(t, s.Request(ctx, "u1", "+85291234567"))
	for i := 0; i < maxAttempts-1; i++ {
		assert.ErrorIs(t, s.Verify(ctx, "u1", "+85291234567", "999999"), ErrInvalidCode)
	}
	assert.ErrorIs(t, s.Verify(ctx, "u1", "+85291234567", "999999"), ErrTooManyAttempts)
	assert.ErrorIs(t, s.Verify(ctx, "u1", "+85291234567", "123456"), ErrInvalidCode)
}

func TestVerify_CodeIsBoundToUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, &fakeSender{})

	require.NoError(t, s.Request(ctx, "u1", "+85291234567"))
	assert.ErrorIs(t, s.Verify(ctx, "u2", "+85291234567", "123456"), ErrInvalidCode)
}

func TestRandomCode(t *testing.T) {
	for range 20 {
		c, err := randomCode()
		require.NoError(t, err)
		assert.True(t, ValidCodeFormat(c), c)
	}
}

func TestPingAndName(t *testing.T) {
	s, mr := newTestService(t, &fakeSender{})
	assert.NoError(t, s.Ping(context.Background()))
	assert.Equal(t, "fake", s.SenderName())

	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}
