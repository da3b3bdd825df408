package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	sessionLockPrefix = "lock:session:"
	lockRetryInterval = 50 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionLock serializes writers of one session across processes
type SessionLock struct {
	client *Client
	ttl    time.Duration
}

// NewSessionLock creates a distributed session lock. ttl bounds how long a
// crashed holder can block a session.
func NewSessionLock(client *Client, ttl time.Duration) *SessionLock {
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}
	return &SessionLock{client: client, ttl: ttl}
}

// Lock blocks until the session is free or ctx is done
func (l *SessionLock) Lock(ctx context.Context, sessionID uuid.UUID) (func(), error) {
	key := sessionLockPrefix + sessionID.String()

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire session lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to acquire session lock: %w", ctx.Err())
		case <-ticker.C:
		}
	}

	unlock := func() {
		// Release must outlive a cancelled request context
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := releaseScript.Run(releaseCtx, l.client.rdb, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Failed to release session lock")
		}
	}
	return unlock, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
