package enroll

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const pendingKeyPrefix = "user_registration:"

// consumeScript deletes the pending entry only when the stored revision
// matches, making the conditional delete atomic on the Redis side.
var consumeScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
	return 0
end
local rec = cjson.decode(raw)
if rec['revision'] == ARGV[1] then
	redis.call('DEL', KEYS[1])
	return 1
end
return 0
`)

// RedisPendingStore is a PendingRegistrations backed by Redis, for
// deployments where registration may land on any instance. TTL enforcement
// is delegated to Redis key expiry.
type RedisPendingStore struct {
	client *redis.Client
}

var _ PendingRegistrations = (*RedisPendingStore)(nil)

func NewRedisPendingStore(client *redis.Client) *RedisPendingStore {
	return &RedisPendingStore{client: client}
}

func (s *RedisPendingStore) Put(ctx context.Context, email string, rec PendingRegistration, ttl time.Duration) error {
	rec.Revision = uuid.NewString()
	rec.CreatedAt = time.Now()

	raw, err := json.Marshal(rec)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode pending registration")
	}

	if err := s.client.Set(ctx, pendingKeyPrefix+email, raw, ttl).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store pending registration")
	}
	return nil
}

func (s *RedisPendingStore) Get(ctx context.Context, email string) (*PendingRegistration, error) {
	raw, err := s.client.Get(ctx, pendingKeyPrefix+email).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPendingNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read pending registration")
	}

	rec := &PendingRegistration{}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode pending registration")
	}
	return rec, nil
}

func (s *RedisPendingStore) Forget(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, pendingKeyPrefix+email).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete pending registration")
	}
	return nil
}

func (s *RedisPendingStore) Consume(ctx context.Context, email, revision string) error {
	deleted, err := consumeScript.Run(ctx, s.client, []string{pendingKeyPrefix + email}, revision).Int()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume pending registration")
	}
	if deleted == 0 {
		return ErrPendingNotFound
	}
	return nil
}
