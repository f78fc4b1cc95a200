package enroll_test

import (
	"context"
	"testing"
	"time"

	enroll "github.com/goliatone/go-enroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPendingStore(t *testing.T) {
	ctx := context.Background()

	rec := enroll.PendingRegistration{
		FullName:     "Jane Doe",
		Email:        "jane@example.com",
		PasswordHash: "$2a$14$abcdefg",
		Phone:        "+14155552671",
		Code:         "Ab3dE9",
		IPAddress:    "203.0.113.7",
	}

	t.Run("put then get returns the record", func(t *testing.T) {
		store := enroll.NewMemoryPendingStore()

		require.NoError(t, store.Put(ctx, rec.Email, rec, enroll.PendingRegistrationTTL))

		got, err := store.Get(ctx, rec.Email)
		require.NoError(t, err)
		assert.Equal(t, rec.Code, got.Code)
		assert.Equal(t, rec.IPAddress, got.IPAddress)
		assert.NotEmpty(t, got.Revision)
	})

	t.Run("get unknown email", func(t *testing.T) {
		store := enroll.NewMemoryPendingStore()

		_, err := store.Get(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, enroll.ErrPendingNotFound)
	})

	t.Run("entries expire after the ttl", func(t *testing.T) {
		now := time.Now()
		store := enroll.NewMemoryPendingStore(enroll.WithClock(func() time.Time {
			return now
		}))

		require.NoError(t, store.Put(ctx, rec.Email, rec, enroll.PendingRegistrationTTL))

		now = now.Add(enroll.PendingRegistrationTTL - time.Second)
		_, err := store.Get(ctx, rec.Email)
		require.NoError(t, err)

		now = now.Add(2 * time.Second)
		_, err = store.Get(ctx, rec.Email)
		assert.ErrorIs(t, err, enroll.ErrPendingNotFound)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("put overwrites and re-stamps the revision", func(t *testing.T) {
		store := enroll.NewMemoryPendingStore()

		require.NoError(t, store.Put(ctx, rec.Email, rec, enroll.PendingRegistrationTTL))
		first, err := store.Get(ctx, rec.Email)
		require.NoError(t, err)

		second := rec
		second.Code = "Zz9xY1"
		require.NoError(t, store.Put(ctx, rec.Email, second, enroll.PendingRegistrationTTL))

		got, err := store.Get(ctx, rec.Email)
		require.NoError(t, err)
		assert.Equal(t, "Zz9xY1", got.Code)
		assert.NotEqual(t, first.Revision, got.Revision)
	})

	t.Run("consume deletes a matching revision", func(t *testing.T) {
		store := enroll.NewMemoryPendingStore()

		require.NoError(t, store.Put(ctx, rec.Email, rec, enroll.PendingRegistrationTTL))
		got, err := store.Get(ctx, rec.Email)
		require.NoError(t, err)

		require.NoError(t, store.Consume(ctx, rec.Email, got.Revision))

		_, err = store.Get(ctx, rec.Email)
		assert.ErrorIs(t, err, enroll.ErrPendingNotFound)

		err = store.Consume(ctx, rec.Email, got.Revision)
		assert.ErrorIs(t, err, enroll.ErrPendingNotFound)
	})

	t.Run("consume fails closed on a stale revision", func(t *testing.T) {
		store := enroll.NewMemoryPendingStore()

		require.NoError(t, store.Put(ctx, rec.Email, rec, enroll.PendingRegistrationTTL))
		stale, err := store.Get(ctx, rec.Email)
		require.NoError(t, err)

		// A racing registration replaces the entry after the read above.
		require.NoError(t, store.Put(ctx, rec.Email, rec, enroll.PendingRegistrationTTL))

		err = store.Consume(ctx, rec.Email, stale.Revision)
		assert.ErrorIs(t, err, enroll.ErrPendingNotFound)

		// The newer entry is still there.
		_, err = store.Get(ctx, rec.Email)
		assert.NoError(t, err)
	})

	t.Run("forget deletes unconditionally", func(t *testing.T) {
		store := enroll.NewMemoryPendingStore()

		require.NoError(t, store.Put(ctx, rec.Email, rec, enroll.PendingRegistrationTTL))
		require.NoError(t, store.Forget(ctx, rec.Email))

		_, err := store.Get(ctx, rec.Email)
		assert.ErrorIs(t, err, enroll.ErrPendingNotFound)
	})
}
