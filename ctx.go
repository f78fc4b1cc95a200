package enroll

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// AuthenticatedUser extracts the user id that RequireAuth stored in the
// request locals.
func AuthenticatedUser(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Locals(authUserKey)
	if raw == nil {
		return uuid.Nil, ErrNoAuthenticatedUser
	}

	uid, ok := raw.(uuid.UUID)
	if !ok || uid == uuid.Nil {
		return uuid.Nil, ErrNoAuthenticatedUser
	}

	return uid, nil
}
