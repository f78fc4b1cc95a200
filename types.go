package enroll

import (
	"context"
	"fmt"
	"io"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Mailer delivers a verification code to an email address. A non-nil error
// means the code never reached the recipient and nothing should be cached.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// AssetStore persists uploaded files and returns an opaque storage key.
type AssetStore interface {
	Upload(ctx context.Context, name string, body io.Reader) (string, error)
}

// PendingRegistrations is the transient store for not-yet-verified
// registrations. Put overwrites any prior entry for the email and resets its
// expiry. Get returns ErrPendingNotFound for absent or expired entries.
// Consume deletes the entry only when revision matches the live one, so a
// verify racing a re-registration fails closed instead of deleting the newer
// entry.
type PendingRegistrations interface {
	Put(ctx context.Context, email string, rec PendingRegistration, ttl time.Duration) error
	Get(ctx context.Context, email string) (*PendingRegistration, error)
	Forget(ctx context.Context, email string) error
	Consume(ctx context.Context, email, revision string) error
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// CodeGenerator produces verification codes. Defaults to GenerateCode.
type CodeGenerator func() (string, error)

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ENROLL "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ENROLL "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ENROLL "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
