package enroll

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("string must not be empty")

// ErrMismatchedHashAndPassword is the error for a failed password comparison
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password")

// ErrPendingNotFound covers absent, expired, and already consumed pending
// registrations. Deliberately indistinguishable from a wrong code upstream.
var ErrPendingNotFound = errors.New("pending registration not found")

// ErrNoAuthenticatedUser is returned when request locals hold no user id
var ErrNoAuthenticatedUser = errors.New("no authenticated user in request")

// ErrInvalidVerification is the uniform verify failure: wrong code, wrong
// origin address, or no live pending entry. Callers never learn which.
var ErrInvalidVerification = goerrors.New("invalid verification code", goerrors.CategoryAuth).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode("INVALID_VERIFICATION")

// ErrInvalidCredentials is the uniform login failure. It does not reveal
// whether the identifier exists or the password was wrong.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrDeliveryFailed aborts register before any state is written.
var ErrDeliveryFailed = goerrors.New("failed to send verification code via email", goerrors.CategoryOperation).
	WithCode(goerrors.CodeInternal).
	WithTextCode("DELIVERY_FAILED")

// ErrTokenRevoked is returned when a structurally valid secret has no live
// revocation record (logged out or superseded by a refresh).
var ErrTokenRevoked = goerrors.New("token has been revoked", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_REVOKED")

// ErrTokenExpired is returned for secrets past their expiry.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed is returned for secrets that fail signature or shape checks.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// IsAuthError reports whether err carries the auth category, regardless of
// wrapping.
func IsAuthError(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryAuth
	}
	return false
}
