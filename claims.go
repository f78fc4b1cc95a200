package enroll

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims is the claim set carried by issued secrets. The ID claim doubles
// as the primary key of the server-side revocation record.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID  string    `json:"uid,omitempty"`
	Kind TokenKind `json:"kind,omitempty"`
}

// UserID returns the owning user's id.
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
