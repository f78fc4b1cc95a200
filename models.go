package enroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenKind discriminates the two credential flavors sharing one lifecycle.
type TokenKind = string

const (
	// TokenKindAccess is the short-lived API credential
	TokenKindAccess TokenKind = "access"
	// TokenKindRefresh is the longer-lived renewal credential
	TokenKindRefresh TokenKind = "refresh"
)

const (
	// AccessTokenTTL is the access token lifetime
	AccessTokenTTL = 10 * time.Minute
	// RefreshTokenTTL is the refresh token lifetime
	RefreshTokenTTL = 20 * time.Minute
	// PendingRegistrationTTL bounds how long an unverified registration lives
	PendingRegistrationTTL = 10 * time.Minute
)

// TokenTTL returns the lifetime for a token kind.
func TokenTTL(kind TokenKind) time.Duration {
	if kind == TokenKindRefresh {
		return RefreshTokenTTL
	}
	return AccessTokenTTL
}

// User is the durable account record. It exists only after a successful
// email verification; registration alone never creates one.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FullName      string     `bun:"full_name,notnull" json:"full_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string     `bun:"phone,notnull,unique" json:"phone,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	ProfilePhoto  string     `bun:"profile_photo" json:"profile_photo,omitempty"`
	IPAddress     string     `bun:"ip_address" json:"ip_address,omitempty"`
	VerifiedAt    *time.Time `bun:"verified_at,nullzero" json:"verified_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Token is the server-side revocation record for an issued secret. The
// secret itself is returned once at issuance; only its digest persists.
type Token struct {
	bun.BaseModel `bun:"table:tokens,alias:tkn"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Kind          TokenKind  `bun:"kind,notnull" json:"kind,omitempty"`
	SecretHash    string     `bun:"secret_hash,notnull,unique" json:"-"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Expired reports whether the record is past its expiry at ref time.
func (t *Token) Expired(ref time.Time) bool {
	return !t.ExpiresAt.After(ref)
}

// PendingRegistration is the transient not-yet-committed registration held
// by a PendingRegistrations store. Never persisted durably.
type PendingRegistration struct {
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Phone        string    `json:"phone"`
	ProfilePhoto string    `json:"profile_photo"`
	Code         string    `json:"verification_code"`
	IPAddress    string    `json:"ip_address"`
	Revision     string    `json:"revision"`
	CreatedAt    time.Time `json:"created_at"`
}
