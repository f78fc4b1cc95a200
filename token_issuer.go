package enroll

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// IssuedToken carries the plaintext secret exactly once, at issuance. The
// server keeps only its digest.
type IssuedToken struct {
	Secret    string    `json:"secret"`
	Kind      TokenKind `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenIssuer mints and validates bearer secrets. Every secret is an HS256
// signed claim set paired with a revocation record keyed by the secret's
// sha256 digest; validation requires both a good signature and a live
// record, so RevokeAll invalidates outstanding secrets before their expiry.
type TokenIssuer struct {
	signingKey []byte
	issuer     string
	tokens     Tokens
	logger     Logger
}

func NewTokenIssuer(signingKey []byte, issuer string, tokens Tokens, logger Logger) *TokenIssuer {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenIssuer{
		signingKey: signingKey,
		issuer:     issuer,
		tokens:     tokens,
		logger:     logger,
	}
}

// Issue mints a token outside any caller transaction.
func (ts *TokenIssuer) Issue(ctx context.Context, user *User, kind TokenKind) (*IssuedToken, error) {
	return ts.issue(ctx, nil, user, kind)
}

// IssueTx mints a token inside the caller's transaction, so revoke-then-issue
// commits as one logical operation.
func (ts *TokenIssuer) IssueTx(ctx context.Context, tx bun.IDB, user *User, kind TokenKind) (*IssuedToken, error) {
	return ts.issue(ctx, tx, user, kind)
}

func (ts *TokenIssuer) issue(ctx context.Context, tx bun.IDB, user *User, kind TokenKind) (*IssuedToken, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, goerrors.New("token owner is required", goerrors.CategoryBadInput)
	}

	now := time.Now()
	expiresAt := now.Add(TokenTTL(kind))

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UID:  user.ID.String(),
		Kind: kind,
	}

	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret, err := token.SignedString(ts.signingKey)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}

	record := &Token{
		ID:         uuid.MustParse(claims.RegisteredClaims.ID),
		UserID:     user.ID,
		Kind:       kind,
		SecretHash: HashSecret(secret),
		ExpiresAt:  expiresAt,
	}

	if tx != nil {
		_, err = ts.tokens.CreateTx(ctx, tx, record)
	} else {
		_, err = ts.tokens.Create(ctx, record)
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist token record")
	}

	return &IssuedToken{
		Secret:    secret,
		Kind:      kind,
		ExpiresAt: expiresAt,
	}, nil
}

// RevokeAll deletes every token record owned by the user.
func (ts *TokenIssuer) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return ts.tokens.DeleteByUser(ctx, userID)
}

// RevokeAllTx is RevokeAll inside the caller's transaction. Callers that
// issue a replacement token must revoke first, in the same transaction.
func (ts *TokenIssuer) RevokeAllTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	return ts.tokens.DeleteByUserTx(ctx, tx, userID)
}

// Validate checks the secret's signature and its revocation record, and
// returns the live record. Expiry is enforced lazily here, at read time.
func (ts *TokenIssuer) Validate(ctx context.Context, secret string) (*Token, error) {
	claims := &JWTClaims{}

	parsed, err := jwt.ParseWithClaims(secret, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	})

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}

	record, err := ts.tokens.GetBySecretHash(ctx, HashSecret(secret))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrTokenRevoked
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up token record")
	}

	if record.Expired(time.Now()) {
		return nil, ErrTokenExpired
	}

	return record, nil
}

// HashSecret returns the hex sha256 digest persisted in place of a secret.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
