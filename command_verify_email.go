package enroll

import (
	"context"
	"crypto/subtle"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type VerifyEmailMessage struct {
	Email      string `json:"email"`
	Code       string `json:"verification_code"`
	IPAddress  string `json:"ip_address"`
	OnResponse func(*VerifyEmailResponse)
}

func (e VerifyEmailMessage) Type() string { return "auth.verify_email" }

type VerifyEmailResponse struct {
	User              *User     `json:"user"`
	AccessToken       string    `json:"access_token"`
	AccessTokenExpiry time.Time `json:"access_token_expiry"`
}

// VerifyEmailHandler turns a pending registration into a durable user. The
// submitted code and the requester's address must both match the values
// captured at registration time; any mismatch, absence, or expiry yields the
// same undifferentiated error so callers cannot probe which check failed.
type VerifyEmailHandler struct {
	repo    RepositoryManager
	pending PendingRegistrations
	issuer  *TokenIssuer
	logger  Logger
}

func NewVerifyEmailHandler(repo RepositoryManager, pending PendingRegistrations, issuer *TokenIssuer) *VerifyEmailHandler {
	return &VerifyEmailHandler{
		repo:    repo,
		pending: pending,
		issuer:  issuer,
		logger:  defLogger{},
	}
}

func (h *VerifyEmailHandler) WithLogger(logger Logger) *VerifyEmailHandler {
	h.logger = logger
	return h
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during email verification")
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	rec, err := h.pending.Get(ctx, event.Email)
	if err != nil {
		return ErrInvalidVerification
	}

	codeOK := subtle.ConstantTimeCompare([]byte(rec.Code), []byte(event.Code)) == 1
	addrOK := rec.IPAddress == event.IPAddress
	if !codeOK || !addrOK {
		// Entry stays put so the real owner can retry until the TTL runs out.
		return ErrInvalidVerification
	}

	// Conditional delete keyed on the revision read above. If a concurrent
	// register replaced the entry in the meantime this fails closed instead
	// of consuming a newer, unrelated registration.
	if err := h.pending.Consume(ctx, event.Email, rec.Revision); err != nil {
		return ErrInvalidVerification
	}

	now := time.Now()
	user := &User{
		FullName:     rec.FullName,
		Email:        rec.Email,
		Phone:        rec.Phone,
		PasswordHash: rec.PasswordHash,
		ProfilePhoto: rec.ProfilePhoto,
		IPAddress:    rec.IPAddress,
		VerifiedAt:   &now,
	}

	var issued *IssuedToken

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		if issued, err = h.issuer.IssueTx(ctx, tx, user, TokenKindAccess); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create token")
		}

		return nil
	})

	if err != nil {
		// The pending entry has already been consumed. The code proved out,
		// so we leave it gone; the address can simply register again.
		h.logger.Error("verify email user creation failed", "email", event.Email, "error", err)

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "email verification transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&VerifyEmailResponse{
			User:              user,
			AccessToken:       issued.Secret,
			AccessTokenExpiry: issued.ExpiresAt,
		})
	}

	return nil
}
