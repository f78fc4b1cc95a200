package enroll

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type RefreshTokenMessage struct {
	UserID     uuid.UUID `json:"user_id"`
	OnResponse func(*RefreshTokenResponse)
}

func (e RefreshTokenMessage) Type() string { return "auth.refresh_token" }

type RefreshTokenResponse struct {
	RefreshToken       string    `json:"refresh_token"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expiry"`
}

// RefreshTokenHandler revokes every outstanding token and mints a new
// refresh token. Revocation and issuance run in one transaction, so no
// concurrent validator can observe the old and new tokens live at once.
//
// Note the asymmetry: this mints a refresh token only, while login and
// verify mint access tokens only. That mirrors the source behavior and is
// flagged for product clarification rather than silently fixed.
type RefreshTokenHandler struct {
	repo   RepositoryManager
	issuer *TokenIssuer
	logger Logger
}

func NewRefreshTokenHandler(repo RepositoryManager, issuer *TokenIssuer) *RefreshTokenHandler {
	return &RefreshTokenHandler{
		repo:   repo,
		issuer: issuer,
		logger: defLogger{},
	}
}

func (h *RefreshTokenHandler) WithLogger(logger Logger) *RefreshTokenHandler {
	h.logger = logger
	return h
}

func (h *RefreshTokenHandler) Execute(ctx context.Context, event RefreshTokenMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during token refresh")
	default:
		return h.execute(ctx, event)
	}
}

func (h *RefreshTokenHandler) execute(ctx context.Context, event RefreshTokenMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.UserID == uuid.Nil {
		return goerrors.New("refresh requires an authenticated user", goerrors.CategoryBadInput)
	}

	var issued *IssuedToken

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := h.issuer.RevokeAllTx(ctx, tx, event.UserID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke tokens")
		}

		var err error
		issued, err = h.issuer.IssueTx(ctx, tx, &User{ID: event.UserID}, TokenKindRefresh)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create token")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "token refresh transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&RefreshTokenResponse{
			RefreshToken:       issued.Secret,
			RefreshTokenExpiry: issued.ExpiresAt,
		})
	}

	return nil
}
