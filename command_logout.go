package enroll

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type LogoutMessage struct {
	UserID uuid.UUID `json:"user_id"`
}

func (e LogoutMessage) Type() string { return "auth.logout" }

// LogoutHandler revokes every token the user holds. Idempotent: revoking a
// user with no outstanding tokens succeeds.
type LogoutHandler struct {
	issuer *TokenIssuer
	logger Logger
}

func NewLogoutHandler(issuer *TokenIssuer) *LogoutHandler {
	return &LogoutHandler{
		issuer: issuer,
		logger: defLogger{},
	}
}

func (h *LogoutHandler) WithLogger(logger Logger) *LogoutHandler {
	h.logger = logger
	return h
}

func (h *LogoutHandler) Execute(ctx context.Context, event LogoutMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during logout")
	default:
		return h.execute(ctx, event)
	}
}

func (h *LogoutHandler) execute(ctx context.Context, event LogoutMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.UserID == uuid.Nil {
		return goerrors.New("logout requires an authenticated user", goerrors.CategoryBadInput)
	}

	if err := h.issuer.RevokeAll(ctx, event.UserID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke tokens")
	}

	return nil
}
