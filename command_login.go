package enroll

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type LoginMessage struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	OnResponse func(*LoginResponse)
}

func (e LoginMessage) Type() string { return "auth.login" }

type LoginResponse struct {
	User              *User     `json:"user"`
	AccessToken       string    `json:"access_token"`
	AccessTokenExpiry time.Time `json:"access_token_expiry"`
}

// LoginHandler authenticates an email-or-phone identifier against the
// credential store and mints an access token. Unknown identifier and wrong
// password collapse into the same unauthorized error.
type LoginHandler struct {
	repo   RepositoryManager
	issuer *TokenIssuer
	hasher PasswordAuthenticator
	logger Logger
}

func NewLoginHandler(repo RepositoryManager, issuer *TokenIssuer) *LoginHandler {
	return &LoginHandler{
		repo:   repo,
		issuer: issuer,
		hasher: NewPasswordAuthenticator(),
		logger: defLogger{},
	}
}

func (h *LoginHandler) WithLogger(logger Logger) *LoginHandler {
	h.logger = logger
	return h
}

func (h *LoginHandler) WithPasswordAuthenticator(hasher PasswordAuthenticator) *LoginHandler {
	h.hasher = hasher
	return h
}

func (h *LoginHandler) Execute(ctx context.Context, event LoginMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during login")
	default:
		return h.execute(ctx, event)
	}
}

func (h *LoginHandler) execute(ctx context.Context, event LoginMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByCredential(ctx, event.Identifier)
	if err != nil {
		h.logger.Debug("login identifier lookup failed", "error", err)
		return ErrInvalidCredentials
	}

	if err := h.hasher.ComparePasswordAndHash(event.Password, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	// Login mints an access token only; refresh tokens come exclusively
	// from the refresh operation.
	issued, err := h.issuer.Issue(ctx, user, TokenKindAccess)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create token")
	}

	if event.OnResponse != nil {
		event.OnResponse(&LoginResponse{
			User:              user,
			AccessToken:       issued.Secret,
			AccessTokenExpiry: issued.ExpiresAt,
		})
	}

	return nil
}
