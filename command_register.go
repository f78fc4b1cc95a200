package enroll

import (
	"context"
	"io"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type RegisterMessage struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Phone            string `json:"phone"`
	ProfilePhotoName string `json:"profile_photo_name"`
	ProfilePhoto     io.Reader
	IPAddress        string `json:"ip_address"`
}

func (e RegisterMessage) Type() string { return "auth.register" }

// RegisterHandler parks a registration in the pending store after the
// verification code has been delivered. Ordering is deliberate: delivery
// failure aborts before anything is persisted, so no entry can exist whose
// code the user never received.
type RegisterHandler struct {
	pending PendingRegistrations
	mailer  Mailer
	assets  AssetStore
	hasher  PasswordAuthenticator
	codes   CodeGenerator
	logger  Logger
}

func NewRegisterHandler(pending PendingRegistrations, mailer Mailer, assets AssetStore) *RegisterHandler {
	return &RegisterHandler{
		pending: pending,
		mailer:  mailer,
		assets:  assets,
		hasher:  NewPasswordAuthenticator(),
		codes:   GenerateCode,
		logger:  defLogger{},
	}
}

func (h *RegisterHandler) WithLogger(logger Logger) *RegisterHandler {
	h.logger = logger
	return h
}

func (h *RegisterHandler) WithCodeGenerator(codes CodeGenerator) *RegisterHandler {
	h.codes = codes
	return h
}

func (h *RegisterHandler) WithPasswordAuthenticator(hasher PasswordAuthenticator) *RegisterHandler {
	h.hasher = hasher
	return h
}

func (h *RegisterHandler) Execute(ctx context.Context, event RegisterMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during registration")
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterHandler) execute(ctx context.Context, event RegisterMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	code, err := h.codes()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate verification code")
	}

	if err := h.mailer.SendVerificationCode(ctx, event.Email, code); err != nil {
		h.logger.Error("register verification email delivery failed", "email", event.Email, "error", err)
		return goerrors.Wrap(err, ErrDeliveryFailed.Category, ErrDeliveryFailed.Message).
			WithTextCode(ErrDeliveryFailed.TextCode)
	}

	hash, err := h.hasher.HashPassword(event.Password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	var photoKey string
	if event.ProfilePhoto != nil {
		if h.assets == nil {
			return goerrors.New("no asset store configured for profile photos", goerrors.CategoryOperation)
		}
		photoKey, err = h.assets.Upload(ctx, event.ProfilePhotoName, event.ProfilePhoto)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store profile photo")
		}
	}

	rec := PendingRegistration{
		FullName:     event.FullName,
		Email:        event.Email,
		PasswordHash: hash,
		Phone:        event.Phone,
		ProfilePhoto: photoKey,
		Code:         code,
		IPAddress:    event.IPAddress,
	}

	// Overwrites any earlier attempt for this email: new code, fresh TTL.
	if err := h.pending.Put(ctx, event.Email, rec, PendingRegistrationTTL); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store pending registration")
	}

	return nil
}
