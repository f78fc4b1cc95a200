package enroll

import (
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/nyaruka/phonenumbers"
)

const authUserKey = "auth_user_id"

// RegisterAuthRoutes mounts the auth endpoints on the given fiber app.
func RegisterAuthRoutes(app *fiber.App, opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	api := app.Group(controller.Routes.Prefix)

	api.Post(controller.Routes.Register, controller.Register).Name("auth.register")
	api.Post(controller.Routes.VerifyEmail, controller.VerifyEmail).Name("auth.verify-email")
	api.Post(controller.Routes.Login, controller.Login).Name("auth.login")

	api.Post(controller.Routes.Logout, controller.RequireAuth, controller.Logout).Name("auth.logout")
	api.Post(controller.Routes.RefreshToken, controller.RequireAuth, controller.RefreshToken).Name("auth.refresh-token")
}

type AuthControllerRoutes struct {
	Prefix       string
	Register     string
	VerifyEmail  string
	Login        string
	Logout       string
	RefreshToken string
}

type AuthController struct {
	Logger  Logger
	Repo    RepositoryManager
	Issuer  *TokenIssuer
	Pending PendingRegistrations
	Mailer  Mailer
	Assets  AssetStore
	Routes  *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Prefix:       "/auth",
			Register:     "/register",
			VerifyEmail:  "/verify-email",
			Login:        "/login",
			Logout:       "/logout",
			RefreshToken: "/refresh-token",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Issuer == nil {
		panic("Missing TokenIssuer in auth controller...")
	}

	if c.Pending == nil {
		panic("Missing PendingRegistrations in auth controller...")
	}

	if c.Mailer == nil {
		panic("Missing Mailer in auth controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerIssuer(issuer *TokenIssuer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Issuer = issuer
		return c
	}
}

func WithControllerPending(pending PendingRegistrations) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Pending = pending
		return c
	}
}

func WithControllerMailer(mailer Mailer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Mailer = mailer
		return c
	}
}

func WithControllerAssets(assets AssetStore) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Assets = assets
		return c
	}
}

// RequireAuth resolves the bearer token into an authenticated user id and
// stores it in the request locals. Any failure maps to a 401 envelope.
func (a *AuthController) RequireAuth(c *fiber.Ctx) error {
	secret := bearerToken(c.Get(fiber.HeaderAuthorization))
	if secret == "" {
		return respond(c, ErrorResponse("missing bearer token", http.StatusUnauthorized))
	}

	record, err := a.Issuer.Validate(c.UserContext(), secret)
	if err != nil {
		return respond(c, EnvelopeFromError(err, http.StatusUnauthorized))
	}

	c.Locals(authUserKey, record.UserID)

	return c.Next()
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// RegisterRequest is the registration payload. The profile photo travels as
// an optional multipart file part named profile_photo.
type RegisterRequest struct {
	FullName string `form:"full_name" json:"full_name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Phone    string `form:"phone" json:"phone"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.Phone, validation.Required, validation.By(ValidatePhoneNumber)),
	)
}

// ValidatePhoneNumber checks the value parses as a phone number. Numbers
// without a country prefix are parsed as US.
func ValidatePhoneNumber(value any) error {
	s, _ := value.(string)
	num, err := phonenumbers.Parse(s, "US")
	if err != nil {
		return errors.New("must be a valid phone number")
	}
	if !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid phone number")
	}
	return nil
}

func (a *AuthController) Register(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload: ", "error", err)
		return respond(c, ErrorResponse("failed to parse request body", http.StatusBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload: ", "error", err)
		return respond(c, ValidationErrorResponse(FormatValidationErrorToMap(err)))
	}

	req := RegisterMessage{
		FullName:  payload.FullName,
		Email:     payload.Email,
		Password:  payload.Password,
		Phone:     payload.Phone,
		IPAddress: c.IP(),
	}

	if file, err := c.FormFile("profile_photo"); err == nil && file != nil {
		src, err := file.Open()
		if err != nil {
			a.Logger.Error("register open photo: ", "error", err)
			return respond(c, ErrorResponse("failed to read profile photo", http.StatusBadRequest))
		}
		defer src.Close()

		req.ProfilePhotoName = file.Filename
		req.ProfilePhoto = src
	}

	register := NewRegisterHandler(a.Pending, a.Mailer, a.Assets)

	if err := register.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("register execute: ", "error", err)
		return respond(c, EnvelopeFromError(err, http.StatusInternalServerError))
	}

	return respond(c, SuccessResponse("verification code sent", nil))
}

// VerifyEmailRequest is the email verification payload.
type VerifyEmailRequest struct {
	Email string `form:"email" json:"email"`
	Code  string `form:"verification_code" json:"verification_code"`
}

// Validate will run validation rules
func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Code, validation.Required, validation.Length(CodeLength, CodeLength)),
	)
}

func (a *AuthController) VerifyEmail(c *fiber.Ctx) error {
	payload := new(VerifyEmailRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("verify email parse payload: ", "error", err)
		return respond(c, ErrorResponse("failed to parse request body", http.StatusBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("verify email validate payload: ", "error", err)
		return respond(c, ValidationErrorResponse(FormatValidationErrorToMap(err)))
	}

	var res *VerifyEmailResponse

	req := VerifyEmailMessage{
		Email:     payload.Email,
		Code:      payload.Code,
		IPAddress: c.IP(),
		OnResponse: func(resp *VerifyEmailResponse) {
			res = resp
		},
	}

	verify := NewVerifyEmailHandler(a.Repo, a.Pending, a.Issuer)

	if err := verify.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("verify email execute: ", "error", err)
		// Verification failures surface as 400, unlike login's 401.
		if errors.Is(err, ErrInvalidVerification) {
			return respond(c, ErrorResponse(ErrInvalidVerification.Message, http.StatusBadRequest))
		}
		return respond(c, EnvelopeFromError(err, http.StatusInternalServerError))
	}

	return respond(c, SuccessResponse("email verified", res))
}

// LoginRequest is the login payload. Identifier accepts an email address or
// a phone number.
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return respond(c, ErrorResponse("failed to parse request body", http.StatusBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload: ", "error", err)
		return respond(c, ValidationErrorResponse(FormatValidationErrorToMap(err)))
	}

	var res *LoginResponse

	req := LoginMessage{
		Identifier: payload.Identifier,
		Password:   payload.Password,
		OnResponse: func(resp *LoginResponse) {
			res = resp
		},
	}

	login := NewLoginHandler(a.Repo, a.Issuer)

	if err := login.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("login execute: ", "error", err)
		return respond(c, EnvelopeFromError(err, http.StatusUnauthorized))
	}

	return respond(c, SuccessResponse("login successful", res))
}

func (a *AuthController) Logout(c *fiber.Ctx) error {
	uid, err := AuthenticatedUser(c)
	if err != nil {
		return respond(c, ErrorResponse("missing authenticated user", http.StatusUnauthorized))
	}

	logout := NewLogoutHandler(a.Issuer)

	if err := logout.Execute(c.UserContext(), LogoutMessage{UserID: uid}); err != nil {
		a.Logger.Error("logout execute: ", "error", err)
		return respond(c, EnvelopeFromError(err, http.StatusInternalServerError))
	}

	return respond(c, SuccessResponse("logged out", nil))
}

func (a *AuthController) RefreshToken(c *fiber.Ctx) error {
	uid, err := AuthenticatedUser(c)
	if err != nil {
		return respond(c, ErrorResponse("missing authenticated user", http.StatusUnauthorized))
	}

	var res *RefreshTokenResponse

	req := RefreshTokenMessage{
		UserID: uid,
		OnResponse: func(resp *RefreshTokenResponse) {
			res = resp
		},
	}

	refresh := NewRefreshTokenHandler(a.Repo, a.Issuer)

	if err := refresh.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("refresh token execute: ", "error", err)
		return respond(c, EnvelopeFromError(err, http.StatusInternalServerError))
	}

	return respond(c, SuccessResponse("token refreshed", res))
}

func respond(c *fiber.Ctx, resp APIResponse) error {
	return c.Status(resp.StatusCode).JSON(resp)
}
