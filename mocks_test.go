package enroll_test

import (
	"context"
	"database/sql"
	"io"

	enroll "github.com/goliatone/go-enroll"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockUsers implements enroll.Users for the methods the handlers exercise.
// The embedded interface covers the rest of the repository surface; calling
// an unmocked method panics, which is what we want in tests.
type MockUsers struct {
	mock.Mock
	enroll.Users
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*enroll.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*enroll.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByPhone(ctx context.Context, phone string) (*enroll.User, error) {
	args := m.Called(ctx, phone)
	user, _ := args.Get(0).(*enroll.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByCredential(ctx context.Context, identifier string) (*enroll.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*enroll.User)
	return user, args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *enroll.User, criteria ...repository.InsertCriteria) (*enroll.User, error) {
	args := m.Called(ctx, record)
	user, _ := args.Get(0).(*enroll.User)
	return user, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *enroll.User, criteria ...repository.InsertCriteria) (*enroll.User, error) {
	args := m.Called(ctx, tx, record)
	user, _ := args.Get(0).(*enroll.User)
	return user, args.Error(1)
}

// MockTokens implements enroll.Tokens the same way.
type MockTokens struct {
	mock.Mock
	enroll.Tokens
}

func (m *MockTokens) Create(ctx context.Context, record *enroll.Token, criteria ...repository.InsertCriteria) (*enroll.Token, error) {
	args := m.Called(ctx, record)
	token, _ := args.Get(0).(*enroll.Token)
	return token, args.Error(1)
}

func (m *MockTokens) CreateTx(ctx context.Context, tx bun.IDB, record *enroll.Token, criteria ...repository.InsertCriteria) (*enroll.Token, error) {
	args := m.Called(ctx, tx, record)
	token, _ := args.Get(0).(*enroll.Token)
	return token, args.Error(1)
}

func (m *MockTokens) GetBySecretHash(ctx context.Context, hash string) (*enroll.Token, error) {
	args := m.Called(ctx, hash)
	token, _ := args.Get(0).(*enroll.Token)
	return token, args.Error(1)
}

func (m *MockTokens) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTokens) DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	args := m.Called(ctx, tx, userID)
	return args.Error(0)
}

// MockRepositoryManager implements enroll.RepositoryManager.
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Users() enroll.Users {
	args := m.Called()
	return args.Get(0).(enroll.Users)
}

func (m *MockRepositoryManager) Tokens() enroll.Tokens {
	args := m.Called()
	return args.Get(0).(enroll.Tokens)
}

func recordNotFound() error {
	return repository.NewRecordNotFound()
}

// MockMailer implements enroll.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

// MockAssetStore implements enroll.AssetStore
type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) Upload(ctx context.Context, name string, body io.Reader) (string, error) {
	args := m.Called(ctx, name, body)
	return args.String(0), args.Error(1)
}
