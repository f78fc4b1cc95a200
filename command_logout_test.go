package enroll_test

import (
	"context"
	"testing"

	enroll "github.com/goliatone/go-enroll"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLogoutHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes every token the user holds", func(t *testing.T) {
		userID := uuid.New()
		tokens := &MockTokens{}

		tokens.On("DeleteByUser", mock.Anything, userID).Return(nil).Once()

		handler := enroll.NewLogoutHandler(newIssuer(tokens)).WithLogger(testLogger{})

		require.NoError(t, handler.Execute(ctx, enroll.LogoutMessage{UserID: userID}))
		tokens.AssertExpectations(t)
	})

	t.Run("logging out twice succeeds", func(t *testing.T) {
		userID := uuid.New()
		tokens := &MockTokens{}

		tokens.On("DeleteByUser", mock.Anything, userID).Return(nil).Twice()

		handler := enroll.NewLogoutHandler(newIssuer(tokens)).WithLogger(testLogger{})

		require.NoError(t, handler.Execute(ctx, enroll.LogoutMessage{UserID: userID}))
		require.NoError(t, handler.Execute(ctx, enroll.LogoutMessage{UserID: userID}))
	})

	t.Run("requires an authenticated user", func(t *testing.T) {
		handler := enroll.NewLogoutHandler(newIssuer(&MockTokens{})).WithLogger(testLogger{})

		err := handler.Execute(ctx, enroll.LogoutMessage{})
		assert.Error(t, err)
	})
}
