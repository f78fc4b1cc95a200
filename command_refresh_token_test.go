package enroll_test

import (
	"context"
	"testing"
	"time"

	enroll "github.com/goliatone/go-enroll"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenHandler(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("revokes everything then mints a refresh token", func(t *testing.T) {
		tokens := &MockTokens{}
		repo := &MockRepositoryManager{}

		var recorded *enroll.Token

		tokens.On("DeleteByUserTx", mock.Anything, mock.Anything, userID).
			Return(nil).Once()
		tokens.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).
			Return(&enroll.Token{}, nil).
			Run(func(args mock.Arguments) {
				recorded = args.Get(2).(*enroll.Token)
			}).Once()

		passthroughTx(repo)

		handler := enroll.NewRefreshTokenHandler(repo, newIssuer(tokens)).WithLogger(testLogger{})

		var res *enroll.RefreshTokenResponse
		before := time.Now()

		err := handler.Execute(ctx, enroll.RefreshTokenMessage{
			UserID: userID,
			OnResponse: func(r *enroll.RefreshTokenResponse) {
				res = r
			},
		})
		require.NoError(t, err)

		require.NotNil(t, res)
		assert.NotEmpty(t, res.RefreshToken)
		assert.WithinDuration(t, before.Add(enroll.RefreshTokenTTL), res.RefreshTokenExpiry, 2*time.Second)

		require.NotNil(t, recorded)
		assert.Equal(t, enroll.TokenKindRefresh, recorded.Kind)
		assert.Equal(t, userID, recorded.UserID)

		tokens.AssertExpectations(t)
	})

	t.Run("requires an authenticated user", func(t *testing.T) {
		handler := enroll.NewRefreshTokenHandler(&MockRepositoryManager{}, newIssuer(&MockTokens{})).WithLogger(testLogger{})

		err := handler.Execute(ctx, enroll.RefreshTokenMessage{})
		assert.Error(t, err)
	})
}
