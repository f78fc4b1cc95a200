package enroll_test

import (
	"encoding/json"
	"testing"
	"time"

	enroll "github.com/goliatone/go-enroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenTTL(t *testing.T) {
	assert.Equal(t, 10*time.Minute, enroll.TokenTTL(enroll.TokenKindAccess))
	assert.Equal(t, 20*time.Minute, enroll.TokenTTL(enroll.TokenKindRefresh))
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	token := &enroll.Token{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, token.Expired(now))
	assert.True(t, token.Expired(now.Add(2*time.Minute)))
	assert.True(t, token.Expired(token.ExpiresAt))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, enroll.IsEmail("jane@example.com"))
	assert.True(t, enroll.IsEmail(" jane@example.com "))
	assert.False(t, enroll.IsEmail("+14155552671"))
	assert.False(t, enroll.IsEmail("4155552671"))
}

func TestSensitiveFieldsNeverSerialize(t *testing.T) {
	user := &enroll.User{
		FullName:     "Jane Doe",
		Email:        "jane@example.com",
		PasswordHash: "$2a$14$secret",
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")

	token := &enroll.Token{SecretHash: "deadbeef"}
	raw, err = json.Marshal(token)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "deadbeef")
}
