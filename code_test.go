package enroll_test

import (
	"strings"
	"testing"

	enroll "github.com/goliatone/go-enroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	const alphanumerics = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	t.Run("has expected length", func(t *testing.T) {
		code, err := enroll.GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, enroll.CodeLength)
	})

	t.Run("uses only alphanumerics", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			code, err := enroll.GenerateCode()
			require.NoError(t, err)
			for _, r := range code {
				assert.True(t, strings.ContainsRune(alphanumerics, r), "unexpected character %q in %q", r, code)
			}
		}
	})

	t.Run("does not repeat across calls", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			code, err := enroll.GenerateCode()
			require.NoError(t, err)
			seen[code] = true
		}
		// 62^6 possibilities; 100 draws colliding would mean a broken source.
		assert.Greater(t, len(seen), 95)
	})
}
