package enroll

import (
	"crypto/rand"
	"math/big"

	goerrors "github.com/goliatone/go-errors"
)

// codeAlphabet matches the printable alphanumerics the original notifier
// sends; codes are not numeric-only.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// CodeLength is the verification code size.
const CodeLength = 6

// GenerateCode returns a uniformly random 6-character verification code.
func GenerateCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, CodeLength)

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate verification code")
		}
		buf[i] = codeAlphabet[n.Int64()]
	}

	return string(buf), nil
}
