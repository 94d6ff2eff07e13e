package service

import (
	"context"
	"crypto/rand"
	"math/big"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultCodeLength is used when no length is configured.
const DefaultCodeLength = 6

// randomCode draws an upper-case alphanumeric code from crypto/rand.
func randomCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	max := big.NewInt(int64(len(codeAlphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// generateUniqueCode draws codes until one is not in use. The loop has no
// fixed bound and stops only on success, a lookup failure or cancellation.
func generateUniqueCode(ctx context.Context, exists func(context.Context, string) (bool, error), next func() (string, error)) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code, err := next()
		if err != nil {
			return "", err
		}

		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
}
