package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomCodeUsesUpperAlphanumerics(t *testing.T) {
	code, err := randomCode(8)
	require.NoError(t, err)
	require.Len(t, code, 8)
	for _, r := range code {
		require.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected rune %q", r)
	}

	code, err = randomCode(0)
	require.NoError(t, err)
	require.Len(t, code, DefaultCodeLength)
}

func TestGenerateUniqueCodeRetriesOnCollision(t *testing.T) {
	taken := map[string]bool{"AAAAAA": true, "BBBBBB": true}
	sequence := []string{"AAAAAA", "BBBBBB", "CCCCCC"}
	calls := 0

	code, err := generateUniqueCode(context.Background(),
		func(_ context.Context, code string) (bool, error) { return taken[code], nil },
		func() (string, error) {
			next := sequence[calls]
			calls++
			return next, nil
		},
	)
	require.NoError(t, err)
	require.Equal(t, "CCCCCC", code)
	require.Equal(t, 3, calls)
}

func TestGenerateUniqueCodeNeverReturnsUsedCode(t *testing.T) {
	used := make(map[string]bool, 10000)
	exists := func(_ context.Context, code string) (bool, error) { return used[code], nil }
	next := func() (string, error) { return randomCode(DefaultCodeLength) }

	for i := 0; i < 10000; i++ {
		code, err := generateUniqueCode(context.Background(), exists, next)
		require.NoError(t, err)
		require.False(t, used[code])
		used[code] = true
	}
	require.Len(t, used, 10000)
}

func TestGenerateUniqueCodeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := generateUniqueCode(ctx,
		func(context.Context, string) (bool, error) { return true, nil },
		func() (string, error) { return "AAAAAA", nil },
	)
	require.ErrorIs(t, err, context.Canceled)
}
