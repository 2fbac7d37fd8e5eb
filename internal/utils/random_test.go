package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTPShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "unexpected rune %q in %s", r, code)
		}
	}
}

// A loose chi-square check over every digit position. With 3000 generated
// digits per run the statistic stays far below the rejection bound for a
// uniform source; the bound is generous to keep the test deterministic in
// practice (df=9, p=0.001 critical value is 27.88, we allow 40).
func TestGenerateOTPDigitUniformity(t *testing.T) {
	const rounds = 500
	counts := make([]float64, 10)

	for i := 0; i < rounds; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		for _, r := range code {
			counts[r-'0']++
		}
	}

	total := float64(rounds * 6)
	expected := total / 10
	var chi2 float64
	for _, observed := range counts {
		diff := observed - expected
		chi2 += diff * diff / expected
	}

	assert.Less(t, chi2, 40.0, "digit distribution too skewed: chi2=%f counts=%v", chi2, counts)
}

func TestGenerateOpaqueTokenNoConsecutiveCollision(t *testing.T) {
	prev, err := GenerateOpaqueToken()
	require.NoError(t, err)
	require.Len(t, prev, 64)

	for i := 0; i < 100; i++ {
		next, err := GenerateOpaqueToken()
		require.NoError(t, err)
		require.Len(t, next, 64)
		assert.NotEqual(t, prev, next)
		prev = next
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "wrong-pass"))
}
