package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("sixchr", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "sixchr", hash)

	assert.NoError(t, ComparePassword(hash, "sixchr"))
	assert.Error(t, ComparePassword(hash, "sevench"))
	assert.Error(t, ComparePassword("", "sixchr"))
}
