package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hashed, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hashed)

	assert.NoError(t, h.Compare(hashed, "secret1"))
	assert.ErrorIs(t, h.Compare(hashed, "secret2"), ErrInvalidCredentials)

	// 每次加盐不同
	again, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again)
}

func TestPasswordHasher_Length(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	_, err := h.Hash("12345")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = h.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = h.Hash("123456")
	assert.NoError(t, err)
}

func TestNewUser_NormalizesEmail(t *testing.T) {
	u := NewUser(" reader ", "  Reader@Example.COM ", "hash")
	assert.Equal(t, "reader@example.com", u.Email)
	assert.Equal(t, "reader", u.Username)
}
