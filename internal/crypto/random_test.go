package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken()
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Each call generates a unique token
	token2, err := GenerateSecureToken()
	assert.NoError(t, err)
	assert.NotEqual(t, token, token2)

	// unpadded base64 of 32 bytes is 43 chars
	assert.Len(t, token, 43)
}

func TestSignData(t *testing.T) {
	key := []byte("signing-key")

	sig := SignData("payload", key)
	assert.True(t, ValidateSignedData("payload", sig, key))
	assert.False(t, ValidateSignedData("payload2", sig, key))
	assert.False(t, ValidateSignedData("payload", sig, []byte("other-key")))
}
