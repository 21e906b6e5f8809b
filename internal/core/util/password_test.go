package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassword(t *testing.T) {
	encrypted, err := GenerateEncrypt("12345678")

	assert.NoError(t, err)
	assert.NotEqual(t, "12345678", encrypted)
	assert.NoError(t, ComparePassword("12345678", encrypted))
	assert.Error(t, ComparePassword("wrong-password", encrypted))
}

func TestPasswordTooLong(t *testing.T) {
	_, err := GenerateEncrypt(strings.Repeat("a", MaxPasswordBytes+1))

	assert.Error(t, err)
}
