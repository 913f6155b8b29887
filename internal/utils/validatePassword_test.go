package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("abc123!x"))
	assert.Error(t, ValidatePassword("short1!"))
	assert.Error(t, ValidatePassword("noDigitsHere!"))
}

func TestValidateNickname(t *testing.T) {
	assert.NoError(t, ValidateNickname("취준생"))
	assert.Error(t, ValidateNickname("a"))
}
