package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizedEmail(t *testing.T) {
	assert.Equal(t, "a****@*********.com", SanitizedEmail("admin@roadrulez.com"))
	assert.Equal(t, "[invalid-email]", SanitizedEmail("not-an-email"))
}

func TestSanitizeQueryString(t *testing.T) {
	assert.True(t, SanitizeQueryString("password=hunter2"))
	assert.True(t, SanitizeQueryString("EMAIL=a%40b.com"))
	assert.False(t, SanitizeQueryString("page=2&country=de"))
	assert.False(t, SanitizeQueryString(""))
}
