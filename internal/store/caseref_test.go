package store

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCaseRefFormat(t *testing.T) {
	at := time.UnixMilli(1756400001234)

	ref := generateCaseRefAt("4f8a9c2e", at)
	assert.Equal(t, "LE-9C2E-1234", ref)

	// Short seeds are used as-is
	ref = generateCaseRefAt("ab", at)
	assert.Equal(t, "LE-AB-1234", ref)
}

func TestGenerateCaseRefPattern(t *testing.T) {
	pattern := regexp.MustCompile(`^LE-[A-Z0-9]{1,4}-\d{4}$`)
	ref := GenerateCaseRef("user-7f3b")
	assert.Regexp(t, pattern, ref)
}
