package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVs(t *testing.T) {
	t.Run("redacts credential keys", func(t *testing.T) {
		out := sanitizeKVs([]interface{}{"api_key", "sk-1234567890", "model", "gemini"})
		assert.Equal(t, []interface{}{"api_key", "sk-1...[REDACTED]", "model", "gemini"}, out)
	})

	t.Run("short secrets are fully masked", func(t *testing.T) {
		out := sanitizeKVs([]interface{}{"password", "abc"})
		assert.Equal(t, []interface{}{"password", "[REDACTED]"}, out)
	})

	t.Run("keeps dangling key", func(t *testing.T) {
		out := sanitizeKVs([]interface{}{"query", "laptop", "orphan"})
		assert.Equal(t, []interface{}{"query", "laptop", "orphan"}, out)
	})
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"development", "production"} {
		t.Run(mode, func(t *testing.T) {
			log, err := New(mode)
			assert.NoError(t, err)
			assert.NotNil(t, log.SugaredLogger)
		})
	}
}
