package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		level       string
	}{
		{"dev environment debug level", "dev", "debug"},
		{"prod environment info level", "prod", "info"},
		{"staging environment warn level", "staging", "warn"},
		{"unknown level falls back to info", "prod", "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := NewLogger(tt.environment, tt.level, "gateway")
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestLogger_With(t *testing.T) {
	log, err := NewLogger("dev", "debug", "gateway")
	require.NoError(t, err)

	child := log.With(String("region", "us-east"))
	assert.NotNil(t, child)

	// Дочерний логгер не должен влиять на родительский
	assert.NotSame(t, log, child)
}

func TestFields(t *testing.T) {
	assert.Equal(t, "region", String("region", "asia").Key)
	assert.Equal(t, "count", Int("count", 3).Key)
	assert.Equal(t, "healthy", Bool("healthy", true).Key)
	assert.Equal(t, "error", Error(errors.New("probe failed")).Key)
	assert.Equal(t, "error", Error(nil).Key)
}

func TestCtxField(t *testing.T) {
	ctx := context.WithValue(context.Background(), "trace_id", "abc-123")
	field := CtxField(ctx)
	assert.Equal(t, "trace_id", field.Key)

	// Без trace_id в контексте возвращается unknown
	field = CtxField(context.Background())
	assert.Equal(t, "trace_id", field.Key)
}
