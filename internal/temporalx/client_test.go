package temporalx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

func TestClampBackoff(t *testing.T) {
	assert.Equal(t, 250*time.Millisecond, ClampBackoff(250*time.Millisecond, 5*time.Second, 1))
	assert.Equal(t, time.Second, ClampBackoff(250*time.Millisecond, 5*time.Second, 3))
	assert.Equal(t, 5*time.Second, ClampBackoff(250*time.Millisecond, 5*time.Second, 10))
	assert.Equal(t, 250*time.Millisecond, ClampBackoff(0, 0, 1))
}

func TestIsRetryableRPC(t *testing.T) {
	assert.True(t, isRetryableRPC(status.Error(codes.Unavailable, "down")))
	assert.False(t, isRetryableRPC(status.Error(codes.PermissionDenied, "no")))
	assert.True(t, isRetryableRPC(context.DeadlineExceeded))
	assert.False(t, isRetryableRPC(errors.New("plain")))
	assert.False(t, isRetryableRPC(nil))
}

func TestNewClientDisabledWithoutAddress(t *testing.T) {
	t.Setenv("TEMPORAL_ADDRESS", "")
	cfg := LoadConfig()
	assert.False(t, cfg.Enabled())
	assert.Equal(t, "glucose", cfg.Namespace)

	c, err := NewClient(logger.NewNop(), cfg)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestLoadTLSConfigRequiresPair(t *testing.T) {
	_, err := loadTLSConfig(Config{ClientCAPath: "/tmp/ca.pem"})
	assert.ErrorContains(t, err, "required")
}
