package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	config := NewConfig()

	assert.Equal(t, "localhost:6379", config.Addr)
	assert.Equal(t, 0, config.DB)
	assert.Equal(t, 10, config.PoolSize)
	assert.Equal(t, 2, config.MinIdleConn)
	assert.Equal(t, 3, config.MaxRetries)
}

func TestConnect_Unreachable(t *testing.T) {
	config := NewConfig()
	config.Addr = "127.0.0.1:1"
	config.MaxRetries = 0
	config.RetryInterval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Connect(ctx, config)
	assert.Error(t, err)
}

func TestHealthCheck_NotInitialized(t *testing.T) {
	c := &Client{}
	err := c.HealthCheck(context.Background())
	assert.Error(t, err)
}
