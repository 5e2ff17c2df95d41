package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	c, err := New(Config{Host: mr.Host(), Port: port, MaxPoolSize: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

type quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

func TestJSONRoundTripWithTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "quote:AAPL", quote{Symbol: "AAPL", Price: 10.45}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("quote:AAPL"))

	var got quote
	found, err := c.GetJSON(ctx, "quote:AAPL", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, quote{Symbol: "AAPL", Price: 10.45}, got)

	mr.FastForward(time.Minute + time.Second)
	found, err = c.GetJSON(ctx, "quote:AAPL", &got)
	require.NoError(t, err)
	assert.False(t, found, "expired key is a miss")
}

func TestGetMissingKey(t *testing.T) {
	c, _ := newTestCache(t)

	val, err := c.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, val)

	var got quote
	found, err := c.GetJSON(context.Background(), "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSONRejectsMalformedValue(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("quote:BAD", "{not json"))

	var got quote
	found, err := c.GetJSON(context.Background(), "quote:BAD", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestNewFailsWhenServerUnreachable(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	host, port := mr.Host(), mr.Port()
	mr.Close()

	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	_, err = New(Config{Host: host, Port: p})
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
