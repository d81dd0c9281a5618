package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()

	type job struct {
		Name string `json:"name"`
	}
	SetJSON(ctx, c, "jenkins:jobs:all", []job{{Name: "job1"}}, 300*time.Second)

	var out []job
	require.True(t, GetJSON(ctx, c, "jenkins:jobs:all", &out))
	require.Len(t, out, 1)
	assert.Equal(t, "job1", out[0].Name)
}

func TestCodec_FalsyValuesDistinguishableFromMiss(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()

	// Empty list, empty map, zero and empty string must all round-trip
	// as hits, never as misses.
	SetJSON(ctx, c, "list", []string{}, time.Minute)
	SetJSON(ctx, c, "map", map[string]string{}, time.Minute)
	SetJSON(ctx, c, "zero", 0, time.Minute)
	SetJSON(ctx, c, "str", "", time.Minute)

	var list []string
	assert.True(t, GetJSON(ctx, c, "list", &list))
	assert.NotNil(t, list)
	assert.Empty(t, list)

	var m map[string]string
	assert.True(t, GetJSON(ctx, c, "map", &m))
	assert.Empty(t, m)

	var n int
	assert.True(t, GetJSON(ctx, c, "zero", &n))
	assert.Equal(t, 0, n)

	var s string
	assert.True(t, GetJSON(ctx, c, "str", &s))
	assert.Equal(t, "", s)

	var missing []string
	assert.False(t, GetJSON(ctx, c, "never-set", &missing))
}

func TestCodec_MissOnExpiredEntry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()

	SetJSON(ctx, c, "k", "v", 5*time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	var out string
	assert.False(t, GetJSON(ctx, c, "k", &out))
}

func TestCodec_UnmarshalableValueIsNotStored(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()

	SetJSON(ctx, c, "bad", make(chan int), time.Minute)
	_, err := c.Get(ctx, "bad")
	assert.ErrorIs(t, err, ErrNotFound)
}
