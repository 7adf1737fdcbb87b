package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Policies(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "none", cfg: Config{Policy: PolicyNone}},
		{name: "ttl", cfg: DefaultConfig()},
		{name: "size", cfg: Config{Policy: PolicySize, Size: 8}},
		{name: "size with ttl", cfg: Config{Policy: PolicySize, Size: 8, TTL: time.Minute}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			require.NoError(t, err)

			c.Set("a", 1)
			c.Set("b", nil)

			v, ok := c.Get("a")
			assert.True(t, ok)
			assert.Equal(t, 1, v)
			assert.Equal(t, 2, c.Len())

			c.Delete("a")
			_, ok = c.Get("a")
			assert.False(t, ok)

			c.Flush()
			assert.Zero(t, c.Len())
		})
	}
}

func TestNew_SizeEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(Config{Policy: PolicySize, Size: 2})
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)

	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestNew_TTLExpires(t *testing.T) {
	c, err := New(Config{Policy: PolicyTTL, TTL: 20 * time.Millisecond, CleanupInterval: time.Hour})
	require.NoError(t, err)

	c.Set("a", 1)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("a")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestConfig_Validate(t *testing.T) {
	assert.Error(t, Config{Policy: PolicyTTL}.Validate())
	assert.Error(t, Config{Policy: PolicySize}.Validate())
	assert.Error(t, Config{Policy: PolicySize, Size: 1, TTL: -1}.Validate())
	assert.Error(t, Config{Policy: Policy(9)}.Validate())
	assert.NoError(t, Config{}.Validate())
}

func TestParsePolicy(t *testing.T) {
	for _, p := range []Policy{PolicyNone, PolicyTTL, PolicySize} {
		got, err := ParsePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParsePolicy(" TTL ")
	require.NoError(t, err)
	assert.Equal(t, PolicyTTL, got)

	_, err = ParsePolicy("weak")
	assert.Error(t, err)
	assert.Equal(t, "Policy(7)", Policy(7).String())
}

func TestManager(t *testing.T) {
	m, err := NewManager(Config{Policy: PolicyNone}, map[string]Config{
		"small": {Policy: PolicySize, Size: 1},
	})
	require.NoError(t, err)

	users := m.Cache("users")
	assert.Same(t, users, m.Cache("users"))

	small := m.Cache("small")
	small.Set("a", 1)
	small.Set("b", 2)
	assert.Equal(t, 1, small.Len())

	assert.Equal(t, []string{"small", "users"}, m.Names())

	users.Set("x", 1)
	m.Remove("users")
	assert.Zero(t, users.Len())
	assert.Equal(t, []string{"small"}, m.Names())

	m.Clear()
	assert.Empty(t, m.Names())

	_, err = NewManager(Config{Policy: PolicySize}, nil)
	assert.Error(t, err)

	_, err = NewManager(Config{}, map[string]Config{"bad": {Policy: PolicyTTL}})
	assert.Error(t, err)
}
