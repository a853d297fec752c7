package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authscreens/core/config"
)

type testConfig struct {
	Addr    string        `env:"CFG_TEST_ADDR" envDefault:":8080"`
	Timeout time.Duration `env:"CFG_TEST_TIMEOUT" envDefault:"5s"`
}

type requiredConfig struct {
	Secret string `env:"CFG_TEST_REQUIRED_SECRET,required"`
}

// Not parallel: tests share the process environment and the config cache.

func TestLoad_ParsesAndCaches(t *testing.T) {
	config.Reset()
	t.Setenv("CFG_TEST_ADDR", ":9090")

	var cfg testConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.Timeout)

	t.Setenv("CFG_TEST_ADDR", ":7070")
	var again testConfig
	require.NoError(t, config.Load(&again))
	assert.Equal(t, ":9090", again.Addr, "cached value")

	config.Reset()
	require.NoError(t, config.Load(&again))
	assert.Equal(t, ":7070", again.Addr)
}

func TestLoad_Required(t *testing.T) {
	config.Reset()

	var cfg requiredConfig
	require.Error(t, config.Load(&cfg))
	assert.Panics(t, func() { config.MustLoad(&cfg) })
}

func TestLoad_NotStruct(t *testing.T) {
	var n int
	assert.ErrorIs(t, config.Load(&n), config.ErrNotStructPointer)

	var nilCfg *testConfig
	assert.ErrorIs(t, config.Load(nilCfg), config.ErrNotStructPointer)
}
