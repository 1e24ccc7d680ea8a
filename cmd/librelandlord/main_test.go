package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSnowflake(t *testing.T) {
	node, err := registerSnowflake()
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.NotEqual(t, node.Generate(), node.Generate())
}

func TestReadVersionFromEnv(t *testing.T) {
	t.Setenv("APP_VERSION", "")
	assert.Equal(t, "dev", readVersionFromEnv())

	t.Setenv("APP_VERSION", "1.4.0")
	assert.Equal(t, "1.4.0", readVersionFromEnv())
}
