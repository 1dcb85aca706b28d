package integration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/chordd/test/integration/harness"
)

func TestBindings_Table(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	env.WriteConfig(sampleConfig)

	result := harness.RunCommand(t, env, "bindings")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "3 bindings")
	harness.AssertStdoutContains(t, result, "ctrl+mod1+f")
	harness.AssertStdoutContains(t, result, "bspc node -c")
}

func TestBindings_JSON(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	env.WriteConfig(sampleConfig)

	result := harness.RunCommand(t, env, "bindings", "--format", "json")
	harness.AssertSuccess(t, result)

	var rows []struct {
		Chord   string `json:"chord"`
		Command string `json:"command"`
		Index   uint64 `json:"index"`
		Key     string `json:"key"`
		Pattern string `json:"pattern"`
	}
	harness.AssertValidJSON(t, result, &rows)
	require.Len(t, rows, 3)
	assert.Equal(t, "super + e", rows[0].Pattern)
	assert.Equal(t, "mod4+e", rows[0].Chord)
	assert.Len(t, rows[0].Key, 24)
	assert.Equal(t, uint64(2), rows[2].Index)
	assert.Equal(t, "shift+mod4+c", rows[2].Chord)
}
