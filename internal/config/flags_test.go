package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServerFlags(t *testing.T) {
	f, err := ParseServerFlags([]string{"-p", "9100", "--env-file", "prod.env", "--remote-action-url", "http://agent"})
	require.NoError(t, err)

	assert.Equal(t, "9100", f.Port)
	assert.Equal(t, "prod.env", f.EnvFile)
	assert.Equal(t, "http://agent", f.RemoteActionURL)

	_, err = ParseServerFlags([]string{"--nope"})
	require.Error(t, err)
}

func TestParseClientFlags(t *testing.T) {
	f, err := ParseClientFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:"+DefaultPort, f.ServerURL)
	assert.Empty(t, f.SessionID)

	f, err = ParseClientFlags([]string{"-s", "https://notes.example", "--session", "abc"})
	require.NoError(t, err)
	assert.Equal(t, "https://notes.example", f.ServerURL)
	assert.Equal(t, "abc", f.SessionID)
}
