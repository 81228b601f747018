package config

import (
	"os"
	"path/filepath"
	"testing"

	derrors "github.com/Jumpaku/go-drivecli/errors"
	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, filepath.Join(xdg.ConfigHome, "drivecli", "client_secrets.json"), c.ClientSecrets)
	assert.Equal(t, filepath.Join(xdg.ConfigHome, "drivecli", "credentials.json"), c.Credentials)
	assert.Equal(t, "root", c.RootID)
	assert.True(t, c.Trash)
	assert.Equal(t, 1, c.Workers)
	assert.NoError(t, c.Validate())
}

func TestLoad_MissingOptional(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "config.yaml"), true)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad_MissingRequired(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.yaml"), false)
	assert.ErrorIs(t, err, derrors.ErrIOError)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
client_secrets: secrets/client.json
credentials: /abs/token.json
trash: false
strict: true
workers: 4
`)
	c, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "secrets", "client.json"), c.ClientSecrets)
	assert.Equal(t, "/abs/token.json", c.Credentials)
	assert.False(t, c.Trash)
	assert.True(t, c.Strict)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, "root", c.RootID)
}

func TestLoad_HomeRelative(t *testing.T) {
	path := writeConfig(t, "credentials: ~/drive/token.json\n")
	c, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg.Home, "drive", "token.json"), c.Credentials)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad yaml", "workers: [1"},
		{"zero workers", "workers: 0"},
		{"empty credentials", "credentials: ''"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, c.content), false)
			assert.Error(t, err)
		})
	}
}
