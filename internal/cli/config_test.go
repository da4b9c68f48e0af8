package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/whetl/internal/config"
	"github.com/vvka-141/whetl/internal/storage"
)

func TestMaskSecrets(t *testing.T) {
	cfg := config.Config{
		Connection: config.ConnectionConfig{Host: "h", Password: "hunter2"},
		Storage:    storage.Config{Bucket: "raw", AccessKeyID: "AKIA", SecretAccessKey: "secret"},
	}

	masked := maskSecrets(cfg)

	assert.Equal(t, maskedSecret, masked.Connection.Password)
	assert.Equal(t, maskedSecret, masked.Storage.SecretAccessKey)
	assert.Empty(t, masked.Storage.SessionToken, "empty secrets stay empty")
	assert.Equal(t, "AKIA", masked.Storage.AccessKeyID)
	assert.Equal(t, "hunter2", cfg.Connection.Password, "original is untouched")
}

func TestConfigShow(t *testing.T) {
	clearConnectionEnv(t)
	cmd := &cobra.Command{Use: "show", RunE: runConfigShow}
	addSessionFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Set("config", writeTestConfig(t)))
	require.NoError(t, cmd.Flags().Set("scope", "warehouse"))

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	require.NoError(t, runConfigShow(cmd, nil))

	assert.Contains(t, out.String(), "host: cluster.example.com")
	assert.Contains(t, out.String(), "password:")
	assert.Contains(t, out.String(), maskedSecret)
	assert.NotContains(t, out.String(), "hunter2")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(errOut.String()), "whetl.yaml"))
}
