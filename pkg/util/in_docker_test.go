package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRunningInDocker(t *testing.T) {
	orig := dockerEnvFile
	t.Cleanup(func() { dockerEnvFile = orig })

	marker := filepath.Join(t.TempDir(), ".dockerenv")

	dockerEnvFile = marker
	assert.False(t, IsRunningInDocker())

	require.NoError(t, os.WriteFile(marker, nil, 0o644))
	assert.True(t, IsRunningInDocker())
}
