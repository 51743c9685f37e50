package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectContainer(t *testing.T) {
	padding := make([]byte, 256)

	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{"flac", append([]byte("fLaC"), padding...), "FLAC"},
		{"ogg", append([]byte("OggS"), padding...), "OGG"},
		{"text", []byte("just some notes, definitely not audio"), UnknownContainer},
		{"too short", []byte("ab"), UnknownContainer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "upload")
			require.NoError(t, os.WriteFile(path, tt.content, 0o600))
			assert.Equal(t, tt.want, DetectContainer(path))
		})
	}

	assert.Equal(t, UnknownContainer, DetectContainer(filepath.Join(t.TempDir(), "missing")))
}
