package walker

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_KnownDigest(t *testing.T) {
	fp, err := Fingerprint(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", fp)
	assert.Len(t, fp, 64)
}

func TestFingerprint_StableAndSensitive(t *testing.T) {
	big := bytes.Repeat([]byte("0123456789abcdef"), 1000)

	a, err := Fingerprint(bytes.NewReader(big))
	require.NoError(t, err)
	b, err := Fingerprint(bytes.NewReader(big))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	big[len(big)-1] = 'X'
	c, err := Fingerprint(bytes.NewReader(big))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestFingerprintFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n.md")
	content := strings.Repeat("line of text\n", 700)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	fromFile, err := FingerprintFile(path)
	require.NoError(t, err)
	fromReader, err := Fingerprint(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, fromReader, fromFile)

	_, err = FingerprintFile(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}
