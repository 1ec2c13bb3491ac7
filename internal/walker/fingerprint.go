package walker

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// fingerprintBufSize bounds each read so memory use does not grow with file size.
const fingerprintBufSize = 4096

// Fingerprint returns the hex SHA-256 digest of everything read from r.
func Fingerprint(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, fingerprintBufSize)
	if _, err := io.CopyBuffer(h, onlyReader{r}, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FingerprintFile returns the fingerprint of the file at path.
func FingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return Fingerprint(f)
}

// onlyReader hides any WriterTo implementation so io.CopyBuffer honours buf.
type onlyReader struct{ io.Reader }
