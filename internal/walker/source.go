package walker

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileSource is a note on disk, addressed by its document id.
type FileSource struct {
	id       string
	fullPath string
}

// Source returns the FileSource for a document id of this vault.
func (v *Vault) Source(id string) *FileSource {
	return &FileSource{
		id:       id,
		fullPath: filepath.Join(v.root, filepath.FromSlash(id)),
	}
}

// Sources converts walk results into FileSources.
func (v *Vault) Sources(files []FileInfo) []*FileSource {
	out := make([]*FileSource, len(files))
	for i, f := range files {
		out[i] = &FileSource{id: f.RelPath, fullPath: f.Path}
	}
	return out
}

func (s *FileSource) ID() string       { return s.id }
func (s *FileSource) FullPath() string { return s.fullPath }

// Title is the final path segment without its extension.
func (s *FileSource) Title() string {
	return Title(s.id)
}

func (s *FileSource) Fingerprint() (string, error) {
	return FingerprintFile(s.fullPath)
}

func (s *FileSource) Content() (string, error) {
	data, err := os.ReadFile(s.fullPath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Title derives a document title from a slash-separated document id.
func Title(id string) string {
	base := path.Base(id)
	return strings.TrimSuffix(base, path.Ext(base))
}
