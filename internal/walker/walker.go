package walker

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize is the largest note indexed (10 MB).
const DefaultMaxFileSize int64 = 10 << 20

// FileInfo holds metadata about a single note discovered during traversal.
type FileInfo struct {
	Path    string // Absolute path on disk.
	RelPath string // Slash-separated path relative to the vault root; the document id.
	Size    int64  // File size in bytes.
}

// Options controls which files of a vault are eligible for indexing.
type Options struct {
	Root        string   // Vault root directory.
	Include     []string // Glob patterns; only matching files are included. Empty means DefaultIncludes.
	Exclude     []string // Glob patterns; matching files are excluded.
	MaxFileSize int64    // Files larger than this are skipped (0 = use default).
}

// Vault is a note directory with its eligibility rules.
type Vault struct {
	root        string
	include     []string
	exclude     []string
	maxFileSize int64
}

// NewVault resolves opts.Root and returns a Vault. The root must be an
// existing directory.
func NewVault(opts Options) (*Vault, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("walker: vault root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walker: vault root %s is not a directory", root)
	}

	v := &Vault{
		root:        root,
		include:     opts.Include,
		exclude:     opts.Exclude,
		maxFileSize: opts.MaxFileSize,
	}
	if len(v.include) == 0 {
		v.include = DefaultIncludes
	}
	if v.maxFileSize <= 0 {
		v.maxFileSize = DefaultMaxFileSize
	}
	return v, nil
}

// Root returns the absolute vault root.
func (v *Vault) Root() string { return v.root }

// RelPath converts an absolute path inside the vault to a document id.
func (v *Vault) RelPath(path string) (string, bool) {
	rel, err := filepath.Rel(v.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Eligible reports whether path names a note that should be indexed, using
// only the path. It returns the document id.
func (v *Vault) Eligible(path string) (string, bool) {
	rel, ok := v.RelPath(path)
	if !ok {
		return "", false
	}
	if inExcludedDir(rel) {
		return "", false
	}
	if !MatchesInclude(rel, v.include) || MatchesExclude(rel, v.exclude) {
		return "", false
	}
	return rel, true
}

// Walk traverses the vault and returns every eligible note, skipping files
// that are too large or look binary.
func (v *Vault) Walk() ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			return nil
		}

		if d.IsDir() {
			if path != v.root && IsExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, ok := v.Eligible(path)
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > v.maxFileSize {
			return nil
		}
		if isBinary(path) {
			return nil
		}

		files = append(files, FileInfo{Path: path, RelPath: rel, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}
	return files, nil
}

// Indexable reports whether the file at path currently exists, is a regular
// eligible note within the size limit, and does not look binary.
func (v *Vault) Indexable(path string) (string, bool) {
	rel, ok := v.Eligible(path)
	if !ok {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() > v.maxFileSize {
		return "", false
	}
	if isBinary(path) {
		return "", false
	}
	return rel, true
}

// isBinary reads the first 512 bytes of a file and checks for NUL bytes,
// which is a simple but effective heuristic for binary content.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}
