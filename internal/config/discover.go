package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	vserrors "github.com/ziadkadry99/vaultsearch/internal/errors"
)

// VaultEnvVar names a vault directory explicitly.
const VaultEnvVar = "OBSIDIAN_VAULT_PATH"

// vaultSearchRoots are searched recursively for a vault, relative to home.
var vaultSearchRoots = []string{
	filepath.Join("Documents", "Obsidian"),
	filepath.Join("Library", "Mobile Documents", "iCloud~md~obsidian", "Documents"),
}

// DiscoverVault locates an Obsidian vault. In order: the directory named by
// OBSIDIAN_VAULT_PATH, the first directory holding a .obsidian folder under
// the known vault roots, then the first ~/Documents/* directory holding one.
func DiscoverVault(home string, getenv func(string) string) (string, error) {
	if getenv != nil {
		if p := getenv(VaultEnvVar); p != "" && isDir(p) {
			return p, nil
		}
	}

	for _, rel := range vaultSearchRoots {
		if p, ok := findVaultUnder(filepath.Join(home, rel)); ok {
			return p, nil
		}
	}

	entries, err := os.ReadDir(filepath.Join(home, "Documents"))
	if err == nil {
		for _, e := range entries {
			p := filepath.Join(home, "Documents", e.Name())
			if e.IsDir() && isDir(filepath.Join(p, ".obsidian")) {
				return p, nil
			}
		}
	}

	return "", vserrors.NotFound("config.discover_vault", "obsidian vault")
}

// ResolveVault returns vault_path when set, otherwise runs DiscoverVault.
func (c *Config) ResolveVault(home string, getenv func(string) string) (string, error) {
	if c.VaultPath != "" {
		if !isDir(c.VaultPath) {
			return "", vserrors.Invalid("config.resolve_vault", "vault_path %s is not a directory", c.VaultPath)
		}
		return c.VaultPath, nil
	}
	return DiscoverVault(home, getenv)
}

// findVaultUnder walks root in lexical order and returns the first directory
// that contains a .obsidian folder.
func findVaultUnder(root string) (string, bool) {
	if !isDir(root) {
		return "", false
	}
	var found string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if d.Name() == ".obsidian" {
			found = filepath.Dir(path)
			return fs.SkipAll
		}
		return nil
	})
	return found, found != ""
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// candidateVaults lists every discoverable vault for the setup wizard.
func candidateVaults(home string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, rel := range vaultSearchRoots {
		root := filepath.Join(home, rel)
		if !isDir(root) {
			continue
		}
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			if d.Name() == ".obsidian" {
				add(filepath.Dir(path))
				return filepath.SkipDir
			}
			return nil
		})
	}
	if entries, err := os.ReadDir(filepath.Join(home, "Documents")); err == nil {
		for _, e := range entries {
			p := filepath.Join(home, "Documents", e.Name())
			if e.IsDir() && isDir(filepath.Join(p, ".obsidian")) {
				add(p)
			}
		}
	}
	sort.Strings(out)
	return out
}
