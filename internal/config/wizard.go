package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

const enterManually = "Enter a path manually"

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to vaultsearch! Let's configure your vault.")
	fmt.Println()

	cfg := DefaultConfig()
	home, _ := os.UserHomeDir()

	// 1. Vault.
	vault, err := promptVault(home)
	if err != nil {
		return nil, err
	}
	cfg.VaultPath = vault

	// 2. Embedding provider.
	providerPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{
			"ollama (local, no API key)",
			"openai (needs OPENAI_API_KEY)",
		},
	}
	providerIdx, _, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	providers := []ProviderType{ProviderOllama, ProviderOpenAI}
	cfg.Embedding.Provider = providers[providerIdx]

	// 3. Model.
	modelPrompt := promptui.Prompt{
		Label:   "Embedding model",
		Default: DefaultModel(cfg.Embedding.Provider),
	}
	if cfg.Embedding.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("embedding model: %w", err)
	}

	// 4. Chunk size.
	chunkPrompt := promptui.Prompt{
		Label:    "Chunk size in bytes",
		Default:  strconv.Itoa(cfg.ChunkSize),
		Validate: positiveInt,
	}
	chunkStr, err := chunkPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("chunk size: %w", err)
	}
	cfg.ChunkSize, _ = strconv.Atoi(strings.TrimSpace(chunkStr))

	// 5. Extra exclude patterns.
	excludePrompt := promptui.Prompt{
		Label:   "Exclude patterns (comma-separated globs, leave blank for none)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	cfg.Exclude = splitAndTrim(excludeStr)

	if cfg.OverlapSize >= cfg.ChunkSize {
		cfg.OverlapSize = cfg.ChunkSize / 4
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if envVar := APIKeyEnvVar(cfg.Embedding.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running vaultsearch index.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func promptVault(home string) (string, error) {
	candidates := candidateVaults(home)
	if len(candidates) > 0 {
		sel := promptui.Select{
			Label: "Select your Obsidian vault",
			Items: append(candidates, enterManually),
		}
		_, choice, err := sel.Run()
		if err != nil {
			return "", fmt.Errorf("vault selection: %w", err)
		}
		if choice != enterManually {
			return choice, nil
		}
	}

	p := promptui.Prompt{
		Label: "Vault directory",
		Validate: func(s string) error {
			if !isDir(strings.TrimSpace(s)) {
				return fmt.Errorf("not a directory")
			}
			return nil
		},
	}
	vault, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("vault path: %w", err)
	}
	return strings.TrimSpace(vault), nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
