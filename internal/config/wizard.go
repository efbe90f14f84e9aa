package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to urbix! Let's configure your reporting dashboard.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select the AI provider used to analyze reports",
		Items: []string{"google", "anthropic", "openai", "openrouter", "ollama", "none"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	if cfg.Provider != ProviderNone {
		// 2. Quality tier.
		qualityPrompt := promptui.Select{
			Label: "Select quality tier",
			Items: []string{
				"lite   - fast & cheap",
				"normal - balanced",
				"max    - highest quality",
			},
		}
		qualityIdx, _, err := qualityPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("quality selection: %w", err)
		}
		tiers := []QualityTier{QualityLite, QualityNormal, QualityMax}
		cfg.Quality = tiers[qualityIdx]

		preset := GetPreset(cfg.Provider, cfg.Quality)
		cfg.Model = preset.Model
		cfg.PulseModel = preset.PulseModel
	} else {
		cfg.Model = ""
		cfg.PulseModel = ""
	}

	// 3. Storage backend.
	storagePrompt := promptui.Select{
		Label: "Where should reports and users be stored",
		Items: []string{"sqlite", "file"},
	}
	_, storageStr, err := storagePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("storage selection: %w", err)
	}
	cfg.Storage = StorageType(storageStr)

	// 4. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 5. Timezone for daily trends.
	tzPrompt := promptui.Prompt{
		Label:   "Timezone for daily report trends (IANA name)",
		Default: cfg.Timezone,
		Validate: func(s string) error {
			c := Config{Timezone: strings.TrimSpace(s)}
			_, err := c.Location()
			return err
		},
	}
	tz, err := tzPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	cfg.Timezone = strings.TrimSpace(tz)

	// 6. HTTP port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running urbix serve.\n", envVar)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
