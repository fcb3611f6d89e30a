package cli

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/samarth/internal/adapters/driven/config/file"
	"github.com/custodia-labs/samarth/internal/app"
	"github.com/custodia-labs/samarth/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Manage configuration",
	Long:        `View and change settings stored in ~/.samarth/config.toml.`,
	Annotations: map[string]string{needsAnnotation: needsSettings},
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show current settings",
	Annotations: map[string]string{needsAnnotation: needsSettings},
	RunE:        runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a single configuration value and save it.

Durations accept Go syntax ("90s", "1h") or whole seconds.
Lists are comma separated.

Examples:
  samarth config set llm.provider openai
  samarth config set llm.api_key sk-...
  samarth config set cache.ttl 30m
  samarth config set server.cors_origins https://a.example,https://b.example`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{needsAnnotation: needsSettings},
	RunE:        runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the configuration file path",
	Annotations: map[string]string{needsAnnotation: needsNothing},
	RunE:        runConfigPath,
}

var configKeysCmd = &cobra.Command{
	Use:         "keys",
	Short:       "List supported configuration keys",
	Annotations: map[string]string{needsAnnotation: needsNothing},
	Run: func(cmd *cobra.Command, _ []string) {
		keys := services.SettingKeys()
		slices.Sort(keys)
		for _, k := range keys {
			cmd.Println(k)
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  CORS origins: %s\n", strings.Join(settings.Server.CORSOrigins, ", "))
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Directory: %s\n", orNone(settings.Index.Dir))
	cmd.Printf("  Top K: %d\n", settings.Index.TopK)
	cmd.Printf("  Auto index: %t\n", settings.Index.AutoIndex)
	cmd.Printf("  Watch: %t\n", settings.Index.Watch)
	cmd.Printf("  Embed batch size: %d\n", settings.Index.EmbedBatchSize)
	cmd.Printf("  Generate timeout: %s\n", settings.Index.GenerateTimeout)
	cmd.Printf("  Fetch timeout: %s\n", settings.Index.FetchTimeout)
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Backend: %s\n", settings.Cache.Backend)
	cmd.Printf("  Max size: %d\n", settings.Cache.MaxSize)
	cmd.Printf("  TTL: %s\n", settings.Cache.TTL)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", orNone(settings.Embedding.Model))
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displayKey(settings.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredLabel(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", orNone(settings.LLM.Model))
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displayKey(settings.LLM.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredLabel(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[data.gov.in]")
	cmd.Printf("  Base URL: %s\n", settings.DataGov.BaseURL)
	cmd.Printf("  API Key: %s\n", displayKey(settings.DataGov.APIKey))
	cmd.Printf("  Crop resource: %s\n", settings.DataGov.CropResource)
	cmd.Printf("  Rainfall resource: %s\n", settings.DataGov.RainfallResource)
	cmd.Printf("  Record limit: %d\n", settings.DataGov.Limit)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'samarth config set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if services.IsSecretKey(key) {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	dir, err := app.ResolveConfigDir(configDir)
	if err != nil {
		return err
	}
	cmd.Println(filepath.Join(dir, file.ConfigFileName))
	return nil
}

func displayKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
