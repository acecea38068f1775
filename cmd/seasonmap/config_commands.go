package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"seasonmap/internal/config"
	"seasonmap/internal/logging"
	"seasonmap/internal/matcher"
	"seasonmap/internal/tmdb"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set tmdb.api_key (or export TMDB_API_KEY) before running seasonmap.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, settingRows(cfg), nil))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func settingRows(cfg *config.Config) [][]string {
	auth := "api_key query parameter"
	if tmdb.IsBearerToken(cfg.TMDB.APIKey) {
		auth = "bearer token"
	}
	notify := "disabled"
	if cfg.Notifications.NtfyTopic != "" {
		notify = cfg.Notifications.NtfyTopic
	}
	logFile := "console only"
	if cfg.Paths.LogDir != "" {
		logFile = filepath.Join(cfg.Paths.LogDir, logging.FileName)
	}
	return [][]string{
		{"Input file", cfg.Paths.InputFile},
		{"Output file", cfg.Paths.OutputFile},
		{"TMDB auth", auth},
		{"TMDB API", cfg.TMDB.BaseURL},
		{"AniList API", cfg.AniList.URL},
		{"Mapping dataset", cfg.Mapping.URL},
		{"Item delay", cfg.ItemDelay().String()},
		{"Match tolerance", fmt.Sprintf("%d days", matcher.DefaultTolerance)},
		{"Notifications", notify},
		{"Log file", logFile},
	}
}
