package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/handiism/audiotagtools/internal/config"
)

func newConfigCommand(cc *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand(cc))
	configCmd.AddCommand(newConfigShowCommand(cc))

	return configCmd
}

func newConfigInitCommand(cc *commandContext) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the default configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(cc.configFlag)
			if target == "" {
				defaultPath, err := config.DefaultPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}
			target, err := config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.DefaultSettings().Save(target); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing configuration file")
	return cmd
}

func newConfigShowCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cc.ensureSettings()
			if err != nil {
				return err
			}
			data, err := toml.Marshal(settings)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# state: %s\n", filepath.Clean(settings.Paths.StateDir))
			_, err = out.Write(data)
			return err
		},
	}
}
