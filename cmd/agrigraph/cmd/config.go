package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agrigpt/agrigraph/configs"
	"github.com/agrigpt/agrigraph/internal/config"
	agerrors "github.com/agrigpt/agrigraph/internal/errors"
)

func newConfigCmd() *cobra.Command {
	var print bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage project configuration",
		Long: `Manage the project configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. Project config (.agrigraph.yaml)
  3. .env file (never overrides real environment variables)
  4. Environment variables (NEO4J_*, AGRIGRAPH_*)

Credentials are read only from .env or the environment, never from YAML.`,
		Example: `  # Validate and display the merged configuration
  agrigraph config --print

  # Create .agrigraph.yaml and .env templates
  agrigraph config init`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if print {
				return runConfigShow(cmd, false)
			}
			return cmd.Help()
		},
	}

	cmd.Flags().BoolVar(&print, "print", false, "Validate and print the merged configuration")

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (merged from all sources)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output configuration as JSON")
	return cmd
}

// runConfigShow loads, validates, and prints the merged configuration.
// Loading fails fast on an invalid configuration, so a zero exit means the
// printed configuration is usable. Secrets never appear in the output.
func runConfigShow(cmd *cobra.Command, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		redacted := *cfg
		redacted.Graph.Username = ""
		redacted.Graph.Password = ""
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(redacted)
	}

	rendered, err := cfg.RenderYAML()
	if err != nil {
		return err
	}
	fmt.Fprint(out, rendered)
	return nil
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create configuration templates in the project directory",
		Long: `Write .agrigraph.yaml and .env templates into the project directory.

The YAML holds paths and connection settings; the .env holds credentials
and stays out of version control.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := cmd.OutOrStdout()
	templates := map[string]string{
		config.ConfigFileName: configs.ProjectConfigTemplate,
		".env":                configs.DotenvTemplate,
	}
	for name, content := range templates {
		path := filepath.Join(projectDir, name)
		if _, err := os.Stat(path); err == nil && !force {
			fmt.Fprintf(out, "%s exists, skipping (use --force to overwrite)\n", name)
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return agerrors.ConfigError(fmt.Sprintf("failed to write %s", path), err)
		}
		fmt.Fprintf(out, "wrote %s\n", name)
	}
	return nil
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the project configuration file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := filepath.Abs(filepath.Join(projectDir, config.ConfigFileName))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
