package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reportlens/reportlens/internal/cli/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a reportlens configuration file",
		Long: `Write a reportlens.yaml with the default configuration so the
settings are visible and editable.`,
		Example: `  # Initialize in the current directory
  reportlens init

  # Initialize in a new directory
  reportlens init my-reports

  # Overwrite an existing config
  reportlens init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cmdCtx := NewCommandContextWithoutStore(cmd)
			return runInit(cmdCtx, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	return cmd
}

func runInit(cmdCtx *CommandContext, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "reportlens.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("reportlens.yaml already exists. Use --force to overwrite")
	}

	defaults := config.Config{
		OutDir:       config.DefaultOutDir,
		StatePath:    config.DefaultStateFile,
		History:      true,
		OutputFormat: config.DefaultOutput,
		Watch:        config.WatchConfig{DebounceMs: config.DefaultDebounceMs},
	}
	data, err := yaml.Marshal(&defaults)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	r := cmdCtx.Renderer
	r.Success("created " + configPath)
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Run 'reportlens extract <source>' against a report")
	r.Println("  2. Run 'reportlens pages <source>' to inspect page order")
	r.Println("  3. Run 'reportlens runs' to see extraction history")

	return nil
}
