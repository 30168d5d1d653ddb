package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AppIemon/umm-sub002/internal/config"
)

var flagDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the generator configuration as YAML after the search order
(--config, ~/.levelgen/configs/levelgen.yaml, ./configs/levelgen.yaml,
built-in defaults) has been applied. Use --defaults to print the built-in
file, a good starting point for a custom config.

Examples:
  levelgen config
  levelgen config --defaults > levelgen.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagDefaults, "defaults", false, "Print the built-in default config file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if flagDefaults {
		_, err := os.Stdout.Write(config.DefaultYAML())
		return err
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
