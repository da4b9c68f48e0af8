package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/whetl/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the selected configuration scope with secrets masked",
	Long: `Show loads the configuration the other commands would use, after .env
loading, ${VAR} expansion and defaults, and prints it as YAML. Passwords and
secret keys are masked.

Examples:
  whetl config show --config etl.yaml --scope warehouse --scope prod`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

const maskedSecret = "********"

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	scope, _ := cmd.Flags().GetStringSlice("scope")

	cfg, err := config.Load(configPath, scope...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	data, err := yaml.Marshal(maskSecrets(*cfg))
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n", cfg.Path())
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// maskSecrets returns a copy of cfg with every secret value replaced.
func maskSecrets(cfg config.Config) config.Config {
	mask := func(s *string) {
		if *s != "" {
			*s = maskedSecret
		}
	}
	mask(&cfg.Connection.Password)
	mask(&cfg.Storage.SecretAccessKey)
	mask(&cfg.Storage.SessionToken)
	return cfg
}
