package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/contextref/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and storage",
		Long:  "Create the configuration directory with a default config.yaml, then open the\nconfigured backend once so its storage exists.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := paths.ResolveConfigDir(a.flags.configDir)
			if err != nil {
				return fmt.Errorf("resolve config dir: %w", err)
			}
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt), a.flags.dataDir); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			if err := a.open(cmd.Context()); err != nil {
				return fmt.Errorf("initialize storage: %w", err)
			}

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return printJSON(out, map[string]string{
					"config_dir": configDir,
					"data_dir":   a.dataDir,
					"backend":    a.cfg.Backend,
				})
			}
			fmt.Fprintln(out, "contextref initialized")
			fmt.Fprintf(out, "  config: %s\n  data:   %s (%s)\n", configDir, a.dataDir, a.cfg.Backend)
			return nil
		},
	}
}
