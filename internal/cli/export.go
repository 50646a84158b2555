package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/contextref/pkg/store"
)

func newExportCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every collection to JSONL files",
		Long:  "Export writes <collection>.jsonl into --dir, one document per line. Only the\nsqlite backend supports it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			exp, ok := a.store.(store.Exporter)
			if !ok {
				return usagef("export: backend %q does not support export", a.cfg.Backend)
			}
			written, err := exp.Export(cmd.Context(), dir)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if a.flags.jsonMode {
				if written == nil {
					written = []string{}
				}
				return printJSON(cmd.OutOrStdout(), written)
			}
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load collections from JSONL files",
		Long:  "Import reads every <collection>.jsonl in --dir and upserts its documents.\nOnly the sqlite backend supports it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			imp, ok := a.store.(store.Importer)
			if !ok {
				return usagef("import: backend %q does not support import", a.cfg.Backend)
			}
			n, err := imp.Import(cmd.Context(), dir)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]int{"imported": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d documents\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "input directory")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}
