package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// modelInfo describes one configured model for output.
type modelInfo struct {
	Name               string   `json:"name"`
	Child              bool     `json:"child"`
	BackReferenceField string   `json:"back_reference_field,omitempty"`
	ContextTypes       []string `json:"context_types,omitempty"`
	Shortcuts          []string `json:"shortcuts,omitempty"`
	Required           bool     `json:"required,omitempty"`
}

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}

			var infos []modelInfo
			for _, name := range a.registry.Names() {
				info := modelInfo{Name: name}
				if p, ok := a.plugins[name]; ok {
					opts := p.Options()
					info.Child = true
					info.BackReferenceField = p.BackReferenceField()
					info.ContextTypes = opts.ContextTypes
					info.Shortcuts = p.Shortcuts()
					info.Required = opts.Required
				}
				infos = append(infos, info)
			}

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return printJSON(out, infos)
			}
			for _, m := range infos {
				if !m.Child {
					fmt.Fprintln(out, m.Name)
					continue
				}
				parents := "any registered model"
				if len(m.ContextTypes) > 0 {
					parents = strings.Join(m.ContextTypes, ", ")
				}
				fmt.Fprintf(out, "%s -> %s (parents list it in %q)\n", m.Name, parents, m.BackReferenceField)
			}
			return nil
		},
	}
}
