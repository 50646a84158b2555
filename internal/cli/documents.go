package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

func newCreateCmd(a *app) *cobra.Command {
	var contextType, contextID string

	cmd := &cobra.Command{
		Use:   "create <model> [key=value...]",
		Short: "Create a document",
		Long: `Create stores a new document of the given model. Values that parse as JSON
keep their JSON type. On a child model, a shortcut key such as post=<id> sets
the context the same way --context-type/--context-id do.

Example:
  contextref create Post title=hello
  contextref create Comment body=hi --context-type Post --context-id <id>`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			fields, err := parseAssignments(args[1:], a.contextKeys(cmd.Context(), args[0]))
			if err != nil {
				return err
			}

			doc, err := a.repo.New(args[0])
			if err != nil {
				return err
			}
			p := a.plugins[args[0]]
			for k, v := range fields {
				if p != nil {
					if sc, ok := p.Shortcut(k); ok {
						sc.Set(doc, fields.String(k))
						continue
					}
				}
				doc.Set(k, v)
			}
			if contextType != "" || contextID != "" {
				doc.SetContext(types.Context{Type: contextType, ID: contextID})
			}

			if err := a.repo.Save(cmd.Context(), doc); err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			return printDocument(cmd.OutOrStdout(), a.flags.jsonMode, doc)
		},
	}
	cmd.Flags().StringVar(&contextType, "context-type", "", "parent model name")
	cmd.Flags().StringVar(&contextID, "context-id", "", "parent document id")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <model> <id>",
		Short: "Get a document by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			doc, err := a.repo.Load(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("get %s %s: %w", args[0], args[1], err)
			}
			return printDocument(cmd.OutOrStdout(), a.flags.jsonMode, doc)
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <model> [key=value...]",
		Short: "List documents with optional filter",
		Long: `List returns documents of the given model whose fields equal every
key=value filter. On a child model a filter key naming a parent type in
normalized form, such as post=<id>, matches documents under that parent.

Example:
  contextref list Comment
  contextref list Comment post=<id>`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			filter, err := parseAssignments(args[1:], a.contextKeys(cmd.Context(), args[0]))
			if err != nil {
				return err
			}

			if p, ok := a.plugins[args[0]]; ok && !p.Options().DisableQuery {
				docs, err := p.WithContext(cmd.Context(), a.repo, filter)
				if err != nil {
					return err
				}
				return printDocuments(cmd.OutOrStdout(), a.flags.jsonMode, docs)
			}
			docs, err := a.repo.Find(cmd.Context(), args[0], filter)
			if err != nil {
				return err
			}
			return printDocuments(cmd.OutOrStdout(), a.flags.jsonMode, docs)
		},
	}
}

func newMoveCmd(a *app) *cobra.Command {
	var contextType, contextID string

	cmd := &cobra.Command{
		Use:   "move <model> <id>",
		Short: "Point a document at a different parent",
		Long: `Move changes a child's context. The child is removed from its old parent's
back-reference array before it is added to the new parent's.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if contextType == "" || contextID == "" {
				return usagef("move: --context-type and --context-id are required")
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			doc, err := a.repo.Load(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("move %s %s: %w", args[0], args[1], err)
			}
			doc.SetContext(types.Context{Type: contextType, ID: contextID})
			if err := a.repo.Save(cmd.Context(), doc); err != nil {
				return fmt.Errorf("move %s %s: %w", args[0], args[1], err)
			}
			return printDocument(cmd.OutOrStdout(), a.flags.jsonMode, doc)
		},
	}
	cmd.Flags().StringVar(&contextType, "context-type", "", "new parent model name")
	cmd.Flags().StringVar(&contextID, "context-id", "", "new parent document id")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <model> <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			doc, err := a.repo.Load(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("delete %s %s: %w", args[0], args[1], err)
			}
			if err := a.repo.Delete(cmd.Context(), doc); err != nil {
				return fmt.Errorf("delete %s %s: %w", args[0], args[1], err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": doc.ID()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", args[0], doc.ID())
			return nil
		},
	}
}
