// Package cli implements the contextref command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/contextref/internal/logging"
	"github.com/mesh-intelligence/contextref/internal/paths"
	"github.com/mesh-intelligence/contextref/pkg/contextref"
	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// NewRootCmd creates the top-level "contextref" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "contextref",
		Short:   "Polymorphic parent references kept consistent across documents",
		Long:    "contextref stores documents whose context_type/context_id point at a parent\nand keeps each parent's back-reference array in step.",
		Version: contextref.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/"+paths.DefaultConfigDirName+")")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newModelsCmd(a))
	root.AddCommand(newCreateCmd(a))
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newMoveCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newImportCmd(a))

	return root
}

// Execute runs the root command with args and returns the process exit
// code. Errors are printed to stderr.
func Execute(args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if cerr := a.close(context.Background()); err == nil {
		err = cerr
	}
	_ = logging.Sync()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitCode(err)
}

// exitCode maps caller mistakes to 1 and everything else to 2.
func exitCode(err error) int {
	var usage *usageError
	switch {
	case errors.As(err, &usage),
		errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrParentNotFound),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrModelNotFound),
		errors.Is(err, types.ErrInvalidID):
		return exitUserError
	default:
		return exitSysError
	}
}

// usageError marks a malformed invocation.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}
