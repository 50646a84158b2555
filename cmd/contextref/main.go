// Command contextref manages documents with polymorphic parent references.
package main

import (
	"os"

	"github.com/mesh-intelligence/contextref/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
