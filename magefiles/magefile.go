//go:build mage

// Package main provides build targets for the contextref project using Mage.
//
// Usage:
//
//	mage build       Compile contextref binary to bin/
//	mage test        Run all tests with the race detector
//	mage testUnit    Run tests that need no external services
//	mage testMongo   Run the MongoDB store tests against $CONTEXTREF_TEST_MONGO_URI
//	mage cover       Write a coverage profile to bin/cover.out
//	mage lint        Run golangci-lint
//	mage clean       Remove build artifacts
package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "contextref"
	binaryDir  = "bin"
	cmdDir     = "./cmd/contextref"

	mongoURIEnv = "CONTEXTREF_TEST_MONGO_URI"
	mongoPkg    = "/internal/mongo"
)

// Build compiles the contextref binary to bin/.
func Build() error {
	mg.Deps(mkBinDir)
	return sh.RunV(binGo, "build", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs every package with the race detector. The MongoDB tests skip
// themselves unless CONTEXTREF_TEST_MONGO_URI is set.
func Test() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// TestUnit runs every package except the MongoDB store.
func TestUnit() error {
	pkgs, err := unitPackages()
	if err != nil {
		return err
	}
	return sh.RunV(binGo, append([]string{"test"}, pkgs...)...)
}

// TestMongo runs the MongoDB store tests. It fails fast without a server URI.
func TestMongo() error {
	if os.Getenv(mongoURIEnv) == "" {
		return errors.New(mongoURIEnv + " is not set")
	}
	return sh.RunV(binGo, "test", "-count=1", "-v", "."+mongoPkg+"/...")
}

// Cover writes a coverage profile for the unit packages.
func Cover() error {
	mg.Deps(mkBinDir)
	pkgs, err := unitPackages()
	if err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, "cover.out")
	args := append([]string{"test", "-coverprofile=" + profile}, pkgs...)
	if err := sh.RunV(binGo, args...); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+profile)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}

func mkBinDir() error {
	return os.MkdirAll(binaryDir, 0o755)
}

func unitPackages() ([]string, error) {
	out, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return nil, err
	}
	var pkgs []string
	for _, pkg := range strings.Split(out, "\n") {
		if pkg != "" && !strings.HasSuffix(pkg, mongoPkg) {
			pkgs = append(pkgs, pkg)
		}
	}
	if len(pkgs) == 0 {
		return nil, errors.New("no packages found")
	}
	return pkgs, nil
}
