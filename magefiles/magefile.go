//go:build mage

// Build, test and lint tasks for quickcopy.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
var Default = Build

const (
	binary   = "quickcopy"
	mainPkg  = "./cmd/quickcopy"
	coverOut = "coverage.out"
)

// benchPkgs hold the detector and executor benchmarks.
var benchPkgs = []string{"./internal/detector/...", "./internal/executor/..."}

// Test groups the test targets.
type Test mg.Namespace

// Build builds the binary
func Build() error {
	fmt.Println("Building", binary+"...")
	return sh.RunV("go", "build", "-trimpath", "-o", binary, mainPkg)
}

// Install installs the binary into GOBIN
func Install() error {
	fmt.Println("Installing", binary+"...")
	return sh.RunV("go", "install", "-trimpath", mainPkg)
}

// Unit runs the unit tests with the race detector and writes coverage.out
func (Test) Unit() error {
	return sh.RunV("go", "test", "-race", "-shuffle=on", "-coverprofile="+coverOut, "./...")
}

// Integration runs the syncengine batch and service scenarios against real
// temporary directories
func (Test) Integration() error {
	return sh.RunV("go", "test", "-race", "-tags=integration", "-count=1", "./internal/syncengine/...")
}

// Bench runs the detector and executor benchmarks
func (Test) Bench() error {
	args := append([]string{"test", "-run=^$", "-bench=.", "-benchmem"}, benchPkgs...)
	return sh.RunV("go", args...)
}

// All runs unit then integration tests
func (Test) All() {
	mg.SerialDeps(Test.Unit, Test.Integration)
}

// Lint runs golangci-lint with the repo config
func Lint() error {
	return run(context.Background(), "golangci-lint", "run", "-c", ".golangci.yml", "./...")
}

// Nilaway checks for nil dereferences
func Nilaway() error {
	return run(context.Background(), "nilaway", "./...")
}

// Fmt formats the code
func Fmt() error {
	if err := sh.Run("gofmt", "-s", "-w", "."); err != nil {
		return err
	}

	return sh.Run("goimports", "-w", ".")
}

// Check runs everything CI runs, stopping at the first failure
func Check() {
	mg.SerialDeps(Fmt, Lint, Test.Unit, Test.Integration, Nilaway)
}

// Cover renders coverage.out as coverage.html
func Cover() error {
	mg.Deps(Test.Unit)

	return sh.Run("go", "tool", "cover", "-html="+coverOut, "-o", "coverage.html")
}

// Demo builds the binary and mirrors a generated tree into a scratch
// target in batch mode, printing where both live
func Demo() error {
	mg.Deps(Build)

	scratch, err := os.MkdirTemp("", "quickcopy-demo-")
	if err != nil {
		return err
	}

	source := filepath.Join(scratch, "source")
	target := filepath.Join(scratch, "target")

	files := map[string]string{
		"readme.txt":        "hello",
		"docs/guide.md":     "# guide",
		"docs/img/logo.svg": "<svg/>",
		".config/settings":  "a=1",
		"build/output.o":    "skipped by --skip build",
	}

	for rel, content := range files {
		path := filepath.Join(source, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}

	fmt.Println("source:", source)
	fmt.Println("target:", target)

	return sh.RunV("./"+binary, "--source", source, "--target", target, "--skip", "build")
}

// Clean removes build artifacts
func Clean() error {
	for _, name := range []string{binary, coverOut, "coverage.html"} {
		if err := sh.Rm(name); err != nil {
			return err
		}
	}

	return nil
}

// run runs a command with the terminal attached
func run(c context.Context, command string, arg ...string) error {
	cmd := exec.CommandContext(c, command, arg...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
