package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/joe/quickcopy/internal/config"
)

const title = `
  ___        _      _     ____
 / _ \ _   _(_) ___| | __/ ___|___  _ __  _   _
| | | | | | | |/ __| |/ / |   / _ \| '_ \| | | |
| |_| | |_| | | (__|   <| |__| (_) | |_) | |_| |
 \__\_\\__,_|_|\___|_|\_\\____\___/| .__/ \__, |
                                   |_|    |___/`

//nolint:gochecknoglobals // Fixed banner rule
var separator = strings.Repeat("-", 70)

// printBanner writes the title, the version and author lines between
// separators, then the roots and mode of this run.
func printBanner(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, separator)
	fmt.Fprintf(out, "Version: %s\n", config.AppVersion)
	fmt.Fprintf(out, "Author: %s\n", config.Author)
	fmt.Fprintln(out, separator)
	fmt.Fprintf(out, "  source:  %s\n", cfg.Source)

	for _, target := range cfg.Targets {
		fmt.Fprintf(out, "  target:  %s\n", target)
	}

	fmt.Fprintf(out, "  mode:    %s\n\n", cfg.Mode)
}
