// Package config handles application configuration: command-line flags,
// an optional TOML file, and validation.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/alexflint/go-arg"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/joe/quickcopy/internal/detector"
	"github.com/joe/quickcopy/internal/syncengine"
	"github.com/joe/quickcopy/pkg/filesystem"
)

// Exported constants.
const (
	// Name is the program name shown in the banner and help.
	Name = "QuickCopy"
	// AppVersion is the released version.
	AppVersion = "1.0.0"
	// Author is credited in the banner.
	Author = "Jon Fast"
	// DefaultInterval is the polling interval of console and service modes.
	DefaultInterval = 30 * time.Second
)

// Sentinel errors.
var (
	// ErrInvalid is wrapped by every validation failure.
	ErrInvalid = errors.New("invalid configuration")
	// ErrExitEarly is returned after help or the version was printed.
	ErrExitEarly = errors.New("nothing to run")
)

// Mode selects the process lifecycle.
type Mode int

// Modes.
const (
	// Batch runs one cycle and exits.
	Batch Mode = iota
	// Console repeats cycles every interval with console logs.
	Console
	// Service repeats cycles every interval with JSON logs and no banner.
	Service
)

// String returns the mode's flag value.
func (m Mode) String() string {
	switch m {
	case Batch:
		return "batch"
	case Console:
		return "console"
	case Service:
		return "service"
	default:
		return "unknown"
	}
}

// Polls reports whether the mode repeats cycles.
func (m Mode) Polls() bool {
	return m == Console || m == Service
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "batch":
		return Batch, nil
	case "console":
		return Console, nil
	case "service":
		return Service, nil
	default:
		return Batch, fmt.Errorf("%w: mode %q (valid: batch, console, service)", ErrInvalid, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg and TOML.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Config holds the application configuration. Field defaults come from
// Defaults rather than struct tags so that values read from a config file
// survive flag parsing.
//
//nolint:lll // Struct tags carry the flag documentation.
type Config struct {
	Source          string        `arg:"-s,--source" toml:"source" help:"source directory or sftp://user@host[:port]/path"`
	Targets         []string      `arg:"-t,--target,separate" toml:"targets" help:"target directory or sftp:// URL (repeatable)"`
	SkipFolders     []string      `arg:"--skip,separate" toml:"skip_folders" help:"folder name or path fragment to leave out of creates and updates (repeatable)"`
	Extensions      []string      `arg:"-e,--ext,separate" toml:"extensions" help:"only sync files with this extension (repeatable)"`
	CompareSize     bool          `arg:"--compare-size" toml:"compare_size" help:"treat a size difference as a change (--compare-size=false to disable)"`
	CompareModified bool          `arg:"--compare-modified" toml:"compare_modified" help:"treat a modification time difference as a change"`
	CompareHash     bool          `arg:"--compare-hash" toml:"compare_hash" help:"treat a content hash difference as a change"`
	EnableDeletes   bool          `arg:"--delete" toml:"enable_deletes" help:"delete target entries missing from the source"`
	Mode            Mode          `arg:"-m,--mode" toml:"mode" help:"batch|console|service"`
	CheckInterval   time.Duration `arg:"--interval" toml:"check_interval" help:"time between cycles in console and service mode"`
	Workers         int           `arg:"-w,--workers" toml:"workers" help:"concurrent walks, hashes and copies"`
	Include         string        `arg:"--include" toml:"include" help:"only create or update files matching this glob (e.g. '**/*.{jpg,png}')"`
	IgnoreFile      string        `arg:"--ignore-file" toml:"ignore_file" help:"gitignore-style file of paths to leave alone"`
	LogLevel        slog.Level    `arg:"--log-level" toml:"log_level" help:"debug|info|warn|error"`
	TUI             bool          `arg:"--tui" toml:"tui" help:"show a progress view (batch mode on a terminal)"`
	ConfigFile      string        `arg:"-c,--config" toml:"-" help:"TOML file with defaults for any of these options"`
}

// Description returns the program description for go-arg.
func (Config) Description() string {
	return Name + " incrementally copies a source tree into one or more targets"
}

// Version returns the version string for go-arg.
func (Config) Version() string {
	return strings.ToLower(Name) + " " + AppVersion
}

// Defaults returns a Config with every default applied.
func Defaults() *Config {
	return &Config{
		CompareSize:     true,
		CompareModified: true,
		Mode:            Batch,
		CheckInterval:   DefaultInterval,
		Workers:         1,
		LogLevel:        slog.LevelInfo,
	}
}

// Load parses args (without the program name). When --config names a
// file, its values replace the defaults and flags given in args replace
// the file's values. Help and version are written to out and reported as
// ErrExitEarly.
func Load(args []string, out io.Writer) (*Config, error) {
	cfg := Defaults()

	if err := parse(cfg, args, out); err != nil {
		return nil, err
	}

	if cfg.ConfigFile != "" {
		fromFile := Defaults()

		if _, err := toml.DecodeFile(cfg.ConfigFile, fromFile); err != nil {
			return nil, fmt.Errorf("%w: failed to read config file %s: %w", ErrInvalid, cfg.ConfigFile, err)
		}

		if err := parse(fromFile, args, out); err != nil {
			return nil, err
		}

		cfg = fromFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parse(cfg *Config, args []string, out io.Writer) error {
	parser, err := arg.NewParser(arg.Config{Program: strings.ToLower(Name)}, cfg)
	if err != nil {
		return fmt.Errorf("failed to build flag parser: %w", err)
	}

	err = parser.Parse(args)

	switch {
	case errors.Is(err, arg.ErrHelp):
		parser.WriteHelp(out)
		return ErrExitEarly
	case errors.Is(err, arg.ErrVersion):
		_, _ = fmt.Fprintln(out, cfg.Version())
		return ErrExitEarly
	case err != nil:
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}

// Validate checks that the configuration can run.
func (cfg *Config) Validate() error {
	if cfg.Source == "" {
		return fmt.Errorf("%w: a source is required", ErrInvalid)
	}

	if len(cfg.Targets) == 0 {
		return fmt.Errorf("%w: at least one target is required", ErrInvalid)
	}

	if cfg.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, cfg.Workers)
	}

	if cfg.Mode.Polls() && cfg.CheckInterval <= 0 {
		return fmt.Errorf("%w: %s mode needs a positive interval", ErrInvalid, cfg.Mode)
	}

	for _, root := range append([]string{cfg.Source}, cfg.Targets...) {
		if _, err := filesystem.ParsePath(root); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}

	if cfg.Include != "" && !doublestar.ValidatePattern(cfg.Include) {
		return fmt.Errorf("%w: include pattern %q is not a valid glob", ErrInvalid, cfg.Include)
	}

	if cfg.IgnoreFile != "" {
		if _, err := os.Stat(cfg.IgnoreFile); err != nil {
			return fmt.Errorf("%w: ignore file: %w", ErrInvalid, err)
		}
	}

	return nil
}

// Strategies returns the enabled comparison strategies.
func (cfg *Config) Strategies() detector.Strategies {
	return detector.Strategies{
		Size:     cfg.CompareSize,
		Modified: cfg.CompareModified,
		Hash:     cfg.CompareHash,
	}
}

// Settings builds the engine settings, loading the ignore file if any.
func (cfg *Config) Settings() (syncengine.Settings, error) {
	filters := detector.Filters{
		Extensions:  cfg.Extensions,
		SkipFolders: cfg.SkipFolders,
	}

	if cfg.Include != "" {
		filters.Include = syncengine.NewGlobFilter(cfg.Include)
	}

	if cfg.IgnoreFile != "" {
		ignore, err := syncengine.LoadIgnoreFile(cfg.IgnoreFile)
		if err != nil {
			return syncengine.Settings{}, err
		}

		filters.Ignore = ignore
	}

	return syncengine.Settings{
		Source:        cfg.Source,
		Targets:       cfg.Targets,
		Strategies:    cfg.Strategies(),
		Filters:       filters,
		EnableDeletes: cfg.EnableDeletes,
		Workers:       cfg.Workers,
		Interval:      cfg.CheckInterval,
	}, nil
}
