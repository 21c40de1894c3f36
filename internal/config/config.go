// Package config resolves export options from, in rising precedence:
// built-in defaults, ~/.imsgx/config.toml, IMSGX_* environment variables
// (optionally from a .env file), and command-line flags. Flags are applied
// by the caller, which knows which ones were actually set.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nkowalski2/imsgx/internal/platform"
)

// Export formats.
const (
	FormatTXT    = "txt"
	FormatHTML   = "html"
	FormatSQLite = "sqlite"
)

// Attachment copy modes. "clone" hard-links into the export tree and falls
// back to a byte copy across filesystems; "full" always copies bytes.
const (
	CopyOff   = "off"
	CopyClone = "clone"
	CopyFull  = "full"
)

// Config is the resolved option set for one run.
type Config struct {
	// SourcePath is a chat.db file, a directory containing one, or an iOS
	// backup directory. Empty means the live macOS database.
	SourcePath string `toml:"source_path"`
	// ExportPath is the directory receiving transcripts, copied
	// attachments, the run log, and the LOCK file.
	ExportPath string `toml:"export_path"`
	Format     string `toml:"format"`
	// Platform forces "macos" or "ios"; empty auto-detects from the
	// source layout.
	Platform  string `toml:"platform"`
	StartDate string `toml:"start_date"`
	EndDate   string `toml:"end_date"`
	CopyMode  string `toml:"copy_mode"`
	// AttachmentRoot overrides the default macOS attachment prefix for
	// relocated attachment stores.
	AttachmentRoot string `toml:"attachment_root"`
	// SelfName labels messages sent from this account.
	SelfName string `toml:"self_name"`
	// Conversation restricts the export to conversations whose name or
	// identifier contains this string.
	Conversation string `toml:"conversation"`
	// Diagnostics reports database health instead of exporting.
	Diagnostics bool `toml:"diagnostics"`
	Quiet       bool `toml:"quiet"`
}

// Default returns the built-in option set.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		ExportPath: filepath.Join(home, "imsgx_export"),
		Format:     FormatTXT,
		CopyMode:   CopyClone,
		SelfName:   "Me",
	}
}

// DefaultPath returns ~/.imsgx/config.toml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".imsgx", "config.toml")
}

// Load reads a TOML config file.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg as TOML, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Resolve builds the pre-flag option set: defaults, overlaid by the config
// file when present, overlaid by environment variables.
func Resolve(path string) *Config {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if fileCfg, err := Load(path); err == nil {
		cfg.overlay(fileCfg)
	}
	FromEnv(cfg)
	return cfg
}

// overlay copies every set field of src over cfg.
func (c *Config) overlay(src *Config) {
	if src.SourcePath != "" {
		c.SourcePath = src.SourcePath
	}
	if src.ExportPath != "" {
		c.ExportPath = src.ExportPath
	}
	if src.Format != "" {
		c.Format = src.Format
	}
	if src.Platform != "" {
		c.Platform = src.Platform
	}
	if src.StartDate != "" {
		c.StartDate = src.StartDate
	}
	if src.EndDate != "" {
		c.EndDate = src.EndDate
	}
	if src.CopyMode != "" {
		c.CopyMode = src.CopyMode
	}
	if src.AttachmentRoot != "" {
		c.AttachmentRoot = src.AttachmentRoot
	}
	if src.SelfName != "" {
		c.SelfName = src.SelfName
	}
	if src.Conversation != "" {
		c.Conversation = src.Conversation
	}
	if src.Diagnostics {
		c.Diagnostics = true
	}
	if src.Quiet {
		c.Quiet = true
	}
}

// Validate rejects option values the run could not honor.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatTXT, FormatHTML, FormatSQLite:
	default:
		return fmt.Errorf("unknown format %q (want txt, html or sqlite)", c.Format)
	}
	switch c.CopyMode {
	case CopyOff, CopyClone, CopyFull:
	default:
		return fmt.Errorf("unknown copy mode %q (want off, clone or full)", c.CopyMode)
	}
	if c.ExportPath == "" {
		return fmt.Errorf("export path is empty")
	}
	if c.Platform != "" {
		if _, err := platform.Parse(c.Platform); err != nil {
			return err
		}
	}
	for _, d := range []struct{ name, val string }{
		{"start date", c.StartDate},
		{"end date", c.EndDate},
	} {
		if d.val == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d.val); err != nil {
			return fmt.Errorf("invalid %s %q: want YYYY-MM-DD", d.name, d.val)
		}
	}
	return nil
}
