// Package platform distinguishes the two database layouts an export can read:
// a live macOS Messages directory and an iOS device backup.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Platform int

const (
	// MacOS is a chat.db read straight off a Mac's filesystem.
	MacOS Platform = iota
	// IOS is a chat.db inside an unencrypted iOS backup, where files are
	// renamed to content hashes and sharded by hash prefix.
	IOS
)

// backupDBHash is the fixed SHA-1 of "HomeDomain-Library/SMS/sms.db", the
// name chat.db carries inside every iOS backup.
const backupDBHash = "3d0d7e5fb2ce288813306e4d4636395e047a3d28"

func (p Platform) String() string {
	switch p {
	case IOS:
		return "ios"
	default:
		return "macos"
	}
}

// Parse maps a config/flag value to a Platform.
func Parse(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "macos", "mac":
		return MacOS, nil
	case "ios", "iphone":
		return IOS, nil
	default:
		return MacOS, fmt.Errorf("unknown platform %q (want macos or ios)", s)
	}
}

// Detect infers the platform from the source path layout: an iOS backup is a
// directory with Manifest.db at its root, anything else is treated as macOS.
func Detect(source string) Platform {
	if _, err := os.Stat(filepath.Join(source, "Manifest.db")); err == nil {
		return IOS
	}
	return MacOS
}

// DBPath returns the chat.db location under a source path. For macOS the
// source may name either the database file or its directory; for iOS backups
// the database sits under its fixed hash shard.
func DBPath(source string, p Platform) string {
	if p == IOS {
		return filepath.Join(source, backupDBHash[:2], backupDBHash)
	}
	if fi, err := os.Stat(source); err == nil && fi.IsDir() {
		return filepath.Join(source, "chat.db")
	}
	return source
}

// ManifestPath returns the backup manifest location under an iOS source.
func ManifestPath(source string) string {
	return filepath.Join(source, "Manifest.db")
}

// DefaultSource returns ~/Library/Messages, the live macOS database
// directory.
func DefaultSource() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Messages")
}

// DefaultAttachmentRoot returns ~/Library/Messages/Attachments.
func DefaultAttachmentRoot() string {
	return filepath.Join(DefaultSource(), "Attachments")
}
