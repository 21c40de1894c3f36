// Package attachment computes on-disk attachment locations, classifies media
// for rendering, and decodes the sticker-effect tag embedded in sticker
// images. Nothing here reads the files themselves; callers own existence
// checks and copying.
package attachment

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/nkowalski2/imsgx/internal/platform"
)

// DefaultRoot is the prefix Messages stores attachment filenames under on
// macOS.
const DefaultRoot = "~/Library/Messages/Attachments"

// backupDomain prefixes the derived name an iOS backup hashes to place an
// attachment file. Fixed wire contract; changing it breaks discovery against
// every real backup.
const backupDomain = "MediaDomain-"

// ResolveOptions carries the caller-supplied roots path resolution needs.
type ResolveOptions struct {
	Platform platform.Platform
	// BackupRoot is the iOS backup directory holding hash-sharded files.
	BackupRoot string
	// AttachmentRoot, when set, replaces the DefaultRoot prefix of stored
	// macOS filenames, for attachment stores relocated off the default path.
	AttachmentRoot string
	// Home substitutes the leading tilde of macOS filenames. Empty means
	// the current user's home directory.
	Home string
}

// ResolvePath computes where an attachment's bytes should live. It reports
// false when the stored filename cannot name a location: empty, or too short
// to carry the backup domain prefix. It never checks the disk.
func ResolvePath(filename string, opts ResolveOptions) (string, bool) {
	if filename == "" {
		return "", false
	}
	if opts.Platform == platform.IOS {
		return resolveBackupPath(filename, opts.BackupRoot)
	}
	return resolveMacPath(filename, opts), true
}

func resolveMacPath(filename string, opts ResolveOptions) string {
	name := filename
	if opts.AttachmentRoot != "" {
		if rest, ok := strings.CutPrefix(name, DefaultRoot); ok {
			name = opts.AttachmentRoot + rest
		}
	}
	if strings.HasPrefix(name, "~") {
		home := opts.Home
		if home == "" {
			home, _ = os.UserHomeDir()
		}
		name = home + name[1:]
	}
	return name
}

// resolveBackupPath maps a stored filename to its hash-sharded backup
// location. Backups rename each file to the SHA-1 of its domain-tagged name;
// the first two stored characters are a domain shorthand that is not part of
// the hash input.
func resolveBackupPath(filename, root string) (string, bool) {
	if len(filename) < 2 {
		return "", false
	}
	sum := sha1.Sum([]byte(backupDomain + filename[2:]))
	digest := hex.EncodeToString(sum[:])
	return filepath.Join(root, digest[:2], digest), true
}
