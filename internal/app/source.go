package app

import (
	"github.com/nkowalski2/imsgx/internal/attachment"
	"github.com/nkowalski2/imsgx/internal/config"
	"github.com/nkowalski2/imsgx/internal/platform"
)

// Source is the resolved input for a run: where chat.db lives and how stored
// attachment paths map onto the local filesystem.
type Source struct {
	// Root is the user-facing source path: a macOS Messages directory, a
	// chat.db file, or an iOS backup directory.
	Root     string
	Platform platform.Platform
	DBPath   string
	Resolve  attachment.ResolveOptions
}

// ResolveSource locates the database for cfg. An empty source path means the
// live macOS database; the platform is detected from the layout unless the
// config forces one.
func ResolveSource(cfg *config.Config) (*Source, error) {
	root := cfg.SourcePath
	if root == "" {
		root = platform.DefaultSource()
	}

	plat := platform.Detect(root)
	if cfg.Platform != "" {
		p, err := platform.Parse(cfg.Platform)
		if err != nil {
			return nil, err
		}
		plat = p
	}

	resolve := attachment.ResolveOptions{
		Platform:       plat,
		AttachmentRoot: cfg.AttachmentRoot,
	}
	if plat == platform.IOS {
		resolve.BackupRoot = root
	}

	return &Source{
		Root:     root,
		Platform: plat,
		DBPath:   platform.DBPath(root, plat),
		Resolve:  resolve,
	}, nil
}
