package export

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/nkowalski2/imsgx/internal/attachment"
	"github.com/nkowalski2/imsgx/internal/bus"
	"github.com/nkowalski2/imsgx/internal/chatdb"
	"github.com/nkowalski2/imsgx/internal/config"
)

// Copier resolves attachment rows to on-disk files and, depending on the
// copy mode, places a copy under <export>/attachments/<rowid>/. A missing
// file is counted and flagged, never fatal.
type Copier struct {
	mode    string
	dir     string
	resolve attachment.ResolveOptions
	bus     *bus.Bus
	logger  *zap.Logger

	copied  int64
	missing int64
	bytes   int64
}

// NewCopier returns a copier writing under dir. Mode is one of the
// config.Copy* values.
func NewCopier(mode, dir string, resolve attachment.ResolveOptions, b *bus.Bus, logger *zap.Logger) *Copier {
	return &Copier{mode: mode, dir: dir, resolve: resolve, bus: b, logger: logger}
}

// Stats returns what the copier did so far.
func (c *Copier) Stats() (copied, missing, bytes int64) {
	return c.copied, c.missing, c.bytes
}

// Process builds the render view for one attachment row, copying the file
// into the export tree when the mode asks for it. The row's CopiedPath is
// set exactly once, on the first successful copy.
func (c *Copier) Process(att *chatdb.Attachment) *Attachment {
	view := &Attachment{
		RowID:    att.RowID,
		Name:     att.Name(),
		MimeType: att.MimeType.String,
		Kind:     attachment.Kind(att.MimeType.String, att.UTI.String, att.IsSticker),
		Bytes:    att.TotalBytes,
	}
	if view.Name == "" {
		view.Name = "attachment " + strconv.FormatInt(att.RowID, 10)
	}

	src, ok := attachment.ResolvePath(att.Filename.String, c.resolve)
	if !ok {
		return c.miss(view)
	}
	info, err := os.Stat(src)
	if err != nil {
		return c.miss(view)
	}

	if att.IsSticker {
		if data, err := os.ReadFile(src); err == nil {
			if effect := attachment.DecodeStickerEffect(data); effect.Kind != attachment.StickerNormal {
				view.Sticker = effect.String()
			}
		}
	}

	if c.mode == config.CopyOff {
		view.Path = src
		c.bus.Emit(bus.KindAttachment, bus.AttachmentCopied{})
		return view
	}

	rel := filepath.Join("attachments", strconv.FormatInt(att.RowID, 10), filepath.Base(src))
	dst := filepath.Join(c.dir, rel)
	n, err := c.place(src, dst, info)
	if err != nil {
		c.logger.Warn("attachment copy failed",
			zap.String("src", src), zap.String("dst", dst), zap.Error(err))
		view.Path = src
		c.bus.Emit(bus.KindAttachment, bus.AttachmentCopied{})
		return view
	}

	if att.CopiedPath == "" {
		att.CopiedPath = dst
	}
	view.Path = rel
	c.copied++
	c.bytes += n
	c.bus.Emit(bus.KindAttachment, bus.AttachmentCopied{Bytes: n})
	return view
}

func (c *Copier) miss(view *Attachment) *Attachment {
	view.Missing = true
	c.missing++
	c.bus.Emit(bus.KindAttachment, bus.AttachmentCopied{Missing: true})
	return view
}

// place puts src's bytes at dst. Clone mode hard-links and falls back to a
// byte copy across filesystems; full mode always copies. An existing dst is
// reused, which makes re-runs and shared attachment rows idempotent.
func (c *Copier) place(src, dst string, info os.FileInfo) (int64, error) {
	if prev, err := os.Stat(dst); err == nil && prev.Size() == info.Size() {
		return 0, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, err
	}
	if c.mode == config.CopyClone {
		if err := os.Link(src, dst); err == nil {
			return info.Size(), nil
		}
	}
	return copyFile(src, dst)
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}
