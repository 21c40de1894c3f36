// Package progress renders export progress on the console. It subscribes to
// the "export." bus namespace: on a TTY it rewrites a single status line in
// place, otherwise it prints plain lines suitable for piping to a file.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/nkowalski2/imsgx/internal/bus"
)

// Sink is the console progress renderer.
type Sink struct {
	bus   *bus.Bus
	out   io.Writer
	tty   bool
	quiet bool

	cancel context.CancelFunc
	done   chan struct{}

	chatName    string
	chatIndex   int
	chatTotal   int
	messages    int64
	total       int64
	attachments int64
	missing     int64
	failures    int64
	finished    bool
	lineDirty   bool
}

// New returns a sink writing to stderr. Quiet mode suppresses everything but
// the final summary.
func New(b *bus.Bus, quiet bool) *Sink {
	return &Sink{
		bus:   b,
		out:   os.Stderr,
		tty:   isatty.IsTerminal(os.Stderr.Fd()),
		quiet: quiet,
	}
}

// Start subscribes to export and diagnostic events on the bus.
func (s *Sink) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	ch, unsub := s.bus.Subscribe("export.", 256)
	diag, unsubDiag := s.bus.Subscribe("diag.", 64)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		defer unsub()
		defer unsubDiag()
		for {
			select {
			case evt := <-ch:
				s.handle(evt)
			case evt := <-diag:
				s.handle(evt)
			case <-ctx.Done():
				// Drain what was already queued so the final summary
				// still prints.
				for {
					select {
					case evt := <-ch:
						s.handle(evt)
					case evt := <-diag:
						s.handle(evt)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop ends the subscription and waits for the renderer to finish.
func (s *Sink) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Sink) handle(evt bus.Event) {
	switch p := evt.Payload.(type) {
	case bus.RunStarted:
		s.total = p.Messages
		s.chatTotal = p.Conversations
		if !s.quiet {
			fmt.Fprintf(s.out, "exporting %d conversations, %d messages (%s)\n",
				p.Conversations, p.Messages, p.Format)
		}
	case bus.ChatStarted:
		s.chatName = p.Name
		s.chatIndex = p.Index
		s.chatTotal = p.Total
		s.render()
	case bus.ChatFinished:
		if !s.quiet && !s.tty {
			fmt.Fprintf(s.out, "[%d/%d] %s: %d messages\n",
				s.chatIndex, s.chatTotal, p.Name, p.Messages)
		}
	case bus.MessagesExported:
		s.messages = p.Done
		s.render()
	case bus.AttachmentCopied:
		if p.Missing {
			s.missing++
		} else {
			s.attachments++
		}
		s.render()
	case bus.DecodeIssue:
		s.failures++
		s.render()
	case bus.RunFinished:
		s.finished = true
		s.clearLine()
		fmt.Fprintf(s.out, "exported %d conversations, %d messages, %d attachments",
			p.Conversations, p.Messages, p.Attachments)
		if p.MissingAttachments > 0 {
			fmt.Fprintf(s.out, " (%d missing)", p.MissingAttachments)
		}
		if p.DecodeFailures > 0 {
			fmt.Fprintf(s.out, ", %d decode failures", p.DecodeFailures)
		}
		fmt.Fprintf(s.out, " in %s\n", p.Duration.Round(time.Millisecond))
	}
}

// render rewrites the status line. Plain (non-TTY) output only prints on
// chat boundaries, handled in ChatFinished. Nothing renders after the
// summary; diag events can arrive on their own channel slightly late.
func (s *Sink) render() {
	if s.quiet || !s.tty || s.finished {
		return
	}
	fmt.Fprintf(s.out, "\r\x1b[K[%d/%d] %s · %d/%d messages · %d attachments",
		s.chatIndex, s.chatTotal, s.chatName, s.messages, s.total, s.attachments)
	if s.failures > 0 {
		fmt.Fprintf(s.out, " · %d failed", s.failures)
	}
	s.lineDirty = true
}

func (s *Sink) clearLine() {
	if s.lineDirty {
		fmt.Fprint(s.out, "\r\x1b[K")
		s.lineDirty = false
	}
}
