package export

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nkowalski2/imsgx/internal/bus"
	"github.com/nkowalski2/imsgx/internal/chatdb"
	"github.com/nkowalski2/imsgx/internal/message"
)

// Options configures one run.
type Options struct {
	RunID string
	// Format labels the run for progress output; the sink decides what is
	// actually written.
	Format string
	// SelfName labels messages sent from this account.
	SelfName string
	// Conversation, when set, restricts the run to matching conversations.
	Conversation string
	// Query bounds the run to a date window.
	Query chatdb.QueryContext
}

// Exporter streams one chat.db into a Sink.
type Exporter struct {
	db     *chatdb.DB
	sink   Sink
	copier *Copier
	bus    *bus.Bus
	logger *zap.Logger
	opts   Options

	roster    *Roster
	reactions ReactionIndex

	messages       int64
	decodeFailures int64
}

// New wires an exporter. The sink and copier decide where output lands; the
// exporter owns iteration order and decoding.
func New(db *chatdb.DB, sink Sink, copier *Copier, b *bus.Bus, logger *zap.Logger, opts Options) *Exporter {
	return &Exporter{
		db:     db,
		sink:   sink,
		copier: copier,
		bus:    b,
		logger: logger,
		opts:   opts,
	}
}

// Run exports every conversation in scope and returns the final accounting.
// Cancellation is honored between conversations; a conversation in flight
// finishes first.
func (e *Exporter) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()

	handles, err := e.db.Handles()
	if err != nil {
		return nil, fmt.Errorf("load handles: %w", err)
	}
	e.roster = NewRoster(handles, e.opts.SelfName)

	chats, err := e.db.Chats()
	if err != nil {
		return nil, fmt.Errorf("load chats: %w", err)
	}
	participants, err := e.db.ChatParticipants()
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	convs := BuildConversations(chats, participants, e.roster)
	convs = FilterConversations(convs, e.opts.Conversation)

	assoc, err := e.db.AssociatedMessages(e.opts.Query)
	if err != nil {
		return nil, fmt.Errorf("load associated messages: %w", err)
	}
	e.reactions = BuildReactionIndex(assoc, e.roster, e.logger)

	total, err := e.db.MessageCount(e.opts.Query)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	e.logger.Info("export started",
		zap.String("format", e.opts.Format),
		zap.Int("conversations", len(convs)),
		zap.Int64("messages", total))
	e.bus.Emit(bus.KindRunStarted, bus.RunStarted{
		RunID:         e.opts.RunID,
		Format:        e.opts.Format,
		Conversations: len(convs),
		Messages:      total,
	})

	for i, conv := range convs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.bus.Emit(bus.KindChatStarted, bus.ChatStarted{
			Name:  conv.Name,
			Index: i + 1,
			Total: len(convs),
		})
		n, err := e.exportConversation(conv)
		if err != nil {
			return nil, fmt.Errorf("conversation %q: %w", conv.Name, err)
		}
		e.bus.Emit(bus.KindChatFinished, bus.ChatFinished{Name: conv.Name, Messages: n})
	}

	copied, missing, bytes := e.copier.Stats()
	sum := &Summary{
		Conversations:      len(convs),
		Messages:           e.messages,
		Attachments:        copied,
		MissingAttachments: missing,
		DecodeFailures:     e.decodeFailures,
		Duration:           time.Since(started),
	}
	if err := e.sink.Close(sum); err != nil {
		return nil, fmt.Errorf("close sink: %w", err)
	}

	e.logger.Info("export finished",
		zap.Int("conversations", sum.Conversations),
		zap.Int64("messages", sum.Messages),
		zap.Int64("attachments", copied),
		zap.Int64("attachment_bytes", bytes),
		zap.Int64("missing_attachments", missing),
		zap.Int64("decode_failures", sum.DecodeFailures),
		zap.Duration("duration", sum.Duration))
	e.bus.Emit(bus.KindRunFinished, bus.RunFinished{
		RunID:              e.opts.RunID,
		Conversations:      sum.Conversations,
		Messages:           sum.Messages,
		Attachments:        sum.Attachments,
		MissingAttachments: sum.MissingAttachments,
		DecodeFailures:     sum.DecodeFailures,
		Duration:           sum.Duration,
	})
	return sum, nil
}

func (e *Exporter) exportConversation(conv *Conversation) (int64, error) {
	if err := e.sink.BeginConversation(conv); err != nil {
		return 0, err
	}

	rows, err := e.db.MessagesForChats(conv.ChatIDs, e.opts.Query)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	var n int64
	for rows.Next() {
		m, err := rows.Message()
		if err != nil {
			return n, err
		}
		// Reaction rows render under their target, not in the stream.
		if message.ClassifyVariant(int(m.AssociatedType)).IsReaction() {
			continue
		}
		it := e.buildItem(m)
		if it == nil {
			continue
		}
		if err := e.sink.WriteMessage(it); err != nil {
			return n, err
		}
		n++
		e.messages++
		if e.messages%100 == 0 {
			e.bus.Emit(bus.KindMessages, bus.MessagesExported{Done: e.messages})
		}
	}
	if err := rows.Err(); err != nil {
		return n, err
	}
	return n, e.sink.EndConversation(conv)
}
