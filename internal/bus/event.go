package bus

import "time"

// Event is one notification published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Event kinds. Sinks filter by prefix: "export." for run progress, "diag."
// for per-item decode problems.
const (
	KindRunStarted   = "export.run.started"
	KindChatStarted  = "export.chat.started"
	KindChatFinished = "export.chat.finished"
	KindMessages     = "export.messages"
	KindAttachment   = "export.attachment"
	KindRunFinished  = "export.run.finished"
	KindDecodeIssue  = "diag.decode"
)

// RunStarted announces run totals so sinks can scale their progress output.
type RunStarted struct {
	RunID         string
	Format        string
	Conversations int
	Messages      int64
}

// ChatStarted marks the beginning of one conversation.
type ChatStarted struct {
	Name  string
	Index int
	Total int
}

// ChatFinished closes one conversation.
type ChatFinished struct {
	Name     string
	Messages int64
}

// MessagesExported is a progress tick; Done counts messages finished so far
// across the whole run.
type MessagesExported struct {
	Done int64
}

// AttachmentCopied reports one attachment copy attempt.
type AttachmentCopied struct {
	Missing bool
	Bytes   int64
}

// RunFinished carries the final summary a sink prints before exit.
type RunFinished struct {
	RunID              string
	Conversations      int
	Messages           int64
	Attachments        int64
	MissingAttachments int64
	DecodeFailures     int64
	Duration           time.Duration
}

// DecodeIssue reports one per-item decode failure. The run continues; the
// renderer shows a placeholder where the item would be.
type DecodeIssue struct {
	MessageGUID string
	Stage       string
	Err         string
}
