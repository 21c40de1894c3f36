package vault

// Run is one export_runs row.
type Run struct {
	ID             string
	SourcePath     string
	Platform       string
	StartedAt      int64
	FinishedAt     int64
	StartDate      string
	EndDate        string
	Conversations  int64
	Messages       int64
	Attachments    int64
	DecodeFailures int64
}

// Conversation is one deduplicated conversation.
type Conversation struct {
	ID      int64
	Name    string
	Service string
	IsGroup bool
}

// Participant is one deduplicated contact.
type Participant struct {
	ID              int64
	Identifier      string
	PersonCentricID string
}

// Message is one archived message, keyed by GUID.
type Message struct {
	GUID             string
	ConversationID   int64
	Sender           string
	FromMe           bool
	SentAt           int64
	Service          string
	Kind             string
	ReplyToGUID      string
	ReplyToPart      int
	Edited           bool
	Unsent           bool
	ExpressiveEffect string
}

// Segment is one body segment of an archived message.
type Segment struct {
	Index   int
	Kind    string
	Content string
}

// Reaction is one tapback attached to a message segment.
type Reaction struct {
	MessageGUID  string
	SegmentIndex int
	Kind         string
	Removed      bool
	Sender       string
	SentAt       int64
}

// Attachment is one archived attachment reference.
type Attachment struct {
	MessageGUID   string
	SegmentIndex  int
	Filename      string
	MimeType      string
	MediaKind     string
	TotalBytes    int64
	StickerEffect string
	CopiedPath    string
	Missing       bool
}

// SearchResult is one full-text hit.
type SearchResult struct {
	MessageGUID      string
	ConversationID   int64
	ConversationName string
	Sender           string
	SentAt           int64
	Snippet          string
}
