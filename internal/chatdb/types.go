package chatdb

import "database/sql"

// Message is one message row plus its derived counts.
type Message struct {
	RowID                int64
	GUID                 string
	Text                 sql.NullString
	AttributedBody       []byte
	HandleID             int64
	Service              sql.NullString
	Date                 int64
	DateRead             sql.NullInt64
	DateDelivered        sql.NullInt64
	FromMe               bool
	IsRead               bool
	ItemType             int64
	GroupTitle           sql.NullString
	GroupActionType      int64
	OtherHandle          int64
	AssociatedGUID       sql.NullString
	AssociatedType       int64
	BalloonBundleID      sql.NullString
	PayloadData          []byte
	ExpressiveSendStyle  sql.NullString
	ThreadOriginatorGUID sql.NullString
	ThreadOriginatorPart sql.NullString
	DateEdited           sql.NullInt64
	DateRetracted        sql.NullInt64
	NumAttachments       int64
	NumReplies           int64
}

// IsReply reports whether the row anchors to a parent message.
func (m *Message) IsReply() bool {
	return m.ThreadOriginatorGUID.Valid && m.ThreadOriginatorGUID.String != ""
}

// IsEdited reports whether the row was edited after sending.
func (m *Message) IsEdited() bool {
	return m.DateEdited.Valid && m.DateEdited.Int64 > 0
}

// IsUnsent reports whether the sender retracted the row.
func (m *Message) IsUnsent() bool {
	return m.DateRetracted.Valid && m.DateRetracted.Int64 > 0
}

// IsGroupEvent reports whether the row records a membership or name change
// rather than content.
func (m *Message) IsGroupEvent() bool {
	return m.ItemType != 0
}

// Attachment is one attachment row. CopiedPath is empty until the exporter
// places a copy; it is set exactly once.
type Attachment struct {
	RowID        int64
	Filename     sql.NullString
	MimeType     sql.NullString
	UTI          sql.NullString
	TransferName sql.NullString
	TotalBytes   int64
	IsSticker    bool
	CopiedPath   string
}

// Name returns the best human-readable filename for rendering.
func (a *Attachment) Name() string {
	if a.TransferName.Valid && a.TransferName.String != "" {
		return a.TransferName.String
	}
	if a.Filename.Valid {
		return a.Filename.String
	}
	return ""
}

// Chat is one chat row. Its real identity is the deduplicated participant
// set, not the row id.
type Chat struct {
	RowID       int64
	GUID        string
	Identifier  string
	DisplayName sql.NullString
	ServiceName sql.NullString
}

// Name returns the display name when set, else the raw chat identifier.
func (c *Chat) Name() string {
	if c.DisplayName.Valid && c.DisplayName.String != "" {
		return c.DisplayName.String
	}
	return c.Identifier
}

// Handle is one contact row.
type Handle struct {
	RowID           int64
	ID              string
	PersonCentricID sql.NullString
}
