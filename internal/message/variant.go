package message

// VariantKind tags what a message row is, as encoded by its
// associated_message_type code.
type VariantKind int

const (
	VariantNormal VariantKind = iota
	VariantApplePaySent
	VariantApplePayReceived
	VariantReactionAdded
	VariantReactionRemoved
	VariantUnknown
)

// ReactionKind names the six tapback reactions.
type ReactionKind int

const (
	ReactionLoved ReactionKind = iota
	ReactionLiked
	ReactionDisliked
	ReactionLaughed
	ReactionEmphasized
	ReactionQuestioned
)

func (k ReactionKind) String() string {
	switch k {
	case ReactionLiked:
		return "Liked"
	case ReactionDisliked:
		return "Disliked"
	case ReactionLaughed:
		return "Laughed"
	case ReactionEmphasized:
		return "Emphasized"
	case ReactionQuestioned:
		return "Questioned"
	default:
		return "Loved"
	}
}

// Emoji returns the glyph Messages shows for the reaction.
func (k ReactionKind) Emoji() string {
	switch k {
	case ReactionLiked:
		return "\U0001f44d"
	case ReactionDisliked:
		return "\U0001f44e"
	case ReactionLaughed:
		return "\U0001f602"
	case ReactionEmphasized:
		return "‼️"
	case ReactionQuestioned:
		return "❓"
	default:
		return "❤️"
	}
}

// Variant is the decoded associated_message_type. Reaction is meaningful
// only for the reaction kinds; Code retains the raw value for unknowns.
type Variant struct {
	Kind     VariantKind
	Reaction ReactionKind
	Code     int
}

// reaction code blocks: 2000-2005 added, 3000-3005 removed, ordered
// Loved, Liked, Disliked, Laughed, Emphasized, Questioned.
const (
	reactionAddedBase   = 2000
	reactionRemovedBase = 3000
	reactionCount       = 6
)

// ClassifyVariant maps an associated_message_type code to its Variant.
// Codes outside the known set classify as VariantUnknown with the raw code
// retained, never an error.
func ClassifyVariant(code int) Variant {
	switch {
	case code == 0:
		return Variant{Kind: VariantNormal, Code: code}
	case code == 2:
		return Variant{Kind: VariantApplePaySent, Code: code}
	case code == 3:
		return Variant{Kind: VariantApplePayReceived, Code: code}
	case code >= reactionAddedBase && code < reactionAddedBase+reactionCount:
		return Variant{Kind: VariantReactionAdded, Reaction: ReactionKind(code - reactionAddedBase), Code: code}
	case code >= reactionRemovedBase && code < reactionRemovedBase+reactionCount:
		return Variant{Kind: VariantReactionRemoved, Reaction: ReactionKind(code - reactionRemovedBase), Code: code}
	default:
		return Variant{Kind: VariantUnknown, Code: code}
	}
}

// IsReaction reports whether the variant is a tapback in either direction.
func (v Variant) IsReaction() bool {
	return v.Kind == VariantReactionAdded || v.Kind == VariantReactionRemoved
}
