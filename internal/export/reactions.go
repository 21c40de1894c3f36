package export

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/nkowalski2/imsgx/internal/chatdb"
	"github.com/nkowalski2/imsgx/internal/message"
)

// ReactionIndex maps a target message GUID to the tapbacks anchored on each
// of its body segments. Built once per run, read-only afterwards.
type ReactionIndex map[string]map[int][]Reaction

// For returns the surviving reactions targeting one segment of a message.
func (ri ReactionIndex) For(guid string, part int) []Reaction {
	return ri[guid][part]
}

// BuildReactionIndex folds the associated-message rows into an index. For a
// given (target, segment, kind, sender) the latest row wins, so a removal
// cancels the add it follows and a re-add after a removal survives. Dangling
// targets stay in the index; they are simply never looked up.
func BuildReactionIndex(rows []chatdb.Message, roster *Roster, logger *zap.Logger) ReactionIndex {
	type slot struct {
		target  string
		part    int
		removed bool
		date    int64
		view    Reaction
	}

	latest := make(map[string]*slot)
	var order []string
	for i := range rows {
		m := &rows[i]
		v := message.ClassifyVariant(int(m.AssociatedType))
		if !v.IsReaction() || !m.AssociatedGUID.Valid {
			continue
		}
		part, target := message.ParseAssociatedGUID(m.AssociatedGUID.String)
		if target == "" {
			continue
		}
		if logger != nil && message.HasMalformedIndex(m.AssociatedGUID.String) {
			logger.Debug("malformed reaction part index",
				zap.String("guid", m.GUID),
				zap.String("associated", m.AssociatedGUID.String))
		}

		sender := roster.Name(m.HandleID, m.FromMe)
		key := target + "\x00" + strconv.Itoa(part) + "\x00" + v.Reaction.String() + "\x00" + sender
		prev, ok := latest[key]
		if !ok {
			order = append(order, key)
		}
		if ok && m.Date < prev.date {
			continue
		}
		latest[key] = &slot{
			target:  target,
			part:    part,
			removed: v.Kind == message.VariantReactionRemoved,
			date:    m.Date,
			view: Reaction{
				Kind:   v.Reaction,
				Sender: sender,
				FromMe: m.FromMe,
				SentAt: chatdb.FromAppleNS(m.Date),
			},
		}
	}

	idx := make(ReactionIndex)
	for _, key := range order {
		s := latest[key]
		if s.removed {
			continue
		}
		parts := idx[s.target]
		if parts == nil {
			parts = make(map[int][]Reaction)
			idx[s.target] = parts
		}
		parts[s.part] = append(parts[s.part], s.view)
	}
	return idx
}
