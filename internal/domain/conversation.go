package domain

import (
	"fmt"
	"strings"
	"time"
)

type ConversationKind string

const (
	ConversationKindGroup   ConversationKind = "group"
	ConversationKindPrivate ConversationKind = "private"
	ConversationKindTeacher ConversationKind = "teacher"
)

// ParseConversationKind accepts the canonical kind names, case-insensitively.
func ParseConversationKind(s string) (ConversationKind, error) {
	switch k := ConversationKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ConversationKindGroup, ConversationKindPrivate, ConversationKindTeacher:
		return k, nil
	default:
		return "", fmt.Errorf("invalid conversation kind: %q", s)
	}
}

type Conversation struct {
	ID           int64
	Kind         ConversationKind
	DisplayName  string
	AvatarRef    string
	Participants []string
	UnreadCount  int
	IsPinned     bool
	IsArchived   bool

	LastMessage    string
	OpeningMessage string
	OpeningStatus  ReplyStatus
	ReceivedAt     time.Time

	Replies []Reply
}

func NewPrivateConversation(id int64, name string) *Conversation {
	return &Conversation{
		ID:            id,
		Kind:          ConversationKindPrivate,
		DisplayName:   name,
		OpeningStatus: ReplyStatusSent,
	}
}

func NewTeacherConversation(id int64, name string) *Conversation {
	return &Conversation{
		ID:            id,
		Kind:          ConversationKindTeacher,
		DisplayName:   name,
		OpeningStatus: ReplyStatusSent,
	}
}

func NewGroupConversation(id int64, name string, participants []string) *Conversation {
	return &Conversation{
		ID:            id,
		Kind:          ConversationKindGroup,
		DisplayName:   name,
		Participants:  participants,
		OpeningStatus: ReplyStatusSent,
	}
}

// Clone returns a deep copy. Callers outside the store only ever see clones.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Participants != nil {
		cp.Participants = append([]string(nil), c.Participants...)
	}
	if c.Replies != nil {
		cp.Replies = append([]Reply(nil), c.Replies...)
	}
	return &cp
}

// ReplyIndex returns the position of the reply with the given id, or -1.
func (c *Conversation) ReplyIndex(replyID int64) int {
	for i := range c.Replies {
		if c.Replies[i].ID == replyID {
			return i
		}
	}
	return -1
}

// NextReplyID derives a reply id from the creation time, bumping past the
// last id when two replies land in the same millisecond.
func (c *Conversation) NextReplyID(now time.Time) int64 {
	id := now.UnixMilli()
	if n := len(c.Replies); n > 0 && c.Replies[n-1].ID >= id {
		id = c.Replies[n-1].ID + 1
	}
	return id
}

// Matches reports whether a search query hits the display name. Empty
// queries match everything.
func (c *Conversation) Matches(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.DisplayName), strings.ToLower(query))
}

// Preview is the list-row text: the latest reply if any, else the seeded preview.
func (c *Conversation) Preview() string {
	if n := len(c.Replies); n > 0 {
		return c.Replies[n-1].Text
	}
	return c.LastMessage
}

// Truncate shortens s to at most n runes, ending in "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
