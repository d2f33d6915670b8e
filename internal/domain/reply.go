package domain

import (
	"fmt"
	"time"
)

type ReplyStatus string

const (
	ReplyStatusSent      ReplyStatus = "sent"
	ReplyStatusDelivered ReplyStatus = "delivered"
	ReplyStatusRead      ReplyStatus = "read"
)

var statusRank = map[ReplyStatus]int{
	ReplyStatusSent:      1,
	ReplyStatusDelivered: 2,
	ReplyStatusRead:      3,
}

func ParseReplyStatus(s string) (ReplyStatus, error) {
	st := ReplyStatus(s)
	if _, ok := statusRank[st]; !ok {
		return "", fmt.Errorf("invalid reply status: %q", s)
	}
	return st, nil
}

func (s ReplyStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Before reports whether s comes strictly earlier than other in the
// sent -> delivered -> read sequence.
func (s ReplyStatus) Before(other ReplyStatus) bool {
	return statusRank[s] < statusRank[other]
}

// Glyph renders the delivery ticks shown next to a reply.
func (s ReplyStatus) Glyph() string {
	switch s {
	case ReplyStatusSent:
		return "✓"
	case ReplyStatusDelivered, ReplyStatusRead:
		return "✓✓"
	default:
		return ""
	}
}

type Reply struct {
	ID        int64
	Text      string
	Status    ReplyStatus
	CreatedAt time.Time
	EditedAt  time.Time
}

func NewReply(id int64, text string, createdAt time.Time) Reply {
	return Reply{
		ID:        id,
		Text:      text,
		Status:    ReplyStatusSent,
		CreatedAt: createdAt,
	}
}

// Advance moves the reply forward to target. It returns false, leaving the
// reply untouched, when target is not strictly later than the current status.
func (r *Reply) Advance(target ReplyStatus) bool {
	if !target.Valid() || !r.Status.Before(target) {
		return false
	}
	r.Status = target
	return true
}

func (r Reply) Edited() bool {
	return !r.EditedAt.IsZero()
}

// RelativeTime renders the short "5m ago" labels used in conversation lists.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case t.IsZero():
		return ""
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}
