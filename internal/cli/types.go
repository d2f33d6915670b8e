package cli

import (
	"time"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
)

// Mode represents the CLI operation mode
type Mode string

const (
	ModeInteractive Mode = "interactive"
	ModeHeadless    Mode = "headless"
)

// Request represents a JSON request in headless mode
type Request struct {
	ID      string                 `json:"id,omitempty"`
	Command string                 `json:"command"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// Response represents a JSON response in headless mode
type Response struct {
	ID      string      `json:"id,omitempty"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Event represents a real-time event in headless mode
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// ConversationInfo is one row of the conversation list
type ConversationInfo struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	UnreadCount  int       `json:"unread_count"`
	Pinned       bool      `json:"pinned"`
	Archived     bool      `json:"archived"`
	Preview      string    `json:"preview,omitempty"`
	ReceivedAt   time.Time `json:"received_at,omitempty"`
	TimeLabel    string    `json:"time_label,omitempty"`
	Participants []string  `json:"participants,omitempty"`
}

// ReplyInfo represents a reply in responses and events
type ReplyInfo struct {
	ConversationID int64      `json:"conversation_id"`
	ID             int64      `json:"id"`
	Text           string     `json:"text"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
}

// ConversationDetail is an open conversation with its thread
type ConversationDetail struct {
	ConversationInfo
	OpeningMessage string      `json:"opening_message,omitempty"`
	OpeningStatus  string      `json:"opening_status,omitempty"`
	Replies        []ReplyInfo `json:"replies"`
}

// EditInfo describes the active edit slot
type EditInfo struct {
	ConversationID int64  `json:"conversation_id"`
	ReplyID        int64  `json:"reply_id"`
	Text           string `json:"text"`
}

// ListResult is the visible conversation list with the query that produced it
type ListResult struct {
	Tab           string             `json:"tab"`
	Search        string             `json:"search,omitempty"`
	ShowArchived  bool               `json:"show_archived"`
	Conversations []ConversationInfo `json:"conversations"`
	Count         int                `json:"count"`
}

func toConversationInfo(c *domain.Conversation, now time.Time) ConversationInfo {
	return ConversationInfo{
		ID:           c.ID,
		Name:         c.DisplayName,
		Kind:         string(c.Kind),
		UnreadCount:  c.UnreadCount,
		Pinned:       c.IsPinned,
		Archived:     c.IsArchived,
		Preview:      c.Preview(),
		ReceivedAt:   c.ReceivedAt,
		TimeLabel:    domain.RelativeTime(c.ReceivedAt, now),
		Participants: c.Participants,
	}
}

func toReplyInfo(conversationID int64, r domain.Reply) ReplyInfo {
	info := ReplyInfo{
		ConversationID: conversationID,
		ID:             r.ID,
		Text:           r.Text,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
	}
	if r.Edited() {
		edited := r.EditedAt
		info.EditedAt = &edited
	}
	return info
}

func toConversationDetail(c *domain.Conversation, now time.Time) ConversationDetail {
	replies := make([]ReplyInfo, len(c.Replies))
	for i, r := range c.Replies {
		replies[i] = toReplyInfo(c.ID, r)
	}
	return ConversationDetail{
		ConversationInfo: toConversationInfo(c, now),
		OpeningMessage:   c.OpeningMessage,
		OpeningStatus:    string(c.OpeningStatus),
		Replies:          replies,
	}
}
