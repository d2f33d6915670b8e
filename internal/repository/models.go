package repository

import (
	"time"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
)

type ConversationModel struct {
	ID             int64        `gorm:"primaryKey;autoIncrement:false;column:id"`
	Position       int          `gorm:"column:position;index"`
	Kind           string       `gorm:"column:kind"`
	DisplayName    string       `gorm:"column:display_name"`
	AvatarRef      string       `gorm:"column:avatar_ref"`
	Participants   []string     `gorm:"column:participants;serializer:json"`
	UnreadCount    int          `gorm:"column:unread_count"`
	IsPinned       bool         `gorm:"column:is_pinned"`
	IsArchived     bool         `gorm:"column:is_archived"`
	LastMessage    string       `gorm:"column:last_message"`
	OpeningMessage string       `gorm:"column:opening_message"`
	OpeningStatus  string       `gorm:"column:opening_status"`
	ReceivedAt     time.Time    `gorm:"column:received_at"`
	Replies        []ReplyModel `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time    `gorm:"column:created_at"`
	UpdatedAt      time.Time    `gorm:"column:updated_at"`
}

func (ConversationModel) TableName() string { return "conversations" }

type ReplyModel struct {
	ConversationID int64     `gorm:"primaryKey;autoIncrement:false;column:conversation_id"`
	ID             int64     `gorm:"primaryKey;autoIncrement:false;column:id"`
	Text           string    `gorm:"column:text"`
	Status         string    `gorm:"column:status"`
	SentAt         time.Time `gorm:"column:sent_at"`
	EditedAt       time.Time `gorm:"column:edited_at"`
}

func (ReplyModel) TableName() string { return "replies" }

// Conversion functions
func ConversationModelToDomain(m *ConversationModel) *domain.Conversation {
	if m == nil {
		return nil
	}

	openingStatus, err := domain.ParseReplyStatus(m.OpeningStatus)
	if err != nil {
		openingStatus = domain.ReplyStatusSent
	}

	c := &domain.Conversation{
		ID:             m.ID,
		Kind:           domain.ConversationKind(m.Kind),
		DisplayName:    m.DisplayName,
		AvatarRef:      m.AvatarRef,
		UnreadCount:    m.UnreadCount,
		IsPinned:       m.IsPinned,
		IsArchived:     m.IsArchived,
		LastMessage:    m.LastMessage,
		OpeningMessage: m.OpeningMessage,
		OpeningStatus:  openingStatus,
		ReceivedAt:     m.ReceivedAt,
	}
	if c.Kind == domain.ConversationKindGroup && len(m.Participants) > 0 {
		c.Participants = append([]string(nil), m.Participants...)
	}
	if c.UnreadCount < 0 {
		c.UnreadCount = 0
	}

	for i := range m.Replies {
		c.Replies = append(c.Replies, ReplyModelToDomain(&m.Replies[i]))
	}
	return c
}

func ConversationDomainToModel(c *domain.Conversation, position int) *ConversationModel {
	if c == nil {
		return nil
	}

	model := &ConversationModel{
		ID:             c.ID,
		Position:       position,
		Kind:           string(c.Kind),
		DisplayName:    c.DisplayName,
		AvatarRef:      c.AvatarRef,
		Participants:   c.Participants,
		UnreadCount:    c.UnreadCount,
		IsPinned:       c.IsPinned,
		IsArchived:     c.IsArchived,
		LastMessage:    c.LastMessage,
		OpeningMessage: c.OpeningMessage,
		OpeningStatus:  string(c.OpeningStatus),
		ReceivedAt:     c.ReceivedAt,
	}
	for _, r := range c.Replies {
		model.Replies = append(model.Replies, ReplyDomainToModel(c.ID, r))
	}
	return model
}

func ReplyModelToDomain(m *ReplyModel) domain.Reply {
	status, err := domain.ParseReplyStatus(m.Status)
	if err != nil {
		status = domain.ReplyStatusSent
	}
	return domain.Reply{
		ID:        m.ID,
		Text:      m.Text,
		Status:    status,
		CreatedAt: m.SentAt,
		EditedAt:  m.EditedAt,
	}
}

func ReplyDomainToModel(conversationID int64, r domain.Reply) ReplyModel {
	return ReplyModel{
		ConversationID: conversationID,
		ID:             r.ID,
		Text:           r.Text,
		Status:         string(r.Status),
		SentAt:         r.CreatedAt,
		EditedAt:       r.EditedAt,
	}
}
