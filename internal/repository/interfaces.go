package repository

import (
	"context"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
)

// ConversationFilter narrows List. A nil Kind means every kind. Archived
// selects which side of the archive flag is visible: false shows only live
// conversations, true shows only archived ones.
type ConversationFilter struct {
	Kind     *domain.ConversationKind
	Archived bool
}

// ConversationStore owns the ordered conversation collection for a session.
// Every returned conversation or reply is a copy.
type ConversationStore interface {
	List(filter ConversationFilter) []*domain.Conversation
	Get(id int64) (*domain.Conversation, error)
	AppendReply(conversationID int64, text string) (domain.Reply, error)
	EditReply(conversationID, replyID int64, text string) (domain.Reply, error)
	AdvanceStatus(conversationID, replyID int64, target domain.ReplyStatus) (bool, error)
	MarkAllRead(conversationID int64) (*domain.Conversation, error)
	SetPinned(conversationID int64, pinned bool) (*domain.Conversation, error)
	SetArchived(conversationID int64, archived bool) (*domain.Conversation, error)
}

// SeedRepository reads and writes the start-up conversation catalogue.
type SeedRepository interface {
	Load(ctx context.Context) ([]*domain.Conversation, error)
	Replace(ctx context.Context, conversations []*domain.Conversation) error
}
