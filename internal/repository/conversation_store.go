package repository

import (
	"sync"
	"time"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
	"github.com/clippy-oss/homie/portal-messages/internal/validation"
)

type memoryConversationStore struct {
	mu    sync.RWMutex
	now   func() time.Time
	order []int64
	byID  map[int64]*domain.Conversation
}

// NewConversationStore seeds a store with copies of the given conversations,
// keeping their order. Later duplicates of an id are ignored.
func NewConversationStore(seed []*domain.Conversation, now func() time.Time) ConversationStore {
	if now == nil {
		now = time.Now
	}
	s := &memoryConversationStore{
		now:   now,
		order: make([]int64, 0, len(seed)),
		byID:  make(map[int64]*domain.Conversation, len(seed)),
	}
	for _, c := range seed {
		if c == nil {
			continue
		}
		if _, dup := s.byID[c.ID]; dup {
			continue
		}
		s.order = append(s.order, c.ID)
		s.byID[c.ID] = c.Clone()
	}
	return s
}

func (s *memoryConversationStore) List(filter ConversationFilter) []*domain.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Conversation, 0, len(s.order))
	for _, id := range s.order {
		c := s.byID[id]
		if c.IsArchived != filter.Archived {
			continue
		}
		if filter.Kind != nil && c.Kind != *filter.Kind {
			continue
		}
		out = append(out, c.Clone())
	}
	return out
}

func (s *memoryConversationStore) Get(id int64) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("conversation", id)
	}
	return c.Clone(), nil
}

func (s *memoryConversationStore) AppendReply(conversationID int64, text string) (domain.Reply, error) {
	if err := validation.CheckReplyText(text); err != nil {
		return domain.Reply{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[conversationID]
	if !ok {
		return domain.Reply{}, domain.NewNotFoundError("conversation", conversationID)
	}
	now := s.now()
	reply := domain.NewReply(c.NextReplyID(now), text, now)
	c.Replies = append(c.Replies, reply)
	return reply, nil
}

func (s *memoryConversationStore) EditReply(conversationID, replyID int64, text string) (domain.Reply, error) {
	if err := validation.CheckReplyText(text); err != nil {
		return domain.Reply{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[conversationID]
	if !ok {
		return domain.Reply{}, domain.NewNotFoundError("conversation", conversationID)
	}
	idx := c.ReplyIndex(replyID)
	if idx < 0 {
		return domain.Reply{}, domain.NewNotFoundError("reply", replyID)
	}
	c.Replies[idx].Text = text
	c.Replies[idx].EditedAt = s.now()
	return c.Replies[idx], nil
}

func (s *memoryConversationStore) AdvanceStatus(conversationID, replyID int64, target domain.ReplyStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[conversationID]
	if !ok {
		return false, domain.NewNotFoundError("conversation", conversationID)
	}
	idx := c.ReplyIndex(replyID)
	if idx < 0 {
		return false, domain.NewNotFoundError("reply", replyID)
	}
	return c.Replies[idx].Advance(target), nil
}

func (s *memoryConversationStore) MarkAllRead(conversationID int64) (*domain.Conversation, error) {
	return s.update(conversationID, func(c *domain.Conversation) {
		c.UnreadCount = 0
	})
}

func (s *memoryConversationStore) SetPinned(conversationID int64, pinned bool) (*domain.Conversation, error) {
	return s.update(conversationID, func(c *domain.Conversation) {
		c.IsPinned = pinned
	})
}

func (s *memoryConversationStore) SetArchived(conversationID int64, archived bool) (*domain.Conversation, error) {
	return s.update(conversationID, func(c *domain.Conversation) {
		c.IsArchived = archived
	})
}

func (s *memoryConversationStore) update(id int64, fn func(*domain.Conversation)) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("conversation", id)
	}
	fn(c)
	return c.Clone(), nil
}
