package view

import (
	"sync"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
	"github.com/clippy-oss/homie/portal-messages/internal/repository"
)

// ConversationSource is the slice of the message service the inbox reads from.
type ConversationSource interface {
	ListConversations(filter repository.ConversationFilter) []*domain.Conversation
	GetConversation(id int64) (*domain.Conversation, error)
	MarkAllRead(conversationID int64) (*domain.Conversation, error)
}

// Inbox holds one session's list state: tab, search, archived toggle and the
// open conversation. Opening a conversation clears its unread count.
type Inbox struct {
	src ConversationSource

	mu       sync.Mutex
	query    Query
	selected int64
	open     bool
}

func NewInbox(src ConversationSource) *Inbox {
	return &Inbox{
		src:   src,
		query: Query{Tab: TabAll},
	}
}

func (i *Inbox) Query() Query {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.query
}

func (i *Inbox) SetTab(tab Tab) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.query.Tab = tab
}

func (i *Inbox) SetSearch(search string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.query.Search = search
}

func (i *Inbox) SetShowArchived(show bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.query.ShowArchived = show
}

// ToggleArchived flips the archived-only view and returns the new state.
func (i *Inbox) ToggleArchived() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.query.ShowArchived = !i.query.ShowArchived
	return i.query.ShowArchived
}

// Visible returns the conversations the current query selects, in store order.
func (i *Inbox) Visible() []*domain.Conversation {
	q := i.Query()
	listed := i.src.ListConversations(repository.ConversationFilter{
		Kind:     q.Tab.Kind(),
		Archived: q.ShowArchived,
	})
	return Apply(listed, q)
}

// Open selects a conversation and marks it read.
func (i *Inbox) Open(id int64) (*domain.Conversation, error) {
	c, err := i.src.MarkAllRead(id)
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	i.selected = id
	i.open = true
	i.mu.Unlock()
	return c, nil
}

func (i *Inbox) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.selected = 0
	i.open = false
}

func (i *Inbox) SelectedID() (int64, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.selected, i.open
}

// Selected re-reads the open conversation so callers see the latest replies.
func (i *Inbox) Selected() (*domain.Conversation, bool) {
	id, ok := i.SelectedID()
	if !ok {
		return nil, false
	}
	c, err := i.src.GetConversation(id)
	if err != nil {
		i.Close()
		return nil, false
	}
	return c, true
}
