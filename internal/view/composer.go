package view

import (
	"sync"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
	"github.com/clippy-oss/homie/portal-messages/internal/validation"
)

// ReplySender is the slice of the message service the composer writes through.
type ReplySender interface {
	GetConversation(id int64) (*domain.Conversation, error)
	SendReply(conversationID int64, text string) (domain.Reply, error)
	EditReply(conversationID, replyID int64, text string) (domain.Reply, error)
}

// EditSlot is the reply currently being edited and its working text.
type EditSlot struct {
	ConversationID int64
	ReplyID        int64
	Text           string
}

// Composer owns the draft for the open conversation and the single edit slot.
// Blank drafts and blank edits are refused without an error: the send and
// save buttons are simply inert.
type Composer struct {
	sender ReplySender

	mu             sync.Mutex
	conversationID int64
	draft          string
	edit           *EditSlot
}

func NewComposer(sender ReplySender) *Composer {
	return &Composer{sender: sender}
}

// Attach points the composer at a conversation, dropping any draft or edit
// belonging to the previous one.
func (c *Composer) Attach(conversationID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conversationID != conversationID {
		c.draft = ""
		c.edit = nil
	}
	c.conversationID = conversationID
}

func (c *Composer) ConversationID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

func (c *Composer) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

func (c *Composer) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// CanSubmit mirrors the send button's enabled state.
func (c *Composer) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edit == nil && validation.NotBlank(c.draft)
}

// Submit sends draftText to the attached conversation. It returns ok=false
// without error when the text is blank or an edit is in progress.
func (c *Composer) Submit(draftText string) (domain.Reply, bool, error) {
	c.mu.Lock()
	id := c.conversationID
	editing := c.edit != nil
	c.mu.Unlock()

	if editing || !validation.NotBlank(draftText) {
		return domain.Reply{}, false, nil
	}

	reply, err := c.sender.SendReply(id, draftText)
	if err != nil {
		return domain.Reply{}, false, err
	}

	c.mu.Lock()
	c.draft = ""
	c.mu.Unlock()
	return reply, true, nil
}

// StartEdit opens the edit slot on a reply, seeded with its current text. Any
// edit already in progress is discarded.
func (c *Composer) StartEdit(replyID int64) (EditSlot, error) {
	id := c.ConversationID()
	conv, err := c.sender.GetConversation(id)
	if err != nil {
		return EditSlot{}, err
	}
	idx := conv.ReplyIndex(replyID)
	if idx < 0 {
		return EditSlot{}, domain.NewNotFoundError("reply", replyID)
	}

	slot := EditSlot{ConversationID: id, ReplyID: replyID, Text: conv.Replies[idx].Text}
	c.mu.Lock()
	c.edit = &slot
	c.mu.Unlock()
	return slot, nil
}

// UpdateEdit replaces the working text of the active edit.
func (c *Composer) UpdateEdit(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edit == nil {
		return false
	}
	c.edit.Text = text
	return true
}

// SaveEdit writes newText to the reply being edited and closes the slot.
// Without an active edit, or with blank text, it does nothing and returns
// ok=false; a blank save keeps the slot open.
func (c *Composer) SaveEdit(newText string) (domain.Reply, bool, error) {
	c.mu.Lock()
	slot := c.edit
	c.mu.Unlock()

	if slot == nil || !validation.NotBlank(newText) {
		return domain.Reply{}, false, nil
	}

	reply, err := c.sender.EditReply(slot.ConversationID, slot.ReplyID, newText)
	if err != nil {
		return domain.Reply{}, false, err
	}

	c.mu.Lock()
	if c.edit == slot {
		c.edit = nil
	}
	c.mu.Unlock()
	return reply, true, nil
}

func (c *Composer) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edit = nil
}

func (c *Composer) ActiveEdit() (EditSlot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edit == nil {
		return EditSlot{}, false
	}
	return *c.edit, true
}
