package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
	"github.com/clippy-oss/homie/portal-messages/internal/service"
	"github.com/clippy-oss/homie/portal-messages/internal/view"
)

var errNoOpenConversation = errors.New("no conversation open. Use /open <id> first")

// CommandHandler handles CLI commands for one session
type CommandHandler struct {
	msgSvc   *service.MessageService
	inbox    *view.Inbox
	composer *view.Composer
}

// NewCommandHandler creates a new command handler with fresh session state
func NewCommandHandler(msgSvc *service.MessageService) *CommandHandler {
	return &CommandHandler{
		msgSvc:   msgSvc,
		inbox:    view.NewInbox(msgSvc),
		composer: view.NewComposer(msgSvc),
	}
}

// Command represents a parsed command. Text is everything after the name,
// kept verbatim for commands that take free text.
type Command struct {
	Name string
	Args []string
	Text string
}

// ParseCommand parses a command string (e.g., "/reply See you there")
func ParseCommand(input string) (*Command, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty command")
	}

	if !strings.HasPrefix(input, "/") {
		return nil, fmt.Errorf("commands must start with /")
	}

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	name := strings.TrimPrefix(parts[0], "/")
	text := strings.TrimLeft(strings.TrimPrefix(input, parts[0]), " \t")

	return &Command{Name: name, Args: parts[1:], Text: text}, nil
}

// Execute executes a command and returns the result
func (h *CommandHandler) Execute(ctx context.Context, cmd *Command) (interface{}, error) {
	switch cmd.Name {
	case "help", "h":
		return h.cmdHelp()
	case "ls", "list":
		return h.cmdList()
	case "tab", "t":
		return h.cmdTab(cmd.Args)
	case "search", "s":
		return h.cmdSearch(cmd.Text)
	case "archived":
		return h.cmdArchived(cmd.Args)
	case "open", "o":
		return h.cmdOpen(cmd.Args)
	case "close":
		return h.cmdClose()
	case "show":
		return h.cmdShow()
	case "reply", "r":
		return h.cmdReply(cmd.Text)
	case "edit", "e":
		return h.cmdEdit(cmd.Args)
	case "save":
		return h.cmdSave(cmd.Text)
	case "cancel":
		return h.cmdCancel()
	case "read":
		return h.cmdRead(cmd.Args)
	case "pin":
		return h.cmdPin(cmd.Args)
	case "archive":
		return h.cmdArchive(cmd.Args)
	case "quit", "exit", "q":
		return map[string]bool{"quit": true}, nil
	default:
		return nil, fmt.Errorf("unknown command: %s. Type /help for available commands", cmd.Name)
	}
}

func (h *CommandHandler) cmdHelp() (interface{}, error) {
	help := `Available commands:

Browsing:
  /ls, /list               List conversations for the current tab, search and archive view
  /tab, /t <tab>           Switch tab: all, groups, private, teachers
  /search, /s [text]       Filter by name (no text clears the search)
  /archived [on|off]       Toggle the archived-only view

Conversation:
  /open, /o <id>           Open a conversation (marks it read)
  /show                    Show the open conversation again
  /close                   Close the open conversation
  /reply, /r <text>        Send a reply to the open conversation
  /edit, /e <reply_id>     Start editing one of your replies
  /save <text>             Save the reply being edited
  /cancel                  Abandon the edit in progress

Flags:
  /read [id]               Clear unread count (defaults to the open conversation)
  /pin <id> [on|off]       Pin or unpin a conversation
  /archive <id> [on|off]   Archive or restore a conversation

Other:
  /help, /h                Show this help
  /quit, /exit, /q         Exit the CLI`

	return map[string]string{"help": help}, nil
}

func (h *CommandHandler) cmdList() (interface{}, error) {
	now := h.msgSvc.Now()
	q := h.inbox.Query()
	visible := h.inbox.Visible()

	result := make([]ConversationInfo, len(visible))
	for i, c := range visible {
		result[i] = toConversationInfo(c, now)
	}

	return ListResult{
		Tab:           string(q.Tab),
		Search:        q.Search,
		ShowArchived:  q.ShowArchived,
		Conversations: result,
		Count:         len(result),
	}, nil
}

func (h *CommandHandler) cmdTab(args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /tab <all|groups|private|teachers>")
	}

	tab, err := view.ParseTab(args[0])
	if err != nil {
		return nil, err
	}
	h.inbox.SetTab(tab)
	return h.cmdList()
}

func (h *CommandHandler) cmdSearch(text string) (interface{}, error) {
	h.inbox.SetSearch(strings.TrimSpace(text))
	return h.cmdList()
}

func (h *CommandHandler) cmdArchived(args []string) (interface{}, error) {
	if len(args) > 0 {
		on, err := parseSwitch(args[0])
		if err != nil {
			return nil, err
		}
		h.inbox.SetShowArchived(on)
	} else {
		h.inbox.ToggleArchived()
	}
	return h.cmdList()
}

func (h *CommandHandler) cmdOpen(args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /open <conversation_id>")
	}

	id, err := parseID(args[0])
	if err != nil {
		return nil, err
	}

	c, err := h.inbox.Open(id)
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation: %w", err)
	}
	h.composer.Attach(id)

	return toConversationDetail(c, h.msgSvc.Now()), nil
}

func (h *CommandHandler) cmdClose() (interface{}, error) {
	h.inbox.Close()
	h.composer.Attach(0)
	return map[string]string{"message": "Conversation closed"}, nil
}

func (h *CommandHandler) cmdShow() (interface{}, error) {
	c, ok := h.inbox.Selected()
	if !ok {
		return nil, errNoOpenConversation
	}
	return toConversationDetail(c, h.msgSvc.Now()), nil
}

func (h *CommandHandler) cmdReply(text string) (interface{}, error) {
	id, ok := h.inbox.SelectedID()
	if !ok {
		return nil, errNoOpenConversation
	}
	if _, editing := h.composer.ActiveEdit(); editing {
		return nil, fmt.Errorf("an edit is in progress. Use /save or /cancel first")
	}

	reply, sent, err := h.composer.Submit(text)
	if err != nil {
		return nil, fmt.Errorf("failed to send reply: %w", err)
	}
	if !sent {
		return map[string]string{"message": "Nothing to send"}, nil
	}

	return toReplyInfo(id, reply), nil
}

func (h *CommandHandler) cmdEdit(args []string) (interface{}, error) {
	if _, ok := h.inbox.SelectedID(); !ok {
		return nil, errNoOpenConversation
	}
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /edit <reply_id>")
	}

	replyID, err := parseID(args[0])
	if err != nil {
		return nil, err
	}

	slot, err := h.composer.StartEdit(replyID)
	if err != nil {
		return nil, fmt.Errorf("failed to start edit: %w", err)
	}

	return EditInfo{ConversationID: slot.ConversationID, ReplyID: slot.ReplyID, Text: slot.Text}, nil
}

func (h *CommandHandler) cmdSave(text string) (interface{}, error) {
	slot, editing := h.composer.ActiveEdit()
	if !editing {
		return nil, fmt.Errorf("no edit in progress. Use /edit <reply_id> first")
	}

	reply, saved, err := h.composer.SaveEdit(text)
	if err != nil {
		return nil, fmt.Errorf("failed to save edit: %w", err)
	}
	if !saved {
		return map[string]string{"message": "Edit text is empty; still editing"}, nil
	}

	return toReplyInfo(slot.ConversationID, reply), nil
}

func (h *CommandHandler) cmdCancel() (interface{}, error) {
	if _, editing := h.composer.ActiveEdit(); !editing {
		return map[string]string{"message": "No edit in progress"}, nil
	}
	h.composer.CancelEdit()
	return map[string]string{"message": "Edit cancelled"}, nil
}

func (h *CommandHandler) cmdRead(args []string) (interface{}, error) {
	id, err := h.targetID(args)
	if err != nil {
		return nil, err
	}

	c, err := h.msgSvc.MarkAllRead(id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark as read: %w", err)
	}
	return toConversationInfo(c, h.msgSvc.Now()), nil
}

func (h *CommandHandler) cmdPin(args []string) (interface{}, error) {
	return h.setFlag(args, "pin", func(c *domain.Conversation) bool { return c.IsPinned }, h.msgSvc.SetPinned)
}

func (h *CommandHandler) cmdArchive(args []string) (interface{}, error) {
	return h.setFlag(args, "archive", func(c *domain.Conversation) bool { return c.IsArchived }, h.msgSvc.SetArchived)
}

func (h *CommandHandler) setFlag(
	args []string,
	name string,
	current func(*domain.Conversation) bool,
	set func(int64, bool) (*domain.Conversation, error),
) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /%s <conversation_id> [on|off]", name)
	}

	id, err := parseID(args[0])
	if err != nil {
		return nil, err
	}

	var on bool
	if len(args) > 1 {
		if on, err = parseSwitch(args[1]); err != nil {
			return nil, err
		}
	} else {
		c, err := h.msgSvc.GetConversation(id)
		if err != nil {
			return nil, fmt.Errorf("failed to %s: %w", name, err)
		}
		on = !current(c)
	}

	c, err := set(id, on)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", name, err)
	}
	return toConversationInfo(c, h.msgSvc.Now()), nil
}

func (h *CommandHandler) targetID(args []string) (int64, error) {
	if len(args) > 0 {
		return parseID(args[0])
	}
	id, ok := h.inbox.SelectedID()
	if !ok {
		return 0, errNoOpenConversation
	}
	return id, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

// SubscribeEvents forwards message events as CLI events until ctx is done
func (h *CommandHandler) SubscribeEvents(ctx context.Context, eventTypes []domain.EventType) <-chan Event {
	if len(eventTypes) == 0 {
		eventTypes = []domain.EventType{
			domain.EventTypeReplyAppended,
			domain.EventTypeReplyStatusChanged,
			domain.EventTypeReplyEdited,
			domain.EventTypeConversationUpdated,
		}
	}

	eventBus := h.msgSvc.GetEventBus()
	domainChan := eventBus.Subscribe(eventTypes)

	resultChan := make(chan Event)

	go func() {
		defer close(resultChan)
		defer eventBus.Unsubscribe(domainChan)
		for {
			var evt domain.Event
			select {
			case <-ctx.Done():
				return
			case e, ok := <-domainChan:
				if !ok {
					return
				}
				evt = e
			}

			var eventType string
			var data interface{}

			switch e := evt.(type) {
			case domain.ReplyAppendedEvent:
				eventType = "reply_appended"
				data = toReplyInfo(e.ConversationID, e.Reply)
			case domain.ReplyStatusChangedEvent:
				eventType = "reply_status"
				data = map[string]interface{}{
					"conversation_id": e.ConversationID,
					"reply_id":        e.ReplyID,
					"status":          string(e.Status),
				}
			case domain.ReplyEditedEvent:
				eventType = "reply_edited"
				data = toReplyInfo(e.ConversationID, e.Reply)
			case domain.ConversationUpdatedEvent:
				eventType = "conversation_updated"
				data = toConversationInfo(e.Conversation, e.EventTime)
			default:
				continue
			}

			select {
			case resultChan <- Event{Type: eventType, Timestamp: evt.Timestamp(), Data: data}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return resultChan
}
