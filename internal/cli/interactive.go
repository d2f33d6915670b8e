package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
)

// InteractiveCLI handles the line-oriented interactive interface. Lines that
// do not start with / are sent as a reply to the open conversation, or saved
// as the new text when an edit is in progress.
type InteractiveCLI struct {
	handler *CommandHandler
	reader  *bufio.Reader
	writer  io.Writer
	mu      sync.Mutex
}

// NewInteractiveCLI creates a new interactive CLI
func NewInteractiveCLI(handler *CommandHandler, in io.Reader, out io.Writer) *InteractiveCLI {
	return &InteractiveCLI{
		handler: handler,
		reader:  bufio.NewReader(in),
		writer:  out,
	}
}

// Run starts the interactive CLI loop
func (cli *InteractiveCLI) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	cli.printWelcome()

	eventChan := cli.handler.SubscribeEvents(ctx, []domain.EventType{
		domain.EventTypeReplyStatusChanged,
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		cli.handleEvents(eventChan)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			cli.print("\n> ")
			line, err := cli.reader.ReadString('\n')
			if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
				if err == io.EOF {
					return nil
				}
				return err
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if err := cli.processCommand(ctx, line); err != nil {
				if err.Error() == "quit" {
					cli.println("Goodbye!")
					return nil
				}
				cli.printf("Error: %s\n", err)
			}
		}
	}
}

func (cli *InteractiveCLI) printWelcome() {
	cli.println("===========================================")
	cli.println("  Portal Messages")
	cli.println("===========================================")
	cli.println("Type /help for available commands")
	cli.println("")

	if result, err := cli.handler.cmdList(); err == nil {
		cli.displayResult("ls", result)
	}
}

func (cli *InteractiveCLI) processCommand(ctx context.Context, input string) error {
	var cmd *Command
	if strings.HasPrefix(input, "/") {
		parsed, err := ParseCommand(input)
		if err != nil {
			return err
		}
		cmd = parsed
	} else if _, editing := cli.handler.composer.ActiveEdit(); editing {
		cmd = &Command{Name: "save", Text: input}
	} else {
		cmd = &Command{Name: "reply", Text: input}
	}

	result, err := cli.handler.Execute(ctx, cmd)
	if err != nil {
		return err
	}

	// Check for quit command
	if m, ok := result.(map[string]bool); ok && m["quit"] {
		return fmt.Errorf("quit")
	}

	// Format and display result
	cli.displayResult(cmd.Name, result)
	return nil
}

func (cli *InteractiveCLI) displayResult(cmdName string, result interface{}) {
	switch r := result.(type) {
	case map[string]string:
		if help, ok := r["help"]; ok {
			cli.println(help)
		} else if msg, ok := r["message"]; ok {
			cli.println(msg)
		}

	case ListResult:
		label := strings.ToUpper(r.Tab)
		if r.ShowArchived {
			label += " (archived)"
		}
		if r.Search != "" {
			label += fmt.Sprintf(" matching %q", r.Search)
		}
		cli.printf("%s: %d conversation(s)\n\n", label, r.Count)
		for _, c := range r.Conversations {
			cli.printConversationRow(c)
		}

	case ConversationDetail:
		cli.printConversationRow(r.ConversationInfo)
		if len(r.Participants) > 0 {
			cli.printf("   Members: %s\n", strings.Join(r.Participants, ", "))
		}
		cli.println("")
		if r.OpeningMessage != "" {
			cli.printf("  %s: %s\n", r.Name, r.OpeningMessage)
		}
		for _, reply := range r.Replies {
			cli.printReply(reply)
		}

	case ReplyInfo:
		if cmdName == "save" {
			cli.print("Edited: ")
		} else {
			cli.print("Sent: ")
		}
		cli.printReply(r)

	case EditInfo:
		cli.printf("Editing reply %d. Current text:\n  %s\n", r.ReplyID, r.Text)
		cli.println("Type the new text (or /save <text>), /cancel to abandon.")

	case ConversationInfo:
		cli.printConversationRow(r)

	default:
		data, _ := json.MarshalIndent(result, "", "  ")
		cli.println(string(data))
	}
}

func (cli *InteractiveCLI) printConversationRow(c ConversationInfo) {
	marks := ""
	if c.Pinned {
		marks += " [pinned]"
	}
	if c.Archived {
		marks += " [archived]"
	}
	if c.UnreadCount > 0 {
		marks += fmt.Sprintf(" [%d unread]", c.UnreadCount)
	}
	cli.printf("%d. %s (%s)%s  %s\n", c.ID, c.Name, c.Kind, marks, c.TimeLabel)
	if c.Preview != "" {
		cli.printf("   %s\n", domain.Truncate(c.Preview, 53))
	}
}

func (cli *InteractiveCLI) printReply(r ReplyInfo) {
	edited := ""
	if r.EditedAt != nil {
		edited = " (edited)"
	}
	glyph := domain.ReplyStatus(r.Status).Glyph()
	cli.printf("  [%d] Me: %s %s%s  %s\n", r.ID, r.Text, glyph, edited, r.CreatedAt.Format("15:04"))
}

func (cli *InteractiveCLI) handleEvents(eventChan <-chan Event) {
	for event := range eventChan {
		data, ok := event.Data.(map[string]interface{})
		if !ok {
			continue
		}
		open, isOpen := cli.handler.inbox.SelectedID()
		if !isOpen || data["conversation_id"] != open {
			continue
		}
		status, _ := data["status"].(string)
		cli.printf("\n[reply %v %s %s]\n> ", data["reply_id"], status, domain.ReplyStatus(status).Glyph())
	}
}

func (cli *InteractiveCLI) print(s string) {
	cli.mu.Lock()
	defer cli.mu.Unlock()
	fmt.Fprint(cli.writer, s)
}

func (cli *InteractiveCLI) println(s string) {
	cli.mu.Lock()
	defer cli.mu.Unlock()
	fmt.Fprintln(cli.writer, s)
}

func (cli *InteractiveCLI) printf(format string, args ...interface{}) {
	cli.mu.Lock()
	defer cli.mu.Unlock()
	fmt.Fprintf(cli.writer, format, args...)
}
