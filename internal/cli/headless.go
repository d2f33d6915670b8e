package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// HeadlessCLI handles JSON-lines operation: one request per input line, one
// response per request, with message events interleaved on the same stream.
type HeadlessCLI struct {
	handler *CommandHandler
	reader  *bufio.Reader
	writer  io.Writer
	mu      sync.Mutex
}

// NewHeadlessCLI creates a new headless CLI
func NewHeadlessCLI(handler *CommandHandler, in io.Reader, out io.Writer) *HeadlessCLI {
	return &HeadlessCLI{
		handler: handler,
		reader:  bufio.NewReader(in),
		writer:  out,
	}
}

// Run starts the headless JSON processing loop. It returns on EOF, on a quit
// command, or when ctx is cancelled.
func (cli *HeadlessCLI) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	// Send ready message
	cli.sendResponse(Response{
		Success: true,
		Data:    map[string]string{"status": "ready", "mode": string(ModeHeadless)},
	})

	eventChan := cli.handler.SubscribeEvents(ctx, nil)
	wg.Add(1)
	go func() {
		defer wg.Done()
		cli.streamEvents(eventChan)
	}()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		for {
			line, err := cli.reader.ReadString('\n')
			if strings.TrimSpace(line) != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		case line := <-lines:
			if quit := cli.processRequest(ctx, line); quit {
				return nil
			}
		}
	}
}

func (cli *HeadlessCLI) processRequest(ctx context.Context, line string) bool {
	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		cli.sendError("", fmt.Sprintf("invalid JSON: %v", err))
		return false
	}

	if req.Command == "" {
		cli.sendError(req.ID, "missing command field")
		return false
	}

	switch req.Command {
	case "subscribe":
		// Already subscribed, just acknowledge
		cli.sendResponse(Response{
			ID:      req.ID,
			Success: true,
			Data:    map[string]string{"message": "subscribed to events"},
		})
		return false
	case "quit", "exit":
		cli.sendResponse(Response{
			ID:      req.ID,
			Success: true,
			Data:    map[string]string{"message": "goodbye"},
		})
		return true
	}

	cmd := &Command{
		Name: req.Command,
		Args: cli.paramsToArgs(req.Command, req.Params),
	}
	if text, ok := req.Params["text"].(string); ok {
		cmd.Text = text
	} else if query, ok := req.Params["query"].(string); ok && (req.Command == "search" || req.Command == "s") {
		cmd.Text = query
	}

	result, err := cli.handler.Execute(ctx, cmd)
	if err != nil {
		cli.sendError(req.ID, err.Error())
		return false
	}

	cli.sendResponse(Response{
		ID:      req.ID,
		Success: true,
		Data:    result,
	})
	return false
}

func (cli *HeadlessCLI) paramsToArgs(command string, params map[string]interface{}) []string {
	if params == nil {
		return nil
	}

	var args []string

	switch command {
	case "tab", "t":
		if tab, ok := params["tab"].(string); ok {
			args = append(args, tab)
		}

	case "archived":
		if show, ok := params["show"].(bool); ok {
			args = append(args, strconv.FormatBool(show))
		}

	case "open", "o", "read":
		if id, ok := params["conversation_id"].(float64); ok {
			args = append(args, fmt.Sprintf("%d", int64(id)))
		}

	case "edit", "e":
		if id, ok := params["reply_id"].(float64); ok {
			args = append(args, fmt.Sprintf("%d", int64(id)))
		}

	case "pin":
		args = appendFlagArgs(args, params, "pinned")

	case "archive":
		args = appendFlagArgs(args, params, "archived")
	}

	return args
}

func appendFlagArgs(args []string, params map[string]interface{}, flag string) []string {
	if id, ok := params["conversation_id"].(float64); ok {
		args = append(args, fmt.Sprintf("%d", int64(id)))
	}
	if on, ok := params[flag].(bool); ok {
		args = append(args, strconv.FormatBool(on))
	}
	return args
}

func (cli *HeadlessCLI) streamEvents(eventChan <-chan Event) {
	for event := range eventChan {
		cli.sendEvent(event)
	}
}

func (cli *HeadlessCLI) sendResponse(resp Response) {
	cli.mu.Lock()
	defer cli.mu.Unlock()

	data, _ := json.Marshal(resp)
	fmt.Fprintln(cli.writer, string(data))
}

func (cli *HeadlessCLI) sendError(id, message string) {
	cli.sendResponse(Response{
		ID:      id,
		Success: false,
		Error:   message,
	})
}

func (cli *HeadlessCLI) sendEvent(event Event) {
	cli.mu.Lock()
	defer cli.mu.Unlock()

	data, _ := json.Marshal(map[string]interface{}{
		"type":      "event",
		"event":     event.Type,
		"timestamp": event.Timestamp,
		"data":      event.Data,
	})
	fmt.Fprintln(cli.writer, string(data))
}
