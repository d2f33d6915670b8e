package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
	"github.com/clippy-oss/homie/portal-messages/internal/repository"
	"github.com/clippy-oss/homie/portal-messages/internal/view"
)

func (s *Server) handleListConversations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tab, err := view.ParseTab(request.GetString("tab", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	q := view.Query{
		Tab:          tab,
		Search:       strings.TrimSpace(request.GetString("search", "")),
		ShowArchived: request.GetBool("archived", false),
	}
	conversations := view.Apply(s.msgSvc.ListConversations(repository.ConversationFilter{
		Kind:     tab.Kind(),
		Archived: q.ShowArchived,
	}), q)

	if len(conversations) == 0 {
		return mcp.NewToolResultText("No conversations match."), nil
	}

	now := s.msgSvc.Now()
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d conversation(s) in %s:\n\n", len(conversations), tab.Title()))

	for i, c := range conversations {
		result.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, c.DisplayName, c.Kind))
		result.WriteString(fmt.Sprintf("   ID: %d\n", c.ID))

		if c.UnreadCount > 0 {
			result.WriteString(fmt.Sprintf("   Unread: %d message(s)\n", c.UnreadCount))
		}
		if c.IsPinned {
			result.WriteString("   Pinned\n")
		}

		if preview := c.Preview(); preview != "" {
			preview = domain.Truncate(preview, 63)
			result.WriteString(fmt.Sprintf("   Last: %s\n", preview))
		}
		if label := domain.RelativeTime(c.ReceivedAt, now); label != "" {
			result.WriteString(fmt.Sprintf("   Time: %s\n", label))
		}
		result.WriteString("\n")
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (s *Server) handleGetConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(request, "conversation_id")
	if errResult != nil {
		return errResult, nil
	}

	c, err := s.msgSvc.GetConversation(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get conversation: %v", err)), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s (%s)\n", c.DisplayName, c.Kind))
	if len(c.Participants) > 0 {
		result.WriteString(fmt.Sprintf("Members: %s\n", strings.Join(c.Participants, ", ")))
	}
	if c.UnreadCount > 0 {
		result.WriteString(fmt.Sprintf("Unread: %d\n", c.UnreadCount))
	}
	result.WriteString("\n")

	if c.OpeningMessage != "" {
		result.WriteString(fmt.Sprintf("[%s] %s:\n  %s\n\n",
			c.ReceivedAt.Format("2006-01-02 15:04"), c.DisplayName, c.OpeningMessage))
	}

	for _, r := range c.Replies {
		edited := ""
		if r.Edited() {
			edited = " (edited)"
		}
		result.WriteString(fmt.Sprintf("[%s] Me [%s]%s:\n", r.CreatedAt.Format("2006-01-02 15:04"), r.Status, edited))
		result.WriteString(fmt.Sprintf("  %s\n", r.Text))
		result.WriteString(fmt.Sprintf("  ID: %d\n\n", r.ID))
	}

	if len(c.Replies) == 0 {
		result.WriteString("No replies yet.\n")
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (s *Server) handleSendReply(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(request, "conversation_id")
	if errResult != nil {
		return errResult, nil
	}

	text := request.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	reply, err := s.msgSvc.SendReply(id, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send reply: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reply sent successfully!\nID: %d\nStatus: %s\nTimestamp: %s\nConversation: %d",
		reply.ID, reply.Status, reply.CreatedAt.Format("2006-01-02 15:04:05"), id)), nil
}

func (s *Server) handleEditReply(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(request, "conversation_id")
	if errResult != nil {
		return errResult, nil
	}
	replyID, errResult := requireID(request, "reply_id")
	if errResult != nil {
		return errResult, nil
	}

	text := request.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	reply, err := s.msgSvc.EditReply(id, replyID, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit reply: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reply %d updated (status %s): %s", reply.ID, reply.Status, reply.Text)), nil
}

func (s *Server) handleMarkRead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(request, "conversation_id")
	if errResult != nil {
		return errResult, nil
	}

	c, err := s.msgSvc.MarkAllRead(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to mark as read: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Marked %s as read", c.DisplayName)), nil
}

func (s *Server) handleSetPinned(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(request, "conversation_id")
	if errResult != nil {
		return errResult, nil
	}
	pinned, err := request.RequireBool("pinned")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c, err := s.msgSvc.SetPinned(id, pinned)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update conversation: %v", err)), nil
	}

	if c.IsPinned {
		return mcp.NewToolResultText(fmt.Sprintf("Pinned %s", c.DisplayName)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Unpinned %s", c.DisplayName)), nil
}

func (s *Server) handleSetArchived(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(request, "conversation_id")
	if errResult != nil {
		return errResult, nil
	}
	archived, err := request.RequireBool("archived")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c, err := s.msgSvc.SetArchived(id, archived)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update conversation: %v", err)), nil
	}

	if c.IsArchived {
		return mcp.NewToolResultText(fmt.Sprintf("Archived %s", c.DisplayName)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Restored %s", c.DisplayName)), nil
}

func requireID(request mcp.CallToolRequest, key string) (int64, *mcp.CallToolResult) {
	raw, err := request.RequireFloat(key)
	if err != nil {
		return 0, mcp.NewToolResultError(fmt.Sprintf("%s is required", key))
	}
	id := int64(raw)
	if float64(id) != raw {
		return 0, mcp.NewToolResultError(fmt.Sprintf("%s must be an integer", key))
	}
	return id, nil
}
