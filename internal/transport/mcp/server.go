package mcp

import (
	"context"
	"io"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/clippy-oss/homie/portal-messages/internal/logger"
	"github.com/clippy-oss/homie/portal-messages/internal/service"
)

type ServerConfig struct {
	Name    string
	Version string
}

// Server exposes the message service as MCP tools over stdio.
type Server struct {
	mcpServer *server.MCPServer
	msgSvc    *service.MessageService
	config    ServerConfig
}

func NewServer(msgSvc *service.MessageService, config ServerConfig) *Server {
	if config.Name == "" {
		config.Name = "portal-messages"
	}
	if config.Version == "" {
		config.Version = "1.0.0"
	}

	s := &Server{
		msgSvc: msgSvc,
		config: config,
	}

	s.mcpServer = server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	// List conversations tool
	s.mcpServer.AddTool(
		mcp.NewTool("portal_list_conversations",
			mcp.WithDescription("List portal conversations in display order, optionally filtered by tab, name search, or archived state"),
			mcp.WithString("tab",
				mcp.Description("One of all, groups, private, teachers (default all)"),
			),
			mcp.WithString("search",
				mcp.Description("Case-insensitive substring of the conversation name"),
			),
			mcp.WithBoolean("archived",
				mcp.Description("List only archived conversations instead of live ones"),
			),
		),
		s.handleListConversations,
	)

	// Get conversation tool
	s.mcpServer.AddTool(
		mcp.NewTool("portal_get_conversation",
			mcp.WithDescription("Show a conversation with its opening message and your replies, including delivery status"),
			mcp.WithNumber("conversation_id",
				mcp.Required(),
				mcp.Description("ID of the conversation"),
			),
		),
		s.handleGetConversation,
	)

	// Send reply tool
	s.mcpServer.AddTool(
		mcp.NewTool("portal_send_reply",
			mcp.WithDescription("Send a reply to a conversation. It is delivered and then read after short delays."),
			mcp.WithNumber("conversation_id",
				mcp.Required(),
				mcp.Description("ID of the conversation to reply in"),
			),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Reply text; must not be blank"),
			),
		),
		s.handleSendReply,
	)

	// Edit reply tool
	s.mcpServer.AddTool(
		mcp.NewTool("portal_edit_reply",
			mcp.WithDescription("Replace the text of one of your replies, keeping its id and delivery status"),
			mcp.WithNumber("conversation_id",
				mcp.Required(),
				mcp.Description("ID of the conversation containing the reply"),
			),
			mcp.WithNumber("reply_id",
				mcp.Required(),
				mcp.Description("ID of the reply to edit"),
			),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("New reply text; must not be blank"),
			),
		),
		s.handleEditReply,
	)

	// Mark as read tool
	s.mcpServer.AddTool(
		mcp.NewTool("portal_mark_read",
			mcp.WithDescription("Clear the unread count of a conversation"),
			mcp.WithNumber("conversation_id",
				mcp.Required(),
				mcp.Description("ID of the conversation"),
			),
		),
		s.handleMarkRead,
	)

	// Pin tool
	s.mcpServer.AddTool(
		mcp.NewTool("portal_set_pinned",
			mcp.WithDescription("Pin or unpin a conversation"),
			mcp.WithNumber("conversation_id",
				mcp.Required(),
				mcp.Description("ID of the conversation"),
			),
			mcp.WithBoolean("pinned",
				mcp.Required(),
				mcp.Description("true to pin, false to unpin"),
			),
		),
		s.handleSetPinned,
	)

	// Archive tool
	s.mcpServer.AddTool(
		mcp.NewTool("portal_set_archived",
			mcp.WithDescription("Archive a conversation, hiding it from the default list, or restore it"),
			mcp.WithNumber("conversation_id",
				mcp.Required(),
				mcp.Description("ID of the conversation"),
			),
			mcp.WithBoolean("archived",
				mcp.Required(),
				mcp.Description("true to archive, false to restore"),
			),
		),
		s.handleSetArchived,
	)
}

// Serve speaks MCP over the given streams until ctx is cancelled or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(logger.Module("mcp"), "", 0))
	return stdio.Listen(ctx, in, out)
}
