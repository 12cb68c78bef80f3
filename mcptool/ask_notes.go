// Package mcptool exposes the note question-answering pipeline as MCP tools.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github/itish2003/notechat/services"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// AskNotesTool handles the ask_notes MCP tool.
type AskNotesTool struct {
	chat services.ChatService
}

// NewAskNotesTool creates an AskNotesTool backed by the chat service.
func NewAskNotesTool(chat services.ChatService) *AskNotesTool {
	return &AskNotesTool{chat: chat}
}

// Definition returns the MCP tool definition for registration.
func (t *AskNotesTool) Definition() mcp.Tool {
	return mcp.NewTool("ask_notes",
		mcp.WithDescription(
			"Answer a question about the user's private notes, or a general question. "+
				"Note questions are answered only from the notes that match; "+
				"the result lists the intent, the answer and the matched notes as JSON.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Id of the user whose notes may be searched"),
		),
	)
}

// Handle processes the ask_notes tool call.
func (t *AskNotesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	userID := strings.TrimSpace(req.GetString("user_id", ""))
	if userID == "" {
		return mcp.NewToolResultError("'user_id' is required"), nil
	}

	result := t.chat.Handle(ctx, query, userID)
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// NewServer creates the MCP server with every notechat tool registered.
func NewServer(chat services.ChatService) *server.MCPServer {
	s := server.NewMCPServer(
		"notechat",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	askTool := NewAskNotesTool(chat)
	s.AddTool(askTool.Definition(), askTool.Handle)
	return s
}
