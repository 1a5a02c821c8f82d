// Package mcp exposes the chat surface as a Model Context Protocol server,
// so agent hosts can drive chatbot conversations as tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/replyflow/replyflow"
	"github.com/replyflow/replyflow/pkg/domain"
	"github.com/replyflow/replyflow/pkg/ports"
	"github.com/replyflow/replyflow/pkg/session"
)

// StartChatResponse is the structured result of the start_chat tool.
type StartChatResponse struct {
	SessionID string `json:"session_id" jsonschema_description:"ID to pass to send_message"`
	Greeting  string `json:"greeting" jsonschema_description:"The chatbot's opening message"`
}

// SendMessageResponse is the structured result of the send_message tool.
type SendMessageResponse struct {
	Reply   string            `json:"reply" jsonschema_description:"The final bot reply text"`
	Options []domain.UIOption `json:"options" jsonschema_description:"Quick-reply options, if any"`
	Source  string            `json:"source" jsonschema_description:"Which tier answered: faq, workflow or rag"`
	Error   string            `json:"error,omitempty" jsonschema_description:"RAG failure cause when the apology was substituted"`
}

// Engine defines the interface required by the MCP server.
type Engine interface {
	StartSession(ctx context.Context, chatbotID string) (*domain.ChatSession, *domain.ChatMessage, error)
	Send(ctx context.Context, sessionID, text string) (*replyflow.Reply, error)
}

// Server exposes a replyflow Engine as an MCP server.
type Server struct {
	engine    Engine
	store     ports.Store
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, store ports.Store) *Server {
	s := &Server{
		engine:    engine,
		store:     store,
		mcpServer: server.NewMCPServer("replyflow-mcp", strings.TrimSpace(replyflow.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: list_chatbots
	s.mcpServer.AddTool(mcp.NewTool("list_chatbots",
		mcp.WithDescription("List the available chatbots with their IDs."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		bots, err := s.store.ListChatbots(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list chatbots failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(bots)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: start_chat
	startTool := mcp.NewTool("start_chat",
		mcp.WithDescription("Start a chat session with a chatbot. Returns the session ID and the greeting."),
		mcp.WithString("chatbot_id", mcp.Required(), mcp.Description("ID of the chatbot to talk to")),
		mcp.WithOutputSchema[StartChatResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStartChat))

	// TOOL: send_message
	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send a user message to an open chat session and get the bot's reply."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID returned by start_chat")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user message text")),
		mcp.WithOutputSchema[SendMessageResponse](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSendMessage))
}

func (s *Server) handleStartChat(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StartChatResponse, error) {
	chatbotID, _ := args["chatbot_id"].(string)
	if chatbotID == "" {
		return StartChatResponse{}, errors.New("chatbot_id is required")
	}

	sess, greeting, err := s.engine.StartSession(ctx, chatbotID)
	if err != nil {
		return StartChatResponse{}, fmt.Errorf("start chat failed: %w", err)
	}

	return StartChatResponse{
		SessionID: sess.ID,
		Greeting:  greeting.Message,
	}, nil
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SendMessageResponse, error) {
	sessionID, _ := args["session_id"].(string)
	message, _ := args["message"].(string)
	if sessionID == "" || strings.TrimSpace(message) == "" {
		return SendMessageResponse{}, errors.New("session_id and message are required")
	}

	reply, err := s.engine.Send(ctx, sessionID, message)
	if errors.Is(err, session.ErrSendInFlight) {
		return SendMessageResponse{}, fmt.Errorf("session busy: %w", err)
	}
	if err != nil {
		return SendMessageResponse{}, fmt.Errorf("send failed: %w", err)
	}

	resp := SendMessageResponse{
		Reply:   reply.Text,
		Options: reply.Options,
		Source:  reply.Source,
	}
	if reply.RAGErr != nil {
		resp.Error = reply.RAGErr.Error()
	}
	return resp, nil
}

func (s *Server) registerResources() {
	// EXPOSE: replyflow://chatbots
	s.mcpServer.AddResource(mcp.NewResource("replyflow://chatbots", "Configured Chatbots",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		bots, err := s.store.ListChatbots(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list chatbots: %w", err)
		}
		jsonBytes, _ := json.Marshal(bots)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "replyflow://chatbots",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
