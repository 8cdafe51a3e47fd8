// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the generated Khan dataset for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pkimber/ka-lite/internal/api"
)

// Server wraps the MCP server with dataset lookup tools.
type Server struct {
	mcp *server.MCPServer
	svc *api.Service
}

// New creates a new MCP server with all dataset tools registered.
func New(svc *api.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"KA Lite",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_node",
		mcp.WithDescription("Look up a node-cache summary by kind and slug."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Node kind: Topic, Video or Exercise")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Node slug within the kind")),
	), s.getNode)

	s.mcp.AddTool(mcp.NewTool("list_slugs",
		mcp.WithDescription("List all cached slugs for a node kind."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Node kind: Topic, Video or Exercise")),
	), s.listSlugs)

	s.mcp.AddTool(mcp.NewTool("topic_exercises",
		mcp.WithDescription("Read the flattened exercise leaves of a knowledge-map topic."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Topic slug")),
	), s.topicExercises)

	s.mcp.AddTool(mcp.NewTool("resolve_youtube_id",
		mcp.WithDescription("Resolve a youtube video id to its video slug."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Youtube video id")),
	), s.resolveYoutubeID)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) getNode(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := s.svc.Node(kind, slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%s", kind, slug)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) listSlugs(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slugs := s.svc.Slugs(kind)
	if len(slugs) == 0 {
		return mcp.NewToolResultText("no nodes of kind " + kind), nil
	}
	return mcp.NewToolResultText(strings.Join(slugs, "\n")), nil
}

func (s *Server) topicExercises(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.svc.TopicData(slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no topic data for: %s", slug)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) resolveYoutubeID(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slug, err := s.svc.YoutubeSlug(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown youtube id: %s", id)), nil
	}
	return mcp.NewToolResultText(slug), nil
}
