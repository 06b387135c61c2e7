package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriScheme = "voxdesk://"

	conversationURI = uriScheme + "conversation"
	knowledgeURI    = uriScheme + "knowledge"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         conversationURI,
		Name:        "conversation",
		Description: "The current conversation: system prompt, RAG flag and turns",
		MIMEType:    "application/json",
	}, s.handleConversationResource)

	s.server.AddResource(&mcp.Resource{
		URI:         knowledgeURI,
		Name:        "knowledge",
		Description: "Knowledge base status and sources",
		MIMEType:    "application/json",
	}, s.handleKnowledgeResource)
}

func (s *Server) handleConversationResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type turnInfo struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type conversationInfo struct {
		SystemPrompt string     `json:"system_prompt"`
		RAGEnabled   bool       `json:"rag_enabled"`
		Turns        []turnInfo `json:"turns"`
	}

	s.convMu.Lock()
	history := s.ports.Conversation.History()
	info := conversationInfo{
		SystemPrompt: s.ports.Conversation.SystemPrompt(),
		RAGEnabled:   s.ports.Conversation.RAGEnabled(),
		Turns:        make([]turnInfo, len(history)),
	}
	s.convMu.Unlock()

	for i, t := range history {
		info.Turns[i] = turnInfo{Role: t.Role.String(), Content: t.Content}
	}
	return jsonResource(req.Params.URI, info, "conversation")
}

func (s *Server) handleKnowledgeResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats := s.ports.Knowledge.Stats()
	info := StatsOutput{
		Count:   stats.Count,
		Status:  stats.Status,
		BuiltAt: stats.BuiltAt,
		Sources: stats.Sources,
	}
	return jsonResource(req.Params.URI, info, "knowledge")
}

func jsonResource(uri string, v any, what string) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", what, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
