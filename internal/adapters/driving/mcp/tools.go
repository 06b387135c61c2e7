package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

// defaultSearchK is the number of chunks returned when the caller sets none.
const defaultSearchK = 3

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the customer's question"`
	UseRAG   *bool  `json:"use_rag,omitempty" jsonschema:"ground this answer in the knowledge base; later calls keep the current setting"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer string `json:"answer"`
	RAG    bool   `json:"rag"`
	Turns  int    `json:"turns"`
}

// SearchInput is the input schema for the knowledge_search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"words to match against knowledge base chunks"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of chunks to return (default 3)"`
}

// SearchOutput is the output schema for the knowledge_search tool.
type SearchOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunkOutput is one ranked knowledge base chunk.
type ChunkOutput struct {
	Score   int    `json:"score"`
	Source  string `json:"source,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// BuildInput is the input schema for the knowledge_build tool.
type BuildInput struct {
	Sources    []string `json:"sources" jsonschema:"file paths and URLs to load; replaces the knowledge base"`
	JavaScript bool     `json:"javascript,omitempty" jsonschema:"render web pages in a headless browser"`
}

// BuildOutput is the output schema for the knowledge_build tool.
type BuildOutput struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	ChunkCount    int      `json:"chunk_count"`
	DocumentCount int      `json:"document_count"`
	Notices       []string `json:"notices,omitempty"`
}

// StatsOutput is the output schema for the knowledge_stats tool.
type StatsOutput struct {
	Count   int       `json:"count"`
	Status  string    `json:"status"`
	BuiltAt time.Time `json:"built_at,omitzero"`
	Sources []string  `json:"sources,omitempty"`
}

// EmptyInput is the input schema for tools without arguments.
type EmptyInput struct{}

// StatusOutput reports the outcome of an action tool.
type StatusOutput struct {
	Message string `json:"message"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask the support assistant a question; the conversation history is kept between calls",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "knowledge_search",
		Description: "Find the knowledge base chunks that share the most words with a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "knowledge_build",
		Description: "Replace the knowledge base with documents loaded from files and URLs",
	}, s.handleBuild)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "knowledge_stats",
		Description: "Report how many chunks the knowledge base holds and where they came from",
	}, s.handleStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "knowledge_clear",
		Description: "Empty the knowledge base and stop using it for answers",
	}, s.handleClear)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "conversation_reset",
		Description: "Forget the conversation history",
	}, s.handleReset)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if input.Question == "" {
		return nil, AskOutput{}, errors.New("question is required")
	}

	s.convMu.Lock()
	defer s.convMu.Unlock()

	// use_rag applies to this call only.
	rag := s.ports.Conversation.RAGEnabled()
	if input.UseRAG != nil && *input.UseRAG != rag {
		s.ports.Conversation.SetRAGEnabled(*input.UseRAG)
		defer s.ports.Conversation.SetRAGEnabled(rag)
		rag = *input.UseRAG
	}
	reply, err := s.ports.Voice.Query(ctx, input.Question, false)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{
		Answer: reply.Text,
		RAG:    rag,
		Turns:  len(s.ports.Conversation.History()),
	}, nil
}

func (s *Server) handleSearch(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	k := input.K
	if k <= 0 {
		k = defaultSearchK
	}

	results := s.ports.Knowledge.Search(input.Query, k)
	output := SearchOutput{
		Results: make([]ChunkOutput, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		title, _ := r.Chunk.Metadata[domain.MetaTitle].(string)
		output.Results[i] = ChunkOutput{
			Score:   r.Score,
			Source:  r.Chunk.Source(),
			Title:   title,
			Content: r.Chunk.Content,
		}
	}
	return nil, output, nil
}

func (s *Server) handleBuild(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildInput,
) (*mcp.CallToolResult, BuildOutput, error) {
	if len(input.Sources) == 0 {
		return nil, BuildOutput{}, errors.New("at least one source is required")
	}
	mode := domain.RenderStatic
	if input.JavaScript {
		mode = domain.RenderJavaScript
	}

	result, err := s.ports.Knowledge.Build(ctx, input.Sources, mode)
	if err != nil {
		return nil, BuildOutput{}, err
	}

	output := BuildOutput{
		Success:       result.Success,
		Message:       result.Message,
		ChunkCount:    result.ChunkCount,
		DocumentCount: result.DocumentCount,
	}
	for _, n := range result.Notices {
		output.Notices = append(output.Notices, n.Message)
	}
	return nil, output, nil
}

func (s *Server) handleStats(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats := s.ports.Knowledge.Stats()
	return nil, StatsOutput{
		Count:   stats.Count,
		Status:  stats.Status,
		BuiltAt: stats.BuiltAt,
		Sources: stats.Sources,
	}, nil
}

func (s *Server) handleClear(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	s.convMu.Lock()
	defer s.convMu.Unlock()

	if err := s.ports.Conversation.ClearKnowledge(ctx); err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{Message: "Knowledge base cleared"}, nil
}

func (s *Server) handleReset(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	s.convMu.Lock()
	defer s.convMu.Unlock()

	s.ports.Conversation.Reset()
	return nil, StatusOutput{Message: "Conversation reset"}, nil
}
