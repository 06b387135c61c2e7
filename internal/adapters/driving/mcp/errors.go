// Package mcp provides an MCP (Model Context Protocol) server adapter for
// voxdesk. It lets AI assistants ask the support assistant questions and
// manage its knowledge base.
package mcp

import "errors"

// Errors returned when required ports are missing.
var (
	ErrMissingVoiceService        = errors.New("mcp: voice service is required")
	ErrMissingConversationService = errors.New("mcp: conversation service is required")
	ErrMissingKnowledgeService    = errors.New("mcp: knowledge service is required")
)
