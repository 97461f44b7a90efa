// Package mcp provides an MCP (Model Context Protocol) server adapter for
// pharmacy-rag. It lets chatbot front ends and AI assistants call the
// retrieval pipeline as tools.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
