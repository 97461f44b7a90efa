package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

// uriScheme is the custom URI scheme for pharmacy-rag resources.
const uriScheme = "pharmacy://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "intents",
		Name:        "intents",
		Description: "Query intents the retrieval pipeline recognises, in detection order",
		MIMEType:    "application/json",
	}, s.handleIntentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "context/{query}",
		Name:        "query-context",
		Description: "Context block for a URL-escaped customer query",
		MIMEType:    "text/plain",
	}, s.handleContextResource)
}

// handleIntentsResource lists every intent with its template family.
func (s *Server) handleIntentsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type intentInfo struct {
		Name             string `json:"name"`
		CategoryEligible bool   `json:"category_eligible"`
		Template         string `json:"template"`
	}

	intents := domain.AllIntents()
	infos := make([]intentInfo, len(intents))
	for i, intent := range intents {
		infos[i] = intentInfo{
			Name:             intent.String(),
			CategoryEligible: intent.CategoryEligible(),
			Template:         templateFamily(intent),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling intents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleContextResource returns the context block for the query in the URI.
func (s *Server) handleContextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	query := extractQuery(req.Params.URI)
	if query == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	text, err := s.ports.Retrieval.GenerateContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generating context: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     text,
		}},
	}, nil
}

func templateFamily(intent domain.Intent) string {
	switch {
	case intent.IsMedication():
		return "medication"
	case intent.IsService():
		return "service"
	default:
		return "general"
	}
}

// extractQuery extracts the unescaped query from pharmacy://context/{query}.
func extractQuery(uri string) string {
	const prefix = uriScheme + "context/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	query, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(query)
}
