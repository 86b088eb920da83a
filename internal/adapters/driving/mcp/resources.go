package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/bootman/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for bootman resources.
	uriScheme = "bootman://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "document",
		Name:        "document",
		Description: "The deployment compose document as stored on disk",
		MIMEType:    "application/yaml",
	}, s.handleDocumentResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "fields",
		Name:        "fields",
		Description: "Editable deployment settings with secrets masked",
		MIMEType:    "application/json",
	}, s.handleFieldsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "fields/{key}",
		Name:        "field-value",
		Description: "Display value of a single deployment setting",
		MIMEType:    "text/plain",
	}, s.handleFieldValueResource)
}

// handleDocumentResource returns the raw document text.
func (s *Server) handleDocumentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	path := s.ports.Configuration.DocumentPath()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/yaml",
			Text:     string(data),
		}},
	}, nil
}

// handleFieldsResource returns the masked field list.
func (s *Server) handleFieldsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	out, err := s.fields(false)
	if err != nil {
		return nil, fmt.Errorf("reading fields: %w", err)
	}

	data, err := json.MarshalIndent(out.Fields, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling fields: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleFieldValueResource returns one field's display value. Secrets are masked.
func (s *Server) handleFieldValueResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	key := extractFieldKey(req.Params.URI)
	if key == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	field, ok := s.ports.Configuration.Schema().Field(key)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	value, err := s.ports.Configuration.Get(key)
	if err != nil {
		return nil, fmt.Errorf("reading field %s: %w", key, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     domain.FieldValue{Field: field, Value: value}.Masked(),
		}},
	}, nil
}

// extractFieldKey extracts the key from a URI like bootman://fields/{key}.
func extractFieldKey(uri string) string {
	const prefix = uriScheme + "fields/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
