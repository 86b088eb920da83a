package mcp

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/bootman/internal/core/domain"
)

// ListFieldsInput is the input schema for the list_fields tool.
type ListFieldsInput struct {
	Reveal bool `json:"reveal,omitempty" jsonschema:"show secret values instead of masking them"`
}

// FieldOutput represents one editable field of the deployment document.
type FieldOutput struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Group   string `json:"group"`
	Value   string `json:"value"`
	Default string `json:"default"`
	Secret  bool   `json:"secret,omitempty"`
}

// FieldsOutput is the output schema for tools returning the field list.
type FieldsOutput struct {
	Fields      []FieldOutput `json:"fields"`
	FrontendURL string        `json:"frontend_url"`
}

// SetFieldInput is the input schema for the set_field tool.
type SetFieldInput struct {
	Key   string `json:"key" jsonschema:"the field key, e.g. web.port"`
	Value string `json:"value" jsonschema:"the new display value"`
}

// NoInput is the input schema for tools without parameters.
type NoInput struct{}

// DeploymentOutput is the output schema for the deployment tools.
type DeploymentOutput struct {
	Status      string   `json:"status"`
	Running     bool     `json:"running"`
	FrontendURL string   `json:"frontend_url"`
	Output      []string `json:"output,omitempty"`
}

// UpdateOutput is the output schema for the check_update tool.
type UpdateOutput struct {
	CurrentVersion string `json:"current_version"`
	LatestVersion  string `json:"latest_version,omitempty"`
	Available      bool   `json:"available"`
	Error          string `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_fields",
		Description: "List the editable deployment settings and their current values",
	}, s.handleListFields)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_field",
		Description: "Change one deployment setting and re-derive dependent values",
	}, s.handleSetField)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset_fields",
		Description: "Reset every deployment setting to its default",
	}, s.handleResetFields)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "deployment_status",
		Description: "Report whether the deployment containers are running",
	}, s.handleDeploymentStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "start_deployment",
		Description: "Start the container runtime if needed and bring the deployment up",
	}, s.handleStartDeployment)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stop_deployment",
		Description: "Stop the deployment containers",
	}, s.handleStopDeployment)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_update",
		Description: "Check whether a newer boot manager release is published",
	}, s.handleCheckUpdate)
}

func (s *Server) handleListFields(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListFieldsInput,
) (*mcp.CallToolResult, FieldsOutput, error) {
	out, err := s.fields(input.Reveal)
	return nil, out, err
}

func (s *Server) handleSetField(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SetFieldInput,
) (*mcp.CallToolResult, FieldsOutput, error) {
	if err := s.ports.Configuration.Set(map[string]string{input.Key: input.Value}); err != nil {
		return nil, FieldsOutput{}, err
	}
	out, err := s.fields(false)
	return nil, out, err
}

func (s *Server) handleResetFields(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, FieldsOutput, error) {
	if err := s.ports.Configuration.Reset(); err != nil {
		return nil, FieldsOutput{}, err
	}
	out, err := s.fields(false)
	return nil, out, err
}

func (s *Server) handleDeploymentStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, DeploymentOutput, error) {
	if s.ports.Deployment == nil {
		return nil, DeploymentOutput{}, ErrDeploymentUnavailable
	}
	running, err := s.ports.Deployment.IsRunning(ctx)
	if err != nil {
		return nil, DeploymentOutput{}, err
	}
	return nil, DeploymentOutput{
		Status:      s.ports.Deployment.Status().String(),
		Running:     running,
		FrontendURL: s.ports.Configuration.FrontendURL(),
	}, nil
}

func (s *Server) handleStartDeployment(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, DeploymentOutput, error) {
	if s.ports.Deployment == nil {
		return nil, DeploymentOutput{}, ErrDeploymentUnavailable
	}
	return s.runDeployment(ctx, s.ports.Deployment.Start)
}

func (s *Server) handleStopDeployment(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, DeploymentOutput, error) {
	if s.ports.Deployment == nil {
		return nil, DeploymentOutput{}, ErrDeploymentUnavailable
	}
	return s.runDeployment(ctx, s.ports.Deployment.Stop)
}

func (s *Server) handleCheckUpdate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, UpdateOutput, error) {
	if s.ports.Update == nil {
		return nil, UpdateOutput{}, ErrUpdateUnavailable
	}

	session, err := s.ports.Update.Check(ctx)
	if err != nil {
		return nil, UpdateOutput{}, err
	}

	out := UpdateOutput{
		CurrentVersion: s.ports.Update.CurrentVersion(),
		LatestVersion:  session.LatestTag(),
		Available:      session.State == domain.UpdateAvailable,
	}
	if session.Err != nil {
		out.Error = session.Err.Error()
	}
	return nil, out, nil
}

func (s *Server) runDeployment(
	ctx context.Context,
	op func(context.Context, domain.OutputSink) error,
) (*mcp.CallToolResult, DeploymentOutput, error) {
	var (
		mu    sync.Mutex
		lines []string
	)
	sink := func(l domain.OutputLine) {
		mu.Lock()
		lines = append(lines, l.Text)
		mu.Unlock()
	}

	if err := op(ctx, sink); err != nil {
		return nil, DeploymentOutput{}, err
	}

	status := s.ports.Deployment.Status()
	return nil, DeploymentOutput{
		Status:      status.String(),
		Running:     status == domain.DeploymentRunning,
		FrontendURL: s.ports.Configuration.FrontendURL(),
		Output:      lines,
	}, nil
}

func (s *Server) fields(reveal bool) (FieldsOutput, error) {
	values, err := s.ports.Configuration.Read()
	if err != nil {
		return FieldsOutput{}, err
	}

	out := FieldsOutput{
		Fields:      make([]FieldOutput, len(values)),
		FrontendURL: s.ports.Configuration.FrontendURL(),
	}
	for i, v := range values {
		value := v.Masked()
		if reveal {
			value = v.Value
		}
		out.Fields[i] = FieldOutput{
			Key:     v.Field.Key,
			Label:   v.Field.Label,
			Group:   v.Field.Group,
			Value:   value,
			Default: v.Field.Default,
			Secret:  v.Field.Secret,
		}
	}
	return out, nil
}
