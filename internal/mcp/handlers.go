package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/gemshot/internal/errors"
	"github.com/hpungsan/gemshot/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env ops.Env
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env ops.Env) *Handlers {
	return &Handlers{env: env}
}

// Request types for each tool

// ListRequest represents the arguments for entry_list.
type ListRequest struct {
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// GetRequest represents the arguments for entry_get.
type GetRequest struct {
	ID string `json:"id"`
}

// SaveRequest represents the arguments for entry_save.
type SaveRequest struct {
	Title           string `json:"title,omitempty"`
	Type            string `json:"type,omitempty"`
	Universe        string `json:"universe,omitempty"`
	Project         string `json:"project,omitempty"`
	Client          string `json:"client,omitempty"`
	Role            string `json:"role,omitempty"`
	Tags            string `json:"tags,omitempty"`
	Notes           string `json:"notes,omitempty"`
	AIAnalysis      string `json:"ai_analysis,omitempty"`
	Deadline        string `json:"deadline,omitempty"`
	RelatedFile     string `json:"related_file,omitempty"`
	Software        string `json:"software,omitempty"`
	Source          string `json:"source,omitempty"`
	TargetOverride  string `json:"target_override,omitempty"`
	ImagePath       string `json:"image_path,omitempty"`
	KeepImage       bool   `json:"keep_image,omitempty"`
	ComplexityLevel string `json:"complexity_level,omitempty"`
}

// RouteRequest represents the arguments for vault_route.
type RouteRequest struct {
	Universe       string `json:"universe,omitempty"`
	Project        string `json:"project,omitempty"`
	TargetOverride string `json:"target_override,omitempty"`
}

// RecoverRequest represents the arguments for vault_recover.
type RecoverRequest struct {
	Path     string `json:"path,omitempty"`
	Title    string `json:"title,omitempty"`
	Universe string `json:"universe,omitempty"`
	Project  string `json:"project,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

// RegistryRequest represents the arguments for registry_list and registry_add.
type RegistryRequest struct {
	Collection string `json:"collection"`
	Name       string `json:"name,omitempty"`
}

// Handler implementations

// HandleList handles the entry_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.List(h.env, ops.ListInput{
		Query:    input.Query,
		Category: input.Category,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGet handles the entry_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Get(h.env, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSave handles the entry_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Save(ctx, h.env, ops.SaveInput{
		Title:           input.Title,
		Type:            input.Type,
		Universe:        input.Universe,
		Project:         input.Project,
		Client:          input.Client,
		Role:            input.Role,
		Tags:            input.Tags,
		Notes:           input.Notes,
		AIAnalysis:      input.AIAnalysis,
		Deadline:        input.Deadline,
		RelatedFile:     input.RelatedFile,
		Software:        input.Software,
		Source:          input.Source,
		TargetOverride:  input.TargetOverride,
		ImagePath:       input.ImagePath,
		KeepImage:       input.KeepImage,
		ComplexityLevel: input.ComplexityLevel,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRoute handles the vault_route tool call.
func (h *Handlers) HandleRoute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RouteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.RouteFor(h.env, ops.RouteInput{
		Universe:       input.Universe,
		Project:        input.Project,
		TargetOverride: input.TargetOverride,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRecover handles the vault_recover tool call.
func (h *Handlers) HandleRecover(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecoverRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Recover(h.env, ops.RecoverInput{
		Path:     input.Path,
		Title:    input.Title,
		Universe: input.Universe,
		Project:  input.Project,
		Kind:     input.Kind,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRegistryList handles the registry_list tool call.
func (h *Handlers) HandleRegistryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RegistryRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	names, err := ops.ListCollection(h.env, input.Collection)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"collection": input.Collection,
		"names":      names,
	})
}

// HandleRegistryAdd handles the registry_add tool call.
func (h *Handlers) HandleRegistryAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RegistryRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.AddToCollection(ctx, h.env, input.Collection, input.Name)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are withheld since they may carry file paths.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if gErr, ok := err.(*errors.GemError); ok {
		errorObj := map[string]any{
			"code":    gErr.Code,
			"message": gErr.Message,
			"status":  gErr.Status,
		}
		if gErr.Code != errors.ErrInternal && gErr.Details != nil {
			errorObj["details"] = gErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
