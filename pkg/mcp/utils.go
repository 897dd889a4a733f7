package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/unowned-ai/infograph/pkg/notebooks"
)

// notebookIDArg reads the required "notebook_id" argument. JSON numbers
// arrive as float64; numeric strings are accepted too.
func notebookIDArg(request mcp.CallToolRequest) (int64, error) {
	raw, ok := request.Params.Arguments["notebook_id"]
	if !ok {
		return 0, errors.New("'notebook_id' parameter is required")
	}
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || v <= 0 {
			return 0, fmt.Errorf("'notebook_id' must be a positive integer, got %v", v)
		}
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return 0, fmt.Errorf("'notebook_id' must be a positive integer, got %q", v)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("'notebook_id' must be a number, got %T", raw)
	}
}

func sourceIDArg(request mcp.CallToolRequest) (uuid.UUID, error) {
	raw, _ := request.Params.Arguments["source_id"].(string)
	if raw == "" {
		return uuid.Nil, errors.New("'source_id' parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("'source_id' is not a valid UUID: %v", err)
	}
	return id, nil
}

// toolError turns a service error into a tool-level error result.
func toolError(action string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, notebooks.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: notebook not found.", action))
	case errors.Is(err, notebooks.ErrValidation), errors.Is(err, notebooks.ErrNoSources):
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v.", action, err))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err))
	}
	return mcp.NewToolResultText(string(b))
}

// notebookView is the JSON shape returned to clients. The infographic image
// itself is only returned by generate_infographic.
type notebookView struct {
	ID                   int64              `json:"id"`
	Name                 string             `json:"name"`
	Created              time.Time          `json:"created"`
	Updated              time.Time          `json:"updated"`
	Sources              []notebooks.Source `json:"sources,omitempty"`
	SourceCount          int                `json:"source_count"`
	HasInfographic       bool               `json:"has_infographic"`
	InfographicGenerated *time.Time         `json:"infographic_generated,omitempty"`
}

func newNotebookView(nb notebooks.Notebook, withSources bool) notebookView {
	v := notebookView{
		ID:          nb.ID,
		Name:        nb.Name,
		Created:     nb.Created,
		Updated:     nb.Updated,
		SourceCount: len(nb.Sources),
	}
	if withSources {
		v.Sources = nb.Sources
	}
	if nb.Infographic != nil {
		v.HasInfographic = true
		generated := nb.Infographic.Generated
		v.InfographicGenerated = &generated
	}
	return v
}
