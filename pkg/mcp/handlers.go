package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/unowned-ai/infograph/pkg/infographic"
	"github.com/unowned-ai/infograph/pkg/notebooks"
)

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the Infograph MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_infograph"), nil
}

// RegisterNotebookTools registers create, list, get, rename and delete for notebooks.
func RegisterNotebookTools(s *server.MCPServer, deps Deps) {
	s.AddTool(mcp.NewTool("create_notebook",
		mcp.WithDescription("Creates a new empty notebook."),
		mcp.WithString("name", mcp.Description("Optional name. Defaults to 'Notebook <date>'.")),
	), createNotebookHandler(deps))

	s.AddTool(mcp.NewTool("list_notebooks",
		mcp.WithDescription("Lists all notebooks, most recently updated first."),
	), listNotebooksHandler(deps))

	s.AddTool(mcp.NewTool("get_notebook",
		mcp.WithDescription("Retrieves a notebook with its sources."),
		mcp.WithNumber("notebook_id", mcp.Required(), mcp.Description("Id of the notebook.")),
	), getNotebookHandler(deps))

	s.AddTool(mcp.NewTool("rename_notebook",
		mcp.WithDescription("Renames a notebook."),
		mcp.WithNumber("notebook_id", mcp.Required(), mcp.Description("Id of the notebook.")),
		mcp.WithString("name", mcp.Required(), mcp.Description("New non-empty name.")),
	), renameNotebookHandler(deps))

	s.AddTool(mcp.NewTool("delete_notebook",
		mcp.WithDescription("Deletes a notebook together with its sources and infographic."),
		mcp.WithNumber("notebook_id", mcp.Required(), mcp.Description("Id of the notebook to delete.")),
	), deleteNotebookHandler(deps))
}

func createNotebookHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, _ := request.Params.Arguments["name"].(string)

		nb, err := deps.Manager.CreateNotebook(ctx, name)
		if err != nil {
			return toolError("create notebook", err), nil
		}
		return jsonResult(newNotebookView(nb, true)), nil
	}
}

func listNotebooksHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		all, err := deps.Manager.ListNotebooks(ctx)
		if err != nil {
			return toolError("list notebooks", err), nil
		}

		views := make([]notebookView, 0, len(all))
		for _, nb := range all {
			views = append(views, newNotebookView(nb, false))
		}
		return jsonResult(views), nil
	}
}

func getNotebookHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := notebookIDArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		nb, err := deps.Manager.GetNotebook(ctx, id)
		if err != nil {
			return toolError("get notebook", err), nil
		}
		return jsonResult(newNotebookView(nb, true)), nil
	}
}

func renameNotebookHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := notebookIDArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		name, _ := request.Params.Arguments["name"].(string)

		nb, err := deps.Manager.RenameNotebook(ctx, id, name)
		if err != nil {
			return toolError("rename notebook", err), nil
		}
		return jsonResult(newNotebookView(nb, false)), nil
	}
}

func deleteNotebookHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := notebookIDArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := deps.Manager.DeleteNotebook(ctx, id); err != nil {
			return toolError("delete notebook", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Notebook %d deleted successfully.", id)), nil
	}
}

// RegisterSourceTools registers the tools that add and remove sources.
func RegisterSourceTools(s *server.MCPServer, deps Deps) {
	s.AddTool(mcp.NewTool("add_text_source",
		mcp.WithDescription("Appends a pasted text source to a notebook."),
		mcp.WithNumber("notebook_id", mcp.Required(), mcp.Description("Id of the notebook.")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Non-empty text.")),
	), addTextSourceHandler(deps))

	s.AddTool(mcp.NewTool("add_url_source",
		mcp.WithDescription("Fetches a web page and appends its readable text to a notebook."),
		mcp.WithNumber("notebook_id", mcp.Required(), mcp.Description("Id of the notebook.")),
		mcp.WithString("url", mcp.Required(), mcp.Description("http or https URL of the page.")),
	), addURLSourceHandler(deps))

	s.AddTool(mcp.NewTool("add_youtube_source",
		mcp.WithDescription("Fetches a YouTube video's transcript and appends it to a notebook."),
		mcp.WithNumber("notebook_id", mcp.Required(), mcp.Description("Id of the notebook.")),
		mcp.WithString("url", mcp.Required(), mcp.Description("Video URL (watch, youtu.be or embed) or bare 11 character id.")),
	), addYouTubeSourceHandler(deps))

	s.AddTool(mcp.NewTool("remove_source",
		mcp.WithDescription("Removes a source from a notebook. Unknown source ids are ignored."),
		mcp.WithNumber("notebook_id", mcp.Required(), mcp.Description("Id of the notebook.")),
		mcp.WithString("source_id", mcp.Required(), mcp.Description("UUID of the source.")),
	), removeSourceHandler(deps))
}

func addTextSourceHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := notebookIDArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		content, _ := request.Params.Arguments["content"].(string)

		nb, err := deps.Manager.AddSource(ctx, id, notebooks.SourceInput{
			Type:    notebooks.SourceText,
			Content: content,
		})
		if err != nil {
			return toolError("add source", err), nil
		}
		return jsonResult(newNotebookView(nb, true)), nil
	}
}

func addURLSourceHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := notebookIDArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		rawURL, _ := request.Params.Arguments["url"].(string)

		nb, err := deps.Manager.AddURLSource(ctx, id, rawURL, deps.Pages)
		if err != nil {
			deps.Logger.Debug("add_url_source failed", zap.String("url", rawURL), zap.Error(err))
			return toolError("add url source", err), nil
		}
		return jsonResult(newNotebookView(nb, true)), nil
	}
}

func addYouTubeSourceHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := notebookIDArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ref, _ := request.Params.Arguments["url"].(string)

		nb, err := deps.Manager.AddYouTubeSource(ctx, id, ref, deps.Transcripts)
		if err != nil {
			deps.Logger.Debug("add_youtube_source failed", zap.String("ref", ref), zap.Error(err))
			return toolError("add youtube source", err), nil
		}
		return jsonResult(newNotebookView(nb, true)), nil
	}
}

func removeSourceHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := notebookIDArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sourceID, err := sourceIDArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		nb, err := deps.Manager.RemoveSource(ctx, id, sourceID)
		if err != nil {
			return toolError("remove source", err), nil
		}
		return jsonResult(newNotebookView(nb, true)), nil
	}
}

// RegisterGenerateInfographicTool registers generate_infographic, which
// returns the rendered PNG as image content.
func RegisterGenerateInfographicTool(s *server.MCPServer, deps Deps) {
	s.AddTool(mcp.NewTool("generate_infographic",
		mcp.WithDescription("Renders an infographic from a notebook's sources, stores it and returns the PNG."),
		mcp.WithNumber("notebook_id", mcp.Required(), mcp.Description("Id of the notebook.")),
	), generateInfographicHandler(deps))
}

func generateInfographicHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := notebookIDArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		nb, err := deps.Manager.GenerateInfographic(ctx, id, deps.Generator)
		if err != nil {
			return toolError("generate infographic", err), nil
		}

		payload := strings.TrimPrefix(nb.Infographic.Data, infographic.DataURLPrefix)
		summary := fmt.Sprintf("Infographic for notebook %d (%s) generated at %s.",
			nb.ID, nb.Name, nb.Infographic.Generated.Format("2006-01-02 15:04:05"))
		return mcp.NewToolResultImage(summary, payload, "image/png"), nil
	}
}
