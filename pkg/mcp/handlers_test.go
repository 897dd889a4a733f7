package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/infograph/pkg/db"
	"github.com/unowned-ai/infograph/pkg/infographic"
	"github.com/unowned-ai/infograph/pkg/notebooks"
)

type staticPages struct{ text string }

func (p staticPages) FetchPage(context.Context, string) (string, error) { return p.text, nil }

type staticTranscripts struct{ text string }

func (p staticTranscripts) FetchTranscript(context.Context, string) (string, error) {
	return p.text, nil
}

func setupTestDeps(t *testing.T) Deps {
	t.Helper()

	conn, err := db.OpenDBConnection(":memory:", false, "NORMAL")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	store := notebooks.NewSQLStore(conn, "test", nil)
	require.NoError(t, store.Init(context.Background()))

	manager := notebooks.NewManager(store, nil, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = manager.Close(ctx)
	})

	gen, err := infographic.NewGenerator(nil)
	require.NoError(t, err)

	return Deps{
		Manager:     manager,
		Generator:   gen,
		Pages:       staticPages{text: "The Danube flows through ten European countries."},
		Transcripts: staticTranscripts{text: "Welcome to this video about rivers and deltas."},
	}
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func decodeView(t *testing.T, res *mcp.CallToolResult) notebookView {
	t.Helper()
	require.False(t, res.IsError, text(t, res))
	var v notebookView
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &v))
	return v
}

func TestPingHandler(t *testing.T) {
	res := call(t, pingHandler, nil)
	assert.Equal(t, "pong_infograph", text(t, res))
}

func TestNotebookTools(t *testing.T) {
	deps := setupTestDeps(t)

	created := decodeView(t, call(t, createNotebookHandler(deps), map[string]interface{}{"name": "Trip"}))
	assert.Equal(t, "Trip", created.Name)
	assert.Equal(t, 0, created.SourceCount)

	got := decodeView(t, call(t, getNotebookHandler(deps), map[string]interface{}{"notebook_id": float64(created.ID)}))
	assert.Equal(t, created.ID, got.ID)

	renamed := decodeView(t, call(t, renameNotebookHandler(deps), map[string]interface{}{
		"notebook_id": float64(created.ID),
		"name":        "Trip 2024",
	}))
	assert.Equal(t, "Trip 2024", renamed.Name)

	res := call(t, renameNotebookHandler(deps), map[string]interface{}{"notebook_id": float64(created.ID), "name": ""})
	assert.True(t, res.IsError)

	list := call(t, listNotebooksHandler(deps), nil)
	var views []notebookView
	require.NoError(t, json.Unmarshal([]byte(text(t, list)), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Trip 2024", views[0].Name)

	res = call(t, deleteNotebookHandler(deps), map[string]interface{}{"notebook_id": float64(created.ID)})
	assert.False(t, res.IsError)

	res = call(t, getNotebookHandler(deps), map[string]interface{}{"notebook_id": float64(created.ID)})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "not found")
}

func TestNotebookIDArgument(t *testing.T) {
	deps := setupTestDeps(t)

	for _, args := range []map[string]interface{}{
		nil,
		{"notebook_id": 1.5},
		{"notebook_id": float64(-3)},
		{"notebook_id": "abc"},
		{"notebook_id": true},
	} {
		res := call(t, getNotebookHandler(deps), args)
		assert.True(t, res.IsError, "%v", args)
	}

	created := decodeView(t, call(t, createNotebookHandler(deps), nil))
	got := decodeView(t, call(t, getNotebookHandler(deps), map[string]interface{}{"notebook_id": "1"}))
	assert.Equal(t, created.ID, got.ID)
}

func TestSourceTools(t *testing.T) {
	deps := setupTestDeps(t)
	nb := decodeView(t, call(t, createNotebookHandler(deps), map[string]interface{}{"name": "Rivers"}))
	id := float64(nb.ID)

	v := decodeView(t, call(t, addTextSourceHandler(deps), map[string]interface{}{
		"notebook_id": id,
		"content":     "Rivers carry sediment to the sea over centuries.",
	}))
	require.Len(t, v.Sources, 1)

	v = decodeView(t, call(t, addURLSourceHandler(deps), map[string]interface{}{
		"notebook_id": id,
		"url":         "https://example.com/danube",
	}))
	require.Len(t, v.Sources, 2)
	assert.Equal(t, notebooks.SourceURL, v.Sources[1].Type)

	v = decodeView(t, call(t, addYouTubeSourceHandler(deps), map[string]interface{}{
		"notebook_id": id,
		"url":         "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}))
	require.Len(t, v.Sources, 3)
	assert.Equal(t, "dQw4w9WgXcQ", v.Sources[2].Metadata[notebooks.MetaVideoID])

	res := call(t, addTextSourceHandler(deps), map[string]interface{}{"notebook_id": id, "content": "  "})
	assert.True(t, res.IsError)

	v = decodeView(t, call(t, removeSourceHandler(deps), map[string]interface{}{
		"notebook_id": id,
		"source_id":   v.Sources[0].ID.String(),
	}))
	assert.Len(t, v.Sources, 2)

	res = call(t, removeSourceHandler(deps), map[string]interface{}{"notebook_id": id, "source_id": "nope"})
	assert.True(t, res.IsError)
}

func TestGenerateInfographicTool(t *testing.T) {
	deps := setupTestDeps(t)
	nb := decodeView(t, call(t, createNotebookHandler(deps), map[string]interface{}{"name": "Trip"}))
	id := float64(nb.ID)

	res := call(t, generateInfographicHandler(deps), map[string]interface{}{"notebook_id": id})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "add at least one source")

	call(t, addTextSourceHandler(deps), map[string]interface{}{
		"notebook_id": id,
		"content":     "Paris is the capital of France. It has the Eiffel Tower.",
	})

	res = call(t, generateInfographicHandler(deps), map[string]interface{}{"notebook_id": id})
	require.False(t, res.IsError, text(t, res))
	require.Len(t, res.Content, 2)
	img, ok := res.Content[1].(mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "image/png", img.MIMEType)

	pngData, err := infographic.DecodeDataURL(infographic.DataURLPrefix + img.Data)
	require.NoError(t, err)
	assert.NotEmpty(t, pngData)

	got := decodeView(t, call(t, getNotebookHandler(deps), map[string]interface{}{"notebook_id": id}))
	assert.True(t, got.HasInfographic)
}
