package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unowned-ai/infograph/pkg/fetch"
	"github.com/unowned-ai/infograph/pkg/notebooks"
)

type countingPages struct {
	calls atomic.Int32
	fail  string
}

func (c *countingPages) FetchPage(_ context.Context, rawURL string) (string, error) {
	c.calls.Add(1)
	if rawURL == c.fail {
		return "", fetch.ErrContent
	}
	return "text of " + rawURL, nil
}

func TestParseNotebookID(t *testing.T) {
	id, err := parseNotebookID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := parseNotebookID(bad)
		assert.Error(t, err, bad)
	}
}

func TestFetchPages(t *testing.T) {
	f := &countingPages{}
	urls := []string{"https://a.example/one", "https://b.example/two", "https://c.example/three"}

	pages, err := fetchPages(context.Background(), f, urls, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int32(3), f.calls.Load())

	for _, u := range urls {
		text, err := pages.FetchPage(context.Background(), u)
		require.NoError(t, err)
		assert.Equal(t, "text of "+u, text)
	}

	_, err = pages.FetchPage(context.Background(), "https://unknown.example")
	assert.ErrorIs(t, err, fetch.ErrContent)
}

func TestFetchPages_Failures(t *testing.T) {
	f := &countingPages{fail: "https://b.example/two"}
	_, err := fetchPages(context.Background(), f, []string{"https://a.example/one", "https://b.example/two"}, zap.NewNop())
	assert.ErrorIs(t, err, fetch.ErrContent)

	_, err = fetchPages(context.Background(), &countingPages{}, []string{"ftp://files.example"}, zap.NewNop())
	assert.ErrorIs(t, err, fetch.ErrInvalidURL)
}

func TestSourceError(t *testing.T) {
	err := sourceError(7, notebooks.ErrNotFound)
	assert.EqualError(t, err, "notebook not found: 7")

	storage := errors.New("disk gone")
	assert.ErrorIs(t, sourceError(7, storage), storage)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", preview("a\n\n b\tc", 10))
	assert.Equal(t, "abcdefg...", preview("abcdefghijklmnop", 10))
}
