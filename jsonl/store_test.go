package jsonl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/jsonl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Load(t *testing.T) {
	t.Parallel()

	t.Run("loads valid report file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "report.jsonl")
		content := `{"index":0,"lines":3,"format_id":"json","confidence":0.9,"rendered_lines":5}
{"index":1,"lines":1,"confidence":0,"rendered_lines":0,"error":"render failed"}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		records, err := jsonl.NewStore().Load(path)

		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "json", records[0].FormatID)
		assert.InDelta(t, 0.9, records[0].Confidence, 1e-9)
		assert.Equal(t, "render failed", records[1].Error)
	})

	t.Run("returns empty slice for non-existent file", func(t *testing.T) {
		t.Parallel()

		records, err := jsonl.NewStore().Load("/nonexistent/path.jsonl")

		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("returns error for malformed JSON", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "bad.jsonl")
		require.NoError(t, os.WriteFile(path, []byte("{\"index\":0}\nnot valid json"), 0o644))

		_, err := jsonl.NewStore().Load(path)

		assert.ErrorContains(t, err, "line 2")
	})
}

func TestStore_Save(t *testing.T) {
	t.Parallel()

	t.Run("round trips through Load", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "report.jsonl")
		records := []prettify.DetectionRecord{
			{Index: 0, Lines: 2, FormatID: "diff", Confidence: 1, MatchedRules: []string{"diff_git_header"}, Rendered: 4},
			{Index: 1, Lines: 7},
		}

		store := jsonl.NewStore()
		require.NoError(t, store.Save(path, records))

		loaded, err := store.Load(path)
		require.NoError(t, err)
		assert.Equal(t, records, loaded)
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "report.jsonl")
		store := jsonl.NewStore()
		require.NoError(t, store.Save(path, []prettify.DetectionRecord{{Index: 0}, {Index: 1}}))
		require.NoError(t, store.Save(path, []prettify.DetectionRecord{{Index: 5}}))

		loaded, err := store.Load(path)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, 5, loaded[0].Index)
	})
}
