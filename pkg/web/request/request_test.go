package request

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
	"github.com/dosanma1/forge-sub000/pkg/web/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	jsonapi.Model
	Text string
}

func newEncoder(t *testing.T) *jsonapi.Encoder {
	t.Helper()
	reg := jsonapi.NewRegistry()
	require.NoError(t, reg.Register(jsonapi.NewSchema[*note]("notes").
		Attribute("text", func(n *note) any { return n.Text })))
	return jsonapi.NewEncoder(reg)
}

func decodeBody(t *testing.T, req *http.Request) map[string]map[string]any {
	t.Helper()
	data, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestNewRequest(t *testing.T) {
	enc := newEncoder(t)
	n := &note{Model: jsonapi.NewModel("notes", jsonapi.WithID("n1")), Text: "hi"}
	ctx := context.Background()

	t.Run("POST strips the id", func(t *testing.T) {
		req, err := NewRequest(ctx, enc, http.MethodPost, "http://api.test/notes", n)
		require.NoError(t, err)

		assert.Equal(t, response.JSONAPIMediaType, req.Header.Get("Content-Type"))
		assert.Equal(t, response.JSONAPIMediaType, req.Header.Get("Accept"))

		doc := decodeBody(t, req)
		assert.NotContains(t, doc["data"], "id")
		assert.Equal(t, "notes", doc["data"]["type"])
	})

	t.Run("PATCH keeps the id", func(t *testing.T) {
		req, err := NewRequest(ctx, enc, http.MethodPatch, "http://api.test/notes/n1", n)
		require.NoError(t, err)
		assert.Equal(t, "n1", decodeBody(t, req)["data"]["id"])
	})

	t.Run("options override the method preset", func(t *testing.T) {
		req, err := NewRequest(ctx, enc, http.MethodPost, "http://api.test/notes", n, jsonapi.ForUpdate(),
			jsonapi.WithMeta(map[string]any{"dryRun": true}))
		require.NoError(t, err)

		doc := decodeBody(t, req)
		assert.Equal(t, "n1", doc["data"]["id"])
		assert.Equal(t, true, doc["meta"]["dryRun"])
	})

	t.Run("DELETE without resource has no body", func(t *testing.T) {
		req, err := NewRequest(ctx, enc, http.MethodDelete, "http://api.test/notes/n1", nil)
		require.NoError(t, err)
		assert.Nil(t, req.Body)
		assert.Empty(t, req.Header.Get("Content-Type"))
	})

	t.Run("unsupported method", func(t *testing.T) {
		_, err := NewRequest(ctx, enc, http.MethodOptions, "http://api.test/notes", n)
		assert.ErrorIs(t, err, jsonapi.ErrUnknownMode)
	})
}
