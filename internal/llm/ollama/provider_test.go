package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rrens/pain-mapper/internal/config"
	"github.com/Rrens/pain-mapper/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Invoke(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"{\"suggestions\":[]}","done":true,"eval_count":7}`))
	}))
	defer srv.Close()

	p := NewProvider(config.OllamaConfig{Host: srv.URL}, time.Second)

	resp, err := p.Invoke(context.Background(), llm.Request{
		Prompt:            "prompt",
		SystemInstruction: "system",
		Schema:            llm.SuggestionsSchema(),
		Model:             "qwen2.5",
	})
	require.NoError(t, err)

	assert.Equal(t, `{"suggestions":[]}`, resp.Content)
	assert.Equal(t, "qwen2.5", resp.Model)
	assert.Equal(t, 7, resp.TokensUsed)

	assert.Equal(t, "system", got["system"])
	assert.Equal(t, false, got["stream"])
	format, ok := got["format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", format["type"])
}

func TestProvider_Defaults(t *testing.T) {
	p := NewProvider(config.OllamaConfig{}, 0)
	assert.Equal(t, "ollama", p.Name())
	assert.Equal(t, "llama3.1", p.DefaultModel())
	assert.False(t, p.IsConfigured())
}
