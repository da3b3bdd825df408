package llm_test

import (
	"testing"

	"github.com/Rrens/pain-mapper/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedProvider struct {
	stubProvider
	name       string
	configured bool
}

func (n *namedProvider) Name() string       { return n.name }
func (n *namedProvider) IsConfigured() bool { return n.configured }

func TestRouter(t *testing.T) {
	r := llm.NewRouter("gemini")
	r.RegisterProvider(&namedProvider{name: "gemini", configured: true})
	r.RegisterProvider(&namedProvider{name: "openai", configured: false})
	r.RegisterProvider(&namedProvider{name: "ollama", configured: true})

	p, err := r.GetProvider("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())

	_, err = r.GetProvider("openai")
	assert.Error(t, err)

	_, err = r.GetProvider("anthropic")
	assert.Error(t, err)

	assert.Equal(t, []string{"gemini", "ollama"}, r.ListProviders())

	infos := r.GetProvidersInfo()
	require.Len(t, infos, 3)
	assert.Equal(t, "gemini", infos[0].Name)
	assert.True(t, infos[0].Default)
	assert.Equal(t, "openai", infos[2].Name)
	assert.False(t, infos[2].Configured)
}
