package speech

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/pain-mapper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElevenLabs_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/speech-to-text", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("xi-api-key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "scribe_v2", r.FormValue("model_id"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, []byte("audio-bytes"), data)
		assert.Equal(t, "audio/webm", hdr.Header.Get("Content-Type"))

		_, _ = w.Write([]byte(`{"text":"my lower back hurts"}`))
	}))
	defer srv.Close()

	e := NewElevenLabs(config.ElevenLabsConfig{APIKey: "secret"})
	e.baseURL = srv.URL

	text, err := e.Transcribe(context.Background(), []byte("audio-bytes"), "audio/webm")
	require.NoError(t, err)
	assert.Equal(t, "my lower back hurts", text)
}

func TestElevenLabs_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusUnauthorized)
	}))
	defer srv.Close()

	e := NewElevenLabs(config.ElevenLabsConfig{APIKey: "secret"})
	e.baseURL = srv.URL

	_, err := e.Transcribe(context.Background(), []byte("x"), "audio/webm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestElevenLabs_NotConfigured(t *testing.T) {
	_, err := NewElevenLabs(config.ElevenLabsConfig{}).Transcribe(context.Background(), []byte("x"), "audio/webm")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	tr, err := New(config.SpeechConfig{})
	require.NoError(t, err)
	assert.Equal(t, "elevenlabs", tr.Name())

	tr, err = New(config.SpeechConfig{Provider: "gemini"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", tr.Name())

	_, err = New(config.SpeechConfig{Provider: "whisper"})
	assert.Error(t, err)
}
