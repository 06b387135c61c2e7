package openai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

func TestVoice(t *testing.T) {
	assert.Equal(t, goopenai.VoiceNova, voice("nova"))
	assert.Equal(t, goopenai.VoiceShimmer, voice("Shimmer"))
	assert.Equal(t, DefaultVoice, voice("en-US-JennyNeural"))
	assert.Equal(t, DefaultVoice, voice(""))
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, "en", language("en-US"))
	assert.Equal(t, "de", language("DE"))
	assert.Equal(t, "", language(""))
	assert.Equal(t, "", language("yue-CN"))
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewSynthesizer(Config{})
	assert.Error(t, err)

	_, err = NewTranscriber(Config{})
	assert.Error(t, err)
}

func TestSynthesizer_Synthesize(t *testing.T) {
	var path, auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3-fake-mp3"))
	}))
	defer server.Close()

	synth, err := NewSynthesizer(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1/"})
	require.NoError(t, err)

	audio, err := synth.Synthesize(context.Background(), "Our hours are 9 to 5.")

	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-fake-mp3"), audio)
	assert.Equal(t, "/v1/audio/speech", path)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "mp3", synth.Format())
}

func TestSynthesizer_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	synth, err := NewSynthesizer(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	_, err = synth.Synthesize(context.Background(), "hello")

	assert.Error(t, err)
}

type recorder struct {
	mu        sync.Mutex
	finalized []string
	end       *domain.RecognitionEnd
	done      chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{})}
}

func (r *recorder) handlers() driven.RecognitionHandlers {
	return driven.RecognitionHandlers{
		OnFinalized: func(text string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.finalized = append(r.finalized, text)
		},
		OnTerminal: func(end domain.RecognitionEnd) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.end = &end
			close(r.done)
		},
	}
}

func (r *recorder) wait(t *testing.T) domain.RecognitionEnd {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("no terminal event")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.end
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "question.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF-fake-wav"), 0600))
	return path
}

func TestTranscriber_File(t *testing.T) {
	var gotPath, gotLanguage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		gotLanguage = r.FormValue("language")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"What are your opening hours?"}`))
	}))
	defer server.Close()

	tr, err := NewTranscriber(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)
	tr.UseFile(writeAudio(t))

	rec := newRecorder()
	_, err = tr.StartSession(context.Background(), driven.RecognitionOptions{Language: "en-US"}, rec.handlers())
	require.NoError(t, err)

	end := rec.wait(t)
	assert.Equal(t, domain.RecognitionEndStopped, end.Reason)
	assert.NoError(t, end.Err)
	assert.Equal(t, []string{"What are your opening hours?"}, rec.finalized)
	assert.Equal(t, "/v1/audio/transcriptions", gotPath)
	assert.Equal(t, "en", gotLanguage)
}

func TestTranscriber_APIErrorCancels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer server.Close()

	tr, err := NewTranscriber(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)
	tr.UseFile(writeAudio(t))

	rec := newRecorder()
	_, err = tr.StartSession(context.Background(), driven.RecognitionOptions{}, rec.handlers())
	require.NoError(t, err)

	end := rec.wait(t)
	assert.Equal(t, domain.RecognitionEndCanceled, end.Reason)
	assert.True(t, errors.Is(end.Err, domain.ErrRecognitionCanceled))
	assert.Empty(t, rec.finalized)
}

func TestTranscriber_RequestStop(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	tr, err := NewTranscriber(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)
	tr.UseFile(writeAudio(t))

	rec := newRecorder()
	session, err := tr.StartSession(context.Background(), driven.RecognitionOptions{}, rec.handlers())
	require.NoError(t, err)
	require.NoError(t, session.RequestStop(context.Background()))

	end := rec.wait(t)
	assert.Equal(t, domain.RecognitionEndStopped, end.Reason)
	assert.Empty(t, rec.finalized)
}

func TestTranscriber_NoFile(t *testing.T) {
	tr, err := NewTranscriber(Config{APIKey: "sk-test"})
	require.NoError(t, err)

	_, err = tr.StartSession(context.Background(), driven.RecognitionOptions{}, driven.RecognitionHandlers{})
	assert.True(t, errors.Is(err, domain.ErrSpeechUnavailable))

	tr.UseFile(filepath.Join(t.TempDir(), "missing.wav"))
	_, err = tr.StartSession(context.Background(), driven.RecognitionOptions{}, driven.RecognitionHandlers{})
	assert.Error(t, err)
}
