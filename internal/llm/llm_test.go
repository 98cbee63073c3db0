package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewAnthropicRequiresKey(t *testing.T) {
	_, err := NewAnthropic("  \n")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestAnthropicWriteStory(t *testing.T) {
	var got request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"content":[{"type":"text","text":"  Wolverine hugs a child. 好\n"}],"stop_reason":"end_turn"}`)
	}))
	defer srv.Close()

	a, err := NewAnthropic("sk-test\n",
		WithBaseURL(srv.URL),
		WithSystem("be brief"),
		WithTemperature(0.3),
		WithMaxTokens(120),
		WithModel(""),
	)
	require.NoError(t, err)

	story, err := a.WriteStory(context.Background(), "tell me")
	require.NoError(t, err)
	assert.Equal(t, "Wolverine hugs a child. 好", story)

	assert.Equal(t, defaultAnthropicModel, got.Model)
	assert.Equal(t, 120, got.MaxTokens)
	assert.Equal(t, "be brief", got.System)
	assert.InDelta(t, 0.3, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, message{Role: "user", Content: "tell me"}, got.Messages[0])
}

func TestAnthropicErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"api error", http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, nil},
		{"bad status", http.StatusBadGateway, `{}`, nil},
		{"not json", http.StatusOK, `<html>`, nil},
		{"empty", http.StatusOK, `{"content":[]}`, ErrEmptyResponse},
		{"refusal", http.StatusOK, `{"content":[],"stop_reason":"refusal"}`, ErrContentBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			a, err := NewAnthropic("sk-test", WithBaseURL(srv.URL))
			require.NoError(t, err)

			_, err = a.WriteStory(context.Background(), "p")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestAnthropicHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	a, err := NewAnthropic("sk-test", WithBaseURL(srv.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.WriteStory(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeModels struct {
	content      *genai.GenerateContentResponse
	images       *genai.GenerateImagesResponse
	err          error
	gotModel     string
	gotConfig    *genai.GenerateContentConfig
	gotImageConf *genai.GenerateImagesConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotConfig = config
	return f.content, f.err
}

func (f *fakeModels) GenerateImages(_ context.Context, model string, _ string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.gotModel = model
	f.gotImageConf = config
	return f.images, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGeminiWriteStory(t *testing.T) {
	f := &fakeModels{content: textResponse(" A story. 好 ")}
	g := newGemini(f, GeminiConfig{System: "be brief", Temperature: 0.5})

	story, err := g.WriteStory(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "A story. 好", story)
	assert.Equal(t, defaultGeminiModel, f.gotModel)
	require.NotNil(t, f.gotConfig.Temperature)
	assert.InDelta(t, 0.5, *f.gotConfig.Temperature, 1e-6)
	assert.Equal(t, int32(defaultMaxTokens), f.gotConfig.MaxOutputTokens)
	assert.NotNil(t, f.gotConfig.SystemInstruction)
}

func TestGeminiWriteStoryErrors(t *testing.T) {
	blocked := textResponse("")
	blocked.Candidates[0].FinishReason = genai.FinishReasonSafety

	tests := []struct {
		name    string
		models  *fakeModels
		wantErr error
	}{
		{"transport", &fakeModels{err: errors.New("boom")}, nil},
		{"nil response", &fakeModels{}, ErrEmptyResponse},
		{"no candidates", &fakeModels{content: &genai.GenerateContentResponse{}}, ErrEmptyResponse},
		{"safety", &fakeModels{content: blocked}, ErrContentBlocked},
		{"blank", &fakeModels{content: textResponse("   ")}, ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newGemini(tt.models, GeminiConfig{}).WriteStory(context.Background(), "p")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestGeminiPaintImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	f := &fakeModels{images: &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{ImageBytes: png}}},
	}}
	g := newGemini(f, GeminiConfig{ImageModel: "imagen-test"})

	data, err := g.PaintImage(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, png, data)
	assert.Equal(t, "imagen-test", f.gotModel)
	assert.Equal(t, int32(1), f.gotImageConf.NumberOfImages)
}

func TestGeminiPaintImageErrors(t *testing.T) {
	filtered := &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{RAIFilteredReason: "text in image"}},
	}
	g := newGemini(&fakeModels{images: filtered}, GeminiConfig{})
	_, err := g.PaintImage(context.Background(), "p")
	assert.ErrorIs(t, err, ErrContentBlocked)

	g = newGemini(&fakeModels{images: &genai.GenerateImagesResponse{}}, GeminiConfig{})
	_, err = g.PaintImage(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNew(t *testing.T) {
	w, p, err := New(context.Background(), Options{Provider: "none"})
	require.NoError(t, err)
	assert.Nil(t, w)
	assert.Nil(t, p)

	w, p, err = New(context.Background(), Options{Provider: "anthropic", AnthropicKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &Anthropic{}, w)
	assert.Nil(t, p)

	_, _, err = New(context.Background(), Options{Provider: "anthropic"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, _, err = New(context.Background(), Options{Provider: "gemini"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, _, err = New(context.Background(), Options{Provider: "openai"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
