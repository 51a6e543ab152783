package services

import (
	"context"
	"encoding/json"
	"errors"
	"lifeline/models"
	"lifeline/utils"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssistantReply(t *testing.T) {
	t.Run("json object inside prose", func(t *testing.T) {
		res := ParseAssistantReply("Sure:\n```json\n{\"type\":\"hospital\",\"summary\":\"Go to the nearest ER.\",\"emergency\":true}\n```")
		assert.Equal(t, "hospital", res.Type)
		assert.Equal(t, "Go to the nearest ER.", res.Summary)
		assert.True(t, res.Emergency)
		assert.NotEmpty(t, res.Raw)
	})

	t.Run("help", func(t *testing.T) {
		res := ParseAssistantReply("HELP")
		assert.Equal(t, SymptomTypeEmergency, res.Type)
		assert.True(t, res.Emergency)
	})

	t.Run("navigation", func(t *testing.T) {
		res := ParseAssistantReply("open Hospital Locator")
		assert.Equal(t, SymptomTypeNavigate, res.Type)
		assert.Equal(t, "hospitallocator", res.Summary)
	})

	t.Run("plain text", func(t *testing.T) {
		res := ParseAssistantReply("  Drink water and rest.  ")
		assert.Equal(t, SymptomTypeText, res.Type)
		assert.Equal(t, "Drink water and rest.", res.Summary)
	})
}

func TestSymptomCheckCallsChatCompletions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gemini-1.5-flash", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "I twisted my ankle", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"type\":\"first_aid\",\"summary\":\"Rest, ice, compress, elevate.\",\"severity\":\"Low\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	svc := NewSymptomService("test-key", srv.URL+"/v1", "gemini-1.5-flash")
	res, err := svc.Check(context.Background(), models.SymptomCheckRequest{Prompt: "I twisted my ankle"})
	require.NoError(t, err)

	assert.Equal(t, "first_aid", res.Type)
	assert.Equal(t, "Low", res.Severity)
	assert.False(t, res.Emergency)
}

func TestSymptomCheckDisabledWithoutKey(t *testing.T) {
	svc := NewSymptomService("", "", "gemini-1.5-flash")

	_, err := svc.Check(context.Background(), models.SymptomCheckRequest{Prompt: "headache"})
	assert.True(t, errors.Is(err, utils.ErrNotConfigured))
}
