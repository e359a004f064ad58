package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spherical/legal-simplifier/internal/domain"
	"github.com/spherical/legal-simplifier/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		apiKey    string
		model     string
		wantModel string
	}{
		{
			name:      "valid api key and default model",
			apiKey:    "test-key",
			model:     "",
			wantModel: defaultModel,
		},
		{
			name:      "valid api key and custom model",
			apiKey:    "test-key",
			model:     "gemini-2.5-pro",
			wantModel: "gemini-2.5-pro",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.apiKey, tt.model)
			require.NotNil(t, client)
			assert.Equal(t, tt.wantModel, client.model)
			assert.Equal(t, defaultBaseURL, client.baseURL)
			assert.Zero(t, client.httpClient.Timeout)
		})
	}
}

func TestNewClient_TimeoutDoesNotMutateSuppliedClient(t *testing.T) {
	shared := &http.Client{}
	client := NewClient("k", "m", WithHTTPClient(shared), WithTimeout(5*time.Second))

	assert.Zero(t, shared.Timeout)
	assert.NotSame(t, shared, client.httpClient)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)

	// option order does not matter
	client = NewClient("k", "m", WithTimeout(time.Second), WithHTTPClient(shared))
	assert.Zero(t, shared.Timeout)
	assert.Equal(t, time.Second, client.httpClient.Timeout)

	client = NewClient("k", "m", WithHTTPClient(shared))
	assert.Same(t, shared, client.httpClient)
}

func TestClient_Endpoint(t *testing.T) {
	client := NewClient("k&y", "gemini-x", WithBaseURL("http://example.test/"))
	assert.Equal(t, "http://example.test/v1beta/models/gemini-x:generateContent?key=k%26y", client.endpoint())
}

func candidateBody(text string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
}

func TestClient_Generate_Success(t *testing.T) {
	var gotBody domain.GenerationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(candidateBody(`{"simplifiedText":"S","highlights":["a","b"]}`))
	}))
	defer server.Close()

	client := NewClient("secret", "test-model", WithBaseURL(server.URL))
	text, err := client.Generate(context.Background(), prompt.BuildSimplifyPrompt("doc"))

	require.NoError(t, err)
	assert.Equal(t, `{"simplifiedText":"S","highlights":["a","b"]}`, text)
	require.NotNil(t, gotBody.GenerationConfig)
	assert.Equal(t, "application/json", gotBody.GenerationConfig.ResponseMIMEType)
}

func TestClient_Generate_AnswerHasNoJSONConstraint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.NotContains(t, string(raw), "generationConfig")
		json.NewEncoder(w).Encode(candidateBody("42 days."))
	}))
	defer server.Close()

	client := NewClient("secret", "", WithBaseURL(server.URL))
	text, err := client.Generate(context.Background(), prompt.BuildAnswerPrompt("s", "q"))
	require.NoError(t, err)
	assert.Equal(t, "42 days.", text)
}

func TestClient_Generate_ErrorBodies(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "decodable error message",
			status:  http.StatusBadRequest,
			body:    `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			wantMsg: "API key not valid. Please pass a valid API key.",
		},
		{
			name:    "undecodable body",
			status:  http.StatusInternalServerError,
			body:    "<html>upstream exploded</html>",
			wantMsg: "API call failed",
		},
		{
			name:    "empty body",
			status:  http.StatusBadGateway,
			body:    "",
			wantMsg: "API call failed",
		},
		{
			name:    "json without message",
			status:  http.StatusTooManyRequests,
			body:    `{"error":{"code":429}}`,
			wantMsg: "API call failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient("secret", "m", WithBaseURL(server.URL))
			_, err := client.Generate(context.Background(), prompt.BuildAnswerPrompt("s", "q"))

			require.Error(t, err)
			var de *domain.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, domain.ErrorTypeGeneration, de.Type)
			assert.Equal(t, tt.wantMsg, de.Message)
		})
	}
}

func TestClient_Generate_NoContent(t *testing.T) {
	bodies := map[string]string{
		"no candidates":  `{"candidates":[]}`,
		"missing field":  `{}`,
		"null content":   `{"candidates":[{"finishReason":"SAFETY"}]}`,
		"no parts":       `{"candidates":[{"content":{"parts":[]}}]}`,
		"part w/o text":  `{"candidates":[{"content":{"parts":[{"inlineData":{}}]}}]}`,
		"empty text":     `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`,
		"null candidate": `{"candidates":[null]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			client := NewClient("secret", "m", WithBaseURL(server.URL))
			text, err := client.Generate(context.Background(), prompt.BuildAnswerPrompt("s", "q"))
			assert.Empty(t, text)
			assert.ErrorIs(t, err, domain.ErrNoContent)
		})
	}
}

func TestClient_Generate_MalformedSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient("secret", "m", WithBaseURL(server.URL))
	_, err := client.Generate(context.Background(), prompt.BuildAnswerPrompt("s", "q"))
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeGeneration))
	assert.NotErrorIs(t, err, domain.ErrNoContent)
}

func TestClient_Generate_MissingCredential(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := NewClient("  ", "m", WithBaseURL(server.URL))
	_, err := client.Generate(context.Background(), prompt.BuildAnswerPrompt("s", "q"))

	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestClient_Generate_SingleAttempt(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient("secret", "m", WithBaseURL(server.URL))
	_, err := client.Generate(context.Background(), prompt.BuildAnswerPrompt("s", "q"))

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Generate_TransportErrorRedactsKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient("super-secret-key", "m", WithBaseURL(server.URL), WithTimeout(20*time.Millisecond))
	_, err := client.Generate(context.Background(), prompt.BuildAnswerPrompt("s", "q"))

	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeGeneration))
	assert.NotContains(t, err.Error(), "super-secret-key")
}
