package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type fakeDoer struct {
	status   int
	body     string
	err      error
	requests []*http.Request
	payloads []chatCompletionRequest
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		var payload chatCompletionRequest
		_ = json.Unmarshal(raw, &payload)
		f.payloads = append(f.payloads, payload)
	}
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(f.body)),
		Header:     make(http.Header),
	}, nil
}

func TestAIChatClientDefaults(t *testing.T) {
	t.Parallel()

	client := newAIChatClient(LLMConfig{Model: "llama3-70b-8192", APIKey: "k"})
	if client.baseURL != defaultLLMBaseURL {
		t.Fatalf("expected default base url, got %q", client.baseURL)
	}

	httpClient, ok := client.http.(*http.Client)
	if !ok {
		t.Fatalf("expected *http.Client, got %T", client.http)
	}
	if httpClient.Timeout < time.Minute {
		t.Fatalf("timeout too short: %v", httpClient.Timeout)
	}

	client.SetHTTPClient(nil)
	if _, ok := client.http.(*http.Client); !ok {
		t.Fatalf("expected *http.Client after reset, got %T", client.http)
	}

	client.SetBaseURL("https://llm.internal/v1/")
	if client.baseURL != "https://llm.internal/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", client.baseURL)
	}
}

func TestAIChatClientCompleteSendsRequest(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{body: `{"choices":[{"message":{"role":"assistant","content":"  stay strong  "}}],"usage":{"prompt_tokens":12,"completion_tokens":3}}`}
	client := newAIChatClient(LLMConfig{BaseURL: "https://llm.test/v1", Model: "m", APIKey: "secret"})
	client.SetHTTPClient(doer)

	resp, err := client.complete(bg, aiChatRequest{SystemPrompt: "sys", UserPrompt: "user", MaxTokens: 10, Temperature: 0.5})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if resp.Content != "stay strong" || resp.PromptTokens != 12 || resp.CompletionTokens != 3 {
		t.Fatalf("unexpected response: %#v", resp)
	}

	req := doer.requests[0]
	if req.URL.String() != "https://llm.test/v1/chat/completions" {
		t.Fatalf("unexpected endpoint %s", req.URL)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer secret" {
		t.Fatalf("unexpected authorization header %q", got)
	}

	payload := doer.payloads[0]
	if payload.Model != "m" || len(payload.Messages) != 2 || payload.MaxTokens != 10 {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	if payload.Messages[0].Role != "system" || payload.Messages[1].Content != "user" {
		t.Fatalf("unexpected messages: %#v", payload.Messages)
	}
}

func TestAIChatClientErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		apiKey  string
		doer    *fakeDoer
		wantErr string
	}{
		{name: "missing key", apiKey: "", doer: &fakeDoer{}, wantErr: ErrAIAPIKeyMissing.Error()},
		{name: "transport", apiKey: "k", doer: &fakeDoer{err: errors.New("boom")}, wantErr: "boom"},
		{name: "api error", apiKey: "k", doer: &fakeDoer{status: http.StatusTooManyRequests, body: `{"error":{"message":"rate limited"}}`}, wantErr: "rate limited"},
		{name: "no choices", apiKey: "k", doer: &fakeDoer{body: `{"choices":[]}`}, wantErr: "no choices"},
		{name: "bad json", apiKey: "k", doer: &fakeDoer{body: `not json`}, wantErr: "decode"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newAIChatClient(LLMConfig{APIKey: tt.apiKey})
			client.SetHTTPClient(tt.doer)

			_, err := client.complete(bg, aiChatRequest{UserPrompt: "x"})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
