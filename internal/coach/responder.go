package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Responder produces the coach's answer to one user message.
type Responder interface {
	Reply(ctx context.Context, history []Message, text string) (string, error)
}

type CannedResponder struct{}

func (CannedResponder) Reply(context.Context, []Message, string) (string, error) {
	return CannedReply, nil
}

// HTTPResponder forwards the conversation to a remote coach agent.
type HTTPResponder struct {
	URL    string
	Client *http.Client
}

type agentRequest struct {
	Message string    `json:"message"`
	History []Message `json:"history"`
}

type agentResponse struct {
	Reply string `json:"reply"`
}

func NewHTTPResponder(url string) *HTTPResponder {
	return &HTTPResponder{URL: url, Client: &http.Client{Timeout: 15 * time.Second}}
}

func (h *HTTPResponder) Reply(ctx context.Context, history []Message, text string) (string, error) {
	body, err := json.Marshal(agentRequest{Message: text, History: history})
	if err != nil {
		return "", fmt.Errorf("failed to marshal coach request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create coach request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach coach agent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("coach agent status %d: %s", resp.StatusCode, msg)
	}
	var out agentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode coach reply: %w", err)
	}
	return out.Reply, nil
}
