package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/guardline/report-service/internal/config"
	apperrors "github.com/guardline/report-service/pkg/util"
)

// Exchange is the most recent prior (user, bot) pair carried along for
// minimal context.
type Exchange struct {
	UserText string
	BotText  string
}

// Backend sends one utterance upstream and returns the raw JSON envelope.
type Backend interface {
	Ask(ctx context.Context, userInput string, prev *Exchange) ([]byte, error)
}

type requestParam struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type chatRequest struct {
	Agent   string         `json:"agent"`
	Params  []requestParam `json:"params"`
	Options map[string]any `json:"options"`
}

// Client talks to the external conversational endpoint.
type Client struct {
	cfg        config.ChatConfig
	httpClient *http.Client
}

// NewClient constructs the upstream client with the configured timeout.
func NewClient(cfg config.ChatConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout()},
	}
}

// Ask performs one best-effort request. No retry: a failed send surfaces
// upstream so the caller can fall back.
func (c *Client) Ask(ctx context.Context, userInput string, prev *Exchange) ([]byte, error) {
	payload := chatRequest{
		Agent: c.cfg.Agent,
		Params: []requestParam{
			{Name: "userInput", Value: userInput},
		},
		Options: map[string]any{"stream": false},
	}
	if prev != nil {
		payload.Params = append(payload.Params,
			requestParam{Name: "previousUserInput", Value: prev.UserText},
			requestParam{Name: "previousBotReply", Value: prev.BotText},
		)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamError("chat backend unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamError("chat backend response unreadable", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewUpstreamError(
			fmt.Sprintf("chat backend returned status %d", resp.StatusCode), nil)
	}
	return raw, nil
}
