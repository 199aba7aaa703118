/* Copyright 2025 ResearchOS Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package llm is a client for OpenAI compatible chat completion APIs
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultURL is the Groq chat completions endpoint
	DefaultURL = "https://api.groq.com/openai/v1/chat/completions"
	// DefaultModel is the model used when none is configured
	DefaultModel = "llama-3.1-8b-instant"
)

// ErrNotConfigured is returned when no API key was provided
var ErrNotConfigured = errors.New("LLM API is not configured")

// Message is a single chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a completion request
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Completer returns the text completion for the request
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Client calls a chat completions endpoint over HTTP
type Client struct {
	URL        string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// New returns a client. It returns ErrNotConfigured if apiKey is empty.
func New(url, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if url == "" {
		url = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		URL:        url,
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// UpstreamError is returned for a non 2xx response
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded with %d: %s", e.StatusCode, e.Body)
}

// Complete sends the messages and returns the content of the first choice,
// which may be empty.
func (c *Client) Complete(ctx context.Context, r Request) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model:       c.Model,
		Messages:    r.Messages,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshalling payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "constructing request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	res, err := hc.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "making request")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return "", &UpstreamError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var resp completionResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return "", errors.Wrap(err, "decoding response")
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}
