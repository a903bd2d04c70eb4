// Package ollama is a minimal client for an Ollama-compatible completion
// service: model listing, blocking completion, and incrementally streamed
// completion over newline-delimited JSON.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/berkgokcam/gddstudio/internal/errors"
)

// Client talks to one completion service base address.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base address.
// Generation requests carry no client-side timeout: long completions are
// expected, and cancellation is the caller's job via context.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Options tunes a generation request.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Model is one entry from the service's model list.
type Model struct {
	Name string `json:"name"`
}

// Request describes one completion call.
type Request struct {
	Model   string
	Prompt  string
	System  string
	Options Options
}

// Chunk is one streamed text increment plus the running total.
type Chunk struct {
	Delta string
	Total string
}

// wire types for the Ollama generate endpoint
type generateBody struct {
	Model   string      `json:"model"`
	Prompt  string      `json:"prompt"`
	System  string      `json:"system,omitempty"`
	Stream  bool        `json:"stream"`
	Options wireOptions `json:"options"`
}

type wireOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateFragment struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []Model `json:"models"`
}

// ListModels fetches the models available on the service.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewUnavailable(fmt.Errorf("GET /api/tags: %s", resp.Status))
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, errors.NewParse(fmt.Sprintf("invalid model list: %v", err))
	}
	return tags.Models, nil
}

// Generate issues one blocking completion and returns the full response text.
func (c *Client) Generate(ctx context.Context, genReq Request) (string, error) {
	resp, err := c.post(ctx, genReq, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var fragment generateFragment
	if err := json.NewDecoder(resp.Body).Decode(&fragment); err != nil {
		return "", errors.NewParse(fmt.Sprintf("invalid completion response: %v", err))
	}
	return fragment.Response, nil
}

// GenerateStream issues one streamed completion. Text increments arrive on
// the returned channel, which closes when the stream ends or ctx is
// cancelled. Malformed fragments are skipped without aborting the stream.
// An error is returned only when the stream could not be opened.
func (c *Client) GenerateStream(ctx context.Context, genReq Request) (<-chan Chunk, error) {
	resp, err := c.post(ctx, genReq, true)
	if err != nil {
		return nil, err
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		var total strings.Builder
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var fragment generateFragment
			if err := json.Unmarshal(line, &fragment); err != nil {
				// One bad fragment must not kill an otherwise-good stream.
				continue
			}
			if fragment.Response != "" {
				total.WriteString(fragment.Response)
				select {
				case out <- Chunk{Delta: fragment.Response, Total: total.String()}:
				case <-ctx.Done():
					return
				}
			}
			if fragment.Done {
				return
			}
		}
		// Read errors (including cancellation mid-body) end the stream; the
		// accumulated text already reached the consumer chunk by chunk.
	}()

	return out, nil
}

func (c *Client) post(ctx context.Context, genReq Request, stream bool) (*http.Response, error) {
	body := generateBody{
		Model:  genReq.Model,
		Prompt: genReq.Prompt,
		System: genReq.System,
		Stream: stream,
		Options: wireOptions{
			Temperature: genReq.Options.Temperature,
			NumPredict:  genReq.Options.MaxTokens,
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUnavailable(err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, errors.NewUnavailable(fmt.Errorf("POST /api/generate: %s: %s", resp.Status, msg))
	}
	return resp, nil
}

// Ping reports whether the service answers within the given timeout.
func (c *Client) Ping(timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, err := c.ListModels(ctx)
	return err == nil
}
