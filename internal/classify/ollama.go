package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Generator is the narrow contract the classification service needs from a
// text-generation backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, []byte, error)
}

// OllamaClient calls the Ollama /api/generate endpoint.
type OllamaClient struct {
	baseURL     string
	model       string
	temperature float64
	topP        float64
	httpClient  *http.Client
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// NewOllamaClient builds an Ollama client with the given sampling parameters.
// Temperature is kept near zero so repeated calls converge on a single
// category name.
func NewOllamaClient(baseURL, model string, timeout time.Duration, temperature, topP float64) *OllamaClient {
	trimmedURL := strings.TrimRight(baseURL, "/")
	return &OllamaClient{
		baseURL:     trimmedURL,
		model:       model,
		temperature: temperature,
		topP:        topP,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Generate sends the prompt to Ollama and returns the generated text plus the
// raw response body.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, []byte, error) {
	reqBody := ollamaGenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: c.temperature,
			TopP:        c.topP,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, err
	}

	endpoint := fmt.Sprintf("%s/api/generate", c.baseURL)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}

	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", nil, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var apiErr ollamaGenerateResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
			return "", body, fmt.Errorf("ollama api error: %s", apiErr.Error)
		}
		return "", body, fmt.Errorf("ollama api error: %s", strings.TrimSpace(string(body)))
	}

	var parsed ollamaGenerateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", body, err
	}

	if strings.TrimSpace(parsed.Response) == "" {
		return "", body, errors.New("ollama response is empty")
	}

	return parsed.Response, body, nil
}
