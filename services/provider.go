package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ImageProvider asks an external generator for exactly one square image and
// returns the URL where the result can be downloaded.
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// OpenAIImageClient calls any OpenAI-compatible /v1/images/generations
// endpoint. The client timeout bounds the whole provider call; a hung
// upstream cannot stall a request forever.
type OpenAIImageClient struct {
	baseURL    string
	apiKey     string
	model      string
	size       string
	quality    string
	httpClient *http.Client
}

// NewOpenAIImageClient builds an image provider client.
// baseURL should include the /v1 prefix, e.g. "https://api.openai.com/v1".
func NewOpenAIImageClient(baseURL, apiKey, model, size, quality string, timeout time.Duration) *OpenAIImageClient {
	return &OpenAIImageClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		size:    size,
		quality: quality,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateImage implements ImageProvider using the OpenAI images API.
func (c *OpenAIImageClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	reqBody := imageRequest{
		Model:   c.model,
		Prompt:  prompt,
		N:       1,
		Size:    c.size,
		Quality: c.quality,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp providerErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return "", fmt.Errorf("image provider error: %s", errResp.Error.Message)
		}
		return "", fmt.Errorf("image provider error: %s", resp.Status)
	}

	var imgResp imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&imgResp); err != nil {
		return "", fmt.Errorf("image provider decode: %w", err)
	}
	if len(imgResp.Data) == 0 || imgResp.Data[0].URL == "" {
		return "", fmt.Errorf("image provider returned no image URL")
	}
	return imgResp.Data[0].URL, nil
}

// OpenAI-compatible request/response types.

type imageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality,omitempty"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

type providerErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
