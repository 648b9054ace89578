package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/okonev/gemchat/internal/config"
)

// Client talks to the Generative Language REST API. A separate client
// handles SSE calls: its responses stay unparsed so the body can be
// consumed as a stream.
type Client struct {
	http   *resty.Client
	stream *resty.Client
	cfg    config.GeminiConfig
}

// NewClient builds a client from configuration. The API key is validated
// per call, not here, so a fixed environment can be retried without a
// restart of the session.
func NewClient(cfg config.GeminiConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	streamClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetDoNotParseResponse(true)

	return &Client{http: httpClient, stream: streamClient, cfg: cfg}
}

func (c *Client) requireKey() error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (c *Client) generationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     c.cfg.Temperature,
		TopP:            c.cfg.TopP,
		MaxOutputTokens: c.cfg.MaxOutputTokens,
	}
}

func newGenerateRequest(systemPrompt string, parts []Part, genCfg GenerationConfig) generateContentRequest {
	req := generateContentRequest{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: genCfg,
	}
	if strings.TrimSpace(systemPrompt) != "" {
		req.SystemInstruction = &content{Parts: []Part{TextPart(systemPrompt)}}
	}
	return req
}

// GenerateContent sends one request and returns the extracted reply text.
func (c *Client) GenerateContent(ctx context.Context, model, systemPrompt string, parts []Part) (string, error) {
	if err := c.requireKey(); err != nil {
		return "", err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.cfg.APIKey).
		SetBody(newGenerateRequest(systemPrompt, parts, c.generationConfig())).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", model))
	if err != nil {
		return "", fmt.Errorf("calling gemini: %w", err)
	}

	raw := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return "", decodeAPIError(resp.StatusCode(), raw)
	}

	var decoded GenerateContentResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}

	return decoded.ExtractText(raw), nil
}

// StreamGenerateContent sends the same request in SSE mode, invoking
// onDelta for every text chunk, and returns the concatenated reply.
func (c *Client) StreamGenerateContent(ctx context.Context, model, systemPrompt string, parts []Part, onDelta func(string)) (string, error) {
	if err := c.requireKey(); err != nil {
		return "", err
	}

	resp, err := c.stream.R().
		SetContext(ctx).
		SetQueryParam("key", c.cfg.APIKey).
		SetQueryParam("alt", "sse").
		SetBody(newGenerateRequest(systemPrompt, parts, c.generationConfig())).
		Post(fmt.Sprintf("/v1beta/models/%s:streamGenerateContent", model))
	if err != nil {
		return "", fmt.Errorf("calling gemini stream: %w", err)
	}

	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		raw, _ := io.ReadAll(body)
		return "", decodeAPIError(resp.StatusCode(), raw)
	}

	var full strings.Builder
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var chunk GenerateContentResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			log.Printf("[gemini] skipping undecodable stream chunk: %v", err)
			continue
		}

		if delta := chunk.deltaText(); delta != "" {
			full.WriteString(delta)
			if onDelta != nil {
				onDelta(delta)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading gemini stream: %w", err)
	}

	return full.String(), nil
}

// ListModels fetches every available model with its supported generation
// methods, following pagination to the end.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	var models []ModelInfo
	pageToken := ""

	for {
		req := c.http.R().
			SetContext(ctx).
			SetQueryParam("key", c.cfg.APIKey)
		if pageToken != "" {
			req.SetQueryParam("pageToken", pageToken)
		}

		resp, err := req.Get("/v1beta/models")
		if err != nil {
			return nil, fmt.Errorf("listing gemini models: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, decodeAPIError(resp.StatusCode(), resp.Body())
		}

		var decoded listModelsResponse
		if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
			return nil, fmt.Errorf("decoding model list: %w", err)
		}

		models = append(models, decoded.Models...)
		if decoded.NextPageToken == "" {
			return models, nil
		}
		pageToken = decoded.NextPageToken
	}
}
