// Package generation performs the remote style-transfer calls and drives the
// fixed-size batch that produces one image per slot.
package generation

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

	"github.com/rs/zerolog"

	"styleshot/internal/infra"
)

// FailureKind classifies a failed generation call.
type FailureKind string

const (
	KindTimeout           FailureKind = "timeout"
	KindServerError       FailureKind = "server_error"
	KindMalformedResponse FailureKind = "malformed_response"
	KindNetwork           FailureKind = "network"
	KindCanceled          FailureKind = "canceled"
)

// CallError is the typed failure returned by Client.Generate. Message is
// short and safe to show to a user.
type CallError struct {
	Kind    FailureKind
	Status  int
	Message string
}

func (e *CallError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("generation: %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("generation: %s: %s", e.Kind, e.Message)
}

// Request captures the inputs for one variant call. Exactly one of Prompt or
// ImageBase64 must be set. Slot is zero-based in memory; the wire index is
// one-based, which the existing generation service expects.
type Request struct {
	Prompt      string
	ImageBase64 string
	Style       string
	Slot        int
}

// ImageMode reports whether the request resends an uploaded photo rather
// than a text prompt.
func (r Request) ImageMode() bool {
	return r.ImageBase64 != ""
}

// Options configures the generation client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the remote generation endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *infra.Logger
}

type textRequest struct {
	UserPrompt string `json:"userPrompt"`
	Style      string `json:"style"`
	ImageIndex int    `json:"imageIndex"`
}

type imageRequest struct {
	ImageBase64 string `json:"imageBase64"`
	Style       string `json:"style"`
	ImageIndex  int    `json:"imageIndex"`
}

type generationResponse struct {
	ImageBase64 string `json:"imageBase64"`
	Error       string `json:"error"`
	Message     string `json:"message"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("generation: base url is required")
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		timeout:    timeout,
		logger:     logger,
	}, nil
}

// Generate issues one POST for one variant and returns the base64 image
// payload. Failures come back as *CallError; the caller decides how a slot
// failure affects the rest of the batch. No state beyond the network call is
// touched.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	style := strings.TrimSpace(req.Style)
	if style == "" {
		return "", errors.New("generation: style is required")
	}
	if req.Prompt == "" && req.ImageBase64 == "" {
		return "", errors.New("generation: prompt or image payload is required")
	}
	if req.Prompt != "" && req.ImageBase64 != "" {
		return "", errors.New("generation: prompt and image payload are mutually exclusive")
	}

	var endpoint string
	var payload any
	// Slot 0 in memory is variant 1 on the wire.
	wireIndex := req.Slot + 1
	if req.ImageMode() {
		endpoint = c.baseURL + "/api/generate-image"
		payload = imageRequest{ImageBase64: req.ImageBase64, Style: style, ImageIndex: wireIndex}
	} else {
		endpoint = c.baseURL + "/api/text-to-image"
		payload = textRequest{UserPrompt: req.Prompt, Style: style, ImageIndex: wireIndex}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("generation: encode request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("generation: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", c.classifyTransport(ctx, callCtx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.classifyTransport(ctx, callCtx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &CallError{
			Kind:    KindServerError,
			Status:  resp.StatusCode,
			Message: serverMessage(raw, resp.StatusCode),
		}
	}

	var decoded generationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &CallError{Kind: KindMalformedResponse, Status: resp.StatusCode, Message: "could not parse the server response"}
	}
	if decoded.Error != "" {
		return "", &CallError{Kind: KindServerError, Status: resp.StatusCode, Message: decoded.Error}
	}
	if decoded.ImageBase64 == "" {
		return "", &CallError{Kind: KindMalformedResponse, Status: resp.StatusCode, Message: "no image data received"}
	}

	c.logger.Debug().
		Int("variant", wireIndex).
		Str("style", style).
		Int("image_bytes_b64", len(decoded.ImageBase64)).
		Msg("generation: variant received")
	return decoded.ImageBase64, nil
}

func (c *Client) classifyTransport(parent, call context.Context, err error) *CallError {
	switch {
	case parent.Err() != nil && errors.Is(parent.Err(), context.Canceled):
		return &CallError{Kind: KindCanceled, Message: "generation canceled"}
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(call.Err(), context.DeadlineExceeded):
		return &CallError{
			Kind:    KindTimeout,
			Message: fmt.Sprintf("the server took longer than %s to respond", c.timeout),
		}
	default:
		return &CallError{Kind: KindNetwork, Message: "could not reach the generation server"}
	}
}

// serverMessage best-effort parses an error body, falling back to the raw
// status when the body is not the expected JSON.
func serverMessage(raw []byte, status int) string {
	var detail generationResponse
	if err := json.Unmarshal(raw, &detail); err == nil {
		if detail.Error != "" {
			return detail.Error
		}
		if detail.Message != "" {
			return detail.Message
		}
	}
	return fmt.Sprintf("server returned status %d", status)
}
