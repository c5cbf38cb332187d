package entitlement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"styleshot/internal/infra"
)

// Options configures the HTTP-backed subscription client.
type Options struct {
	BaseURL        string
	APIKey         string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client talks to the subscription platform's REST API. An unreachable
// provider is treated as "not subscribed" rather than an error: losing the
// premium flag temporarily is preferable to blocking every generation.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *infra.Logger
}

type subscriberResponse struct {
	Status string `json:"status"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("entitlement: base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
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
		apiKey:     strings.TrimSpace(opts.APIKey),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// IsSubscribed queries the subscriber record. Any transport or decode failure
// degrades to false and is logged.
func (c *Client) IsSubscribed(ctx context.Context, subject string) (bool, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return false, errors.New("entitlement: subject is required")
	}
	endpoint := c.baseURL + "/v1/subscribers/" + url.PathEscape(subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("entitlement: build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("subject", subject).Msg("entitlement: subscriber lookup failed")
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("subject", subject).
			Msg("entitlement: subscriber lookup returned error status")
		return false, nil
	}

	var decoded subscriberResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.logger.Warn().Err(err).Msg("entitlement: decode subscriber response")
		return false, nil
	}
	return strings.EqualFold(strings.TrimSpace(decoded.Status), "active"), nil
}

// PresentUpgrade registers a paywall placement event with the provider.
func (c *Client) PresentUpgrade(ctx context.Context, subject, trigger string) error {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		trigger = TriggerFeatureUnlock
	}
	payload, err := json.Marshal(map[string]string{"subject": subject})
	if err != nil {
		return fmt.Errorf("entitlement: encode event: %w", err)
	}
	endpoint := c.baseURL + "/v1/placements/" + url.PathEscape(trigger) + "/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("entitlement: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("entitlement: register placement: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("entitlement: placement status %d", resp.StatusCode)
	}
	c.logger.Debug().Str("trigger", trigger).Str("subject", subject).Msg("entitlement: paywall presented")
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
