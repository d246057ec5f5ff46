package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kerem-kaynak/kolektor/internal/entity"
)

const (
	defaultEngineTimeout = 30 * time.Second

	// maxResponseBytes caps how much of an engine response is read, the
	// engine is trusted but not that trusted.
	maxResponseBytes = 1 << 20
)

// EngineConfig carries everything the client needs. It is filled from the
// environment in one place and injected, nothing here reads globals.
type EngineConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// EngineClient talks to the ML engine's dataset collection API.
type EngineClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// EngineError is a non-2xx answer from the engine with its message already
// extracted from whichever error shape the engine used.
type EngineError struct {
	StatusCode int
	Message    string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine returned %d: %s", e.StatusCode, e.Message)
}

func NewEngineClient(cfg EngineConfig) (*EngineClient, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("engine base URL is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultEngineTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EngineClient{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client:  client,
		logger:  logger,
	}, nil
}

// CreateCollection submits a finished collection draft. The engine answers
// with its own record of the collection, already queued for processing.
func (c *EngineClient) CreateCollection(ctx context.Context, collection *entity.DatasetCollection) (*entity.CollectionResource, error) {
	body, err := json.Marshal(collection)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/datasets/collections", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resource, err := c.do(req)
	if err != nil {
		return nil, err
	}
	c.logger.Info("collection created",
		zap.String("collection_id", resource.ID),
		zap.String("status", string(resource.Status)),
	)
	return resource, nil
}

// GetCollection fetches one collection by id.
func (c *EngineClient) GetCollection(ctx context.Context, id string) (*entity.CollectionResource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/datasets/collections/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	c.authorize(req)

	return c.do(req)
}

func (c *EngineClient) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}

func (c *EngineClient) do(req *http.Request) (*entity.CollectionResource, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("engine request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read engine response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &EngineError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(payload),
		}
	}

	var wire wireCollection
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode engine response: %w", err)
	}
	resource := wire.normalize()
	return &resource, nil
}
