package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// catalogTTL is how long a fetched model list stays fresh.
const catalogTTL = time.Hour

const defaultCatalogURL = "https://raw.githubusercontent.com/cvstudio/model-catalog/main/models.json"

// ModelInfo describes one selectable model from the published catalog.
type ModelInfo struct {
	ID            string `json:"id"`
	Provider      string `json:"provider"`
	DisplayName   string `json:"displayName"`
	ContextWindow int    `json:"contextWindow"`
	Deprecated    bool   `json:"deprecated,omitempty"`
}

// ModelCatalog fetches the models-metadata JSON published on GitHub and
// caches it in memory. A failed refresh serves the stale copy when one
// exists.
type ModelCatalog struct {
	url    string
	client *http.Client

	mu        sync.Mutex
	models    []ModelInfo
	fetchedAt time.Time
}

func NewModelCatalog(url string) *ModelCatalog {
	if url == "" {
		url = defaultCatalogURL
	}
	return &ModelCatalog{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Models returns the cached catalog, refreshing it when older than one hour.
func (c *ModelCatalog) Models(ctx context.Context) ([]ModelInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.models != nil && time.Since(c.fetchedAt) < catalogTTL {
		return c.models, nil
	}

	models, err := c.fetch(ctx)
	if err != nil {
		if c.models != nil {
			log.Warn().Err(err).Msg("Model catalog refresh failed, serving stale copy")
			return c.models, nil
		}
		return nil, err
	}

	c.models = models
	c.fetchedAt = time.Now()
	return models, nil
}

func (c *ModelCatalog) fetch(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching model catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model catalog returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("reading model catalog: %w", err)
	}

	var models []ModelInfo
	if err := json.Unmarshal(body, &models); err != nil {
		return nil, fmt.Errorf("parsing model catalog: %w", err)
	}
	return models, nil
}
