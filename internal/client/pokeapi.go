package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"pokedex/catalog/internal/config"
	"pokedex/catalog/internal/domain"
	"pokedex/catalog/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// PokeAPIClient reads the catalog list and species records. Every call
// issues exactly one request: nothing is cached or retried.
type PokeAPIClient interface {
	FetchCatalog(ctx context.Context, limit int) ([]domain.CatalogEntry, error)
	FetchDetail(ctx context.Context, id int) (description string, found bool, err error)
}

type pokeAPIClient struct {
	rl            ratelimit.Limiter
	baseURL       string
	timeout       time.Duration
	proxySupplier proxy.ProxySupplier

	mu      sync.Mutex
	clients map[string]*resty.Client // keyed by proxy URL, "" is direct
}

func NewPokeAPIClient(cfg config.PokeAPIConfig, proxySupplier proxy.ProxySupplier) PokeAPIClient {
	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &pokeAPIClient{
		rl:            rl,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		timeout:       time.Duration(cfg.Timeout) * time.Second,
		proxySupplier: proxySupplier,
		clients:       make(map[string]*resty.Client),
	}
}

// httpClient returns the resty client for the next proxy of the supplier.
// Every proxy gets its own client so concurrent requests never share a
// transport whose proxy is being switched.
func (c *pokeAPIClient) httpClient() *resty.Client {
	proxyURL := ""
	if c.proxySupplier != nil {
		proxyURL = c.proxySupplier.Get()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[proxyURL]; ok {
		return client
	}

	client := resty.New().
		SetTimeout(c.timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "pokedex-catalog/1.0")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
		log.Infof("🔗 Using proxy: %s", proxyURL)
	}
	c.clients[proxyURL] = client
	return client
}

func (c *pokeAPIClient) FetchCatalog(ctx context.Context, limit int) ([]domain.CatalogEntry, error) {
	url := fmt.Sprintf("%s/pokemon?limit=%d", c.baseURL, limit)

	var response domain.CatalogResponse
	if err := c.getAndDecode(ctx, url, &response); err != nil {
		return nil, err
	}
	if response.Results == nil {
		return nil, &domain.FetchError{Kind: domain.ErrDecode, URL: url, Err: errors.New(`missing "results"`)}
	}

	entries := response.Entries()
	log.Debugf("Fetched catalog with %d entries", len(entries))
	return entries, nil
}

func (c *pokeAPIClient) FetchDetail(ctx context.Context, id int) (string, bool, error) {
	url := fmt.Sprintf("%s/pokemon-species/%d/", c.baseURL, id)

	var record domain.SpeciesRecord
	if err := c.getAndDecode(ctx, url, &record); err != nil {
		return "", false, err
	}
	if record.FlavorTextEntries == nil {
		return "", false, &domain.FetchError{Kind: domain.ErrDecode, URL: url, Err: errors.New(`missing "flavor_text_entries"`)}
	}

	description, found := domain.SelectDescription(record.FlavorTextEntries)
	log.Debugf("Fetched species %d, english description found: %t", id, found)
	return description, found, nil
}

func (c *pokeAPIClient) getAndDecode(ctx context.Context, url string, target any) error {
	c.rl.Take()

	resp, err := c.httpClient().R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return &domain.FetchError{Kind: domain.ErrTransport, URL: url, Err: err}
	}

	if resp.IsError() {
		return &domain.FetchError{Kind: domain.ErrUnexpectedStatus, URL: url, Err: fmt.Errorf("HTTP %d", resp.StatusCode())}
	}

	body := resp.String()
	if strings.TrimSpace(body) == "" {
		return &domain.FetchError{Kind: domain.ErrEmptyResponse, URL: url}
	}

	if err := json.Unmarshal([]byte(body), target); err != nil {
		return &domain.FetchError{Kind: domain.ErrDecode, URL: url, Err: err}
	}

	return nil
}
