package front

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unifyd/backend/internal/domain/unified"
)

const (
	// maxResponseSize limits the response body size to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB max response
	// maxPages bounds cursor pagination against a provider that loops
	maxPages = 200

	defaultBaseURL        = "https://api2.frontapp.com"
	defaultTimeoutSeconds = 30
)

// Config holds the Front API credentials for one linked account
type Config struct {
	BaseURL        string
	APIToken       string
	TimeoutSeconds int
}

// Validate checks the config is usable
func (c *Config) Validate() error {
	if c.APIToken == "" {
		return errors.New("front: api token is required")
	}
	return nil
}

// Client is the Front API client shared by this provider's fetch services.
// Per-account credentials are registered at connection time; the default
// config, when set, serves accounts without an explicit entry.
type Client struct {
	config     *Config
	httpClient *http.Client

	accountConfigs map[uuid.UUID]*Config
	mu             sync.RWMutex
}

// NewClient creates a Front API client
func NewClient(config *Config) (*Client, error) {
	if config != nil {
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}
	timeout := defaultTimeoutSeconds
	if config != nil && config.TimeoutSeconds > 0 {
		timeout = config.TimeoutSeconds
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		accountConfigs: make(map[uuid.UUID]*Config),
	}, nil
}

// SetAccountConfig registers the credentials for one linked account
func (c *Client) SetAccountConfig(linkedAccountID uuid.UUID, config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accountConfigs[linkedAccountID] = config
	return nil
}

func (c *Client) accountConfig(linkedAccountID uuid.UUID) (*Config, error) {
	c.mu.RLock()
	config, ok := c.accountConfigs[linkedAccountID]
	c.mu.RUnlock()
	if ok {
		return config, nil
	}
	if c.config != nil {
		return c.config, nil
	}
	return nil, fmt.Errorf("front: no credentials for linked account %s: %w",
		linkedAccountID, unified.ErrProviderAuthFailed)
}

// listAll walks the cursor-paginated list endpoint and returns every result
// as a verbatim payload.
func (c *Client) listAll(ctx context.Context, linkedAccountID uuid.UUID, path string, query url.Values) ([]json.RawMessage, error) {
	config, err := c.accountConfig(linkedAccountID)
	if err != nil {
		return nil, err
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	next := baseURL + path
	if len(query) > 0 {
		next += "?" + query.Encode()
	}

	var results []json.RawMessage
	for page := 0; next != ""; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("front: pagination exceeded %d pages for %s", maxPages, path)
		}

		body, err := c.doRequest(ctx, config, next)
		if err != nil {
			return nil, err
		}

		var envelope FrontListResponse
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("front: failed to parse response: %w", err)
		}
		results = append(results, envelope.Results...)

		next = ""
		if envelope.Pagination != nil {
			next = envelope.Pagination.Next
		}
	}
	return results, nil
}

func (c *Client) doRequest(ctx context.Context, config *Config, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("front: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+config.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("front: %w: %v", unified.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("front: reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("front: status %d: %w", resp.StatusCode, unified.ErrProviderAuthFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("front: status %d: %w", resp.StatusCode, unified.ErrProviderRateLimited)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("front: status %d: %w", resp.StatusCode, unified.ErrProviderUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("front: unexpected status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

// ---------------------------------------------------------------------------
// Fetch services
// ---------------------------------------------------------------------------

// TicketFetchService pulls conversations
type TicketFetchService struct {
	client *Client
}

// RegisterTicketFetchService registers the service for ticketing.ticket.front
func RegisterTicketFetchService(reg *unified.ServiceRegistry, client *Client) *TicketFetchService {
	s := &TicketFetchService{client: client}
	reg.Register(unified.MapperKey{
		Vertical:   unified.VerticalTicketing,
		ObjectType: unified.ObjectTypeTicket,
		Provider:   Slug,
	}, s)
	return s
}

// Fetch implements unified.FetchService. Front returns custom fields inline on
// conversations, so remoteFieldIDs does not narrow the query.
func (s *TicketFetchService) Fetch(ctx context.Context, linkedAccountID uuid.UUID, remoteFieldIDs []string) (*unified.FetchResult, error) {
	data, err := s.client.listAll(ctx, linkedAccountID, "/conversations", nil)
	if err != nil {
		return nil, err
	}
	return &unified.FetchResult{Data: data}, nil
}

// TagFetchService pulls tags
type TagFetchService struct {
	client *Client
}

// RegisterTagFetchService registers the service for ticketing.tag.front
func RegisterTagFetchService(reg *unified.ServiceRegistry, client *Client) *TagFetchService {
	s := &TagFetchService{client: client}
	reg.Register(unified.MapperKey{
		Vertical:   unified.VerticalTicketing,
		ObjectType: unified.ObjectTypeTag,
		Provider:   Slug,
	}, s)
	return s
}

// Fetch implements unified.FetchService
func (s *TagFetchService) Fetch(ctx context.Context, linkedAccountID uuid.UUID, remoteFieldIDs []string) (*unified.FetchResult, error) {
	data, err := s.client.listAll(ctx, linkedAccountID, "/tags", nil)
	if err != nil {
		return nil, err
	}
	return &unified.FetchResult{Data: data}, nil
}

// TeammateFetchService pulls teammates
type TeammateFetchService struct {
	client *Client
}

// RegisterTeammateFetchService registers the service for ticketing.user.front
func RegisterTeammateFetchService(reg *unified.ServiceRegistry, client *Client) *TeammateFetchService {
	s := &TeammateFetchService{client: client}
	reg.Register(unified.MapperKey{
		Vertical:   unified.VerticalTicketing,
		ObjectType: unified.ObjectTypeUser,
		Provider:   Slug,
	}, s)
	return s
}

// Fetch implements unified.FetchService
func (s *TeammateFetchService) Fetch(ctx context.Context, linkedAccountID uuid.UUID, remoteFieldIDs []string) (*unified.FetchResult, error) {
	data, err := s.client.listAll(ctx, linkedAccountID, "/teammates", nil)
	if err != nil {
		return nil, err
	}
	return &unified.FetchResult{Data: data}, nil
}

var (
	_ unified.FetchService = (*TicketFetchService)(nil)
	_ unified.FetchService = (*TagFetchService)(nil)
	_ unified.FetchService = (*TeammateFetchService)(nil)
)
