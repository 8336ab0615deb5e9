package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unifyd/backend/internal/domain/unified"
)

const (
	// maxResponseSize limits the response body size to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB max response
	// maxPages bounds cursor pagination against a provider that loops
	maxPages = 500
	// pageSize is the v3 list page limit
	pageSize = "100"

	defaultBaseURL        = "https://api.hubapi.com"
	defaultTimeoutSeconds = 30
)

// baseContactProperties are always requested; tenant field mappings extend
// the list per fetch.
var baseContactProperties = []string{
	propFirstName, propLastName, propEmail, propPhone, propMobile,
	propOwnerID, propAddress, propCity, propState, propZip, propCountry,
}

// Config holds the HubSpot API credentials for one linked account
type Config struct {
	BaseURL        string
	AccessToken    string
	TimeoutSeconds int
}

// Validate checks the config is usable
func (c *Config) Validate() error {
	if c.AccessToken == "" {
		return errors.New("hubspot: access token is required")
	}
	return nil
}

// Client is the HubSpot API client shared by this provider's fetch services.
type Client struct {
	config     *Config
	httpClient *http.Client

	accountConfigs map[uuid.UUID]*Config
	mu             sync.RWMutex
}

// NewClient creates a HubSpot API client
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
	return nil, fmt.Errorf("hubspot: no credentials for linked account %s: %w",
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
	if query == nil {
		query = url.Values{}
	}
	query.Set("limit", pageSize)

	var results []json.RawMessage
	after := ""
	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("hubspot: pagination exceeded %d pages for %s", maxPages, path)
		}
		if after != "" {
			query.Set("after", after)
		}

		body, err := c.doRequest(ctx, config, baseURL+path+"?"+query.Encode())
		if err != nil {
			return nil, err
		}

		var envelope HubSpotListResponse
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("hubspot: failed to parse response: %w", err)
		}
		results = append(results, envelope.Results...)

		if envelope.Paging == nil || envelope.Paging.Next == nil || envelope.Paging.Next.After == "" {
			return results, nil
		}
		after = envelope.Paging.Next.After
	}
}

func (c *Client) doRequest(ctx context.Context, config *Config, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("hubspot: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+config.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hubspot: %w: %v", unified.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("hubspot: reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("hubspot: status %d: %w", resp.StatusCode, unified.ErrProviderAuthFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("hubspot: status %d: %w", resp.StatusCode, unified.ErrProviderRateLimited)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("hubspot: status %d: %w", resp.StatusCode, unified.ErrProviderUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("hubspot: unexpected status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

// ---------------------------------------------------------------------------
// Fetch services
// ---------------------------------------------------------------------------

// ContactFetchService pulls contacts, narrowed to the base properties plus
// the tenant's mapped custom fields.
type ContactFetchService struct {
	client *Client
}

// RegisterContactFetchService registers the service for crm.contact.hubspot
func RegisterContactFetchService(reg *unified.ServiceRegistry, client *Client) *ContactFetchService {
	s := &ContactFetchService{client: client}
	reg.Register(unified.MapperKey{
		Vertical:   unified.VerticalCRM,
		ObjectType: unified.ObjectTypeContact,
		Provider:   Slug,
	}, s)
	return s
}

// Fetch implements unified.FetchService
func (s *ContactFetchService) Fetch(ctx context.Context, linkedAccountID uuid.UUID, remoteFieldIDs []string) (*unified.FetchResult, error) {
	properties := append([]string{}, baseContactProperties...)
	properties = append(properties, remoteFieldIDs...)

	query := url.Values{}
	query.Set("properties", strings.Join(properties, ","))

	data, err := s.client.listAll(ctx, linkedAccountID, "/crm/v3/objects/contacts", query)
	if err != nil {
		return nil, err
	}
	return &unified.FetchResult{Data: data}, nil
}

// OwnerFetchService pulls record owners
type OwnerFetchService struct {
	client *Client
}

// RegisterOwnerFetchService registers the service for crm.user.hubspot
func RegisterOwnerFetchService(reg *unified.ServiceRegistry, client *Client) *OwnerFetchService {
	s := &OwnerFetchService{client: client}
	reg.Register(unified.MapperKey{
		Vertical:   unified.VerticalCRM,
		ObjectType: unified.ObjectTypeUser,
		Provider:   Slug,
	}, s)
	return s
}

// Fetch implements unified.FetchService
func (s *OwnerFetchService) Fetch(ctx context.Context, linkedAccountID uuid.UUID, remoteFieldIDs []string) (*unified.FetchResult, error) {
	data, err := s.client.listAll(ctx, linkedAccountID, "/crm/v3/owners", nil)
	if err != nil {
		return nil, err
	}
	return &unified.FetchResult{Data: data}, nil
}

var (
	_ unified.FetchService = (*ContactFetchService)(nil)
	_ unified.FetchService = (*OwnerFetchService)(nil)
)
