package front

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifyd/backend/internal/domain/unified"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{BaseURL: server.URL, APIToken: "secret"})
	require.NoError(t, err)
	return client, server
}

func TestClient_ListAll(t *testing.T) {
	ctx := context.Background()

	t.Run("follows pagination cursors", func(t *testing.T) {
		var server *httptest.Server
		calls := 0
		client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

			switch r.URL.Path {
			case "/conversations":
				_ = json.NewEncoder(w).Encode(map[string]any{
					"_results":    []map[string]any{{"id": "cnv_1"}},
					"_pagination": map[string]any{"next": server.URL + "/conversations/page2"},
				})
			case "/conversations/page2":
				_ = json.NewEncoder(w).Encode(map[string]any{
					"_results": []map[string]any{{"id": "cnv_2"}},
				})
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		})
		server = srv

		data, err := client.listAll(ctx, uuid.New(), "/conversations", nil)
		require.NoError(t, err)
		assert.Len(t, data, 2)
		assert.Equal(t, 2, calls)
		assert.JSONEq(t, `{"id":"cnv_1"}`, string(data[0]))
		assert.JSONEq(t, `{"id":"cnv_2"}`, string(data[1]))
	})

	t.Run("401 maps to auth failure", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.listAll(ctx, uuid.New(), "/conversations", nil)
		assert.ErrorIs(t, err, unified.ErrProviderAuthFailed)
	})

	t.Run("429 maps to rate limited", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.listAll(ctx, uuid.New(), "/conversations", nil)
		assert.ErrorIs(t, err, unified.ErrProviderRateLimited)
		assert.True(t, unified.IsRetryableFetchError(err))
	})

	t.Run("5xx maps to unavailable", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.listAll(ctx, uuid.New(), "/conversations", nil)
		assert.ErrorIs(t, err, unified.ErrProviderUnavailable)
	})

	t.Run("account-specific credentials win over the default", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer account-token", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]any{"_results": []map[string]any{}})
		})

		accountID := uuid.New()
		cfg, err := client.accountConfig(accountID)
		require.NoError(t, err)
		require.NoError(t, client.SetAccountConfig(accountID, &Config{BaseURL: cfg.BaseURL, APIToken: "account-token"}))

		_, err = client.listAll(ctx, accountID, "/tags", nil)
		require.NoError(t, err)
	})
}

func TestClient_NoCredentials(t *testing.T) {
	client, err := NewClient(nil)
	require.NoError(t, err)

	_, err = client.listAll(context.Background(), uuid.New(), "/conversations", nil)
	assert.ErrorIs(t, err, unified.ErrProviderAuthFailed)
}

func TestFetchServices_Register(t *testing.T) {
	reg := unified.NewServiceRegistry()
	client, err := NewClient(&Config{APIToken: "secret"})
	require.NoError(t, err)

	RegisterTicketFetchService(reg, client)
	RegisterTagFetchService(reg, client)
	RegisterTeammateFetchService(reg, client)

	for _, objectType := range []unified.ObjectType{
		unified.ObjectTypeTicket, unified.ObjectTypeTag, unified.ObjectTypeUser,
	} {
		_, err := reg.Resolve(unified.VerticalTicketing, objectType, Slug)
		assert.NoError(t, err, objectType)
	}
}
