package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ads-marketplace/tactics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func clientTactic() models.Tactic {
	return models.Tactic{
		ID:                "5f0c9a1e-0000-4000-8000-000000000001",
		CustomerID:        customerID,
		CampaignID:        "c1",
		MediaProductID:    "hulu_x",
		AxeIncludeSegment: "axe_01hzy3k2ab_5f0c9a1e0000",
		Budget:            models.BudgetAllocation{Amount: 1000, Currency: "USD", Pacing: models.PacingEven},
		Pricing:           models.EffectivePricing{CPM: 15, TotalCPM: 15, Currency: "USD"},
		Status:            models.TacticStatusDraft,
	}
}

func newAgentServer(t *testing.T, handler http.HandlerFunc) (*MediaBuyClient, models.SalesAgent) {
	t.Helper()
	srv := httptest.NewServer(handler)
	client := NewMediaBuyClient("https://tactics.example/", 2*time.Second, zap.NewNop())
	t.Cleanup(func() {
		client.httpClient.CloseIdleConnections()
		srv.Close()
	})
	token := "agent-secret"
	return client, models.SalesAgent{ID: "sa_hulu", Name: "Hulu", EndpointURL: srv.URL + "/", AuthToken: &token}
}

func TestMediaBuyClient_Active(t *testing.T) {
	type captured struct {
		method, path, auth string
		body               agentBuyRequest
	}
	seen := make(chan captured, 1)
	client, agent := newAgentServer(t, func(w http.ResponseWriter, r *http.Request) {
		c := captured{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&c.body))
		seen <- c
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"media_buy_id":"mb_1","status":"ACTIVE"}`)
	})

	res, err := client.ExecuteMediaBuy(context.Background(), clientTactic(), agent, "spring launch", customerID)
	require.NoError(t, err)

	assert.Equal(t, models.MediaBuyStatusActive, res.Status)
	require.NotNil(t, res.MediaBuyID)
	assert.Equal(t, "mb_1", *res.MediaBuyID)
	assert.Nil(t, res.ErrorMessage)
	assert.Equal(t, "https://tactics.example/webhooks/media-buys/axe_01hzy3k2ab_5f0c9a1e0000", *res.WebhookURL)
	assert.Len(t, *res.WebhookSecret, 48)

	c := <-seen
	got := c.body
	assert.Equal(t, http.MethodPost, c.method)
	assert.Equal(t, "/media-buys", c.path)
	assert.Equal(t, "Bearer agent-secret", c.auth)
	assert.Equal(t, "axe_01hzy3k2ab_5f0c9a1e0000", got.BuyerRef)
	assert.Equal(t, []string{"hulu_x"}, got.ProductIDs)
	assert.Equal(t, "spring launch", got.PromotedOffering)
	assert.Equal(t, 1000.0, got.Budget.Total)
	assert.Equal(t, *res.WebhookSecret, got.Webhook.Secret)

	assert.NotContains(t, string(res.Request), *res.WebhookSecret)
	assert.Contains(t, string(res.Request), "[redacted]")
	assert.NotContains(t, string(res.Request), clientTactic().ID)
	assert.NotContains(t, string(res.Request), "cpm")
	assert.JSONEq(t, `{"media_buy_id":"mb_1","status":"ACTIVE"}`, string(res.Response))
}

func TestMediaBuyClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus models.MediaBuyStatus
		wantErrMsg string
	}{
		{"pending", `{"media_buy_id":"mb_2","status":"pending_approval"}`, models.MediaBuyStatusPendingApproval, ""},
		{"missing status", `{"media_buy_id":"mb_3"}`, models.MediaBuyStatusSubmitted, ""},
		{"rejected", `{"status":"failed","error":"inventory sold out"}`, models.MediaBuyStatusFailed, "inventory sold out"},
		{"rejected with message", `{"status":"failed","message":"below floor"}`, models.MediaBuyStatusFailed, "below floor"},
		{"message on success ignored", `{"status":"active","message":"welcome"}`, models.MediaBuyStatusActive, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, agent := newAgentServer(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})

			res, err := client.ExecuteMediaBuy(context.Background(), clientTactic(), agent, "brief", customerID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			if tt.wantErrMsg == "" {
				assert.Nil(t, res.ErrorMessage)
			} else {
				require.NotNil(t, res.ErrorMessage)
				assert.Equal(t, tt.wantErrMsg, *res.ErrorMessage)
			}
		})
	}
}

func TestMediaBuyClient_Errors(t *testing.T) {
	t.Run("non 2xx", func(t *testing.T) {
		client, agent := newAgentServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, strings.Repeat("x", 600))
		})

		_, err := client.ExecuteMediaBuy(context.Background(), clientTactic(), agent, "brief", customerID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sales agent Hulu returned 502")
		assert.Less(t, len(err.Error()), 600)
	})

	t.Run("malformed body", func(t *testing.T) {
		client, agent := newAgentServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "<html>")
		})

		_, err := client.ExecuteMediaBuy(context.Background(), clientTactic(), agent, "brief", customerID)
		assert.ErrorContains(t, err, "decode sales agent response")
	})

	t.Run("unreachable", func(t *testing.T) {
		client, agent := newAgentServer(t, func(http.ResponseWriter, *http.Request) {})
		agent.EndpointURL = "http://127.0.0.1:1"

		_, err := client.ExecuteMediaBuy(context.Background(), clientTactic(), agent, "brief", customerID)
		assert.ErrorContains(t, err, "sales agent Hulu unavailable")
	})
}

func TestMediaBuyClient_NoAuthTokenSendsNoHeader(t *testing.T) {
	auth := make(chan string, 1)
	client, agent := newAgentServer(t, func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"status":"submitted"}`)
	})
	agent.AuthToken = nil

	_, err := client.ExecuteMediaBuy(context.Background(), clientTactic(), agent, "brief", customerID)
	require.NoError(t, err)
	assert.Empty(t, <-auth)
}
