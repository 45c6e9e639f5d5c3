package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ads-marketplace/tactics/internal/models"
	"go.uber.org/zap"
)

const maxAgentResponseBytes = 1 << 20

// MediaBuyClient places media buys with sales agents over HTTP. Requests
// identify the tactic only by its AXE segment; internal ids and our
// pricing never leave the process.
type MediaBuyClient struct {
	webhookBaseURL string
	httpClient     *http.Client
	log            *zap.Logger
}

func NewMediaBuyClient(webhookBaseURL string, timeout time.Duration, log *zap.Logger) *MediaBuyClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MediaBuyClient{
		webhookBaseURL: strings.TrimRight(webhookBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

type agentBudget struct {
	Total    float64  `json:"total"`
	Currency string   `json:"currency"`
	Pacing   string   `json:"pacing"`
	DailyCap *float64 `json:"daily_cap,omitempty"`
}

type agentWebhook struct {
	URL    string `json:"url"`
	Secret string `json:"secret"`
}

type agentBuyRequest struct {
	BuyerRef         string       `json:"buyer_ref"`
	ProductIDs       []string     `json:"product_ids"`
	Budget           agentBudget  `json:"budget"`
	PromotedOffering string       `json:"promoted_offering"`
	AxeIncludeSeg    string       `json:"axe_include_segment"`
	Webhook          agentWebhook `json:"webhook"`
}

type agentBuyResponse struct {
	MediaBuyID string `json:"media_buy_id"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (c *MediaBuyClient) ExecuteMediaBuy(ctx context.Context, t models.Tactic, agent models.SalesAgent, brief string, customerID int64) (*MediaBuyResult, error) {
	secret, err := webhookSecret()
	if err != nil {
		return nil, err
	}
	webhookURL := fmt.Sprintf("%s/webhooks/media-buys/%s", c.webhookBaseURL, t.AxeIncludeSegment)

	reqBody := agentBuyRequest{
		BuyerRef:   t.AxeIncludeSegment,
		ProductIDs: []string{t.MediaProductID},
		Budget: agentBudget{
			Total:    t.Budget.Amount,
			Currency: t.Budget.Currency,
			Pacing:   t.Budget.Pacing,
			DailyCap: t.Budget.DailyCap,
		},
		PromotedOffering: brief,
		AxeIncludeSeg:    t.AxeIncludeSegment,
		Webhook:          agentWebhook{URL: webhookURL, Secret: secret},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(agent.EndpointURL, "/") + "/media-buys"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if agent.AuthToken != nil && *agent.AuthToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+*agent.AuthToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sales agent %s unavailable: %w", agent.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxAgentResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read sales agent response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sales agent %s returned %d: %s", agent.Name, resp.StatusCode, truncate(string(raw), 512))
	}

	var parsed agentBuyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode sales agent response: %w", err)
	}

	c.log.Info("media buy submitted",
		zap.String("sales_agent_id", agent.ID),
		zap.Int64("customer_id", customerID),
		zap.String("media_buy_id", parsed.MediaBuyID),
		zap.String("status", parsed.Status),
	)

	result := &MediaBuyResult{
		Status:        models.MediaBuyStatus(strings.ToLower(parsed.Status)),
		Request:       redactWebhookSecret(body),
		Response:      json.RawMessage(raw),
		WebhookURL:    &webhookURL,
		WebhookSecret: &secret,
	}
	if result.Status == "" {
		result.Status = models.MediaBuyStatusSubmitted
	}
	if parsed.MediaBuyID != "" {
		id := parsed.MediaBuyID
		result.MediaBuyID = &id
	}
	if msg := firstNonEmpty(parsed.Error, parsed.Message); msg != "" && result.Status == models.MediaBuyStatusFailed {
		result.ErrorMessage = &msg
	}
	return result, nil
}

func webhookSecret() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate webhook secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// redactWebhookSecret keeps the stored request free of the secret, which
// is persisted in its own column.
func redactWebhookSecret(body []byte) json.RawMessage {
	var req agentBuyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil
	}
	req.Webhook.Secret = "[redacted]"
	out, err := json.Marshal(req)
	if err != nil {
		return nil
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
