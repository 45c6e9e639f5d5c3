package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ads-marketplace/tactics/internal/models"
)

// TenantResolver turns a caller token into a customer id.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, token string) (int64, error)
}

// TacticStore persists tactics. Get and List are customer scoped;
// UpdateMediaBuyOutcome, UpdateStatus and GetUnscoped trust the caller to
// have checked ownership already. UpdateStatus only applies when the row
// is still in from, and reports ErrInvalidTransition otherwise.
type TacticStore interface {
	InsertDraft(ctx context.Context, t *models.Tactic) error
	UpdateMediaBuyOutcome(ctx context.Context, id string, o models.MediaBuyOutcome) error
	UpdateStatus(ctx context.Context, id string, from, to models.TacticStatus) error
	Get(ctx context.Context, id string, customerID int64) (*models.Tactic, error)
	GetUnscoped(ctx context.Context, id string) (*models.Tactic, error)
	List(ctx context.Context, campaignID string, customerID int64) ([]models.Tactic, error)
	Update(ctx context.Context, id string, customerID int64, u models.TacticUpdate) error
	SoftDelete(ctx context.Context, id string, customerID int64) error
}

type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (*models.MediaProduct, error)
}

type SalesAgentResolver interface {
	FindForPublisher(ctx context.Context, publisherID string, customerID int64) (*models.SalesAgent, error)
}

// BriefSource returns the sanitized campaign brief, or nil if none is stored.
type BriefSource interface {
	GetSanitizedBrief(ctx context.Context, campaignID string, customerID int64) (*string, error)
}

// MediaBuyExecutor places a media buy with a sales agent.
type MediaBuyExecutor interface {
	ExecuteMediaBuy(ctx context.Context, t models.Tactic, agent models.SalesAgent, brief string, customerID int64) (*MediaBuyResult, error)
}

type MediaBuyResult struct {
	Status        models.MediaBuyStatus
	MediaBuyID    *string
	Request       json.RawMessage
	Response      json.RawMessage
	WebhookURL    *string
	WebhookSecret *string
	ErrorMessage  *string
}

type AuditStore interface {
	Log(ctx context.Context, entry models.AuditLog) error
	GetByEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]models.AuditLog, error)
}

// DraftStore is what the reconciler needs from the tactic store.
type DraftStore interface {
	ListStaleDrafts(ctx context.Context, cutoff time.Time, limit int) ([]models.Tactic, error)
	UpdateMediaBuyOutcome(ctx context.Context, id string, o models.MediaBuyOutcome) error
	UpdateStatus(ctx context.Context, id string, from, to models.TacticStatus) error
}
