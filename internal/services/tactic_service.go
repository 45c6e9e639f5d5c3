package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ads-marketplace/tactics/internal/events"
	"github.com/ads-marketplace/tactics/internal/models"
	"github.com/ads-marketplace/tactics/internal/pricing"
	"github.com/ads-marketplace/tactics/internal/segment"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TacticService provisions tactics and manages their lifecycle.
//
// CreateTactic writes a draft before talking to anyone outside the
// process. From that point on every failure is captured on the returned
// tactic instead of being returned as an error.
type TacticService struct {
	auth      TenantResolver
	store     TacticStore
	catalog   ProductCatalog
	agents    SalesAgentResolver
	briefs    BriefSource
	executor  MediaBuyExecutor
	pricing   *pricing.Calculator
	segments  *segment.Generator
	audit     AuditStore
	publisher events.Publisher
	currency  string
	log       *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewTacticService(
	auth TenantResolver,
	store TacticStore,
	catalog ProductCatalog,
	agents SalesAgentResolver,
	briefs BriefSource,
	executor MediaBuyExecutor,
	calc *pricing.Calculator,
	segments *segment.Generator,
	audit AuditStore,
	publisher events.Publisher,
	defaultCurrency string,
	log *zap.Logger,
) *TacticService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &TacticService{
		auth:      auth,
		store:     store,
		catalog:   catalog,
		agents:    agents,
		briefs:    briefs,
		executor:  executor,
		pricing:   calc,
		segments:  segments,
		audit:     audit,
		publisher: publisher,
		currency:  defaultCurrency,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *TacticService) CreateTactic(ctx context.Context, in CreateTacticInput, callerToken string) (*models.TacticView, error) {
	// 1. Tenant
	customerID, err := s.auth.ResolveTenant(ctx, callerToken)
	if err != nil {
		return nil, err
	}

	if err := in.normalize(s.currency); err != nil {
		return nil, err
	}

	// 2. Pricing, segment, product
	product := s.product(ctx, in.MediaProductID)
	id := s.newID()
	t := &models.Tactic{
		ID:                id,
		CampaignID:        in.CampaignID,
		CustomerID:        customerID,
		Name:              in.Name,
		Description:       in.Description,
		Budget:            in.Budget,
		Pricing:           s.pricing.Effective(in.CPM, in.SignalID, in.Budget.Currency),
		MediaProductID:    in.MediaProductID,
		SignalID:          in.SignalID,
		BrandStoryID:      in.BrandStoryID,
		AxeIncludeSegment: s.segments.Generate(id),
		Status:            models.TacticStatusDraft,
	}

	// 3. Draft
	if err := s.store.InsertDraft(ctx, t); err != nil {
		if !errors.Is(err, models.ErrPersistence) {
			err = fmt.Errorf("%w: %v", models.ErrPersistence, err)
		}
		return nil, err
	}
	s.logAudit(ctx, t, "user", "tactic_created", map[string]any{
		"campaign_id":      t.CampaignID,
		"media_product_id": t.MediaProductID,
	})

	// The draft is committed; the rest runs to completion even if the
	// caller goes away.
	ctx = context.WithoutCancel(ctx)
	_ = s.publisher.Publish(ctx, events.StreamTactics, events.Event{
		Type:       events.EventTacticCreated,
		CustomerID: t.CustomerID,
		Payload: map[string]any{
			"tactic_id":        t.ID,
			"campaign_id":      t.CampaignID,
			"media_product_id": t.MediaProductID,
		},
	})

	// 4-6. Sales agent, brief, media buy
	outcome := s.provision(ctx, t, product)

	// 7. Evidence
	if err := s.store.UpdateMediaBuyOutcome(ctx, t.ID, outcome); err != nil {
		s.log.Error("failed to persist media buy outcome",
			zap.String("tactic_id", t.ID),
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)
	}
	t.MediaBuy = outcome.MediaBuy
	if t.SalesAgentID == nil {
		t.SalesAgentID = outcome.SalesAgentID
	}

	// 8-9. Terminal status
	// A failed write leaves the row in draft for the reconciler, which
	// records the transition once it lands.
	old := t.Status
	t.Status = models.StatusForMediaBuy(outcome.MediaBuy.Status)
	if err := s.store.UpdateStatus(ctx, t.ID, old, t.Status); err != nil {
		s.log.Error("failed to persist tactic status",
			zap.String("tactic_id", t.ID),
			zap.String("status", string(t.Status)),
			zap.Error(err),
		)
	} else {
		recordStatusChange(ctx, s.audit, s.publisher, s.log, t, old, "system")
	}

	s.log.Info("tactic provisioned",
		zap.String("tactic_id", t.ID),
		zap.Int64("customer_id", customerID),
		zap.String("status", string(t.Status)),
		zap.String("media_buy_status", string(t.MediaBuy.Status)),
	)

	// 10. View
	return hydrate(t, product), nil
}

// provision resolves the sales agent and attempts the media buy. It never
// fails; problems are reported through the outcome.
func (s *TacticService) provision(ctx context.Context, t *models.Tactic, product models.MediaProduct) models.MediaBuyOutcome {
	agent, err := s.agents.FindForPublisher(ctx, product.PublisherID, t.CustomerID)
	if err != nil {
		s.log.Warn("sales agent lookup failed", zap.String("tactic_id", t.ID), zap.Error(err))
		return failedOutcome(nil, nil, fmt.Sprintf("sales agent lookup failed: %v", err))
	}
	if agent == nil {
		return failedOutcome(nil, nil, fmt.Sprintf("no sales agent available for publisher %s", product.PublisherName))
	}
	t.SalesAgentID = &agent.ID

	brief := s.sanitizedBrief(ctx, t, product)

	submittedAt := s.now().UTC()
	result, err := s.execute(ctx, *t, *agent, brief)
	if err != nil {
		s.log.Warn("media buy failed",
			zap.String("tactic_id", t.ID),
			zap.String("sales_agent_id", agent.ID),
			zap.Error(err),
		)
		return failedOutcome(&agent.ID, &submittedAt, err.Error())
	}

	mb := models.MediaBuy{
		ID:            result.MediaBuyID,
		Status:        result.Status,
		Request:       result.Request,
		Response:      result.Response,
		SubmittedAt:   &submittedAt,
		WebhookURL:    result.WebhookURL,
		WebhookSecret: result.WebhookSecret,
		ErrorMessage:  result.ErrorMessage,
	}
	if mb.Status == models.MediaBuyStatusActive {
		approvedAt := s.now().UTC()
		mb.ApprovedAt = &approvedAt
	}
	if mb.Status == models.MediaBuyStatusFailed && mb.ErrorMessage == nil {
		msg := "media buy rejected by sales agent"
		mb.ErrorMessage = &msg
	}
	return models.MediaBuyOutcome{SalesAgentID: &agent.ID, MediaBuy: mb}
}

// execute calls the executor, converting panics into errors.
func (s *TacticService) execute(ctx context.Context, t models.Tactic, agent models.SalesAgent, brief string) (result *MediaBuyResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("media buy executor panicked: %v", r)
		}
	}()

	result, err = s.executor.ExecuteMediaBuy(ctx, t, agent, brief, t.CustomerID)
	if err == nil && result == nil {
		err = errors.New("media buy executor returned no result")
	}
	return result, err
}

// sanitizedBrief returns the stored sanitized brief or a generic text that
// carries no budget information.
func (s *TacticService) sanitizedBrief(ctx context.Context, t *models.Tactic, product models.MediaProduct) string {
	brief, err := s.briefs.GetSanitizedBrief(ctx, t.CampaignID, t.CustomerID)
	if err != nil {
		s.log.Warn("sanitized brief fetch failed, using fallback", zap.String("tactic_id", t.ID), zap.Error(err))
	}
	if err == nil && brief != nil && strings.TrimSpace(*brief) != "" {
		return *brief
	}
	return FallbackBrief(product)
}

// FallbackBrief is shared with sales agents when a campaign has no
// sanitized brief on file.
func FallbackBrief(product models.MediaProduct) string {
	return fmt.Sprintf("The advertiser is requesting inventory on %s (%s). "+
		"Campaign objectives are available on request; budget and pricing details are withheld.",
		product.Name, product.PublisherName)
}

func failedOutcome(agentID *string, submittedAt *time.Time, msg string) models.MediaBuyOutcome {
	return models.MediaBuyOutcome{
		SalesAgentID: agentID,
		MediaBuy: models.MediaBuy{
			Status:       models.MediaBuyStatusFailed,
			SubmittedAt:  submittedAt,
			ErrorMessage: &msg,
		},
	}
}

func (s *TacticService) GetTactic(ctx context.Context, id string, callerToken string) (*models.TacticView, error) {
	customerID, err := s.auth.ResolveTenant(ctx, callerToken)
	if err != nil {
		return nil, err
	}
	t, err := s.store.Get(ctx, id, customerID)
	if err != nil || t == nil {
		return nil, err
	}
	return hydrate(t, s.product(ctx, t.MediaProductID)), nil
}

func (s *TacticService) ListTactics(ctx context.Context, campaignID string, callerToken string) ([]models.TacticView, error) {
	customerID, err := s.auth.ResolveTenant(ctx, callerToken)
	if err != nil {
		return nil, err
	}
	tactics, err := s.store.List(ctx, campaignID, customerID)
	if err != nil {
		return nil, err
	}

	products := map[string]models.MediaProduct{}
	views := make([]models.TacticView, 0, len(tactics))
	for i := range tactics {
		p, ok := products[tactics[i].MediaProductID]
		if !ok {
			p = s.product(ctx, tactics[i].MediaProductID)
			products[p.ID] = p
		}
		views = append(views, *hydrate(&tactics[i], p))
	}
	return views, nil
}

// UpdateTactic edits budget, pricing and descriptive fields. Pricing is
// recomputed whenever cpm, signal or currency change; the AXE segment and
// sales agent never change.
func (s *TacticService) UpdateTactic(ctx context.Context, id string, updates TacticUpdates, callerToken string) error {
	customerID, err := s.auth.ResolveTenant(ctx, callerToken)
	if err != nil {
		return err
	}
	if updates.empty() {
		return invalid("no fields to update")
	}
	if err := updates.validate(s.currency); err != nil {
		return err
	}

	existing, err := s.store.Get(ctx, id, customerID)
	if err != nil {
		return err
	}
	if existing == nil {
		return models.ErrNotFound
	}
	if existing.Status == models.TacticStatusInactive {
		return invalid("tactic %s is inactive", id)
	}

	u := models.TacticUpdate{
		Name:        updates.Name,
		Description: updates.Description,
		Budget:      updates.Budget,
		SignalID:    updates.SignalID,
	}

	currency := existing.Pricing.Currency
	if updates.Budget != nil {
		currency = updates.Budget.Currency
	}
	if updates.CPM != nil || updates.SignalID != nil || currency != existing.Pricing.Currency {
		cpm := existing.Pricing.CPM
		if updates.CPM != nil {
			cpm = *updates.CPM
		}
		signalID := existing.SignalID
		if updates.SignalID != nil {
			signalID = blankToNil(u.SignalID)
		}
		p := s.pricing.Effective(cpm, signalID, currency)
		u.Pricing = &p
	}

	if err := s.store.Update(ctx, id, customerID, u); err != nil {
		return err
	}

	meta := map[string]any{}
	if u.Pricing != nil {
		meta["total_cpm"] = u.Pricing.TotalCPM
	}
	if u.Budget != nil {
		meta["budget_amount"] = u.Budget.Amount
	}
	s.logAudit(ctx, existing, "user", "tactic_updated", meta)
	return nil
}

// UpdateTacticStatus is the internal status hook used by operators and
// sales agent callbacks. It carries no caller token.
func (s *TacticService) UpdateTacticStatus(ctx context.Context, id string, status models.TacticStatus) error {
	if !models.IsValidTacticStatus(status) {
		return invalid("unknown status %q", status)
	}

	t, err := s.store.GetUnscoped(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return models.ErrNotFound
	}
	if t.Status == status {
		return nil
	}
	if !models.IsValidTacticTransition(t.Status, status) {
		return fmt.Errorf("%w: %s to %s", models.ErrInvalidTransition, t.Status, status)
	}

	// Guarded on the status read above, so a concurrent soft delete is not
	// undone.
	if err := s.store.UpdateStatus(ctx, id, t.Status, status); err != nil {
		return err
	}
	old := t.Status
	t.Status = status
	recordStatusChange(ctx, s.audit, s.publisher, s.log, t, old, "system")
	return nil
}

func (s *TacticService) SoftDeleteTactic(ctx context.Context, id string, callerToken string) error {
	customerID, err := s.auth.ResolveTenant(ctx, callerToken)
	if err != nil {
		return err
	}

	t, err := s.store.Get(ctx, id, customerID)
	if err != nil {
		return err
	}
	if t == nil {
		return models.ErrNotFound
	}
	if t.Status == models.TacticStatusInactive {
		return nil
	}

	if err := s.store.SoftDelete(ctx, id, customerID); err != nil {
		return err
	}

	s.logAudit(ctx, t, "user", "tactic_deleted", map[string]any{"previous_status": string(t.Status)})
	_ = s.publisher.Publish(ctx, events.StreamTactics, events.Event{
		Type:       events.EventTacticDeleted,
		CustomerID: t.CustomerID,
		Payload:    map[string]any{"tactic_id": t.ID, "campaign_id": t.CampaignID},
	})
	return nil
}

// GetTacticEvents returns the audit trail of a tactic owned by the caller.
func (s *TacticService) GetTacticEvents(ctx context.Context, id string, callerToken string) ([]models.AuditLog, error) {
	customerID, err := s.auth.ResolveTenant(ctx, callerToken)
	if err != nil {
		return nil, err
	}
	t, err := s.store.Get(ctx, id, customerID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, models.ErrNotFound
	}
	return s.audit.GetByEntity(ctx, "tactic", id, 100, 0)
}

// --- helpers ---

// product never fails: lookup errors and misses yield a placeholder.
func (s *TacticService) product(ctx context.Context, id string) models.MediaProduct {
	p, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		s.log.Warn("media product lookup failed", zap.String("media_product_id", id), zap.Error(err))
		return models.PlaceholderProduct(id)
	}
	if p == nil {
		return models.PlaceholderProduct(id)
	}
	return *p
}

func (s *TacticService) logAudit(ctx context.Context, t *models.Tactic, actorType, action string, meta map[string]any) {
	customerID := t.CustomerID
	if err := s.audit.Log(ctx, models.AuditLog{
		CustomerID: &customerID,
		ActorType:  actorType,
		Action:     action,
		EntityType: "tactic",
		EntityID:   t.ID,
		Meta:       meta,
	}); err != nil {
		s.log.Warn("audit log failed", zap.String("tactic_id", t.ID), zap.String("action", action), zap.Error(err))
	}
}

func hydrate(t *models.Tactic, product models.MediaProduct) *models.TacticView {
	return &models.TacticView{
		Tactic:       *t,
		MediaProduct: product,
		Targeting:    targetingSummary(t, product),
	}
}

func targetingSummary(t *models.Tactic, product models.MediaProduct) models.TargetingSummary {
	parts := []string{fmt.Sprintf("%s on %s", product.Name, product.PublisherName)}
	if t.SignalID != nil {
		parts = append(parts, "signal "+*t.SignalID)
	}
	if t.BrandStoryID != nil {
		parts = append(parts, "brand story "+*t.BrandStoryID)
	}
	return models.TargetingSummary{
		SignalID:          t.SignalID,
		BrandStoryID:      t.BrandStoryID,
		AxeIncludeSegment: t.AxeIncludeSegment,
		Description:       strings.Join(parts, ", "),
	}
}
