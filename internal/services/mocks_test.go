package services

import (
	"context"

	"github.com/ads-marketplace/tactics/internal/events"
	"github.com/ads-marketplace/tactics/internal/models"
	"github.com/stretchr/testify/mock"
)

type mockTenants struct{ mock.Mock }

func (m *mockTenants) ResolveTenant(ctx context.Context, token string) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}

type mockAgents struct{ mock.Mock }

func (m *mockAgents) FindForPublisher(ctx context.Context, publisherID string, customerID int64) (*models.SalesAgent, error) {
	args := m.Called(ctx, publisherID, customerID)
	a, _ := args.Get(0).(*models.SalesAgent)
	return a, args.Error(1)
}

type mockBriefs struct{ mock.Mock }

func (m *mockBriefs) GetSanitizedBrief(ctx context.Context, campaignID string, customerID int64) (*string, error) {
	args := m.Called(ctx, campaignID, customerID)
	b, _ := args.Get(0).(*string)
	return b, args.Error(1)
}

type mockExecutor struct{ mock.Mock }

func (m *mockExecutor) ExecuteMediaBuy(ctx context.Context, t models.Tactic, agent models.SalesAgent, brief string, customerID int64) (*MediaBuyResult, error) {
	args := m.Called(ctx, t, agent, brief, customerID)
	r, _ := args.Get(0).(*MediaBuyResult)
	return r, args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, stream string, event events.Event) error {
	args := m.Called(ctx, stream, event)
	return args.Error(0)
}
