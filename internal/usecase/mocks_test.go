package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/expo-leads/internal/entity"
	"github.com/xavierca1/expo-leads/internal/infra/integration/kommo"
	"github.com/xavierca1/expo-leads/internal/infra/mail"
	"github.com/xavierca1/expo-leads/internal/infra/queue"
	"github.com/xavierca1/expo-leads/internal/infra/storage"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg *mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, lead *entity.Lead, exhibitionName string, products []*entity.Product) entity.NotificationOutcome {
	args := m.Called(ctx, lead, exhibitionName, products)
	return args.Get(0).(entity.NotificationOutcome)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLeadCaptured(ctx context.Context, event queue.LeadCapturedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) PublishRedelivery(ctx context.Context, req queue.RedeliveryRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// memFiles serves files from a map; absent keys read as storage.ErrNotFound.
type memFiles map[string][]byte

func (f memFiles) Read(ctx context.Context, ref string) ([]byte, error) {
	data, ok := f[ref]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

type MockCRM struct {
	mock.Mock
}

func (m *MockCRM) CreateLead(ctx context.Context, input kommo.LeadInput) (int, error) {
	args := m.Called(ctx, input)
	return args.Int(0), args.Error(1)
}
