package mocks

import (
	"cartwidget/internal/page"
	"cartwidget/internal/service/widget"

	"context"

	"github.com/stretchr/testify/mock"
)

type Service struct {
	mock.Mock
}

func (m *Service) View(ctx context.Context, sessionID string) (widget.Snapshot, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(widget.Snapshot), args.Error(1)
}

func (m *Service) AddToCart(ctx context.Context, sessionID string, in page.TriggerInput) (widget.Snapshot, error) {
	args := m.Called(ctx, sessionID, in)
	return args.Get(0).(widget.Snapshot), args.Error(1)
}

func (m *Service) Export(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}
