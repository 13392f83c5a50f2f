package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/variantcatalog/internal/client"
	"github.com/utafrali/variantcatalog/internal/domain"
	"github.com/utafrali/variantcatalog/internal/repository"
)

// --- Mock Repository ---

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) ReplaceForProduct(ctx context.Context, productID string, combinations []domain.ProductCombination) error {
	args := m.Called(ctx, productID, combinations)
	return args.Error(0)
}

func (m *mockRepo) ListByProduct(ctx context.Context, productID string) ([]domain.ProductCombination, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductCombination), args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*domain.ProductCombination, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductCombination), args.Error(1)
}

func (m *mockRepo) Search(ctx context.Context, filter repository.CombinationFilter) ([]domain.ProductCombination, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.ProductCombination), args.Int(1), args.Error(2)
}

func (m *mockRepo) UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.ProductCombination, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductCombination), args.Error(1)
}

func (m *mockRepo) DeleteByProduct(ctx context.Context, productID string) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock Cache ---

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, productID string) ([]domain.ProductCombination, bool, error) {
	args := m.Called(ctx, productID)
	var out []domain.ProductCombination
	if v := args.Get(0); v != nil {
		out = v.([]domain.ProductCombination)
	}
	return out, args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, productID string, combinations []domain.ProductCombination) error {
	args := m.Called(ctx, productID, combinations)
	return args.Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// --- Mock Events ---

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishCombinationsGenerated(ctx context.Context, productID string, combinations []domain.ProductCombination) error {
	args := m.Called(ctx, productID, combinations)
	return args.Error(0)
}

func (m *mockEvents) PublishCombinationsDeleted(ctx context.Context, productID string, deleted int64, reason string) error {
	args := m.Called(ctx, productID, deleted, reason)
	return args.Error(0)
}

func (m *mockEvents) PublishStockUpdated(ctx context.Context, c *domain.ProductCombination) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// --- Mock Product Lookup ---

type mockProducts struct {
	mock.Mock
}

func (m *mockProducts) GetProduct(ctx context.Context, id string) (*client.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Product), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}
