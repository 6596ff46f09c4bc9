// Package mocks provides testify mocks and fixture builders for the ports.
package mocks

import (
	"context"

	"biolink-gateway/application/ports"

	"github.com/stretchr/testify/mock"
)

// MockGraphStore is a testify mock of ports.GraphStore
type MockGraphStore struct {
	mock.Mock
}

var _ ports.GraphStore = (*MockGraphStore)(nil)

func (m *MockGraphStore) FindByPrimaryKey(ctx context.Context, primaryKey, label string) ([]ports.StoreNode, error) {
	args := m.Called(ctx, primaryKey, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.StoreNode), args.Error(1)
}

func (m *MockGraphStore) ListSpecies(ctx context.Context) ([]ports.StoreNode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.StoreNode), args.Error(1)
}

func (m *MockGraphStore) Neighborhood(ctx context.Context, primaryKey string, limit int) ([]ports.StorePath, error) {
	args := m.Called(ctx, primaryKey, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.StorePath), args.Error(1)
}

func (m *MockGraphStore) GeneToPhenotype(ctx context.Context, primaryKey string) ([]ports.StorePath, error) {
	args := m.Called(ctx, primaryKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.StorePath), args.Error(1)
}

func (m *MockGraphStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
