package mocks

import (
	"context"

	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// Registry is a mock for project.Registry.
type Registry struct {
	mock.Mock
}

func (m *Registry) Get(ctx context.Context, name string) (*project.Entry, error) {
	args := m.Called(ctx, name)
	if entry, ok := args.Get(0).(*project.Entry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Registry) GetByPath(ctx context.Context, path string) (*project.Entry, error) {
	args := m.Called(ctx, path)
	if entry, ok := args.Get(0).(*project.Entry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Registry) List(ctx context.Context) ([]project.Entry, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Registry) Put(ctx context.Context, entry *project.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *Registry) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// ConfigRepository is a mock for project.ConfigRepository.
type ConfigRepository struct {
	mock.Mock
}

func (m *ConfigRepository) Lookup(root string) (*project.Config, bool, error) {
	args := m.Called(root)
	if cfg, ok := args.Get(0).(*project.Config); ok {
		return cfg, args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *ConfigRepository) Load(root string) (*project.Config, error) {
	args := m.Called(root)
	if cfg, ok := args.Get(0).(*project.Config); ok {
		return cfg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ConfigRepository) Write(root string, cfg *project.Config) error {
	args := m.Called(root, cfg)
	return args.Error(0)
}

// Trainer is a mock for project.Trainer.
type Trainer struct {
	mock.Mock
}

func (m *Trainer) Retrain(ctx context.Context, root string) error {
	args := m.Called(ctx, root)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
