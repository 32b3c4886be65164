package mocks

import (
	"context"
	"encoding/json"

	"github.com/example/ec-checkout/internal/infrastructure/store"
)

// MockDocumentStore wraps the in-memory store and records writes
type MockDocumentStore struct {
	*store.MemoryDocumentStore

	CreateCalls []string
	PutCalls    []string
	DeleteCalls []string

	CreateErr error
	PutErr    error
	GetErr    error
	ListErr   error
}

func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{MemoryDocumentStore: store.NewMemoryDocumentStore()}
}

func (m *MockDocumentStore) Create(ctx context.Context, collection, id string, doc json.RawMessage) error {
	m.CreateCalls = append(m.CreateCalls, collection+"/"+id)
	if m.CreateErr != nil {
		return m.CreateErr
	}
	return m.MemoryDocumentStore.Create(ctx, collection, id, doc)
}

func (m *MockDocumentStore) Put(ctx context.Context, collection, id string, doc json.RawMessage) error {
	m.PutCalls = append(m.PutCalls, collection+"/"+id)
	if m.PutErr != nil {
		return m.PutErr
	}
	return m.MemoryDocumentStore.Put(ctx, collection, id, doc)
}

func (m *MockDocumentStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.MemoryDocumentStore.Get(ctx, collection, id)
}

func (m *MockDocumentStore) Delete(ctx context.Context, collection, id string) error {
	m.DeleteCalls = append(m.DeleteCalls, collection+"/"+id)
	return m.MemoryDocumentStore.Delete(ctx, collection, id)
}

func (m *MockDocumentStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.MemoryDocumentStore.List(ctx, collection)
}
