package docstore

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"
)

// MockDocumentStoreClient is a mock implementation of clients.DocumentStoreClient
type MockDocumentStoreClient struct {
	mock.Mock
}

func (m *MockDocumentStoreClient) GetPromptTemplate(ctx context.Context) (mo.Option[string], error) {
	args := m.Called(ctx)
	return args.Get(0).(mo.Option[string]), args.Error(1)
}

func (m *MockDocumentStoreClient) GetFaqDocument(ctx context.Context) (mo.Option[string], error) {
	args := m.Called(ctx)
	return args.Get(0).(mo.Option[string]), args.Error(1)
}
