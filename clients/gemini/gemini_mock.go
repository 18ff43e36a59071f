package gemini

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gadminbot/clients"
)

// MockGenerativeClient is a mock implementation of clients.GenerativeClient
type MockGenerativeClient struct {
	mock.Mock
}

func (m *MockGenerativeClient) Complete(
	ctx context.Context,
	prompt string,
	opts clients.CompleteOptions,
) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}
