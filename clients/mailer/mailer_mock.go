package mailer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockMailClient is a mock implementation of clients.MailClient
type MockMailClient struct {
	mock.Mock
}

func (m *MockMailClient) Send(ctx context.Context, to, from, subject, body string) error {
	args := m.Called(ctx, to, from, subject, body)
	return args.Error(0)
}
