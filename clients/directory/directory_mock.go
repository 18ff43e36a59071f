package directory

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gadminbot/models"
)

// MockDirectoryClient is a mock implementation of clients.DirectoryClient
type MockDirectoryClient struct {
	mock.Mock
}

func (m *MockDirectoryClient) GetUser(ctx context.Context, userKey string) (*models.User, error) {
	args := m.Called(ctx, userKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDirectoryClient) ListUsers(
	ctx context.Context,
	domain, query string,
	maxResults int,
) ([]models.User, error) {
	args := m.Called(ctx, domain, query, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockDirectoryClient) GetGroup(ctx context.Context, groupKey string) (*models.Group, error) {
	args := m.Called(ctx, groupKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockDirectoryClient) ListGroupsForUser(ctx context.Context, userKey string) ([]models.Group, error) {
	args := m.Called(ctx, userKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Group), args.Error(1)
}

func (m *MockDirectoryClient) GetMembership(ctx context.Context, groupKey, memberKey string) (*models.Member, error) {
	args := m.Called(ctx, groupKey, memberKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockDirectoryClient) ListMembers(ctx context.Context, groupKey string) ([]models.Member, error) {
	args := m.Called(ctx, groupKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Member), args.Error(1)
}

func (m *MockDirectoryClient) InsertMember(ctx context.Context, groupKey string, member models.Member) error {
	args := m.Called(ctx, groupKey, member)
	return args.Error(0)
}

func (m *MockDirectoryClient) DeleteMember(ctx context.Context, groupKey, memberKey string) error {
	args := m.Called(ctx, groupKey, memberKey)
	return args.Error(0)
}

func (m *MockDirectoryClient) UpdateMemberRole(
	ctx context.Context,
	groupKey, memberKey string,
	role models.MemberRole,
) error {
	args := m.Called(ctx, groupKey, memberKey, role)
	return args.Error(0)
}
