package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// MockAuthService is a mock implementation of AuthServiceInterface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) RegisterUser(ctx context.Context, reg *models.UserRegistration, ip string) (*models.User, error) {
	args := m.Called(ctx, reg, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) AuthenticateUser(ctx context.Context, creds *models.UserCredentials, ip string) (*models.LoginResponse, error) {
	args := m.Called(ctx, creds, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResponse), args.Error(1)
}

// MockUserService is a mock implementation of UserServiceInterface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ChangeUsername(ctx context.Context, userID int64, newUsername string, actor *models.User) (*models.User, error) {
	args := m.Called(ctx, userID, newUsername, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetNameHistory(ctx context.Context, userID int64) ([]*models.NameChange, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.NameChange), args.Error(1)
}

// MockArchiveService is a mock implementation of ArchiveServiceInterface
type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) ArchiveUser(ctx context.Context, userID int64) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockArchiveService) RemoveArchive(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

// MockBanService is a mock implementation of BanServiceInterface
type MockBanService struct {
	mock.Mock
}

func (m *MockBanService) FindBan(ctx context.Context, query models.BanQuery) (*models.Ban, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ban), args.Error(1)
}

func (m *MockBanService) CreateBan(ctx context.Context, req *models.BanCreate) (*models.Ban, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ban), args.Error(1)
}

func (m *MockBanService) GetBan(ctx context.Context, id int64) (*models.Ban, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ban), args.Error(1)
}

func (m *MockBanService) ListBans(ctx context.Context, params utils.PaginationParams) ([]*models.Ban, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Ban), args.Int(1), args.Error(2)
}

func (m *MockBanService) DeleteBan(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBanService) DeleteExpiredBans(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockRetentionService is a mock implementation of RetentionServiceInterface
type MockRetentionService struct {
	mock.Mock
}

func (m *MockRetentionService) RemoveOldIPs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
