package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mosala/cashdesk_backend/internal/apperrors"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/core/services"
	"github.com/mosala/cashdesk_backend/internal/utils"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByProviderID(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	args := m.Called(ctx, provider, providerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string, updatedBy string) error {
	args := m.Called(ctx, userID, passwordHash, updatedBy)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedBy string) error {
	args := m.Called(ctx, userID, deletedBy)
	return args.Error(0)
}

type UserServiceTestSuite struct {
	suite.Suite
	mockRepo *MockUserRepository
	service  portssvc.UserSvcFacade
	adminID  string
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockRepo, nil)
	suite.adminID = uuid.NewString()
}

func (suite *UserServiceTestSuite) TestCreateUser_HashesPassword() {
	ctx := context.Background()

	var savedUser domain.User
	suite.mockRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).
		Run(func(args mock.Arguments) { savedUser = args.Get(1).(domain.User) }).Return(nil).Once()

	created, err := suite.service.CreateUser(ctx, "mkabila", "Mireille Kabila", "mkabila@example.cd", "motdepasse1", domain.RoleTeller, suite.adminID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.Empty(created.PasswordHash)
	suite.NotEmpty(savedUser.PasswordHash)
	suite.NoError(bcrypt.CompareHashAndPassword([]byte(savedUser.PasswordHash), []byte("motdepasse1")))
	suite.Equal(domain.ProviderLocal, savedUser.AuthProvider)
	suite.Equal(suite.adminID, savedUser.CreatedBy)
}

func (suite *UserServiceTestSuite) TestCreateUser_ShortPasswordRejected() {
	ctx := context.Background()

	_, err := suite.service.CreateUser(ctx, "mkabila", "Mireille", "m@example.cd", "court", domain.RoleTeller, suite.adminID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCreateUser_UnknownRoleRejected() {
	ctx := context.Background()

	_, err := suite.service.CreateUser(ctx, "mkabila", "Mireille", "m@example.cd", "motdepasse1", domain.UserRole("SUPERVISOR"), suite.adminID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UserServiceTestSuite) TestChangePassword_WrongCurrentRejected() {
	ctx := context.Background()
	userID := uuid.NewString()
	hash, err := utils.HashPassword("bonmotdepasse")
	suite.Require().NoError(err)
	user := &domain.User{UserID: userID, AuthProvider: domain.ProviderLocal, PasswordHash: hash}

	suite.mockRepo.On("FindUserByID", ctx, userID).Return(user, nil).Once()

	err = suite.service.ChangePassword(ctx, userID, "mauvais", "nouveaumotdepasse")

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestChangePassword_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	hash, err := utils.HashPassword("bonmotdepasse")
	suite.Require().NoError(err)
	user := &domain.User{UserID: userID, AuthProvider: domain.ProviderLocal, PasswordHash: hash}

	suite.mockRepo.On("FindUserByID", ctx, userID).Return(user, nil).Once()
	suite.mockRepo.On("UpdatePassword", ctx, userID, mock.AnythingOfType("string"), userID).Return(nil).Once()

	err = suite.service.ChangePassword(ctx, userID, "bonmotdepasse", "nouveaumotdepasse")

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestChangePassword_OAuthAccountRejected() {
	ctx := context.Background()
	userID := uuid.NewString()
	user := &domain.User{UserID: userID, AuthProvider: domain.ProviderGoogle}

	suite.mockRepo.On("FindUserByID", ctx, userID).Return(user, nil).Once()

	err := suite.service.ChangePassword(ctx, userID, "x", "nouveaumotdepasse")

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UserServiceTestSuite) TestCreateOAuthUser_ReturnsExisting() {
	ctx := context.Background()
	existing := &domain.User{UserID: uuid.NewString(), AuthProvider: domain.ProviderGoogle, ProviderUserID: "goog-123"}

	suite.mockRepo.On("FindUserByProviderID", ctx, domain.ProviderGoogle, "goog-123").Return(existing, nil).Once()

	user, err := suite.service.CreateOAuthUser(ctx, "Mireille Kabila", "mkabila@example.cd", domain.ProviderGoogle, "goog-123")

	suite.Require().NoError(err)
	suite.Equal(existing.UserID, user.UserID)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCreateOAuthUser_ProvisionsOnFirstSignIn() {
	ctx := context.Background()

	suite.mockRepo.On("FindUserByProviderID", ctx, domain.ProviderGoogle, "goog-456").Return(nil, apperrors.ErrNotFound).Once()

	var savedUser domain.User
	suite.mockRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).
		Run(func(args mock.Arguments) { savedUser = args.Get(1).(domain.User) }).Return(nil).Once()

	user, err := suite.service.CreateOAuthUser(ctx, "Mireille Kabila", "mkabila@example.cd", domain.ProviderGoogle, "goog-456")

	suite.Require().NoError(err)
	suite.Equal(domain.ProviderGoogle, savedUser.AuthProvider)
	suite.Equal("goog-456", savedUser.ProviderUserID)
	suite.Empty(savedUser.PasswordHash)
	suite.Contains(savedUser.Username, "mkabila-")
	suite.Equal(user.UserID, savedUser.UserID)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
