package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mosala/cashdesk_backend/internal/apperrors"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/core/services"
)

// --- Mock PartnerRepository ---
type MockPartnerRepository struct {
	mock.Mock
}

var _ portsrepo.PartnerRepository = (*MockPartnerRepository)(nil)

func (m *MockPartnerRepository) SavePartnerService(ctx context.Context, service domain.PartnerService) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}

func (m *MockPartnerRepository) FindPartnerServiceByID(ctx context.Context, serviceID string) (*domain.PartnerService, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PartnerService), args.Error(1)
}

func (m *MockPartnerRepository) ListPartnerServices(ctx context.Context, includeInactive bool) ([]domain.PartnerService, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PartnerService), args.Error(1)
}

func (m *MockPartnerRepository) UpdatePartnerService(ctx context.Context, service domain.PartnerService) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}

type PartnerServiceTestSuite struct {
	suite.Suite
	mockPartnerRepo *MockPartnerRepository
	mockWalletRepo  *MockWalletRepository
	service         portssvc.PartnerSvcFacade
	userID          string
}

func (suite *PartnerServiceTestSuite) SetupTest() {
	suite.mockPartnerRepo = new(MockPartnerRepository)
	suite.mockWalletRepo = new(MockWalletRepository)
	suite.service = services.NewPartnerService(suite.mockPartnerRepo, suite.mockWalletRepo, nil)
	suite.userID = uuid.NewString()
}

func (suite *PartnerServiceTestSuite) TestCreate_OpensOneWalletPerCurrency() {
	ctx := context.Background()

	suite.mockPartnerRepo.On("SavePartnerService", ctx, mock.AnythingOfType("domain.PartnerService")).Return(nil).Once()

	currencies := make(map[domain.Currency]bool)
	suite.mockWalletRepo.On("SaveWallet", ctx, mock.AnythingOfType("domain.Wallet")).
		Run(func(args mock.Arguments) {
			wallet := args.Get(1).(domain.Wallet)
			currencies[wallet.Currency] = true
			suite.Equal(domain.WalletVirtual, wallet.WalletType)
			suite.True(wallet.Balance.IsZero())
			suite.True(wallet.IsActive)
			suite.Require().NotNil(wallet.ServiceID)
		}).Return(nil).Times(len(domain.Currencies))

	created, err := suite.service.CreatePartnerService(ctx, "Airtel Money", "airtel", suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.ServiceID)
	suite.Equal("AIRTEL", created.Code)
	suite.True(created.IsActive)
	suite.True(currencies[domain.USD])
	suite.True(currencies[domain.CDF])

	suite.mockPartnerRepo.AssertExpectations(suite.T())
	suite.mockWalletRepo.AssertExpectations(suite.T())
}

func (suite *PartnerServiceTestSuite) TestCreate_BlankNameRejected() {
	ctx := context.Background()

	_, err := suite.service.CreatePartnerService(ctx, "  ", "CODE", suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockPartnerRepo.AssertNotCalled(suite.T(), "SavePartnerService", mock.Anything, mock.Anything)
}

func (suite *PartnerServiceTestSuite) TestCreate_DuplicateCodeSurfaces() {
	ctx := context.Background()

	suite.mockPartnerRepo.On("SavePartnerService", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreatePartnerService(ctx, "Airtel Money", "AIRTEL", suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockWalletRepo.AssertNotCalled(suite.T(), "SaveWallet", mock.Anything, mock.Anything)
}

func (suite *PartnerServiceTestSuite) TestDeactivate_Success() {
	ctx := context.Background()
	serviceID := uuid.NewString()
	existing := &domain.PartnerService{ServiceID: serviceID, Name: "Airtel Money", Code: "AIRTEL", IsActive: true}

	suite.mockPartnerRepo.On("FindPartnerServiceByID", ctx, serviceID).Return(existing, nil).Once()
	suite.mockPartnerRepo.On("UpdatePartnerService", ctx, mock.MatchedBy(func(s domain.PartnerService) bool {
		return !s.IsActive && s.LastUpdatedBy == suite.userID
	})).Return(nil).Once()

	err := suite.service.DeactivatePartnerService(ctx, serviceID, suite.userID)

	suite.Require().NoError(err)
	suite.mockPartnerRepo.AssertExpectations(suite.T())
}

func (suite *PartnerServiceTestSuite) TestDeactivate_AlreadyInactiveIsNoOp() {
	ctx := context.Background()
	serviceID := uuid.NewString()
	existing := &domain.PartnerService{ServiceID: serviceID, IsActive: false}

	suite.mockPartnerRepo.On("FindPartnerServiceByID", ctx, serviceID).Return(existing, nil).Once()

	err := suite.service.DeactivatePartnerService(ctx, serviceID, suite.userID)

	suite.Require().NoError(err)
	suite.mockPartnerRepo.AssertNotCalled(suite.T(), "UpdatePartnerService", mock.Anything, mock.Anything)
}

func TestPartnerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PartnerServiceTestSuite))
}
