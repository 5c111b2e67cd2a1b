package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mosala/cashdesk_backend/internal/apperrors"
	"github.com/mosala/cashdesk_backend/internal/core/builders"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/core/services"
)

// --- Mock WalletRepository ---
type MockWalletRepository struct {
	mock.Mock
}

var _ portsrepo.WalletRepository = (*MockWalletRepository)(nil)

func (m *MockWalletRepository) ResolveWallet(ctx context.Context, walletType domain.WalletType, serviceID *string, currency domain.Currency) (*domain.Wallet, error) {
	args := m.Called(ctx, walletType, serviceID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) SaveWallet(ctx context.Context, wallet domain.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) FindWalletsByIDsForUpdate(ctx context.Context, tx pgx.Tx, walletIDs []string) (map[string]domain.Wallet, error) {
	args := m.Called(ctx, tx, walletIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateWalletBalancesInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, userID string, at time.Time) error {
	args := m.Called(ctx, tx, deltas, userID, at)
	return args.Error(0)
}

type WalletServiceTestSuite struct {
	suite.Suite
	mockTxnRepo    *MockTransactionRepository
	mockWalletRepo *MockWalletRepository
	service        portssvc.WalletSvcFacade
	userID         string
	serviceID      string
}

func (suite *WalletServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockWalletRepo = new(MockWalletRepository)
	suite.service = services.NewWalletService(suite.mockTxnRepo, suite.mockWalletRepo, nil)
	suite.userID = uuid.NewString()
	suite.serviceID = uuid.NewString()
}

func (suite *WalletServiceTestSuite) expectWallet(walletID string, walletType domain.WalletType, currency domain.Currency) {
	var serviceMatcher interface{} = (*string)(nil)
	if walletType == domain.WalletVirtual {
		serviceMatcher = &suite.serviceID
	}
	suite.mockWalletRepo.On("ResolveWallet", mock.Anything, walletType, serviceMatcher, currency).
		Return(&domain.Wallet{WalletID: walletID, WalletType: walletType, Currency: currency, IsActive: true}, nil).Once()
}

// captureDeltas wires SaveTransaction to succeed and records the deltas it was
// handed.
func (suite *WalletServiceTestSuite) captureDeltas(deltas *map[string]decimal.Decimal, header *domain.TransactionHeader) {
	suite.mockTxnRepo.On("SaveTransaction", mock.Anything, mock.AnythingOfType("domain.TransactionHeader"),
		mock.AnythingOfType("[]domain.PostingLine"), mock.Anything).
		Run(func(args mock.Arguments) {
			*header = args.Get(1).(domain.TransactionHeader)
			*deltas = args.Get(3).(map[string]decimal.Decimal)
		}).Return(nil).Once()
}

func (suite *WalletServiceTestSuite) TestSupply_EntryIncreasesCash() {
	ctx := context.Background()
	suite.expectWallet("cash-usd", domain.WalletCash, domain.USD)

	var deltas map[string]decimal.Decimal
	var saved domain.TransactionHeader
	suite.captureDeltas(&deltas, &saved)

	created, err := suite.service.Supply(ctx, builders.SupplyParams{
		Direction: domain.SupplyEntry,
		Currency:  domain.USD,
		Amount:    decimal.NewFromInt(500),
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusValidated, created.Status)
	suite.Require().NotNil(created.ValidatedBy)
	suite.Equal(suite.userID, *created.ValidatedBy)
	suite.Require().Len(deltas, 1)
	suite.True(deltas["cash-usd"].Equal(decimal.NewFromInt(500)))
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *WalletServiceTestSuite) TestSupply_ExitWithServiceDecreasesBoth() {
	ctx := context.Background()
	suite.expectWallet("cash-cdf", domain.WalletCash, domain.CDF)
	suite.expectWallet("svc-cdf", domain.WalletVirtual, domain.CDF)

	var deltas map[string]decimal.Decimal
	var saved domain.TransactionHeader
	suite.captureDeltas(&deltas, &saved)

	_, err := suite.service.Supply(ctx, builders.SupplyParams{
		Direction: domain.SupplyExit,
		ServiceID: suite.serviceID,
		Currency:  domain.CDF,
		Amount:    decimal.NewFromInt(20000),
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(deltas, 2)
	suite.True(deltas["cash-cdf"].Equal(decimal.NewFromInt(-20000)))
	suite.True(deltas["svc-cdf"].Equal(decimal.NewFromInt(-20000)))
}

func (suite *WalletServiceTestSuite) TestSupply_InvalidDirection() {
	ctx := context.Background()

	_, err := suite.service.Supply(ctx, builders.SupplyParams{
		Direction: domain.SupplyDirection("SIDEWAYS"),
		Currency:  domain.USD,
		Amount:    decimal.NewFromInt(10),
	}, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WalletServiceTestSuite) TestMixedWithdrawal_Deltas() {
	ctx := context.Background()
	suite.expectWallet("svc-usd", domain.WalletVirtual, domain.USD)
	suite.expectWallet("cash-usd", domain.WalletCash, domain.USD)
	suite.expectWallet("cash-cdf", domain.WalletCash, domain.CDF)

	var deltas map[string]decimal.Decimal
	var saved domain.TransactionHeader
	suite.captureDeltas(&deltas, &saved)

	created, err := suite.service.MixedWithdrawal(ctx, builders.MixedWithdrawalParams{
		ServiceID:       suite.serviceID,
		RequestCurrency: domain.USD,
		PayoutCurrency:  domain.CDF,
		TotalAmount:     decimal.NewFromInt(100),
		CashAvailable:   decimal.NewFromInt(40),
		Commission:      decimal.NewFromInt(5),
		Rate:            decimal.NewFromInt(2700),
	}, suite.userID)

	suite.Require().NoError(err)
	suite.True(created.MultiCurrency)
	suite.Require().Len(deltas, 3)
	suite.True(deltas["svc-usd"].Equal(decimal.NewFromInt(100)))
	// 40 paid out plus 5 commission in the request currency.
	suite.True(deltas["cash-usd"].Equal(decimal.NewFromInt(-45)))
	// The 60 USD remainder at 2700 leaves the CDF till.
	suite.True(deltas["cash-cdf"].Equal(decimal.NewFromInt(-162000)))
}

func (suite *WalletServiceTestSuite) TestMixedDeposit_Deltas() {
	ctx := context.Background()
	suite.expectWallet("svc-usd", domain.WalletVirtual, domain.USD)
	suite.expectWallet("cash-usd", domain.WalletCash, domain.USD)
	suite.expectWallet("cash-cdf", domain.WalletCash, domain.CDF)

	var deltas map[string]decimal.Decimal
	var saved domain.TransactionHeader
	suite.captureDeltas(&deltas, &saved)

	_, err := suite.service.MixedDeposit(ctx, builders.MixedDepositParams{
		ServiceID:       suite.serviceID,
		RequestCurrency: domain.USD,
		FundingCurrency: domain.CDF,
		TotalAmount:     decimal.NewFromInt(100),
		CashReceived:    decimal.NewFromInt(40),
		Commission:      decimal.NewFromInt(5),
		Rate:            decimal.NewFromInt(2700),
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(deltas, 3)
	suite.True(deltas["svc-usd"].Equal(decimal.NewFromInt(100)))
	suite.True(deltas["cash-usd"].Equal(decimal.NewFromInt(35)))
	suite.True(deltas["cash-cdf"].Equal(decimal.NewFromInt(162000)))
}

func (suite *WalletServiceTestSuite) TestMixedWithdrawal_CommissionFreeSkipsZeroDelta() {
	ctx := context.Background()
	suite.expectWallet("svc-usd", domain.WalletVirtual, domain.USD)
	suite.expectWallet("cash-cdf", domain.WalletCash, domain.CDF)

	var deltas map[string]decimal.Decimal
	var saved domain.TransactionHeader
	suite.captureDeltas(&deltas, &saved)

	// Nothing paid from the USD till and no commission: the USD cash wallet is
	// never resolved, never locked.
	_, err := suite.service.MixedWithdrawal(ctx, builders.MixedWithdrawalParams{
		ServiceID:       suite.serviceID,
		RequestCurrency: domain.USD,
		PayoutCurrency:  domain.CDF,
		TotalAmount:     decimal.NewFromInt(100),
		CashAvailable:   decimal.Zero,
		Commission:      decimal.Zero,
		Rate:            decimal.NewFromInt(2700),
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(deltas, 2)
	suite.mockWalletRepo.AssertNumberOfCalls(suite.T(), "ResolveWallet", 2)
}

func (suite *WalletServiceTestSuite) TestSupply_InsufficientFundsSurfaces() {
	ctx := context.Background()
	suite.expectWallet("cash-usd", domain.WalletCash, domain.USD)

	suite.mockTxnRepo.On("SaveTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(apperrors.ErrInsufficientFunds).Once()

	_, err := suite.service.Supply(ctx, builders.SupplyParams{
		Direction: domain.SupplyExit,
		Currency:  domain.USD,
		Amount:    decimal.NewFromInt(1000000),
	}, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func TestWalletServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}
