package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mosala/cashdesk_backend/internal/apperrors"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/dto"
	"github.com/mosala/cashdesk_backend/internal/handlers"
	"github.com/mosala/cashdesk_backend/internal/middleware"
)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Create(ctx context.Context, header domain.TransactionHeader, lines []domain.PostingLine, creatorUserID string) (*domain.TransactionHeader, error) {
	args := m.Called(ctx, header, lines, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionHeader), args.Error(1)
}
func (m *MockTransactionService) Validate(ctx context.Context, transactionID string, userID string) (bool, error) {
	args := m.Called(ctx, transactionID, userID)
	return args.Bool(0), args.Error(1)
}
func (m *MockTransactionService) Cancel(ctx context.Context, transactionID string, userID string) error {
	args := m.Called(ctx, transactionID, userID)
	return args.Error(0)
}
func (m *MockTransactionService) Get(ctx context.Context, transactionID string) (*domain.TransactionHeader, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionHeader), args.Error(1)
}
func (m *MockTransactionService) List(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.TransactionHeader, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionHeader), args.Error(1)
}
func (m *MockTransactionService) AddLine(ctx context.Context, transactionID string, line domain.PostingLine, userID string) (*domain.TransactionHeader, error) {
	args := m.Called(ctx, transactionID, line, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionHeader), args.Error(1)
}
func (m *MockTransactionService) UpdateLine(ctx context.Context, transactionID string, line domain.PostingLine, userID string) error {
	args := m.Called(ctx, transactionID, line, userID)
	return args.Error(0)
}
func (m *MockTransactionService) DeleteLine(ctx context.Context, transactionID string, lineID string, userID string) error {
	args := m.Called(ctx, transactionID, lineID, userID)
	return args.Error(0)
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Mock CorrectionService ---
type MockCorrectionService struct {
	mock.Mock
}

func (m *MockCorrectionService) Correct(ctx context.Context, originalTransactionID string, reason string, userID string) (*domain.TransactionHeader, error) {
	args := m.Called(ctx, originalTransactionID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionHeader), args.Error(1)
}

var _ portssvc.CorrectionSvcFacade = (*MockCorrectionService)(nil)

// --- Test Suite ---
type TransactionHandlerTestSuite struct {
	suite.Suite
	router                *gin.Engine
	mockTxnService        *MockTransactionService
	mockCorrectionService *MockCorrectionService
	jwtSecret             string
	userID                string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *TransactionHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "cashdesk-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *TransactionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.userID = uuid.NewString()

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockTxnService = new(MockTransactionService)
	suite.mockCorrectionService = new(MockCorrectionService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterTransactionRoutes(v1, suite.mockTxnService, suite.mockCorrectionService)
}

func (suite *TransactionHandlerTestSuite) doRequest(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			suite.FailNow("Failed to encode request body", err.Error())
		}
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *TransactionHandlerTestSuite) TestCreateDeposit_Success() {
	serviceID := uuid.NewString()
	created := &domain.TransactionHeader{
		TransactionID:     uuid.NewString(),
		Reference:         "DEPOSIT-20250114-ABC123",
		OperationType:     domain.OpDeposit,
		ReferenceCurrency: domain.USD,
		TotalAmount:       decimal.NewFromInt(150),
		Status:            domain.StatusDraft,
		AuditFields: domain.AuditFields{
			CreatedAt: time.Now().UTC(),
			CreatedBy: suite.userID,
		},
	}

	suite.mockTxnService.On("Create",
		mock.Anything,
		mock.MatchedBy(func(h domain.TransactionHeader) bool {
			return h.OperationType == domain.OpDeposit && h.TotalAmount.Equal(decimal.NewFromInt(150))
		}),
		mock.MatchedBy(func(lines []domain.PostingLine) bool {
			return len(lines) == 2
		}),
		suite.userID,
	).Return(created, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions/deposit", dto.DepositRequest{
		ServiceID: serviceID,
		Currency:  "USD",
		Amount:    decimal.NewFromInt(150),
	})

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.TransactionResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(created.Reference, resp.Reference)
	suite.Equal("DRAFT", resp.Status)

	suite.mockTxnService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestCreateDeposit_NonPositiveAmountRejected() {
	w := suite.doRequest(http.MethodPost, "/api/v1/transactions/deposit", dto.DepositRequest{
		ServiceID: uuid.NewString(),
		Currency:  "USD",
		Amount:    decimal.Zero,
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTxnService.AssertNotCalled(suite.T(), "Create")
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_UnbalancedReturns400() {
	suite.mockTxnService.On("Create", mock.Anything, mock.Anything, mock.Anything, suite.userID).
		Return(nil, fmt.Errorf("%w: USD debits 100 vs credits 50", apperrors.ErrLedgerImbalance)).Once()

	serviceID := uuid.NewString()
	w := suite.doRequest(http.MethodPost, "/api/v1/transactions", dto.CreateTransactionRequest{
		OperationType:     "DEPOSIT",
		ReferenceCurrency: "USD",
		TotalAmount:       decimal.NewFromInt(100),
		Lines: []dto.CreateLineRequest{
			{WalletType: "CASH", Currency: "USD", Sense: "DEBIT", Amount: decimal.NewFromInt(100)},
			{WalletType: "VIRTUAL", ServiceID: &serviceID, Currency: "USD", Sense: "CREDIT", Amount: decimal.NewFromInt(50)},
		},
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTxnService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestGetTransaction_NotFound() {
	transactionID := uuid.NewString()
	suite.mockTxnService.On("Get", mock.Anything, transactionID).
		Return(nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/transactions/"+transactionID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockTxnService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestValidateTransaction_ReportsApplied() {
	transactionID := uuid.NewString()
	suite.mockTxnService.On("Validate", mock.Anything, transactionID, suite.userID).
		Return(true, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions/"+transactionID+"/validate", nil)

	suite.Equal(http.StatusOK, w.Code)

	var resp map[string]bool
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp["applied"])

	suite.mockTxnService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestCancelValidated_Returns409() {
	transactionID := uuid.NewString()
	suite.mockTxnService.On("Cancel", mock.Anything, transactionID, suite.userID).
		Return(fmt.Errorf("%w: validated transactions are reversed through a correction", apperrors.ErrTransactionLocked)).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions/"+transactionID+"/cancel", nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockTxnService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestCorrect_Success() {
	transactionID := uuid.NewString()
	correction := &domain.TransactionHeader{
		TransactionID:         uuid.NewString(),
		Reference:             "DEPOSIT-20250114-XYZ789",
		OperationType:         domain.OpDeposit,
		ReferenceCurrency:     domain.USD,
		TotalAmount:           decimal.NewFromInt(150),
		Status:                domain.StatusValidated,
		OriginalTransactionID: &transactionID,
		CorrectionReason:      "montant erroné",
	}
	suite.mockCorrectionService.On("Correct", mock.Anything, transactionID, "montant erroné", suite.userID).
		Return(correction, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions/"+transactionID+"/correction", dto.CorrectionRequest{
		Reason: "montant erroné",
	})

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.TransactionResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("VALIDATED", resp.Status)
	suite.Equal(transactionID, *resp.OriginalTransactionID)

	suite.mockCorrectionService.AssertExpectations(suite.T())
	suite.mockTxnService.AssertNotCalled(suite.T(), "Create")
}

func (suite *TransactionHandlerTestSuite) TestCorrect_Unsupported() {
	transactionID := uuid.NewString()
	suite.mockCorrectionService.On("Correct", mock.Anything, transactionID, "doublon", suite.userID).
		Return(nil, fmt.Errorf("%w: multi-currency transactions must be re-entered manually", apperrors.ErrCorrectionUnsupported)).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions/"+transactionID+"/correction", dto.CorrectionRequest{
		Reason: "doublon",
	})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.mockCorrectionService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestMissingToken_Returns401() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockTxnService.AssertNotCalled(suite.T(), "List")
}

func (suite *TransactionHandlerTestSuite) TestListTransactions_StatusFilter() {
	validated := domain.StatusValidated
	suite.mockTxnService.On("List",
		mock.Anything,
		mock.MatchedBy(func(f portsrepo.TransactionFilter) bool {
			return f.Status != nil && *f.Status == validated && f.OperationType == nil
		}),
	).Return([]domain.TransactionHeader{}, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/transactions?status=VALIDATED", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockTxnService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestTransactionHandler(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}
