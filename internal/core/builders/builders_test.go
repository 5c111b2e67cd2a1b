package builders_test

import (
	"errors"
	"testing"

	"github.com/mosala/cashdesk_backend/internal/apperrors"
	"github.com/mosala/cashdesk_backend/internal/core/builders"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	"github.com/mosala/cashdesk_backend/internal/utils/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Every builder output must independently satisfy the balance validator,
// for every currency group it touches.
func assertBalanced(t *testing.T, draft builders.Draft) {
	t.Helper()
	require.NoError(t, ledger.ValidateBalance(draft.Lines))
	for currency, totals := range ledger.CurrencyTotals(draft.Lines) {
		assert.True(t, domain.AmountsEqual(totals.Debit, totals.Credit),
			"currency %s: debits %s credits %s", currency, totals.Debit, totals.Credit)
	}
}

func TestBuildDeposit_Shape(t *testing.T) {
	draft, err := builders.BuildDeposit(builders.DepositParams{
		ServiceID: "svc-1",
		Currency:  domain.USD,
		Amount:    dec("100"),
	})
	require.NoError(t, err)
	assertBalanced(t, draft)

	require.Len(t, draft.Lines, 2)
	assert.Equal(t, domain.WalletCash, draft.Lines[0].WalletType)
	assert.Equal(t, domain.Debit, draft.Lines[0].Sense)
	assert.Equal(t, domain.USD, draft.Lines[0].Currency)
	assert.True(t, draft.Lines[0].Amount.Equal(dec("100")))

	assert.Equal(t, domain.WalletVirtual, draft.Lines[1].WalletType)
	require.NotNil(t, draft.Lines[1].ServiceID)
	assert.Equal(t, "svc-1", *draft.Lines[1].ServiceID)
	assert.Equal(t, domain.Credit, draft.Lines[1].Sense)
	assert.True(t, draft.Lines[1].Amount.Equal(dec("100")))

	assert.Equal(t, domain.OpDeposit, draft.Header.OperationType)
	assert.True(t, draft.Header.TotalAmount.Equal(dec("100")))
	assert.False(t, draft.Header.MultiCurrency)
}

func TestBuildWithdrawal_MirrorsDeposit(t *testing.T) {
	draft, err := builders.BuildWithdrawal(builders.WithdrawalParams{
		ServiceID: "svc-1",
		Currency:  domain.CDF,
		Amount:    dec("25000"),
	})
	require.NoError(t, err)
	assertBalanced(t, draft)

	require.Len(t, draft.Lines, 2)
	assert.Equal(t, domain.WalletVirtual, draft.Lines[0].WalletType)
	assert.Equal(t, domain.Debit, draft.Lines[0].Sense)
	assert.Equal(t, domain.WalletCash, draft.Lines[1].WalletType)
	assert.Equal(t, domain.Credit, draft.Lines[1].Sense)
}

func TestBuildSupply_EntryAgainstService(t *testing.T) {
	draft, err := builders.BuildSupply(builders.SupplyParams{
		Direction: domain.SupplyEntry,
		ServiceID: "svc-9",
		Currency:  domain.USD,
		Amount:    dec("500"),
	})
	require.NoError(t, err)
	assertBalanced(t, draft)
	require.Len(t, draft.Lines, 2)
	assert.Equal(t, domain.Debit, draft.Lines[0].Sense)
	assert.Equal(t, domain.WalletVirtual, draft.Lines[1].WalletType)
	assert.Equal(t, domain.Credit, draft.Lines[1].Sense)
}

func TestBuildSupply_ExitWithoutService(t *testing.T) {
	draft, err := builders.BuildSupply(builders.SupplyParams{
		Direction: domain.SupplyExit,
		Currency:  domain.CDF,
		Amount:    dec("100000"),
	})
	require.NoError(t, err)
	assertBalanced(t, draft)
	require.Len(t, draft.Lines, 2)
	assert.Equal(t, domain.Credit, draft.Lines[0].Sense)
	assert.Equal(t, domain.WalletCash, draft.Lines[1].WalletType)
	assert.Equal(t, domain.Debit, draft.Lines[1].Sense)
}

func TestBuildExchange_BalancedWithCommission(t *testing.T) {
	draft, err := builders.BuildExchange(builders.ExchangeParams{
		Source:     domain.USD,
		Dest:       domain.CDF,
		Amount:     dec("100"),
		Commission: dec("2"),
		Rate:       dec("2700"),
	})
	require.NoError(t, err)
	assertBalanced(t, draft)

	// 98 USD converted at 2700: the client leaves with 264600 CDF.
	var payout *domain.PostingLine
	for i := range draft.Lines {
		l := &draft.Lines[i]
		if l.Currency == domain.CDF && l.Sense == domain.Credit {
			payout = l
		}
	}
	require.NotNil(t, payout)
	assert.True(t, payout.Amount.Equal(dec("264600")), "got %s", payout.Amount)

	assert.Equal(t, domain.OpExchange, draft.Header.OperationType)
	assert.Equal(t, "USD/CDF", draft.Header.CurrencyPair)
	assert.True(t, draft.Header.MultiCurrency)
	require.NotNil(t, draft.Header.ExchangeRate)
	assert.True(t, draft.Header.ExchangeRate.Equal(dec("2700")))
}

func TestBuildExchange_RejectsSameCurrency(t *testing.T) {
	_, err := builders.BuildExchange(builders.ExchangeParams{
		Source: domain.USD,
		Dest:   domain.USD,
		Amount: dec("10"),
		Rate:   dec("1"),
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestBuildExchange_RejectsCommissionAboveAmount(t *testing.T) {
	_, err := builders.BuildExchange(builders.ExchangeParams{
		Source:     domain.USD,
		Dest:       domain.CDF,
		Amount:     dec("5"),
		Commission: dec("5"),
		Rate:       dec("2700"),
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestBuildTransfer_Shape(t *testing.T) {
	draft, err := builders.BuildTransfer(builders.TransferParams{
		FromServiceID: "svc-a",
		ToServiceID:   "svc-b",
		Currency:      domain.USD,
		Amount:        dec("40"),
	})
	require.NoError(t, err)
	assertBalanced(t, draft)
	require.Len(t, draft.Lines, 2)
	assert.Equal(t, "svc-a", *draft.Lines[0].ServiceID)
	assert.Equal(t, domain.Debit, draft.Lines[0].Sense)
	assert.Equal(t, "svc-b", *draft.Lines[1].ServiceID)
	assert.Equal(t, domain.Credit, draft.Lines[1].Sense)
}

func TestBuildMixedWithdrawal_ConvertedRemainder(t *testing.T) {
	draft, err := builders.BuildMixedWithdrawal(builders.MixedWithdrawalParams{
		ServiceID:       "svc-1",
		RequestCurrency: domain.USD,
		PayoutCurrency:  domain.CDF,
		TotalAmount:     dec("100"),
		CashAvailable:   dec("40"),
		Rate:            dec("2700"),
	})
	require.NoError(t, err)
	assertBalanced(t, draft)

	// The 60 USD not covered by the till leaves as 162000 CDF.
	var cdfCredit *domain.PostingLine
	for i := range draft.Lines {
		l := &draft.Lines[i]
		if l.Currency == domain.CDF && l.Sense == domain.Credit && l.WalletType == domain.WalletCash {
			cdfCredit = l
		}
	}
	require.NotNil(t, cdfCredit)
	assert.True(t, cdfCredit.Amount.Equal(dec("162000")), "got %s", cdfCredit.Amount)

	assert.True(t, draft.Header.MultiCurrency)
	assert.Equal(t, domain.OpWithdrawal, draft.Header.OperationType)
}

func TestBuildMixedWithdrawal_WithCommissionStaysBalanced(t *testing.T) {
	draft, err := builders.BuildMixedWithdrawal(builders.MixedWithdrawalParams{
		ServiceID:       "svc-1",
		RequestCurrency: domain.USD,
		PayoutCurrency:  domain.CDF,
		TotalAmount:     dec("250"),
		CashAvailable:   dec("120.50"),
		Commission:      dec("3.75"),
		Rate:            dec("2695.5"),
	})
	require.NoError(t, err)
	assertBalanced(t, draft)
	assert.LessOrEqual(t, len(draft.Lines), 6)
}

func TestBuildMixedWithdrawal_RejectsFullyCoveredAmount(t *testing.T) {
	_, err := builders.BuildMixedWithdrawal(builders.MixedWithdrawalParams{
		ServiceID:       "svc-1",
		RequestCurrency: domain.USD,
		PayoutCurrency:  domain.CDF,
		TotalAmount:     dec("100"),
		CashAvailable:   dec("100"),
		Rate:            dec("2700"),
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestBuildMixedDeposit_Balanced(t *testing.T) {
	draft, err := builders.BuildMixedDeposit(builders.MixedDepositParams{
		ServiceID:       "svc-2",
		RequestCurrency: domain.USD,
		FundingCurrency: domain.CDF,
		TotalAmount:     dec("80"),
		CashReceived:    dec("50"),
		Commission:      dec("1.20"),
		Rate:            dec("2700"),
	})
	require.NoError(t, err)
	assertBalanced(t, draft)
	assert.True(t, draft.Header.MultiCurrency)
	assert.Equal(t, domain.OpDeposit, draft.Header.OperationType)
}

// Property sweep: every builder stays balanced across a grid of amounts and
// rates, including values that stress two-decimal rounding.
func TestBuilders_BalanceProperty(t *testing.T) {
	amounts := []string{"0.01", "1", "33.33", "100", "999.99", "12345.67"}
	rates := []string{"0.00037", "1.5", "2650", "2712.25"}

	for _, a := range amounts {
		amount := dec(a)
		depositDraft, err := builders.BuildDeposit(builders.DepositParams{
			ServiceID: "s", Currency: domain.CDF, Amount: amount,
		})
		require.NoError(t, err)
		assertBalanced(t, depositDraft)

		for _, r := range rates {
			rate := dec(r)
			exDraft, err := builders.BuildExchange(builders.ExchangeParams{
				Source: domain.USD, Dest: domain.CDF, Amount: amount, Rate: rate,
			})
			if err != nil {
				// Amounts too small to convert at this rate are rejected, never imbalanced.
				assert.True(t, errors.Is(err, apperrors.ErrValidation))
				continue
			}
			assertBalanced(t, exDraft)

			if amount.GreaterThan(dec("0.01")) {
				half := amount.Div(dec("2")).Round(2)
				mwDraft, err := builders.BuildMixedWithdrawal(builders.MixedWithdrawalParams{
					ServiceID:       "s",
					RequestCurrency: domain.USD,
					PayoutCurrency:  domain.CDF,
					TotalAmount:     amount,
					CashAvailable:   half,
					Rate:            rate,
				})
				if err != nil {
					assert.True(t, errors.Is(err, apperrors.ErrValidation))
					continue
				}
				assertBalanced(t, mwDraft)
			}
		}
	}
}
