package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tabacha/librelandlord/internal/clock"
	costcenterdomain "github.com/tabacha/librelandlord/internal/costcenter/domain"
	distributiondomain "github.com/tabacha/librelandlord/internal/distribution/domain"
	"github.com/tabacha/librelandlord/internal/observability"
	"github.com/tabacha/librelandlord/internal/period"
	settlementdomain "github.com/tabacha/librelandlord/internal/settlement/domain"
	"go.uber.org/zap"
)

type settlementRepoMock struct {
	mock.Mock
}

func (m *settlementRepoMock) FindPeriod(ctx context.Context, id snowflake.ID) (*settlementdomain.AccountPeriod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlementdomain.AccountPeriod), args.Error(1)
}

func (m *settlementRepoMock) ListBills(ctx context.Context, periodID snowflake.ID) ([]settlementdomain.Bill, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]settlementdomain.Bill), args.Error(1)
}

func (m *settlementRepoMock) ListPeriodsForYear(ctx context.Context, year int) ([]settlementdomain.AccountPeriod, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]settlementdomain.AccountPeriod), args.Error(1)
}

type distributionMock struct {
	mock.Mock
}

func (m *distributionMock) Distribute(ctx context.Context, costCenterID snowflake.ID, start, end time.Time, billWindows []period.Period) (*distributiondomain.Result, error) {
	args := m.Called(ctx, costCenterID, start, end, billWindows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distributiondomain.Result), args.Error(1)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(repo settlementdomain.Repository, dist distributiondomain.Service) *Service {
	return &Service{
		log:          zap.NewNop(),
		repo:         repo,
		distribution: dist,
		clock:        clock.Fixed{T: date(2025, time.February, 1)},
		metrics:      observability.NewMetrics(),
	}
}

func demoPeriod() *settlementdomain.AccountPeriod {
	return &settlementdomain.AccountPeriod{
		ID:          1,
		Text:        "Nebenkosten 2024",
		StartDate:   date(2024, time.January, 1),
		EndDate:     date(2025, time.January, 1),
		BillingYear: 2024,
	}
}

func threeWayDistribution(costCenterID snowflake.ID) *distributiondomain.Result {
	center := costcenterdomain.CostCenter{
		ID:               costCenterID,
		Text:             "Müllabfuhr",
		DistributionType: costcenterdomain.DistributionTime,
	}
	// Three equal shares of 100/3 % each force rounding.
	shares := make([]distributiondomain.ContributionResult, 3)
	for i := range shares {
		shares[i] = distributiondomain.ContributionResult{
			ContributionID: snowflake.ID(100 + i),
			DisplayName:    "Wohnung",
			Value:          122,
			Percentage:     100.0 / 3,
		}
	}
	return &distributiondomain.Result{
		CostCenter: center,
		Results:    shares,
		TotalValue: 366,
		Unit:       "days",
	}
}

func TestSettlePricesSharesAndReportsResidue(t *testing.T) {
	repo := new(settlementRepoMock)
	dist := new(distributionMock)
	svc := newTestService(repo, dist)
	accountPeriod := demoPeriod()

	bill := settlementdomain.Bill{
		ID:              10,
		Text:            "Müllabfuhr Jahresgebühr",
		Amount:          100.00,
		FromDate:        date(2024, time.January, 1),
		ToDate:          date(2025, time.January, 1),
		CostCenterID:    5,
		AccountPeriodID: accountPeriod.ID,
	}
	repo.On("FindPeriod", mock.Anything, accountPeriod.ID).Return(accountPeriod, nil)
	repo.On("ListBills", mock.Anything, accountPeriod.ID).Return([]settlementdomain.Bill{bill}, nil)
	dist.On("Distribute", mock.Anything, snowflake.ID(5), accountPeriod.StartDate, accountPeriod.EndDate, mock.Anything).
		Return(threeWayDistribution(5), nil)

	statement, err := svc.Settle(context.Background(), accountPeriod.ID)
	require.NoError(t, err)

	require.Len(t, statement.Summaries, 1)
	summary := statement.Summaries[0]
	assert.Equal(t, 100.00, summary.TotalAmount)
	require.Len(t, summary.Shares, 3)
	for _, share := range summary.Shares {
		assert.Equal(t, 33.33, share.Amount)
	}

	// 3 × 33.33 leaves one cent unassigned; it must be reported, not lost.
	require.NotNil(t, summary.RoundingResidue)
	assert.InDelta(t, 0.01, *summary.RoundingResidue, 1e-9)

	assert.Equal(t, 100.00, statement.GrandTotal)
	assert.Equal(t, date(2025, time.February, 1), statement.CalculatedAt)
}

func TestSettleNoResidueForCleanSplit(t *testing.T) {
	repo := new(settlementRepoMock)
	dist := new(distributionMock)
	svc := newTestService(repo, dist)
	accountPeriod := demoPeriod()

	bill := settlementdomain.Bill{
		ID:              10,
		Text:            "Grundsteuer",
		Amount:          100.00,
		FromDate:        date(2024, time.January, 1),
		ToDate:          date(2025, time.January, 1),
		CostCenterID:    5,
		AccountPeriodID: accountPeriod.ID,
	}
	result := &distributiondomain.Result{
		CostCenter: costcenterdomain.CostCenter{ID: 5, Text: "Grundsteuer", DistributionType: costcenterdomain.DistributionArea},
		Results: []distributiondomain.ContributionResult{
			{ContributionID: 100, Percentage: 60},
			{ContributionID: 101, Percentage: 40},
		},
	}
	repo.On("FindPeriod", mock.Anything, accountPeriod.ID).Return(accountPeriod, nil)
	repo.On("ListBills", mock.Anything, accountPeriod.ID).Return([]settlementdomain.Bill{bill}, nil)
	dist.On("Distribute", mock.Anything, snowflake.ID(5), accountPeriod.StartDate, accountPeriod.EndDate, mock.Anything).
		Return(result, nil)

	statement, err := svc.Settle(context.Background(), accountPeriod.ID)
	require.NoError(t, err)

	summary := statement.Summaries[0]
	assert.Equal(t, 60.00, summary.Shares[0].Amount)
	assert.Equal(t, 40.00, summary.Shares[1].Amount)
	assert.Nil(t, summary.RoundingResidue)
}

func TestSettleSumsBillsPerCostCenter(t *testing.T) {
	repo := new(settlementRepoMock)
	dist := new(distributionMock)
	svc := newTestService(repo, dist)
	accountPeriod := demoPeriod()

	bills := []settlementdomain.Bill{
		{
			ID: 10, Text: "Abschlag", Amount: 1245.00,
			FromDate: date(2024, time.January, 1), ToDate: date(2024, time.July, 1),
			CostCenterID: 5, AccountPeriodID: accountPeriod.ID,
		},
		{
			ID: 11, Text: "Jahresabrechnung", Amount: 1408.77,
			FromDate: date(2024, time.July, 1), ToDate: date(2025, time.January, 1),
			CostCenterID: 5, AccountPeriodID: accountPeriod.ID,
		},
	}
	result := &distributiondomain.Result{
		CostCenter: costcenterdomain.CostCenter{ID: 5, Text: "Heizung", DistributionType: costcenterdomain.DistributionTime},
		Results: []distributiondomain.ContributionResult{
			{ContributionID: 100, Percentage: 100},
		},
	}
	repo.On("FindPeriod", mock.Anything, accountPeriod.ID).Return(accountPeriod, nil)
	repo.On("ListBills", mock.Anything, accountPeriod.ID).Return(bills, nil)

	expectedWindows := []period.Period{
		{Start: date(2024, time.January, 1), End: date(2024, time.July, 1)},
		{Start: date(2024, time.July, 1), End: date(2025, time.January, 1)},
	}
	dist.On("Distribute", mock.Anything, snowflake.ID(5), accountPeriod.StartDate, accountPeriod.EndDate, expectedWindows).
		Return(result, nil)

	statement, err := svc.Settle(context.Background(), accountPeriod.ID)
	require.NoError(t, err)

	require.Len(t, statement.Summaries, 1)
	assert.Equal(t, 2653.77, statement.Summaries[0].TotalAmount)
	assert.Equal(t, 2653.77, statement.GrandTotal)
	dist.AssertExpectations(t)
}

func TestSettleHeatingMixedSubAmounts(t *testing.T) {
	repo := new(settlementRepoMock)
	dist := new(distributionMock)
	svc := newTestService(repo, dist)
	accountPeriod := demoPeriod()

	bill := settlementdomain.Bill{
		ID: 10, Text: "Fernwärme", Amount: 1000.00,
		FromDate: date(2024, time.January, 1), ToDate: date(2025, time.January, 1),
		CostCenterID: 5, AccountPeriodID: accountPeriod.ID,
	}
	result := &distributiondomain.Result{
		CostCenter: costcenterdomain.CostCenter{
			ID:                    5,
			Text:                  "Heizung",
			DistributionType:      costcenterdomain.DistributionHeatingMixed,
			AreaPercentage:        30,
			ConsumptionPercentage: 70,
		},
		Results: []distributiondomain.ContributionResult{
			{ContributionID: 100, AreaPercentage: 25, ConsumptionPercentage: 50, Percentage: 42.5},
			{ContributionID: 101, AreaPercentage: 75, ConsumptionPercentage: 50, Percentage: 57.5},
		},
	}
	repo.On("FindPeriod", mock.Anything, accountPeriod.ID).Return(accountPeriod, nil)
	repo.On("ListBills", mock.Anything, accountPeriod.ID).Return([]settlementdomain.Bill{bill}, nil)
	dist.On("Distribute", mock.Anything, snowflake.ID(5), accountPeriod.StartDate, accountPeriod.EndDate, mock.Anything).
		Return(result, nil)

	statement, err := svc.Settle(context.Background(), accountPeriod.ID)
	require.NoError(t, err)

	shares := statement.Summaries[0].Shares
	require.Len(t, shares, 2)

	// 300 EUR split by area, 700 EUR split by consumption.
	assert.Equal(t, 425.00, shares[0].Amount)
	assert.Equal(t, 75.00, shares[0].AreaAmount)
	assert.Equal(t, 350.00, shares[0].ConsumptionAmount)
	assert.Equal(t, 575.00, shares[1].Amount)
	assert.Equal(t, 225.00, shares[1].AreaAmount)
	assert.Equal(t, 350.00, shares[1].ConsumptionAmount)

	// Sub-amounts recompose the full share.
	assert.InDelta(t, shares[0].Amount, shares[0].AreaAmount+shares[0].ConsumptionAmount, 1e-9)
}

func TestSettleRejectsInvalidBillRange(t *testing.T) {
	repo := new(settlementRepoMock)
	dist := new(distributionMock)
	svc := newTestService(repo, dist)
	accountPeriod := demoPeriod()

	bill := settlementdomain.Bill{
		ID: 10, Text: "Kaputt", BillNumber: "X-1", Amount: 10,
		FromDate: date(2024, time.July, 1), ToDate: date(2024, time.July, 1),
		CostCenterID: 5, AccountPeriodID: accountPeriod.ID,
	}
	repo.On("FindPeriod", mock.Anything, accountPeriod.ID).Return(accountPeriod, nil)
	repo.On("ListBills", mock.Anything, accountPeriod.ID).Return([]settlementdomain.Bill{bill}, nil)

	_, err := svc.Settle(context.Background(), accountPeriod.ID)
	assert.ErrorIs(t, err, period.ErrInvalidRange)
}

func TestSettleUnknownPeriod(t *testing.T) {
	repo := new(settlementRepoMock)
	dist := new(distributionMock)
	svc := newTestService(repo, dist)

	repo.On("FindPeriod", mock.Anything, snowflake.ID(99)).Return(nil, nil)

	_, err := svc.Settle(context.Background(), snowflake.ID(99))
	assert.ErrorIs(t, err, settlementdomain.ErrPeriodNotFound)
}

func TestSettleYear(t *testing.T) {
	repo := new(settlementRepoMock)
	dist := new(distributionMock)
	svc := newTestService(repo, dist)
	accountPeriod := demoPeriod()

	repo.On("ListPeriodsForYear", mock.Anything, 2024).Return([]settlementdomain.AccountPeriod{*accountPeriod}, nil)
	repo.On("FindPeriod", mock.Anything, accountPeriod.ID).Return(accountPeriod, nil)
	repo.On("ListBills", mock.Anything, accountPeriod.ID).Return([]settlementdomain.Bill{
		{
			ID: 10, Text: "Müllabfuhr", Amount: 100.00,
			FromDate: date(2024, time.January, 1), ToDate: date(2025, time.January, 1),
			CostCenterID: 5, AccountPeriodID: accountPeriod.ID,
		},
	}, nil)
	dist.On("Distribute", mock.Anything, snowflake.ID(5), accountPeriod.StartDate, accountPeriod.EndDate, mock.Anything).
		Return(threeWayDistribution(5), nil)

	statement, err := svc.SettleYear(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 2024, statement.Year)
	require.Len(t, statement.Periods, 1)
	assert.Equal(t, 100.00, statement.GrandTotal)
}

func TestSettleYearWithoutPeriods(t *testing.T) {
	repo := new(settlementRepoMock)
	dist := new(distributionMock)
	svc := newTestService(repo, dist)

	repo.On("ListPeriodsForYear", mock.Anything, 2030).Return(nil, nil)

	_, err := svc.SettleYear(context.Background(), 2030)
	assert.ErrorIs(t, err, settlementdomain.ErrNoPeriods)
}
