package service

import (
	"context"
	"fmt"
	"math"

	"github.com/bwmarrin/snowflake"
	"github.com/tabacha/librelandlord/internal/clock"
	costcenterdomain "github.com/tabacha/librelandlord/internal/costcenter/domain"
	distributiondomain "github.com/tabacha/librelandlord/internal/distribution/domain"
	"github.com/tabacha/librelandlord/internal/observability"
	"github.com/tabacha/librelandlord/internal/period"
	settlementdomain "github.com/tabacha/librelandlord/internal/settlement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// residueThreshold is the currency minor unit below which a rounding residue
// is not reported.
const residueThreshold = 0.01

type Service struct {
	log          *zap.Logger
	repo         settlementdomain.Repository
	distribution distributiondomain.Service
	clock        clock.Clock
	metrics      *observability.Metrics
}

type ServiceParam struct {
	fx.In

	Log          *zap.Logger
	Repo         settlementdomain.Repository
	Distribution distributiondomain.Service
	Clock        clock.Clock
	Metrics      *observability.Metrics
}

func NewService(p ServiceParam) settlementdomain.Service {
	return &Service{
		log:          p.Log.Named("settlement.service"),
		repo:         p.Repo,
		distribution: p.Distribution,
		clock:        p.Clock,
		metrics:      p.Metrics,
	}
}

// Settle groups the period's bills by cost center, distributes each cost
// center over the period, and prices the percentage shares in currency.
func (s *Service) Settle(ctx context.Context, periodID snowflake.ID) (*settlementdomain.PeriodStatement, error) {
	started := s.clock.Now(ctx)
	s.metrics.SettlementRuns.Inc()

	statement, err := s.settle(ctx, periodID)
	if err != nil {
		s.metrics.SettlementFailures.Inc()
		return nil, err
	}

	s.metrics.SettlementDuration.Observe(s.clock.Now(ctx).Sub(started).Seconds())
	return statement, nil
}

func (s *Service) settle(ctx context.Context, periodID snowflake.ID) (*settlementdomain.PeriodStatement, error) {
	accountPeriod, err := s.repo.FindPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if accountPeriod == nil {
		return nil, fmt.Errorf("account period %d: %w", periodID, settlementdomain.ErrPeriodNotFound)
	}

	bills, err := s.repo.ListBills(ctx, accountPeriod.ID)
	if err != nil {
		return nil, err
	}

	// Group bills by cost center, keeping first-appearance order.
	var order []snowflake.ID
	grouped := make(map[snowflake.ID][]settlementdomain.Bill)
	for _, bill := range bills {
		if _, seen := grouped[bill.CostCenterID]; !seen {
			order = append(order, bill.CostCenterID)
		}
		grouped[bill.CostCenterID] = append(grouped[bill.CostCenterID], bill)
	}

	statement := &settlementdomain.PeriodStatement{
		Period:       *accountPeriod,
		CalculatedAt: s.clock.Now(ctx),
	}
	for _, costCenterID := range order {
		summary, err := s.settleCostCenter(ctx, *accountPeriod, costCenterID, grouped[costCenterID])
		if err != nil {
			return nil, fmt.Errorf("account period %q: %w", accountPeriod.Text, err)
		}
		statement.Summaries = append(statement.Summaries, *summary)
		statement.GrandTotal = round2(statement.GrandTotal + summary.TotalAmount)
	}

	s.log.Info("account period settled",
		zap.String("period", accountPeriod.Text),
		zap.Int("cost_centers", len(statement.Summaries)),
		zap.Float64("grand_total", statement.GrandTotal))

	return statement, nil
}

func (s *Service) settleCostCenter(ctx context.Context, accountPeriod settlementdomain.AccountPeriod, costCenterID snowflake.ID, bills []settlementdomain.Bill) (*settlementdomain.CostCenterSummary, error) {
	var total float64
	windows := make([]period.Period, 0, len(bills))
	for _, bill := range bills {
		total += bill.Amount
		window, err := period.New(bill.FromDate, bill.ToDate)
		if err != nil {
			return nil, fmt.Errorf("bill %q (%s): %w", bill.Text, bill.BillNumber, err)
		}
		windows = append(windows, window)
	}
	total = round2(total)

	distributed, err := s.distribution.Distribute(ctx,
		costCenterID, accountPeriod.StartDate, accountPeriod.EndDate, windows)
	if err != nil {
		return nil, err
	}

	summary := &settlementdomain.CostCenterSummary{
		CostCenter:   distributed.CostCenter,
		Bills:        bills,
		TotalAmount:  total,
		Distribution: distributed,
	}

	mixed := distributed.CostCenter.DistributionType == costcenterdomain.DistributionHeatingMixed
	areaTotal := total * distributed.CostCenter.AreaPercentage / 100
	consumptionTotal := total * distributed.CostCenter.ConsumptionPercentage / 100

	var sharesSum float64
	for _, entry := range distributed.Results {
		share := settlementdomain.MonetaryShare{
			ContributionResult: entry,
			Amount:             round2(entry.Percentage / 100 * total),
		}
		if mixed {
			share.AreaAmount = round2(areaTotal * entry.AreaPercentage / 100)
			share.ConsumptionAmount = round2(consumptionTotal * entry.ConsumptionPercentage / 100)
		}
		sharesSum += share.Amount
		summary.Shares = append(summary.Shares, share)
	}

	residue := round2(total - sharesSum)
	if math.Abs(residue) >= residueThreshold {
		summary.RoundingResidue = &residue
	}

	return summary, nil
}

// SettleYear settles every account period of the billing year and sums the
// grand totals.
func (s *Service) SettleYear(ctx context.Context, year int) (*settlementdomain.YearStatement, error) {
	periods, err := s.repo.ListPeriodsForYear(ctx, year)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("billing year %d: %w", year, settlementdomain.ErrNoPeriods)
	}

	statement := &settlementdomain.YearStatement{Year: year}
	for _, accountPeriod := range periods {
		periodStatement, err := s.Settle(ctx, accountPeriod.ID)
		if err != nil {
			return nil, err
		}
		statement.Periods = append(statement.Periods, *periodStatement)
		statement.GrandTotal = round2(statement.GrandTotal + periodStatement.GrandTotal)
	}
	return statement, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
