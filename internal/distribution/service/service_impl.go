package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	costcenterdomain "github.com/tabacha/librelandlord/internal/costcenter/domain"
	distributiondomain "github.com/tabacha/librelandlord/internal/distribution/domain"
	formuladomain "github.com/tabacha/librelandlord/internal/formula/domain"
	"github.com/tabacha/librelandlord/internal/period"
	tenancydomain "github.com/tabacha/librelandlord/internal/tenancy/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log         *zap.Logger
	centers     costcenterdomain.Repository
	tenancies   tenancydomain.Repository
	formulaRepo formuladomain.Repository
	formulas    formuladomain.Service
}

type ServiceParam struct {
	fx.In

	Log         *zap.Logger
	Centers     costcenterdomain.Repository
	Tenancies   tenancydomain.Repository
	FormulaRepo formuladomain.Repository
	Formulas    formuladomain.Service
}

func NewService(p ServiceParam) distributiondomain.Service {
	return &Service{
		log:         p.Log.Named("distribution.service"),
		centers:     p.Centers,
		tenancies:   p.Tenancies,
		formulaRepo: p.FormulaRepo,
		formulas:    p.Formulas,
	}
}

// Distribute splits the cost center's period into occupancy intervals per
// contribution, applies the center's strategy to each, and normalizes the
// values into percentages of the center-wide total. Any failure aborts the
// whole calculation.
func (s *Service) Distribute(ctx context.Context, costCenterID snowflake.ID, start, end time.Time, billWindows []period.Period) (*distributiondomain.Result, error) {
	p, err := period.New(start, end)
	if err != nil {
		return nil, fmt.Errorf("cost center %d: %w", costCenterID, err)
	}

	center, err := s.centers.FindCostCenter(ctx, costCenterID)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, fmt.Errorf("cost center %d: %w", costCenterID, distributiondomain.ErrCostCenterNotFound)
	}
	if err := center.Validate(); err != nil {
		return nil, err
	}

	contributions, err := s.centers.ListContributions(ctx, center.ID)
	if err != nil {
		return nil, err
	}

	result := &distributiondomain.Result{CostCenter: *center, Period: p}
	for _, contribution := range contributions {
		if err := s.distributeContribution(ctx, result, contribution, p, billWindows); err != nil {
			return nil, err
		}
	}

	finalize(result)

	s.log.Debug("cost center distributed",
		zap.String("cost_center", center.Text),
		zap.String("strategy", string(center.DistributionType)),
		zap.String("period", p.String()),
		zap.Float64("total", result.TotalValue),
		zap.Int("shares", len(result.Results)))

	return result, nil
}

func (s *Service) distributeContribution(ctx context.Context, result *distributiondomain.Result, contribution costcenterdomain.Contribution, p period.Period, billWindows []period.Period) error {
	center := result.CostCenter
	if err := contribution.Validate(center.DistributionType); err != nil {
		return fmt.Errorf("cost center %q: %w", center.Text, err)
	}

	var apartment *tenancydomain.Apartment
	var renters []tenancydomain.Renter
	if contribution.ApartmentID != nil {
		var err error
		apartment, err = s.tenancies.FindApartment(ctx, *contribution.ApartmentID)
		if err != nil {
			return err
		}
		if apartment == nil {
			return fmt.Errorf("cost center %q, contribution %d: apartment %d: %w",
				center.Text, contribution.ID, *contribution.ApartmentID, distributiondomain.ErrApartmentNotFound)
		}
		renters, err = s.tenancies.ListRentersForApartment(ctx, apartment.ID)
		if err != nil {
			return err
		}
	}

	displayName := contribution.SpecialDesignation
	if apartment != nil {
		displayName = apartment.Name
		result.TotalArea += apartment.SizeM2
	}

	fail := func(err error) error {
		return fmt.Errorf("cost center %q, contribution %q: %w", center.Text, displayName, err)
	}

	intervals := s.occupancyIntervals(apartment, renters, p, center.DistributionType)

	switch center.DistributionType {
	case costcenterdomain.DistributionTime:
		result.Unit = "days"
		for _, iv := range intervals {
			entry := newEntry(contribution, apartment, displayName, iv)
			entry.Value = float64(iv.Period.Days())
			result.Results = append(result.Results, entry)
		}

	case costcenterdomain.DistributionArea:
		if apartment.SizeM2 <= 0 {
			return fail(fmt.Errorf("apartment %q has no area: %w",
				apartment.Name, distributiondomain.ErrMissingArea))
		}
		result.Unit = "m²×days"
		for _, iv := range intervals {
			entry := newEntry(contribution, apartment, displayName, iv)
			entry.Value = apartment.SizeM2 * float64(iv.Period.Days())
			result.Results = append(result.Results, entry)
		}

	case costcenterdomain.DistributionConsumption:
		def, validity, err := s.formulaValidity(ctx, contribution, p)
		if err != nil {
			return fail(err)
		}
		for _, iv := range intervals {
			clipped, ok := iv.Period.Clip(validity)
			if !ok {
				continue
			}
			evaluated, err := s.formulas.Evaluate(ctx, def.ID, clipped.Start, clipped.End)
			if err != nil {
				return fail(err)
			}
			result.Unit = evaluated.Unit
			entry := newEntry(contribution, apartment, displayName, iv)
			entry.Value = evaluated.Value
			result.Results = append(result.Results, entry)
		}

	case costcenterdomain.DistributionHeatingMixed:
		if apartment.SizeM2 <= 0 {
			return fail(fmt.Errorf("apartment %q has no area: %w",
				apartment.Name, distributiondomain.ErrMissingArea))
		}
		def, validity, err := s.formulaValidity(ctx, contribution, p)
		if err != nil {
			return fail(err)
		}
		for _, iv := range intervals {
			entry := newEntry(contribution, apartment, displayName, iv)
			entry.AreaValue = apartment.SizeM2 * float64(iv.Period.Days())
			if clipped, ok := iv.Period.Clip(validity); ok {
				evaluated, err := s.formulas.Evaluate(ctx, def.ID, clipped.Start, clipped.End)
				if err != nil {
					return fail(err)
				}
				result.Unit = evaluated.Unit
				entry.Value = evaluated.Value
			}
			result.Results = append(result.Results, entry)
		}

	case costcenterdomain.DistributionDirect:
		entry, err := s.directEntry(contribution, apartment, renters, displayName, p, billWindows)
		if err != nil {
			return fail(err)
		}
		result.Results = append(result.Results, entry)

	default:
		return fail(fmt.Errorf("unknown distribution type %q: %w",
			center.DistributionType, costcenterdomain.ErrConfiguration))
	}

	return nil
}

// occupancyIntervals covers the period with tenant/vacancy intervals. A
// special designation acts as a single untenanted interval.
func (s *Service) occupancyIntervals(apartment *tenancydomain.Apartment, renters []tenancydomain.Renter, p period.Period, strategy costcenterdomain.DistributionType) []tenancydomain.Interval {
	if apartment == nil {
		return []tenancydomain.Interval{{Period: p}}
	}
	mode := tenancydomain.DateModeOccupancy
	if strategy == costcenterdomain.DistributionTime || strategy == costcenterdomain.DistributionDirect {
		mode = tenancydomain.DateModeContract
	}
	return tenancydomain.SplitOccupancy(p, renters, mode)
}

// formulaValidity loads the contribution's formula and returns its validity
// clipped against the calculation period.
func (s *Service) formulaValidity(ctx context.Context, contribution costcenterdomain.Contribution, p period.Period) (*formuladomain.Definition, period.Period, error) {
	def, err := s.formulaRepo.FindDefinition(ctx, *contribution.FormulaDefinitionID)
	if err != nil {
		return nil, period.Period{}, err
	}
	if def == nil {
		return nil, period.Period{}, fmt.Errorf("formula %d: %w",
			*contribution.FormulaDefinitionID, formuladomain.ErrDefinitionNotFound)
	}
	validity := period.Period{Start: period.Day(def.ValidFrom), End: p.End}
	if def.ValidUntil != nil && period.Day(*def.ValidUntil).Before(validity.End) {
		validity.End = period.Day(*def.ValidUntil)
	}
	return def, validity, nil
}

// directEntry requires exactly one tenancy, with no vacancy and no turnover,
// covering every relevant window. The bill then passes through unprorated.
func (s *Service) directEntry(contribution costcenterdomain.Contribution, apartment *tenancydomain.Apartment, renters []tenancydomain.Renter, displayName string, p period.Period, billWindows []period.Period) (distributiondomain.ContributionResult, error) {
	windows := billWindows
	if len(windows) == 0 {
		windows = []period.Period{p}
	}

	var covering *tenancydomain.Renter
	for _, window := range windows {
		intervals := tenancydomain.SplitOccupancy(window, renters, tenancydomain.DateModeContract)
		if len(intervals) != 1 || intervals[0].Vacant() {
			return distributiondomain.ContributionResult{}, fmt.Errorf(
				"apartment %q is not covered by exactly one tenant in %s (%s): %w",
				apartment.Name, window, describeIntervals(intervals), distributiondomain.ErrAmbiguousOccupancy)
		}
		renter := intervals[0].Renter
		if covering != nil && covering.ID != renter.ID {
			return distributiondomain.ContributionResult{}, fmt.Errorf(
				"apartment %q changes tenant from %s to %s within the bill windows: %w",
				apartment.Name, covering.FullName(), renter.FullName(), distributiondomain.ErrAmbiguousOccupancy)
		}
		covering = renter
	}

	entry := newEntry(contribution, apartment, displayName, tenancydomain.Interval{Period: p, Renter: covering})
	entry.Value = 1
	return entry, nil
}

func describeIntervals(intervals []tenancydomain.Interval) string {
	parts := make([]string, 0, len(intervals))
	for _, iv := range intervals {
		if iv.Vacant() {
			parts = append(parts, "vacant "+iv.Period.String())
		} else {
			parts = append(parts, iv.Renter.FullName()+" "+iv.Period.String())
		}
	}
	return strings.Join(parts, ", ")
}

func newEntry(contribution costcenterdomain.Contribution, apartment *tenancydomain.Apartment, displayName string, iv tenancydomain.Interval) distributiondomain.ContributionResult {
	entry := distributiondomain.ContributionResult{
		ContributionID: contribution.ID,
		DisplayName:    displayName,
		Special:        apartment == nil,
		Period:         iv.Period,
		Days:           iv.Period.Days(),
	}
	if apartment != nil {
		id := apartment.ID
		entry.ApartmentID = &id
		entry.Vacancy = iv.Vacant()
	}
	if iv.Renter != nil {
		id := iv.Renter.ID
		entry.RenterID = &id
		entry.RenterFirstName = iv.Renter.FirstName
		entry.RenterLastName = iv.Renter.LastName
	}
	return entry
}

// finalize turns raw values into percentages of the respective totals. For
// heating-mixed the area and consumption percentages are normalized against
// their own totals, then blended with the cost center's weights.
func finalize(result *distributiondomain.Result) {
	var totalValue, totalAreaValue float64
	var totalDays int
	for _, entry := range result.Results {
		totalValue += entry.Value
		totalAreaValue += entry.AreaValue
		totalDays += entry.Days
	}
	result.TotalValue = totalValue
	result.TotalDays = totalDays

	mixed := result.CostCenter.DistributionType == costcenterdomain.DistributionHeatingMixed
	areaWeight := result.CostCenter.AreaPercentage / 100
	consumptionWeight := result.CostCenter.ConsumptionPercentage / 100

	for i := range result.Results {
		entry := &result.Results[i]
		if mixed {
			entry.AreaPercentage = percentage(entry.AreaValue, totalAreaValue)
			entry.ConsumptionPercentage = percentage(entry.Value, totalValue)
			entry.Percentage = entry.AreaPercentage*areaWeight + entry.ConsumptionPercentage*consumptionWeight
		} else {
			entry.Percentage = percentage(entry.Value, totalValue)
		}
	}
}

func percentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return value / total * 100
}
