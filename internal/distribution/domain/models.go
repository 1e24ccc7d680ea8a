// Package domain holds the cost-distribution results: per-contribution,
// per-occupancy-interval values and their percentage of the cost-center
// total.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	costcenterdomain "github.com/tabacha/librelandlord/internal/costcenter/domain"
	"github.com/tabacha/librelandlord/internal/period"
)

var (
	ErrCostCenterNotFound = errors.New("cost_center_not_found")
	ErrApartmentNotFound  = errors.New("apartment_not_found")
	ErrMissingArea        = errors.New("missing_area")
	ErrAmbiguousOccupancy = errors.New("ambiguous_occupancy")
)

// ContributionResult is the share of one contribution during one occupancy
// interval. Renter fields are empty for vacancies and special designations.
type ContributionResult struct {
	ContributionID  snowflake.ID
	ApartmentID     *snowflake.ID
	DisplayName     string
	RenterID        *snowflake.ID
	RenterFirstName string
	RenterLastName  string
	Vacancy         bool
	Special         bool
	Period          period.Period
	Days            int
	Value           float64
	Percentage      float64
	// Heating-mixed bookkeeping: the independent area and consumption
	// percentages that were blended into Percentage.
	AreaValue             float64
	AreaPercentage        float64
	ConsumptionPercentage float64
}

// Result is the full distribution of one cost center over a period. The sum
// of all result values equals TotalValue; percentages sum to 100 unless the
// total is zero.
type Result struct {
	CostCenter costcenterdomain.CostCenter
	Period     period.Period
	Results    []ContributionResult
	TotalValue float64
	Unit       string
	// TotalDays and TotalArea are contextual display figures.
	TotalDays int
	TotalArea float64
}

type Service interface {
	// Distribute computes the percentage shares of every contribution of
	// the cost center over [start, end). billWindows is consulted by the
	// DIRECT strategy only.
	Distribute(ctx context.Context, costCenterID snowflake.ID, start, end time.Time, billWindows []period.Period) (*Result, error)
}
