// Package domain holds account periods, their bills, and the settlement
// statements produced from them.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	costcenterdomain "github.com/tabacha/librelandlord/internal/costcenter/domain"
	distributiondomain "github.com/tabacha/librelandlord/internal/distribution/domain"
)

var (
	ErrPeriodNotFound = errors.New("account_period_not_found")
	ErrNoPeriods      = errors.New("no_account_periods")
)

// AccountPeriod is the aggregation window over which bills are settled.
type AccountPeriod struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	Text        string       `gorm:"type:text;not null"`
	StartDate   time.Time    `gorm:"not null"`
	EndDate     time.Time    `gorm:"not null"`
	BillingYear int          `gorm:"not null;index"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (AccountPeriod) TableName() string { return "account_periods" }

// Bill is a shared cost to be allocated, valid for [FromDate, ToDate].
type Bill struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	Text            string       `gorm:"type:text;not null"`
	BillDate        time.Time    `gorm:"not null"`
	BillNumber      string       `gorm:"type:text"`
	Amount          float64      `gorm:"not null"`
	FromDate        time.Time    `gorm:"not null"`
	ToDate          time.Time    `gorm:"not null"`
	CostCenterID    snowflake.ID `gorm:"not null;index"`
	AccountPeriodID snowflake.ID `gorm:"not null;index"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Bill) TableName() string { return "bills" }

// MonetaryShare is one distribution entry priced in currency.
type MonetaryShare struct {
	distributiondomain.ContributionResult
	Amount float64
	// Heating-mixed sub-amounts for display on the settlement document.
	AreaAmount        float64
	ConsumptionAmount float64
}

// CostCenterSummary settles all bills of one cost center in a period.
type CostCenterSummary struct {
	CostCenter   costcenterdomain.CostCenter
	Bills        []Bill
	TotalAmount  float64
	Distribution *distributiondomain.Result
	Shares       []MonetaryShare
	// RoundingResidue is set when the rounded shares differ from the bill
	// total by at least one cent; it is never silently discarded.
	RoundingResidue *float64
}

// PeriodStatement is the settlement of one account period.
type PeriodStatement struct {
	Period       AccountPeriod
	Summaries    []CostCenterSummary
	GrandTotal   float64
	CalculatedAt time.Time
}

// YearStatement aggregates all period statements of a billing year.
type YearStatement struct {
	Year       int
	Periods    []PeriodStatement
	GrandTotal float64
}

type Repository interface {
	FindPeriod(ctx context.Context, id snowflake.ID) (*AccountPeriod, error)
	ListBills(ctx context.Context, periodID snowflake.ID) ([]Bill, error)
	ListPeriodsForYear(ctx context.Context, year int) ([]AccountPeriod, error)
}

type Service interface {
	Settle(ctx context.Context, periodID snowflake.ID) (*PeriodStatement, error)
	SettleYear(ctx context.Context, year int) (*YearStatement, error)
}
