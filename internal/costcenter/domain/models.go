// Package domain holds cost centers and the contributions binding them to
// apartments or pseudo-units.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrConfiguration = errors.New("invalid_configuration")

// DistributionType selects the allocation strategy of a cost center.
type DistributionType string

const (
	DistributionConsumption  DistributionType = "CONSUMPTION"
	DistributionTime         DistributionType = "TIME"
	DistributionArea         DistributionType = "AREA"
	DistributionDirect       DistributionType = "DIRECT"
	DistributionHeatingMixed DistributionType = "HEATING_MIXED"
)

type CostCenter struct {
	ID               snowflake.ID     `gorm:"primaryKey"`
	Text             string           `gorm:"type:text;not null"`
	DistributionType DistributionType `gorm:"type:text;not null"`
	// AreaPercentage and ConsumptionPercentage apply to HEATING_MIXED only
	// and must sum to 100.
	AreaPercentage        float64   `gorm:"not null;default:0"`
	ConsumptionPercentage float64   `gorm:"not null;default:0"`
	IsOilTank             bool      `gorm:"not null;default:false"`
	CreatedAt             time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt             time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CostCenter) TableName() string { return "cost_centers" }

func (c CostCenter) Validate() error {
	if c.DistributionType != DistributionHeatingMixed {
		return nil
	}
	if c.AreaPercentage+c.ConsumptionPercentage != 100 {
		return fmt.Errorf("cost center %q: area %.1f%% + consumption %.1f%% must sum to 100: %w",
			c.Text, c.AreaPercentage, c.ConsumptionPercentage, ErrConfiguration)
	}
	return nil
}

// Contribution binds a cost center to an apartment, or to a free-text
// special designation such as a shared washing machine meter.
type Contribution struct {
	ID                  snowflake.ID `gorm:"primaryKey"`
	CostCenterID        snowflake.ID `gorm:"not null;index"`
	ApartmentID         *snowflake.ID
	SpecialDesignation  string `gorm:"type:text"`
	FormulaDefinitionID *snowflake.ID
	CreatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Contribution) TableName() string { return "cost_center_contributions" }

// DisplayName is the apartment name when bound to one, else the special
// designation.
func (c Contribution) DisplayName(apartmentName string) string {
	if c.ApartmentID != nil {
		return apartmentName
	}
	return c.SpecialDesignation
}

// Validate checks the apartment/special-designation cardinality and the
// per-strategy requirements.
func (c Contribution) Validate(strategy DistributionType) error {
	hasApartment := c.ApartmentID != nil
	hasSpecial := strings.TrimSpace(c.SpecialDesignation) != ""
	if hasApartment == hasSpecial {
		return fmt.Errorf("contribution %d: exactly one of apartment and special designation required: %w",
			c.ID, ErrConfiguration)
	}
	switch strategy {
	case DistributionConsumption:
		if c.FormulaDefinitionID == nil {
			return fmt.Errorf("contribution %d: consumption distribution requires a formula: %w",
				c.ID, ErrConfiguration)
		}
	case DistributionArea, DistributionDirect:
		if !hasApartment {
			return fmt.Errorf("contribution %d: %s distribution requires an apartment: %w",
				c.ID, strategy, ErrConfiguration)
		}
	case DistributionHeatingMixed:
		if !hasApartment {
			return fmt.Errorf("contribution %d: heating-mixed distribution requires an apartment: %w",
				c.ID, ErrConfiguration)
		}
		if c.FormulaDefinitionID == nil {
			return fmt.Errorf("contribution %d: heating-mixed distribution requires a formula: %w",
				c.ID, ErrConfiguration)
		}
	}
	return nil
}

type Repository interface {
	FindCostCenter(ctx context.Context, id snowflake.ID) (*CostCenter, error)
	ListContributions(ctx context.Context, costCenterID snowflake.ID) ([]Contribution, error)
}
