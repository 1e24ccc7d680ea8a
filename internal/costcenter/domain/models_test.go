package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func idPtr(id snowflake.ID) *snowflake.ID { return &id }

func TestCostCenterValidateMixedPercentages(t *testing.T) {
	ok := CostCenter{
		Text:                  "Heizung",
		DistributionType:      DistributionHeatingMixed,
		AreaPercentage:        30,
		ConsumptionPercentage: 70,
	}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.ConsumptionPercentage = 60
	assert.ErrorIs(t, bad.Validate(), ErrConfiguration)

	// Percentages are ignored for the other strategies.
	other := CostCenter{Text: "Müll", DistributionType: DistributionTime, AreaPercentage: 5}
	assert.NoError(t, other.Validate())
}

func TestContributionValidateCardinality(t *testing.T) {
	both := Contribution{ID: 1, ApartmentID: idPtr(10), SpecialDesignation: "Waschmaschine"}
	assert.ErrorIs(t, both.Validate(DistributionTime), ErrConfiguration)

	neither := Contribution{ID: 1}
	assert.ErrorIs(t, neither.Validate(DistributionTime), ErrConfiguration)

	apartmentOnly := Contribution{ID: 1, ApartmentID: idPtr(10)}
	assert.NoError(t, apartmentOnly.Validate(DistributionTime))
}

func TestContributionValidatePerStrategy(t *testing.T) {
	noFormula := Contribution{ID: 1, ApartmentID: idPtr(10)}
	assert.ErrorIs(t, noFormula.Validate(DistributionConsumption), ErrConfiguration)
	assert.ErrorIs(t, noFormula.Validate(DistributionHeatingMixed), ErrConfiguration)
	assert.NoError(t, noFormula.Validate(DistributionArea))
	assert.NoError(t, noFormula.Validate(DistributionDirect))

	special := Contribution{ID: 1, SpecialDesignation: "Allgemeinstrom", FormulaDefinitionID: idPtr(50)}
	assert.NoError(t, special.Validate(DistributionConsumption))
	assert.ErrorIs(t, special.Validate(DistributionArea), ErrConfiguration)
	assert.ErrorIs(t, special.Validate(DistributionDirect), ErrConfiguration)
}

func TestDisplayName(t *testing.T) {
	withApartment := Contribution{ApartmentID: idPtr(10)}
	assert.Equal(t, "EG links", withApartment.DisplayName("EG links"))

	special := Contribution{SpecialDesignation: "Waschmaschine"}
	assert.Equal(t, "Waschmaschine", special.DisplayName(""))
}
