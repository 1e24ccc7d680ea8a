// Package seed loads a small demo property into an empty database: two
// apartments with a tenant change, metered water and heating, and a settled
// account period. Useful for local exploration and manual testing.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	costcenterdomain "github.com/tabacha/librelandlord/internal/costcenter/domain"
	formuladomain "github.com/tabacha/librelandlord/internal/formula/domain"
	meterdomain "github.com/tabacha/librelandlord/internal/meter/domain"
	settlementdomain "github.com/tabacha/librelandlord/internal/settlement/domain"
	tenancydomain "github.com/tabacha/librelandlord/internal/tenancy/domain"
	"gorm.io/gorm"
)

// EnsureDemoData seeds the demo property. It is a no-op when any account
// period already exists, so repeated runs are safe.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&settlementdomain.AccountPeriod{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return insertDemoData(tx, node)
	})
}

func insertDemoData(tx *gorm.DB, node *snowflake.Node) error {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	datePtr := func(y int, m time.Month, d int) *time.Time {
		t := date(y, m, d)
		return &t
	}
	idPtr := func(id snowflake.ID) *snowflake.ID { return &id }

	groundFloor := tenancydomain.Apartment{
		ID:     node.Generate(),
		Number: "1",
		Name:   "Erdgeschoss links",
		Street: "Musterstraße 12",
		City:   "Hamburg",
		SizeM2: 62.5,
	}
	upperFloor := tenancydomain.Apartment{
		ID:     node.Generate(),
		Number: "2",
		Name:   "Obergeschoss",
		Street: "Musterstraße 12",
		City:   "Hamburg",
		SizeM2: 81.0,
	}
	if err := tx.Create([]tenancydomain.Apartment{groundFloor, upperFloor}).Error; err != nil {
		return err
	}

	renters := []tenancydomain.Renter{
		{
			ID:                node.Generate(),
			ApartmentID:       groundFloor.ID,
			FirstName:         "Anna",
			LastName:          "Schmidt",
			MoveInDate:        date(2021, time.April, 1),
			MoveOutDate:       datePtr(2024, time.June, 30),
			ContractStartDate: datePtr(2021, time.April, 1),
			ContractEndDate:   datePtr(2024, time.June, 30),
		},
		{
			ID:                node.Generate(),
			ApartmentID:       groundFloor.ID,
			FirstName:         "Ben",
			LastName:          "Krüger",
			MoveInDate:        date(2024, time.August, 1),
			ContractStartDate: datePtr(2024, time.July, 15),
		},
		{
			ID:              node.Generate(),
			ApartmentID:     upperFloor.ID,
			FirstName:       "Clara",
			LastName:        "Weber",
			MoveInDate:      date(2019, time.October, 1),
			IsOwnerOccupied: true,
		},
	}
	if err := tx.Create(renters).Error; err != nil {
		return err
	}

	mainWater := meterdomain.MeterPlace{
		ID:       node.Generate(),
		Type:     meterdomain.PlaceTypeColdWater,
		Name:     "Hauptwasserzähler",
		Location: "Keller",
	}
	gardenWater := meterdomain.MeterPlace{
		ID:       node.Generate(),
		Type:     meterdomain.PlaceTypeColdWater,
		Name:     "Gartenwasser",
		Location: "Außenwand",
	}
	heatGround := meterdomain.MeterPlace{
		ID:       node.Generate(),
		Type:     meterdomain.PlaceTypeHeat,
		Name:     "Wärmemengenzähler EG",
		Location: "Erdgeschoss Flur",
	}
	heatUpper := meterdomain.MeterPlace{
		ID:       node.Generate(),
		Type:     meterdomain.PlaceTypeHeat,
		Name:     "Wärmemengenzähler OG",
		Location: "Obergeschoss Flur",
	}
	places := []meterdomain.MeterPlace{mainWater, gardenWater, heatGround, heatUpper}
	if err := tx.Create(places).Error; err != nil {
		return err
	}

	meters := make([]meterdomain.Meter, 0, len(places))
	for _, place := range places {
		meters = append(meters, meterdomain.Meter{
			ID:                  node.Generate(),
			PlaceID:             place.ID,
			MeterNumber:         "DEMO-" + place.ID.String()[:6],
			BuildInDate:         date(2018, time.March, 1),
			CalibratedUntilDate: date(2030, time.December, 31),
		})
	}
	if err := tx.Create(meters).Error; err != nil {
		return err
	}

	type sample struct {
		date  time.Time
		value float64
	}
	readingSets := [][]sample{
		// Main water, m³. Boundary readings missing, interpolation kicks in.
		{
			{date(2023, time.December, 15), 1480.0},
			{date(2024, time.June, 20), 1551.5},
			{date(2025, time.January, 10), 1622.0},
		},
		// Garden water, deducted from the main meter.
		{
			{date(2024, time.January, 1), 210.0},
			{date(2025, time.January, 1), 218.4},
		},
		// Heat EG, kWh.
		{
			{date(2024, time.January, 1), 30120.0},
			{date(2025, time.January, 1), 36480.0},
		},
		// Heat OG, kWh.
		{
			{date(2024, time.January, 1), 41200.0},
			{date(2025, time.January, 1), 49930.0},
		},
	}
	for i, set := range readingSets {
		for _, s := range set {
			reading := meterdomain.Reading{
				ID:      node.Generate(),
				MeterID: meters[i].ID,
				Date:    s.date,
				Value:   s.value,
			}
			if err := tx.Create(&reading).Error; err != nil {
				return err
			}
		}
	}

	// Water consumption for the house is the main meter minus garden water.
	waterFormula := formuladomain.Definition{
		ID:        node.Generate(),
		Name:      "Wasserverbrauch Haus",
		Operator:  formuladomain.OperatorSubtract,
		ValidFrom: date(2018, time.January, 1),
	}
	heatGroundFormula := formuladomain.Definition{
		ID:        node.Generate(),
		Name:      "Wärme EG",
		Operator:  formuladomain.OperatorNone,
		ValidFrom: date(2018, time.January, 1),
	}
	heatUpperFormula := formuladomain.Definition{
		ID:        node.Generate(),
		Name:      "Wärme OG",
		Operator:  formuladomain.OperatorNone,
		ValidFrom: date(2018, time.January, 1),
	}
	definitions := []formuladomain.Definition{waterFormula, heatGroundFormula, heatUpperFormula}
	if err := tx.Create(definitions).Error; err != nil {
		return err
	}

	arguments := []formuladomain.Argument{
		{
			ID:           node.Generate(),
			DefinitionID: waterFormula.ID,
			Position:     1,
			Explanation:  "Hauptzähler",
			MeterPlaceID: idPtr(mainWater.ID),
		},
		{
			ID:           node.Generate(),
			DefinitionID: waterFormula.ID,
			Position:     2,
			Explanation:  "abzüglich Gartenwasser",
			MeterPlaceID: idPtr(gardenWater.ID),
		},
		{
			ID:           node.Generate(),
			DefinitionID: heatGroundFormula.ID,
			Position:     1,
			MeterPlaceID: idPtr(heatGround.ID),
		},
		{
			ID:           node.Generate(),
			DefinitionID: heatUpperFormula.ID,
			Position:     1,
			MeterPlaceID: idPtr(heatUpper.ID),
		},
	}
	if err := tx.Create(arguments).Error; err != nil {
		return err
	}

	waste := costcenterdomain.CostCenter{
		ID:               node.Generate(),
		Text:             "Müllabfuhr",
		DistributionType: costcenterdomain.DistributionTime,
	}
	propertyTax := costcenterdomain.CostCenter{
		ID:               node.Generate(),
		Text:             "Grundsteuer",
		DistributionType: costcenterdomain.DistributionArea,
	}
	water := costcenterdomain.CostCenter{
		ID:               node.Generate(),
		Text:             "Wasser und Abwasser",
		DistributionType: costcenterdomain.DistributionConsumption,
	}
	heating := costcenterdomain.CostCenter{
		ID:                    node.Generate(),
		Text:                  "Heizung",
		DistributionType:      costcenterdomain.DistributionHeatingMixed,
		AreaPercentage:        30,
		ConsumptionPercentage: 70,
	}
	cable := costcenterdomain.CostCenter{
		ID:               node.Generate(),
		Text:             "Kabelanschluss OG",
		DistributionType: costcenterdomain.DistributionDirect,
	}
	centers := []costcenterdomain.CostCenter{waste, propertyTax, water, heating, cable}
	if err := tx.Create(centers).Error; err != nil {
		return err
	}

	contributions := []costcenterdomain.Contribution{
		{ID: node.Generate(), CostCenterID: waste.ID, ApartmentID: idPtr(groundFloor.ID)},
		{ID: node.Generate(), CostCenterID: waste.ID, ApartmentID: idPtr(upperFloor.ID)},
		{ID: node.Generate(), CostCenterID: propertyTax.ID, ApartmentID: idPtr(groundFloor.ID)},
		{ID: node.Generate(), CostCenterID: propertyTax.ID, ApartmentID: idPtr(upperFloor.ID)},
		{
			ID:                  node.Generate(),
			CostCenterID:        water.ID,
			SpecialDesignation:  "Gesamtverbrauch Haus",
			FormulaDefinitionID: idPtr(waterFormula.ID),
		},
		{
			ID:                  node.Generate(),
			CostCenterID:        heating.ID,
			ApartmentID:         idPtr(groundFloor.ID),
			FormulaDefinitionID: idPtr(heatGroundFormula.ID),
		},
		{
			ID:                  node.Generate(),
			CostCenterID:        heating.ID,
			ApartmentID:         idPtr(upperFloor.ID),
			FormulaDefinitionID: idPtr(heatUpperFormula.ID),
		},
		{ID: node.Generate(), CostCenterID: cable.ID, ApartmentID: idPtr(upperFloor.ID)},
	}
	if err := tx.Create(contributions).Error; err != nil {
		return err
	}

	period2024 := settlementdomain.AccountPeriod{
		ID:          node.Generate(),
		Text:        "Nebenkosten 2024",
		StartDate:   date(2024, time.January, 1),
		EndDate:     date(2025, time.January, 1),
		BillingYear: 2024,
	}
	if err := tx.Create(&period2024).Error; err != nil {
		return err
	}

	bills := []settlementdomain.Bill{
		{
			ID:              node.Generate(),
			Text:            "Müllabfuhr Jahresgebühr",
			BillDate:        date(2024, time.February, 15),
			BillNumber:      "SR-2024-0815",
			Amount:          486.00,
			FromDate:        date(2024, time.January, 1),
			ToDate:          date(2025, time.January, 1),
			CostCenterID:    waste.ID,
			AccountPeriodID: period2024.ID,
		},
		{
			ID:              node.Generate(),
			Text:            "Grundsteuer 2024",
			BillDate:        date(2024, time.March, 1),
			BillNumber:      "GS-2024",
			Amount:          912.40,
			FromDate:        date(2024, time.January, 1),
			ToDate:          date(2025, time.January, 1),
			CostCenterID:    propertyTax.ID,
			AccountPeriodID: period2024.ID,
		},
		{
			ID:              node.Generate(),
			Text:            "Wasserwerke Jahresabrechnung",
			BillDate:        date(2025, time.January, 20),
			BillNumber:      "WW-88123",
			Amount:          734.19,
			FromDate:        date(2024, time.January, 1),
			ToDate:          date(2025, time.January, 1),
			CostCenterID:    water.ID,
			AccountPeriodID: period2024.ID,
		},
		{
			ID:              node.Generate(),
			Text:            "Fernwärme Abschlag",
			BillDate:        date(2024, time.July, 1),
			BillNumber:      "FW-1-2024",
			Amount:          1245.00,
			FromDate:        date(2024, time.January, 1),
			ToDate:          date(2024, time.July, 1),
			CostCenterID:    heating.ID,
			AccountPeriodID: period2024.ID,
		},
		{
			ID:              node.Generate(),
			Text:            "Fernwärme Jahresabrechnung",
			BillDate:        date(2025, time.January, 5),
			BillNumber:      "FW-2-2024",
			Amount:          1408.77,
			FromDate:        date(2024, time.July, 1),
			ToDate:          date(2025, time.January, 1),
			CostCenterID:    heating.ID,
			AccountPeriodID: period2024.ID,
		},
		{
			ID:              node.Generate(),
			Text:            "Kabelanschluss",
			BillDate:        date(2024, time.January, 10),
			BillNumber:      "TV-2024",
			Amount:          120.00,
			FromDate:        date(2024, time.January, 1),
			ToDate:          date(2025, time.January, 1),
			CostCenterID:    cable.ID,
			AccountPeriodID: period2024.ID,
		},
	}
	if err := tx.Create(bills).Error; err != nil {
		return err
	}

	return nil
}
