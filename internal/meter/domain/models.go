// Package domain holds the metering entities: measuring places, the
// physical meters installed there over time, and their dated readings.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tabacha/librelandlord/internal/period"
)

// PlaceType fixes the physical unit measured at a place.
type PlaceType string

const (
	PlaceTypeElectricity PlaceType = "EL"
	PlaceTypeGas         PlaceType = "GA"
	PlaceTypeColdWater   PlaceType = "KW"
	PlaceTypeWarmWater   PlaceType = "WW"
	PlaceTypeHeat        PlaceType = "HE"
	PlaceTypeOil         PlaceType = "OI"
)

// Unit returns the physical unit for consumption measured at this type of
// place.
func (t PlaceType) Unit() string {
	switch t {
	case PlaceTypeElectricity, PlaceTypeGas, PlaceTypeHeat:
		return "kWh"
	case PlaceTypeColdWater, PlaceTypeWarmWater:
		return "m³"
	case PlaceTypeOil:
		return "l"
	default:
		return ""
	}
}

type MeterPlace struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Type      PlaceType    `gorm:"type:text;not null"`
	Name      string       `gorm:"type:text;not null"`
	Remark    string       `gorm:"type:text"`
	Location  string       `gorm:"type:text"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (MeterPlace) TableName() string { return "meter_places" }

// Meter is a physical device at a place. At most one meter per place has a
// null out-of-order date; superseded meters stay for their history.
type Meter struct {
	ID                  snowflake.ID `gorm:"primaryKey"`
	PlaceID             snowflake.ID `gorm:"not null;index"`
	MeterNumber         string       `gorm:"type:text;not null"`
	Remark              string       `gorm:"type:text"`
	BuildInDate         time.Time    `gorm:"not null"`
	CalibratedUntilDate time.Time    `gorm:"not null"`
	OutOfOrderDate      *time.Time
	CreatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Meter) TableName() string { return "meters" }

// ActiveOn reports whether the meter was in service on the given day. The
// build-in and out-of-order days themselves count as in service, both are
// valid reading dates.
func (m Meter) ActiveOn(t time.Time) bool {
	if m.OutOfOrderDate == nil {
		return !period.Day(t).Before(period.Day(m.BuildInDate))
	}
	service := period.Period{Start: period.Day(m.BuildInDate), End: period.Day(*m.OutOfOrderDate)}
	return service.Contains(t)
}

// Reading is a dated, device-reported meter value. Values are monotonically
// non-decreasing per meter; at most one reading per meter per day.
type Reading struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	MeterID   snowflake.ID `gorm:"not null;index:idx_readings_meter_date,unique"`
	Date      time.Time    `gorm:"not null;index:idx_readings_meter_date,unique"`
	Value     float64      `gorm:"not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Reading) TableName() string { return "meter_readings" }

// ResolvedValue is a meter value at an arbitrary date, either an exact
// reading or a linear interpolation between the two bracketing readings.
type ResolvedValue struct {
	Date       time.Time
	Value      float64
	Exact      bool
	Before     *Reading
	After      *Reading
	PerDayRate float64
}

// MeterConsumption is one meter's share of a place consumption.
type MeterConsumption struct {
	Meter       Meter
	Period      period.Period
	StartValue  ResolvedValue
	EndValue    ResolvedValue
	Consumption float64
}

// PlaceConsumption is the summed consumption of all meters that served a
// place during a period.
type PlaceConsumption struct {
	Place      MeterPlace
	Period     period.Period
	Meters     []MeterConsumption
	Total      float64
	Unit       string
	ActiveDays int
}

type Repository interface {
	FindPlace(ctx context.Context, id snowflake.ID) (*MeterPlace, error)
	FindMeter(ctx context.Context, id snowflake.ID) (*Meter, error)
	// ListMetersForPlace returns all meters of the place ordered by
	// build-in date.
	ListMetersForPlace(ctx context.Context, placeID snowflake.ID) ([]Meter, error)
	FindReadingOn(ctx context.Context, meterID snowflake.ID, date time.Time) (*Reading, error)
	// LastReadingBefore returns the latest reading strictly before date.
	LastReadingBefore(ctx context.Context, meterID snowflake.ID, date time.Time) (*Reading, error)
	// FirstReadingAfter returns the earliest reading strictly after date.
	FirstReadingAfter(ctx context.Context, meterID snowflake.ID, date time.Time) (*Reading, error)
	SaveReading(ctx context.Context, reading *Reading) error
}

type Service interface {
	// ResolveAt resolves the meter's value on the given day, by exact
	// match or linear interpolation.
	ResolveAt(ctx context.Context, meter Meter, date time.Time) (ResolvedValue, error)
	// PlaceConsumption sums the consumption of every meter that served the
	// place during [start, end).
	PlaceConsumption(ctx context.Context, placeID snowflake.ID, start, end time.Time) (*PlaceConsumption, error)
	// RecordReading validates and stores a new reading: the meter must be
	// in service on the day, the day must be free, and the value must not
	// break the per-meter monotonic order.
	RecordReading(ctx context.Context, meterID snowflake.ID, date time.Time, value float64) (*Reading, error)
}
