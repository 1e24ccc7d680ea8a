// Package domain holds the apartment and renter entities plus the occupancy
// interval arithmetic shared by the distribution strategies.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Apartment struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	Number     string       `gorm:"type:text;not null"`
	Name       string       `gorm:"type:text;not null"`
	Street     string       `gorm:"type:text"`
	PostalCode string       `gorm:"type:text"`
	City       string       `gorm:"type:text"`
	SizeM2     float64      `gorm:"not null"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Apartment) TableName() string { return "apartments" }

// Renter is a time-bounded tenancy of one apartment. Contract dates may
// differ from the physical move dates; strategies choose which pair applies.
type Renter struct {
	ID                snowflake.ID `gorm:"primaryKey"`
	ApartmentID       snowflake.ID `gorm:"not null;index"`
	FirstName         string       `gorm:"type:text;not null"`
	LastName          string       `gorm:"type:text;not null"`
	MoveInDate        time.Time    `gorm:"not null"`
	MoveOutDate       *time.Time
	ContractStartDate *time.Time
	ContractEndDate   *time.Time
	IsOwnerOccupied   bool      `gorm:"not null;default:false"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Renter) TableName() string { return "renters" }

func (r Renter) FullName() string {
	return r.FirstName + " " + r.LastName
}

type Repository interface {
	FindApartment(ctx context.Context, id snowflake.ID) (*Apartment, error)
	ListRentersForApartment(ctx context.Context, apartmentID snowflake.ID) ([]Renter, error)
}
