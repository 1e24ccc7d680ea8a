package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	tenancydomain "github.com/tabacha/librelandlord/internal/tenancy/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) tenancydomain.Repository {
	return &repo{db: db}
}

func (r *repo) FindApartment(ctx context.Context, id snowflake.ID) (*tenancydomain.Apartment, error) {
	var apartment tenancydomain.Apartment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&apartment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &apartment, nil
}

func (r *repo) ListRentersForApartment(ctx context.Context, apartmentID snowflake.ID) ([]tenancydomain.Renter, error) {
	var renters []tenancydomain.Renter
	err := r.db.WithContext(ctx).
		Where("apartment_id = ?", apartmentID).
		Order("move_in_date ASC").
		Find(&renters).Error
	if err != nil {
		return nil, err
	}
	return renters, nil
}
