package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	meterdomain "github.com/tabacha/librelandlord/internal/meter/domain"
	"github.com/tabacha/librelandlord/internal/period"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) meterdomain.Repository {
	return &repo{db: db}
}

func (r *repo) FindPlace(ctx context.Context, id snowflake.ID) (*meterdomain.MeterPlace, error) {
	var place meterdomain.MeterPlace
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&place).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &place, nil
}

func (r *repo) FindMeter(ctx context.Context, id snowflake.ID) (*meterdomain.Meter, error) {
	var meter meterdomain.Meter
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&meter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meter, nil
}

func (r *repo) ListMetersForPlace(ctx context.Context, placeID snowflake.ID) ([]meterdomain.Meter, error) {
	var meters []meterdomain.Meter
	err := r.db.WithContext(ctx).
		Where("place_id = ?", placeID).
		Order("build_in_date ASC").
		Find(&meters).Error
	if err != nil {
		return nil, err
	}
	return meters, nil
}

func (r *repo) FindReadingOn(ctx context.Context, meterID snowflake.ID, date time.Time) (*meterdomain.Reading, error) {
	var reading meterdomain.Reading
	err := r.db.WithContext(ctx).
		Where("meter_id = ? AND date = ?", meterID, period.Day(date)).
		First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *repo) LastReadingBefore(ctx context.Context, meterID snowflake.ID, date time.Time) (*meterdomain.Reading, error) {
	var reading meterdomain.Reading
	err := r.db.WithContext(ctx).
		Where("meter_id = ? AND date < ?", meterID, period.Day(date)).
		Order("date DESC").
		First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *repo) SaveReading(ctx context.Context, reading *meterdomain.Reading) error {
	return r.db.WithContext(ctx).Create(reading).Error
}

func (r *repo) FirstReadingAfter(ctx context.Context, meterID snowflake.ID, date time.Time) (*meterdomain.Reading, error) {
	var reading meterdomain.Reading
	err := r.db.WithContext(ctx).
		Where("meter_id = ? AND date > ?", meterID, period.Day(date)).
		Order("date ASC").
		First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}
