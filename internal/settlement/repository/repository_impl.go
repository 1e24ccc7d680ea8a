package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	settlementdomain "github.com/tabacha/librelandlord/internal/settlement/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) settlementdomain.Repository {
	return &repo{db: db}
}

func (r *repo) FindPeriod(ctx context.Context, id snowflake.ID) (*settlementdomain.AccountPeriod, error) {
	var p settlementdomain.AccountPeriod
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) ListBills(ctx context.Context, periodID snowflake.ID) ([]settlementdomain.Bill, error) {
	var bills []settlementdomain.Bill
	err := r.db.WithContext(ctx).
		Where("account_period_id = ?", periodID).
		Order("bill_date ASC, id ASC").
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *repo) ListPeriodsForYear(ctx context.Context, year int) ([]settlementdomain.AccountPeriod, error) {
	var periods []settlementdomain.AccountPeriod
	err := r.db.WithContext(ctx).
		Where("billing_year = ?", year).
		Order("start_date ASC").
		Find(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}
