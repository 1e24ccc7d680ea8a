package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	costcenterdomain "github.com/tabacha/librelandlord/internal/costcenter/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) costcenterdomain.Repository {
	return &repo{db: db}
}

func (r *repo) FindCostCenter(ctx context.Context, id snowflake.ID) (*costcenterdomain.CostCenter, error) {
	var center costcenterdomain.CostCenter
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&center).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &center, nil
}

func (r *repo) ListContributions(ctx context.Context, costCenterID snowflake.ID) ([]costcenterdomain.Contribution, error) {
	var contributions []costcenterdomain.Contribution
	err := r.db.WithContext(ctx).
		Where("cost_center_id = ?", costCenterID).
		Order("id ASC").
		Find(&contributions).Error
	if err != nil {
		return nil, err
	}
	return contributions, nil
}
