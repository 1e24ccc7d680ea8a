package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	formuladomain "github.com/tabacha/librelandlord/internal/formula/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) formuladomain.Repository {
	return &repo{db: db}
}

func (r *repo) FindDefinition(ctx context.Context, id snowflake.ID) (*formuladomain.Definition, error) {
	var def formuladomain.Definition
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *repo) ListArguments(ctx context.Context, definitionID snowflake.ID) ([]formuladomain.Argument, error) {
	var args []formuladomain.Argument
	err := r.db.WithContext(ctx).
		Where("definition_id = ?", definitionID).
		Order("position ASC").
		Find(&args).Error
	if err != nil {
		return nil, err
	}
	return args, nil
}
