package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/offertehq/offerte/internal/settings/domain"
	"gorm.io/gorm"
)

type Repository interface {
	FindByAccount(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (*domain.Settings, error)
	Insert(ctx context.Context, db *gorm.DB, settings *domain.Settings) error
	Save(ctx context.Context, db *gorm.DB, settings *domain.Settings) error
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) FindByAccount(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (*domain.Settings, error) {
	var settings domain.Settings
	err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&settings).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, settings *domain.Settings) error {
	return db.WithContext(ctx).Create(settings).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, settings *domain.Settings) error {
	return db.WithContext(ctx).Save(settings).Error
}
