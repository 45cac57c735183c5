package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/offertehq/offerte/internal/quote/domain"
	"github.com/offertehq/offerte/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, quote *domain.Quote, items []domain.QuoteItem) error
	Save(ctx context.Context, db *gorm.DB, quote *domain.Quote) error
	ReplaceItems(ctx context.Context, db *gorm.DB, quote *domain.Quote, items []domain.QuoteItem) error
	Delete(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*domain.Quote, error)
	ListItems(ctx context.Context, db *gorm.DB, accountID, quoteID snowflake.ID) ([]domain.QuoteItem, error)
	List(ctx context.Context, db *gorm.DB, accountID snowflake.ID, filter domain.ListQuoteFilter, page pagination.Pagination) ([]*domain.Quote, error)
	ListAll(ctx context.Context, db *gorm.DB, accountID snowflake.ID, filter domain.ListQuoteFilter) ([]*domain.Quote, error)
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, quote *domain.Quote, items []domain.QuoteItem) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quote).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	return db.WithContext(ctx).Save(quote).Error
}

func (r *repo) ReplaceItems(ctx context.Context, db *gorm.DB, quote *domain.Quote, items []domain.QuoteItem) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ? AND quote_id = ?", quote.AccountID, quote.ID).
			Delete(&domain.QuoteItem{}).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return tx.Save(quote).Error
	})
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ? AND quote_id = ?", accountID, id).
			Delete(&domain.QuoteItem{}).Error; err != nil {
			return err
		}
		return tx.Where("account_id = ? AND id = ?", accountID, id).
			Delete(&domain.Quote{}).Error
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*domain.Quote, error) {
	var quote domain.Quote
	err := db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, id).
		First(&quote).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &quote, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, accountID, quoteID snowflake.ID) ([]domain.QuoteItem, error) {
	var items []domain.QuoteItem
	err := db.WithContext(ctx).
		Where("account_id = ? AND quote_id = ?", accountID, quoteID).
		Order("position asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, accountID snowflake.ID, filter domain.ListQuoteFilter, page pagination.Pagination) ([]*domain.Quote, error) {
	stmt := r.filtered(db.WithContext(ctx), accountID, filter)
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err == nil && cursor.CreatedAt != "" {
			stmt = stmt.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
		}
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}

	var quotes []*domain.Quote
	if err := stmt.Order("created_at desc, id desc").Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB, accountID snowflake.ID, filter domain.ListQuoteFilter) ([]*domain.Quote, error) {
	var quotes []*domain.Quote
	err := r.filtered(db.WithContext(ctx), accountID, filter).
		Order("created_at asc, id asc").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *repo) filtered(db *gorm.DB, accountID snowflake.ID, filter domain.ListQuoteFilter) *gorm.DB {
	stmt := db.Model(&domain.Quote{}).Where("account_id = ?", accountID)
	if filter.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Converted != nil {
		if *filter.Converted {
			stmt = stmt.Where("invoice_id IS NOT NULL")
		} else {
			stmt = stmt.Where("invoice_id IS NULL")
		}
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}
	return stmt
}
