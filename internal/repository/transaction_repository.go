//go:generate mockery --name TransactionRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrax_backend/internal/middleware"
	"fintrax_backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, transaction *model.Transaction) error
	FindByID(ctx context.Context, db *gorm.DB, userDocument string, transactionID uuid.UUID) (*model.Transaction, error)
	FindByUser(ctx context.Context, db *gorm.DB, userDocument string) ([]*model.Transaction, error)
	Update(ctx context.Context, tx *gorm.DB, userDocument string, transactionID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, userDocument string, transactionID uuid.UUID) error
	CountByUser(ctx context.Context, db *gorm.DB, userDocument string) (int64, error)
	ListDates(ctx context.Context, db *gorm.DB, userDocument string) ([]time.Time, error)
}

type gormTransactionRepository struct{}

func NewGormTransactionRepository() TransactionRepository {
	return &gormTransactionRepository{}
}

func (r *gormTransactionRepository) Create(ctx context.Context, tx *gorm.DB, transaction *model.Transaction) error {
	result := tx.WithContext(ctx).Create(transaction)
	if result.Error != nil {
		return fmt.Errorf("gormTransactionRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormTransactionRepository) FindByID(ctx context.Context, db *gorm.DB, userDocument string, transactionID uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction

	result := db.WithContext(ctx).
		Where("user_document = ? AND transaction_id = ?", userDocument, transactionID).
		First(&transaction)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormTransactionRepository.FindByID: %w", result.Error)
	}
	return &transaction, nil
}

func (r *gormTransactionRepository) FindByUser(ctx context.Context, db *gorm.DB, userDocument string) ([]*model.Transaction, error) {
	var transactions []*model.Transaction

	result := db.WithContext(ctx).
		Where("user_document = ?", userDocument).
		Order("date DESC, created_at DESC").
		Find(&transactions)
	if result.Error != nil {
		return nil, fmt.Errorf("gormTransactionRepository.FindByUser: %w", result.Error)
	}
	return transactions, nil
}

func (r *gormTransactionRepository) Update(ctx context.Context, tx *gorm.DB, userDocument string, transactionID uuid.UUID, updates map[string]interface{}) error {
	result := tx.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("user_document = ? AND transaction_id = ?", userDocument, transactionID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("gormTransactionRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormTransactionRepository) Delete(ctx context.Context, tx *gorm.DB, userDocument string, transactionID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	// GORMの Delete は論理削除を実行する
	result := tx.WithContext(ctx).
		Where("user_document = ? AND transaction_id = ?", userDocument, transactionID).
		Delete(&model.Transaction{})
	if result.Error != nil {
		logger.Error(
			"Error deleting transaction in DB",
			"error", result.Error,
			"transaction_id", transactionID.String(),
		)
		return fmt.Errorf("gormTransactionRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormTransactionRepository) CountByUser(ctx context.Context, db *gorm.DB, userDocument string) (int64, error) {
	var count int64

	result := db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("user_document = ?", userDocument).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("gormTransactionRepository.CountByUser: %w", result.Error)
	}
	return count, nil
}

// ListDates は実績評価 (週次利用ルール) 用に取引日の一覧を返します
func (r *gormTransactionRepository) ListDates(ctx context.Context, db *gorm.DB, userDocument string) ([]time.Time, error) {
	var dates []time.Time

	result := db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("user_document = ?", userDocument).
		Order("date ASC").
		Pluck("date", &dates)
	if result.Error != nil {
		return nil, fmt.Errorf("gormTransactionRepository.ListDates: %w", result.Error)
	}
	return dates, nil
}
