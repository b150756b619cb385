//go:generate mockery --name EnrollmentRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"fmt"

	"fintrax_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *model.Enrollment) error
	FindByUser(ctx context.Context, db *gorm.DB, userDocument string) ([]*model.Enrollment, error)
	CountCompleted(ctx context.Context, db *gorm.DB, userDocument string) (int64, error)
}

type gormEnrollmentRepository struct{}

func NewGormEnrollmentRepository() EnrollmentRepository {
	return &gormEnrollmentRepository{}
}

func (r *gormEnrollmentRepository) Create(ctx context.Context, tx *gorm.DB, enrollment *model.Enrollment) error {
	result := tx.WithContext(ctx).Create(enrollment)
	if result.Error != nil {
		return fmt.Errorf("gormEnrollmentRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormEnrollmentRepository) FindByUser(ctx context.Context, db *gorm.DB, userDocument string) ([]*model.Enrollment, error) {
	var enrollments []*model.Enrollment

	result := db.WithContext(ctx).
		Where("user_document = ?", userDocument).
		Order("created_at DESC").
		Find(&enrollments)
	if result.Error != nil {
		return nil, fmt.Errorf("gormEnrollmentRepository.FindByUser: %w", result.Error)
	}
	return enrollments, nil
}

// CountCompleted は進捗100%の受講数を数えます（completed_courses ルールのデータソース）
func (r *gormEnrollmentRepository) CountCompleted(ctx context.Context, db *gorm.DB, userDocument string) (int64, error) {
	var count int64

	result := db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("user_document = ? AND progress >= ?", userDocument, 100).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("gormEnrollmentRepository.CountCompleted: %w", result.Error)
	}
	return count, nil
}
