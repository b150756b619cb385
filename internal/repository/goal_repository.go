//go:generate mockery --name GoalRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"fintrax_backend/internal/middleware"
	"fintrax_backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GoalRepository interface {
	Create(ctx context.Context, tx *gorm.DB, goal *model.SavingsGoal) error
	FindByID(ctx context.Context, db *gorm.DB, userDocument string, goalID uuid.UUID) (*model.SavingsGoal, error)
	FindByUser(ctx context.Context, db *gorm.DB, userDocument string) ([]*model.SavingsGoal, error)
	Save(ctx context.Context, tx *gorm.DB, goal *model.SavingsGoal) error
	Delete(ctx context.Context, tx *gorm.DB, userDocument string, goalID uuid.UUID) error
	CountByStatus(ctx context.Context, db *gorm.DB, userDocument string, status model.GoalStatus) (int64, error)
	ListActivity(ctx context.Context, db *gorm.DB, userDocument string) ([]model.GoalActivity, error)
}

type gormGoalRepository struct{}

func NewGormGoalRepository() GoalRepository {
	return &gormGoalRepository{}
}

func (r *gormGoalRepository) Create(ctx context.Context, tx *gorm.DB, goal *model.SavingsGoal) error {
	result := tx.WithContext(ctx).Create(goal)
	if result.Error != nil {
		return fmt.Errorf("gormGoalRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormGoalRepository) FindByID(ctx context.Context, db *gorm.DB, userDocument string, goalID uuid.UUID) (*model.SavingsGoal, error) {
	var goal model.SavingsGoal

	result := db.WithContext(ctx).
		Where("user_document = ? AND goal_id = ?", userDocument, goalID).
		First(&goal)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormGoalRepository.FindByID: %w", result.Error)
	}
	return &goal, nil
}

func (r *gormGoalRepository) FindByUser(ctx context.Context, db *gorm.DB, userDocument string) ([]*model.SavingsGoal, error) {
	var goals []*model.SavingsGoal

	result := db.WithContext(ctx).
		Where("user_document = ?", userDocument).
		Order("created_at DESC").
		Find(&goals)
	if result.Error != nil {
		return nil, fmt.Errorf("gormGoalRepository.FindByUser: %w", result.Error)
	}
	return goals, nil
}

// Save は取得済みの目標オブジェクト全体を保存します。
// 呼び出し元 (Service) がトランザクション内で存在確認している想定。
func (r *gormGoalRepository) Save(ctx context.Context, tx *gorm.DB, goal *model.SavingsGoal) error {
	result := tx.WithContext(ctx).Save(goal)
	if result.Error != nil {
		return fmt.Errorf("gormGoalRepository.Save: %w", result.Error)
	}
	return nil
}

func (r *gormGoalRepository) Delete(ctx context.Context, tx *gorm.DB, userDocument string, goalID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	result := tx.WithContext(ctx).
		Where("user_document = ? AND goal_id = ?", userDocument, goalID).
		Delete(&model.SavingsGoal{})
	if result.Error != nil {
		logger.Error(
			"Error deleting goal in DB",
			"error", result.Error,
			"goal_id", goalID.String(),
		)
		return fmt.Errorf("gormGoalRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormGoalRepository) CountByStatus(ctx context.Context, db *gorm.DB, userDocument string, status model.GoalStatus) (int64, error) {
	var count int64

	result := db.WithContext(ctx).
		Model(&model.SavingsGoal{}).
		Where("user_document = ? AND status = ?", userDocument, status).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("gormGoalRepository.CountByStatus: %w", result.Error)
	}
	return count, nil
}

// ListActivity は実績評価用に有効・完了状態の目標の作成日・完了日・状態を返します
func (r *gormGoalRepository) ListActivity(ctx context.Context, db *gorm.DB, userDocument string) ([]model.GoalActivity, error) {
	var activities []model.GoalActivity

	result := db.WithContext(ctx).
		Model(&model.SavingsGoal{}).
		Select("status", "created_at", "completed_at").
		Where("user_document = ? AND status IN ?", userDocument, []model.GoalStatus{model.GoalActive, model.GoalCompleted}).
		Order("created_at ASC").
		Find(&activities)
	if result.Error != nil {
		return nil, fmt.Errorf("gormGoalRepository.ListActivity: %w", result.Error)
	}
	return activities, nil
}
