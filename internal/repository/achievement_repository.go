//go:generate mockery --name AchievementRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"fmt"
	"time"

	"fintrax_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository interface {
	ListActiveDefinitions(ctx context.Context, db *gorm.DB) ([]*model.AchievementDefinition, error)
	UpsertProgress(ctx context.Context, tx *gorm.DB, userDocument string, achievementID uint, value int, evaluatedAt time.Time) error
	MarkUnlocked(ctx context.Context, tx *gorm.DB, userDocument string, achievementID uint, unlockedAt time.Time) (bool, error)
	AddUserXP(ctx context.Context, tx *gorm.DB, userDocument string, amount int) error
	GetProgressMap(ctx context.Context, db *gorm.DB, userDocument string) (map[uint]*model.AchievementProgress, error)
	GetUnlockMap(ctx context.Context, db *gorm.DB, userDocument string) (map[uint]*model.UserAchievement, error)
	ListUnlockHistory(ctx context.Context, db *gorm.DB, userDocument string) ([]*model.AchievementHistoryEntry, error)
}

type gormAchievementRepository struct{}

func NewGormAchievementRepository() AchievementRepository {
	return &gormAchievementRepository{}
}

// ListActiveDefinitions は有効な実績定義をカテゴリ→目標値→ID順で返します。
// 一覧表示と評価が同じ順序で定義を走査する前提なので、順序はここで固定する。
func (r *gormAchievementRepository) ListActiveDefinitions(ctx context.Context, db *gorm.DB) ([]*model.AchievementDefinition, error) {
	var definitions []*model.AchievementDefinition

	result := db.WithContext(ctx).
		Where("active = ?", true).
		Order("category ASC, target_value ASC, id ASC").
		Find(&definitions)
	if result.Error != nil {
		return nil, fmt.Errorf("gormAchievementRepository.ListActiveDefinitions: %w", result.Error)
	}
	return definitions, nil
}

// UpsertProgress は進捗値を (user_document, achievement_id) 単位で保存します。
// 既存行があれば current_value と evaluated_at を上書き。解除済みでも最新値を記録し続ける。
func (r *gormAchievementRepository) UpsertProgress(ctx context.Context, tx *gorm.DB, userDocument string, achievementID uint, value int, evaluatedAt time.Time) error {
	progress := model.AchievementProgress{
		UserDocument:  userDocument,
		AchievementID: achievementID,
		CurrentValue:  value,
		EvaluatedAt:   evaluatedAt,
	}

	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_document"}, {Name: "achievement_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"current_value": value,
			"evaluated_at":  evaluatedAt,
		}),
	}).Create(&progress)
	if result.Error != nil {
		return fmt.Errorf("gormAchievementRepository.UpsertProgress: %w", result.Error)
	}
	return nil
}

// MarkUnlocked は実績を解除済みにし、この呼び出しで新たに解除されたかどうかを返します。
// INSERT ... ON CONFLICT DO UPDATE ... WHERE completed = false の1文で競合時も
// ちょうど1リクエストだけが true を受け取る (解除済み行への再実行は0行更新)。
func (r *gormAchievementRepository) MarkUnlocked(ctx context.Context, tx *gorm.DB, userDocument string, achievementID uint, unlockedAt time.Time) (bool, error) {
	unlock := model.UserAchievement{
		UserDocument:  userDocument,
		AchievementID: achievementID,
		Completed:     true,
		UnlockedAt:    unlockedAt,
	}

	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_document"}, {Name: "achievement_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"completed":   true,
			"unlocked_at": unlockedAt,
		}),
		Where: clause.Where{
			Exprs: []clause.Expression{
				clause.Eq{
					Column: clause.Column{Table: "user_achievements", Name: "completed"},
					Value:  false,
				},
			},
		},
	}).Create(&unlock)
	if result.Error != nil {
		return false, fmt.Errorf("gormAchievementRepository.MarkUnlocked: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// AddUserXP はユーザーのXPを加算します。読み出してから書き戻すのではなく
// xp = xp + ? のアトミック更新にすることで並行加算でも合計が失われない。
func (r *gormAchievementRepository) AddUserXP(ctx context.Context, tx *gorm.DB, userDocument string, amount int) error {
	result := tx.WithContext(ctx).
		Model(&model.User{}).
		Where("document = ?", userDocument).
		UpdateColumn("xp", gorm.Expr("xp + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("gormAchievementRepository.AddUserXP: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *gormAchievementRepository) GetProgressMap(ctx context.Context, db *gorm.DB, userDocument string) (map[uint]*model.AchievementProgress, error) {
	var rows []*model.AchievementProgress

	result := db.WithContext(ctx).
		Where("user_document = ?", userDocument).
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("gormAchievementRepository.GetProgressMap: %w", result.Error)
	}

	progressMap := make(map[uint]*model.AchievementProgress, len(rows))
	for _, row := range rows {
		progressMap[row.AchievementID] = row
	}
	return progressMap, nil
}

func (r *gormAchievementRepository) GetUnlockMap(ctx context.Context, db *gorm.DB, userDocument string) (map[uint]*model.UserAchievement, error) {
	var rows []*model.UserAchievement

	result := db.WithContext(ctx).
		Where("user_document = ?", userDocument).
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("gormAchievementRepository.GetUnlockMap: %w", result.Error)
	}

	unlockMap := make(map[uint]*model.UserAchievement, len(rows))
	for _, row := range rows {
		unlockMap[row.AchievementID] = row
	}
	return unlockMap, nil
}

// ListUnlockHistory は解除済み実績を定義情報と結合して解除日時の降順で返します
func (r *gormAchievementRepository) ListUnlockHistory(ctx context.Context, db *gorm.DB, userDocument string) ([]*model.AchievementHistoryEntry, error) {
	var entries []*model.AchievementHistoryEntry

	result := db.WithContext(ctx).
		Model(&model.UserAchievement{}).
		Select(
			"achievement_definitions.id AS achievement_id",
			"achievement_definitions.name",
			"achievement_definitions.description",
			"achievement_definitions.image_url",
			"achievement_definitions.xp_reward",
			"user_achievements.unlocked_at",
		).
		Joins("JOIN achievement_definitions ON achievement_definitions.id = user_achievements.achievement_id").
		Where("user_achievements.user_document = ? AND user_achievements.completed = ?", userDocument, true).
		Order("user_achievements.unlocked_at DESC").
		Scan(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("gormAchievementRepository.ListUnlockHistory: %w", result.Error)
	}
	return entries, nil
}
