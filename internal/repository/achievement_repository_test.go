// internal/repository/achievement_repository_test.go
package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fintrax_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect database for testing")

	err = db.AutoMigrate(
		&model.User{},
		&model.AchievementDefinition{},
		&model.AchievementProgress{},
		&model.UserAchievement{},
	)
	require.NoError(t, err, "failed to migrate database for testing")
	return db
}

func Test_gormAchievementRepository_UpsertProgress(t *testing.T) {
	ctx := context.Background()
	db := setupRepoTestDB(t)
	repo := NewGormAchievementRepository()
	document := "10203040"

	t.Run("正常系: 初回は行が作成される", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		err := repo.UpsertProgress(ctx, db, document, 1, 3, now)
		require.NoError(t, err)

		var progress model.AchievementProgress
		require.NoError(t, db.First(&progress, "user_document = ? AND achievement_id = ?", document, 1).Error)
		assert.Equal(t, 3, progress.CurrentValue)
	})

	t.Run("正常系: 2回目は既存行が上書きされる", func(t *testing.T) {
		later := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
		err := repo.UpsertProgress(ctx, db, document, 1, 7, later)
		require.NoError(t, err)

		var progresses []model.AchievementProgress
		require.NoError(t, db.Find(&progresses, "user_document = ? AND achievement_id = ?", document, 1).Error)
		require.Len(t, progresses, 1, "行が増えないこと")
		assert.Equal(t, 7, progresses[0].CurrentValue)
		assert.Equal(t, later.Unix(), progresses[0].EvaluatedAt.Unix())
	})

	t.Run("正常系: 進捗値は減少方向にも上書きされる", func(t *testing.T) {
		now := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
		err := repo.UpsertProgress(ctx, db, document, 1, 2, now)
		require.NoError(t, err)

		var progress model.AchievementProgress
		require.NoError(t, db.First(&progress, "user_document = ? AND achievement_id = ?", document, 1).Error)
		assert.Equal(t, 2, progress.CurrentValue)
	})
}

func Test_gormAchievementRepository_MarkUnlocked(t *testing.T) {
	ctx := context.Background()
	db := setupRepoTestDB(t)
	repo := NewGormAchievementRepository()
	document := "10203040"
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("正常系: 初回の解除はtrueを返す", func(t *testing.T) {
		isNew, err := repo.MarkUnlocked(ctx, db, document, 1, now)
		require.NoError(t, err)
		assert.True(t, isNew)

		var unlock model.UserAchievement
		require.NoError(t, db.First(&unlock, "user_document = ? AND achievement_id = ?", document, 1).Error)
		assert.True(t, unlock.Completed)
	})

	t.Run("正常系: 解除済みに対する再実行はfalseを返す", func(t *testing.T) {
		later := now.Add(24 * time.Hour)
		isNew, err := repo.MarkUnlocked(ctx, db, document, 1, later)
		require.NoError(t, err)
		assert.False(t, isNew)

		// 解除日時は最初の解除のまま変わらない
		var unlock model.UserAchievement
		require.NoError(t, db.First(&unlock, "user_document = ? AND achievement_id = ?", document, 1).Error)
		assert.Equal(t, now.Unix(), unlock.UnlockedAt.Unix())
	})

	t.Run("正常系: completed=falseの既存行は解除に昇格しtrueを返す", func(t *testing.T) {
		require.NoError(t, db.Create(&model.UserAchievement{
			UserDocument: document, AchievementID: 2, Completed: false,
		}).Error)

		isNew, err := repo.MarkUnlocked(ctx, db, document, 2, now)
		require.NoError(t, err)
		assert.True(t, isNew)

		var unlock model.UserAchievement
		require.NoError(t, db.First(&unlock, "user_document = ? AND achievement_id = ?", document, 2).Error)
		assert.True(t, unlock.Completed)
	})

	t.Run("正常系: 別ユーザーの解除状態には影響しない", func(t *testing.T) {
		other := "55667788"
		isNew, err := repo.MarkUnlocked(ctx, db, other, 1, now)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func Test_gormAchievementRepository_AddUserXP(t *testing.T) {
	ctx := context.Background()
	db := setupRepoTestDB(t)
	repo := NewGormAchievementRepository()
	document := "10203040"

	require.NoError(t, db.Create(&model.User{
		Document:     document,
		Name:         "テスト太郎",
		Email:        "taro@example.com",
		PasswordHash: "hashed",
	}).Error)

	t.Run("正常系: XPが加算される", func(t *testing.T) {
		require.NoError(t, repo.AddUserXP(ctx, db, document, 50))
		require.NoError(t, repo.AddUserXP(ctx, db, document, 30))

		var user model.User
		require.NoError(t, db.First(&user, "document = ?", document).Error)
		assert.Equal(t, 80, user.XP)
	})

	t.Run("異常系: 存在しないユーザーはErrUserNotFound", func(t *testing.T) {
		err := repo.AddUserXP(ctx, db, "99999999", 10)
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})
}

func Test_gormAchievementRepository_ListActiveDefinitions(t *testing.T) {
	ctx := context.Background()
	db := setupRepoTestDB(t)
	repo := NewGormAchievementRepository()

	definitions := []model.AchievementDefinition{
		{ID: 1, Name: "b-2", Description: "d", Category: model.CategorySavings, RuleType: model.RuleCompletedGoals, TargetValue: 5, XPReward: 1, Active: true},
		{ID: 2, Name: "a-1", Description: "d", Category: model.CategoryEducation, RuleType: model.RuleCompletedCourses, TargetValue: 3, XPReward: 1, Active: true},
		{ID: 3, Name: "b-1", Description: "d", Category: model.CategorySavings, RuleType: model.RuleActiveGoals, TargetValue: 1, XPReward: 1, Active: true},
		{ID: 4, Name: "inactive", Description: "d", Category: model.CategoryHabits, RuleType: model.RuleMonthlySummary, TargetValue: 1, XPReward: 1, Active: false},
	}
	require.NoError(t, db.Create(&definitions).Error)

	got, err := repo.ListActiveDefinitions(ctx, db)
	require.NoError(t, err)
	require.Len(t, got, 3, "無効な定義は含まない")

	// カテゴリ→目標値→IDの順
	assert.Equal(t, uint(2), got[0].ID)
	assert.Equal(t, uint(3), got[1].ID)
	assert.Equal(t, uint(1), got[2].ID)
}

func Test_gormAchievementRepository_ListUnlockHistory(t *testing.T) {
	ctx := context.Background()
	db := setupRepoTestDB(t)
	repo := NewGormAchievementRepository()
	document := "10203040"

	require.NoError(t, db.Create(&model.AchievementDefinition{
		ID: 1, Name: "実績A", Description: "説明A", Category: model.CategoryTransactions,
		RuleType: model.RuleTransactionsRecorded, TargetValue: 1, XPReward: 10, ImageURL: "/badges/a.png", Active: true,
	}).Error)
	require.NoError(t, db.Create(&model.UserAchievement{
		UserDocument: document, AchievementID: 1, Completed: true,
		UnlockedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}).Error)
	// 未解除 (completed=false) の行は履歴に出ない
	require.NoError(t, db.Create(&model.UserAchievement{
		UserDocument: document, AchievementID: 2, Completed: false,
	}).Error)

	entries, err := repo.ListUnlockHistory(ctx, db, document)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(1), entries[0].AchievementID)
	assert.Equal(t, "実績A", entries[0].Name)
	assert.Equal(t, 10, entries[0].XPReward)
}
