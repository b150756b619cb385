// internal/service/achievement_service.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"fintrax_backend/internal/middleware"
	"fintrax_backend/internal/model"
	"fintrax_backend/internal/repository"

	"gorm.io/gorm"
)

type AchievementService interface {
	VerifyUser(ctx context.Context, userDocument string) ([]model.UnlockedAchievement, error)
	GetUserAchievements(ctx context.Context, userDocument string) (*model.UserAchievementsResponse, error)
	GetUnlockHistory(ctx context.Context, userDocument string) ([]*model.AchievementHistoryEntry, error)
}

type achievementService struct {
	db              *gorm.DB
	achievementRepo repository.AchievementRepository
	userRepo        repository.UserRepository
	evaluator       *Evaluator
	logger          *slog.Logger
}

func NewAchievementService(
	db *gorm.DB,
	achievementRepo repository.AchievementRepository,
	userRepo repository.UserRepository,
	evaluator *Evaluator,
	logger *slog.Logger,
) AchievementService {
	return &achievementService{
		db:              db,
		achievementRepo: achievementRepo,
		userRepo:        userRepo,
		evaluator:       evaluator,
		logger:          logger,
	}
}

// VerifyUser は全有効実績を評価し、新たに解除された実績を返します。
// 1定義の評価失敗はログに残して残りの評価を続ける。
// 解除とXP加算は定義ごとに同一トランザクションで行い、
// 新規解除の判定はDB側の条件付きUpsertに委ねるため再実行・並行実行で二重加算しない。
func (s *achievementService) VerifyUser(ctx context.Context, userDocument string) ([]model.UnlockedAchievement, error) {
	logger := middleware.GetLogger(ctx)

	if _, err := s.userRepo.FindByDocument(ctx, s.db, userDocument); err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません", "user_document", model.ErrUserNotFound)
		}
		logger.Error("Error finding user for achievement verification", "error", err, "user_document", userDocument)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}

	definitions, err := s.achievementRepo.ListActiveDefinitions(ctx, s.db)
	if err != nil {
		logger.Error("Error listing achievement definitions", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}

	newlyUnlocked := make([]model.UnlockedAchievement, 0)
	now := time.Now().UTC()

	for _, def := range definitions {
		value, err := s.evaluator.Evaluate(ctx, s.db, def.RuleType, userDocument)
		if err != nil {
			logger.Error(
				"Error evaluating achievement rule, skipping definition",
				"error", err,
				"achievement_id", def.ID,
				"rule_type", string(def.RuleType),
				"user_document", userDocument,
			)
			continue
		}

		var unlocked bool
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.achievementRepo.UpsertProgress(ctx, tx, userDocument, def.ID, value, now); err != nil {
				return err
			}
			if value < def.TargetValue {
				return nil
			}
			isNew, err := s.achievementRepo.MarkUnlocked(ctx, tx, userDocument, def.ID, now)
			if err != nil {
				return err
			}
			if isNew && def.XPReward > 0 {
				if err := s.achievementRepo.AddUserXP(ctx, tx, userDocument, def.XPReward); err != nil {
					return err
				}
			}
			unlocked = isNew
			return nil
		})
		if err != nil {
			logger.Error(
				"Error persisting achievement state, skipping definition",
				"error", err,
				"achievement_id", def.ID,
				"user_document", userDocument,
			)
			continue
		}

		if unlocked {
			logger.Info(
				"Achievement unlocked",
				"achievement_id", def.ID,
				"xp_awarded", def.XPReward,
				"user_document", userDocument,
			)
			newlyUnlocked = append(newlyUnlocked, model.UnlockedAchievement{
				AchievementID: def.ID,
				XPAwarded:     def.XPReward,
			})
		}
	}

	return newlyUnlocked, nil
}

// GetUserAchievements はカテゴリ別の実績一覧と統計を返します。
// 進捗行や解除行がまだ無い実績も定義は必ず一覧に含める。
func (s *achievementService) GetUserAchievements(ctx context.Context, userDocument string) (*model.UserAchievementsResponse, error) {
	logger := middleware.GetLogger(ctx)

	user, err := s.userRepo.FindByDocument(ctx, s.db, userDocument)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません", "user_document", model.ErrUserNotFound)
		}
		logger.Error("Error finding user for achievement list", "error", err, "user_document", userDocument)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}

	definitions, err := s.achievementRepo.ListActiveDefinitions(ctx, s.db)
	if err != nil {
		logger.Error("Error listing achievement definitions", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}
	progressMap, err := s.achievementRepo.GetProgressMap(ctx, s.db, userDocument)
	if err != nil {
		logger.Error("Error loading achievement progress", "error", err, "user_document", userDocument)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}
	unlockMap, err := s.achievementRepo.GetUnlockMap(ctx, s.db, userDocument)
	if err != nil {
		logger.Error("Error loading achievement unlocks", "error", err, "user_document", userDocument)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}

	response := &model.UserAchievementsResponse{
		AchievementsByCategory: model.AchievementsByCategory{
			Education:    make([]*model.AchievementView, 0),
			Savings:      make([]*model.AchievementView, 0),
			Habits:       make([]*model.AchievementView, 0),
			Transactions: make([]*model.AchievementView, 0),
		},
		Stats: model.AchievementStats{
			XPTotal:    user.XP,
			TotalCount: len(definitions),
		},
	}

	for _, def := range definitions {
		view := &model.AchievementView{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Category:    def.Category,
			TargetValue: def.TargetValue,
			XPReward:    def.XPReward,
			ImageURL:    def.ImageURL,
		}
		if progress, ok := progressMap[def.ID]; ok {
			view.CurrentValue = progress.CurrentValue
		}
		if unlock, ok := unlockMap[def.ID]; ok && unlock.Completed {
			view.Completed = true
			unlockedAt := unlock.UnlockedAt
			view.UnlockedAt = &unlockedAt
			response.Stats.UnlockedCount++
		}
		view.ProgressPercent = progressPercent(view.CurrentValue, def.TargetValue)

		switch def.Category {
		case model.CategoryEducation:
			response.AchievementsByCategory.Education = append(response.AchievementsByCategory.Education, view)
		case model.CategorySavings:
			response.AchievementsByCategory.Savings = append(response.AchievementsByCategory.Savings, view)
		case model.CategoryHabits:
			response.AchievementsByCategory.Habits = append(response.AchievementsByCategory.Habits, view)
		case model.CategoryTransactions:
			response.AchievementsByCategory.Transactions = append(response.AchievementsByCategory.Transactions, view)
		default:
			logger.Warn("Achievement definition has unknown category", "achievement_id", def.ID, "category", string(def.Category))
		}
	}

	return response, nil
}

func (s *achievementService) GetUnlockHistory(ctx context.Context, userDocument string) ([]*model.AchievementHistoryEntry, error) {
	logger := middleware.GetLogger(ctx)

	if _, err := s.userRepo.FindByDocument(ctx, s.db, userDocument); err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません", "user_document", model.ErrUserNotFound)
		}
		logger.Error("Error finding user for achievement history", "error", err, "user_document", userDocument)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}

	entries, err := s.achievementRepo.ListUnlockHistory(ctx, s.db, userDocument)
	if err != nil {
		logger.Error("Error listing achievement unlock history", "error", err, "user_document", userDocument)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}
	if entries == nil {
		entries = make([]*model.AchievementHistoryEntry, 0)
	}
	return entries, nil
}

// progressPercent は進捗率を小数2桁で返します (上限100)
func progressPercent(current, target int) float64 {
	if target <= 0 {
		return 100
	}
	percent := float64(current) / float64(target) * 100
	percent = math.Round(percent*100) / 100
	if percent > 100 {
		return 100
	}
	return percent
}
