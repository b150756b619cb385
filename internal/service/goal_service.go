// internal/service/goal_service.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fintrax_backend/internal/middleware"
	"fintrax_backend/internal/model"
	"fintrax_backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GoalService interface {
	CreateGoal(ctx context.Context, userDocument string, req *model.CreateGoalRequest) (*model.SavingsGoal, error)
	GetGoal(ctx context.Context, userDocument string, goalID uuid.UUID) (*model.SavingsGoal, error)
	ListGoals(ctx context.Context, userDocument string) ([]*model.SavingsGoal, error)
	UpdateGoal(ctx context.Context, userDocument string, goalID uuid.UUID, req *model.UpdateGoalRequest) (*model.SavingsGoal, error)
	ChangeGoalStatus(ctx context.Context, userDocument string, goalID uuid.UUID, req *model.ChangeGoalStatusRequest) (*model.SavingsGoal, error)
	Contribute(ctx context.Context, userDocument string, goalID uuid.UUID, req *model.GoalAmountRequest) (*model.SavingsGoal, error)
	Withdraw(ctx context.Context, userDocument string, goalID uuid.UUID, req *model.GoalAmountRequest) (*model.SavingsGoal, error)
	DeleteGoal(ctx context.Context, userDocument string, goalID uuid.UUID) error
}

type goalService struct {
	db       *gorm.DB
	goalRepo repository.GoalRepository
	logger   *slog.Logger
}

func NewGoalService(db *gorm.DB, goalRepo repository.GoalRepository, logger *slog.Logger) GoalService {
	return &goalService{
		db:       db,
		goalRepo: goalRepo,
		logger:   logger,
	}
}

func (s *goalService) CreateGoal(ctx context.Context, userDocument string, req *model.CreateGoalRequest) (*model.SavingsGoal, error) {
	logger := middleware.GetLogger(ctx)

	if req.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return nil, model.NewAppError("INVALID_INPUT", "目標金額は0より大きい値を指定してください", "target_amount", model.ErrInvalidInput)
	}

	goal := &model.SavingsGoal{
		GoalID:        uuid.New(),
		UserDocument:  userDocument,
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: decimal.Zero,
		Status:        model.GoalActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.goalRepo.Create(ctx, tx, goal)
	})
	if err != nil {
		logger.Error("Error creating savings goal", "error", err, "user_document", userDocument)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "貯蓄目標の作成に失敗しました", "", err)
	}

	return goal, nil
}

func (s *goalService) GetGoal(ctx context.Context, userDocument string, goalID uuid.UUID) (*model.SavingsGoal, error) {
	goal, err := s.goalRepo.FindByID(ctx, s.db, userDocument, goalID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "指定された貯蓄目標が見つかりません", "goal_id", model.ErrNotFound)
		}
		logger := middleware.GetLogger(ctx)
		logger.Error("Error finding savings goal", "error", err, "goal_id", goalID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}
	return goal, nil
}

func (s *goalService) ListGoals(ctx context.Context, userDocument string) ([]*model.SavingsGoal, error) {
	goals, err := s.goalRepo.FindByUser(ctx, s.db, userDocument)
	if err != nil {
		logger := middleware.GetLogger(ctx)
		logger.Error("Error listing savings goals", "error", err, "user_document", userDocument)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}
	if goals == nil {
		goals = make([]*model.SavingsGoal, 0)
	}
	return goals, nil
}

func (s *goalService) UpdateGoal(ctx context.Context, userDocument string, goalID uuid.UUID, req *model.UpdateGoalRequest) (*model.SavingsGoal, error) {
	logger := middleware.GetLogger(ctx)

	var updated *model.SavingsGoal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		goal, err := s.goalRepo.FindByID(ctx, tx, userDocument, goalID)
		if err != nil {
			return err
		}
		if req.Name != nil {
			goal.Name = *req.Name
		}
		if req.TargetAmount != nil {
			if req.TargetAmount.LessThanOrEqual(decimal.Zero) {
				return model.NewAppError("INVALID_INPUT", "目標金額は0より大きい値を指定してください", "target_amount", model.ErrInvalidInput)
			}
			goal.TargetAmount = *req.TargetAmount
		}
		if err := s.goalRepo.Save(ctx, tx, goal); err != nil {
			return err
		}
		updated = goal
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "指定された貯蓄目標が見つかりません", "goal_id", model.ErrNotFound)
		}
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		logger.Error("Error updating savings goal", "error", err, "goal_id", goalID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "貯蓄目標の更新に失敗しました", "", err)
	}
	return updated, nil
}

// ChangeGoalStatus は目標の状態を変更します。
// completed への遷移時のみ completed_at を打刻する (実績評価の入力になる)。
func (s *goalService) ChangeGoalStatus(ctx context.Context, userDocument string, goalID uuid.UUID, req *model.ChangeGoalStatusRequest) (*model.SavingsGoal, error) {
	logger := middleware.GetLogger(ctx)

	var updated *model.SavingsGoal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		goal, err := s.goalRepo.FindByID(ctx, tx, userDocument, goalID)
		if err != nil {
			return err
		}
		newStatus := model.GoalStatus(req.Status)
		if goal.Status != newStatus {
			goal.Status = newStatus
			if newStatus == model.GoalCompleted {
				now := time.Now().UTC()
				goal.CompletedAt = &now
			} else {
				goal.CompletedAt = nil
			}
			if err := s.goalRepo.Save(ctx, tx, goal); err != nil {
				return err
			}
		}
		updated = goal
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "指定された貯蓄目標が見つかりません", "goal_id", model.ErrNotFound)
		}
		logger.Error("Error changing savings goal status", "error", err, "goal_id", goalID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "貯蓄目標の状態変更に失敗しました", "", err)
	}
	return updated, nil
}

// Contribute は目標に入金します。入金後に目標金額へ到達したら自動的に完了へ遷移する。
func (s *goalService) Contribute(ctx context.Context, userDocument string, goalID uuid.UUID, req *model.GoalAmountRequest) (*model.SavingsGoal, error) {
	logger := middleware.GetLogger(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, model.NewAppError("INVALID_INPUT", "金額は0より大きい値を指定してください", "amount", model.ErrInvalidInput)
	}

	var updated *model.SavingsGoal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		goal, err := s.goalRepo.FindByID(ctx, tx, userDocument, goalID)
		if err != nil {
			return err
		}
		if goal.Status != model.GoalActive {
			return model.NewAppError("INVALID_INPUT", "有効な目標にのみ入金できます", "goal_id", model.ErrInvalidInput)
		}
		goal.CurrentAmount = goal.CurrentAmount.Add(req.Amount)
		if goal.CurrentAmount.GreaterThanOrEqual(goal.TargetAmount) {
			goal.Status = model.GoalCompleted
			now := time.Now().UTC()
			goal.CompletedAt = &now
		}
		if err := s.goalRepo.Save(ctx, tx, goal); err != nil {
			return err
		}
		updated = goal
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "指定された貯蓄目標が見つかりません", "goal_id", model.ErrNotFound)
		}
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		logger.Error("Error contributing to savings goal", "error", err, "goal_id", goalID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "貯蓄目標への入金に失敗しました", "", err)
	}
	return updated, nil
}

// Withdraw は目標から引き出します。残高を超える引き出しは拒否する。
func (s *goalService) Withdraw(ctx context.Context, userDocument string, goalID uuid.UUID, req *model.GoalAmountRequest) (*model.SavingsGoal, error) {
	logger := middleware.GetLogger(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, model.NewAppError("INVALID_INPUT", "金額は0より大きい値を指定してください", "amount", model.ErrInvalidInput)
	}

	var updated *model.SavingsGoal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		goal, err := s.goalRepo.FindByID(ctx, tx, userDocument, goalID)
		if err != nil {
			return err
		}
		if goal.Status != model.GoalActive {
			return model.NewAppError("INVALID_INPUT", "有効な目標からのみ引き出せます", "goal_id", model.ErrInvalidInput)
		}
		if req.Amount.GreaterThan(goal.CurrentAmount) {
			return model.NewAppError("INVALID_INPUT", "現在の貯蓄額を超える金額は引き出せません", "amount", model.ErrInvalidInput)
		}
		goal.CurrentAmount = goal.CurrentAmount.Sub(req.Amount)
		if err := s.goalRepo.Save(ctx, tx, goal); err != nil {
			return err
		}
		updated = goal
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "指定された貯蓄目標が見つかりません", "goal_id", model.ErrNotFound)
		}
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		logger.Error("Error withdrawing from savings goal", "error", err, "goal_id", goalID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "貯蓄目標からの引き出しに失敗しました", "", err)
	}
	return updated, nil
}

func (s *goalService) DeleteGoal(ctx context.Context, userDocument string, goalID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.goalRepo.Delete(ctx, tx, userDocument, goalID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("NOT_FOUND", "指定された貯蓄目標が見つかりません", "goal_id", model.ErrNotFound)
		}
		logger.Error("Error deleting savings goal", "error", err, "goal_id", goalID.String())
		return model.NewAppError("INTERNAL_SERVER_ERROR", "貯蓄目標の削除に失敗しました", "", err)
	}
	return nil
}
