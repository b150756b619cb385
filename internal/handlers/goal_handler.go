// internal/handlers/goal_handler.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"fintrax_backend/internal/model"
	"fintrax_backend/internal/service"
	"fintrax_backend/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type GoalHandler struct {
	service service.GoalService
	logger  *slog.Logger
}

func NewGoalHandler(s service.GoalService, logger *slog.Logger) *GoalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoalHandler{
		service: s,
		logger:  logger,
	}
}

func (h *GoalHandler) PostGoal(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostGoal"))

	userDocument, ok := requireUserDocument(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	var req model.CreateGoalRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	if validateRequest(w, logger, req) {
		return
	}

	goal, err := h.service.CreateGoal(r.Context(), userDocument, &req)
	if err != nil {
		logger.Error("Error creating goal in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Goal created successfully", slog.String("goal_id", goal.GoalID.String()))
	webutil.RespondWithData(w, http.StatusCreated, goal, logger)
}

func (h *GoalHandler) GetGoals(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetGoals"))

	userDocument, ok := requireUserDocument(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	goals, err := h.service.ListGoals(r.Context(), userDocument)
	if err != nil {
		logger.Error("Error listing goals in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Goals listed successfully", slog.Int("count", len(goals)))
	webutil.RespondWithData(w, http.StatusOK, goals, logger)
}

func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetGoal"))

	userDocument, ok := requireUserDocument(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	goalID, ok := parseGoalID(w, r, logger)
	if !ok {
		return
	}

	goal, err := h.service.GetGoal(r.Context(), userDocument, goalID)
	if err != nil {
		logger.Error("Error getting goal in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithData(w, http.StatusOK, goal, logger)
}

func (h *GoalHandler) PutGoal(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutGoal"))

	userDocument, ok := requireUserDocument(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	goalID, ok := parseGoalID(w, r, logger)
	if !ok {
		return
	}

	var req model.UpdateGoalRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	if validateRequest(w, logger, req) {
		return
	}

	goal, err := h.service.UpdateGoal(r.Context(), userDocument, goalID, &req)
	if err != nil {
		logger.Error("Error updating goal in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Goal updated successfully", slog.String("goal_id", goalID.String()))
	webutil.RespondWithData(w, http.StatusOK, goal, logger)
}

// PutGoalStatus は目標の状態 (active/completed/cancelled) を変更するハンドラ
func (h *GoalHandler) PutGoalStatus(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutGoalStatus"))

	userDocument, ok := requireUserDocument(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	goalID, ok := parseGoalID(w, r, logger)
	if !ok {
		return
	}

	var req model.ChangeGoalStatusRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	if validateRequest(w, logger, req) {
		return
	}

	goal, err := h.service.ChangeGoalStatus(r.Context(), userDocument, goalID, &req)
	if err != nil {
		logger.Error("Error changing goal status in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Goal status changed successfully", slog.String("goal_id", goalID.String()), slog.String("status", string(goal.Status)))
	webutil.RespondWithData(w, http.StatusOK, goal, logger)
}

// PostGoalContribute は目標への入金ハンドラ
func (h *GoalHandler) PostGoalContribute(w http.ResponseWriter, r *http.Request) {
	h.handleAmountOperation(w, r, "PostGoalContribute", h.service.Contribute)
}

// PostGoalWithdraw は目標からの引き出しハンドラ
func (h *GoalHandler) PostGoalWithdraw(w http.ResponseWriter, r *http.Request) {
	h.handleAmountOperation(w, r, "PostGoalWithdraw", h.service.Withdraw)
}

func (h *GoalHandler) handleAmountOperation(
	w http.ResponseWriter,
	r *http.Request,
	handlerName string,
	operation func(ctx context.Context, userDocument string, goalID uuid.UUID, req *model.GoalAmountRequest) (*model.SavingsGoal, error),
) {
	logger := h.logger.With(slog.String("handler", handlerName))

	userDocument, ok := requireUserDocument(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	goalID, ok := parseGoalID(w, r, logger)
	if !ok {
		return
	}

	var req model.GoalAmountRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	if validateRequest(w, logger, req) {
		return
	}

	goal, err := operation(r.Context(), userDocument, goalID, &req)
	if err != nil {
		logger.Error("Error processing goal amount operation in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Goal amount operation succeeded", slog.String("goal_id", goalID.String()), slog.String("current_amount", goal.CurrentAmount.String()))
	webutil.RespondWithData(w, http.StatusOK, goal, logger)
}

func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteGoal"))

	userDocument, ok := requireUserDocument(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	goalID, ok := parseGoalID(w, r, logger)
	if !ok {
		return
	}

	if err := h.service.DeleteGoal(r.Context(), userDocument, goalID); err != nil {
		logger.Error("Error deleting goal in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Goal deleted successfully", slog.String("goal_id", goalID.String()))
	webutil.RespondWithData(w, http.StatusOK, map[string]string{"goal_id": goalID.String()}, logger)
}

func parseGoalID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "goal_id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		logger.Warn("Invalid goal ID format in URL", slog.String("goal_id_str", idStr), slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_URL_PARAM", "goal_idの形式が正しくありません。", "goal_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return uuid.Nil, false
	}
	return id, true
}
