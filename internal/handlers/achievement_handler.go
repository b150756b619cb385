// internal/handlers/achievement_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"fintrax_backend/internal/model"
	"fintrax_backend/internal/service"
	"fintrax_backend/internal/webutil"

	"github.com/go-chi/chi/v5"
)

type AchievementHandler struct {
	service service.AchievementService
	logger  *slog.Logger
}

func NewAchievementHandler(s service.AchievementService, logger *slog.Logger) *AchievementHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AchievementHandler{
		service: s,
		logger:  logger,
	}
}

// GetUserAchievements はカテゴリ別の実績一覧と統計を返すハンドラ
func (h *AchievementHandler) GetUserAchievements(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetUserAchievements"))

	userDocument := chi.URLParam(r, "user_document")
	if userDocument == "" {
		appErr := model.NewAppError("INVALID_URL_PARAM", "user_documentを指定してください。", "user_document", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	response, err := h.service.GetUserAchievements(r.Context(), userDocument)
	if err != nil {
		logger.Error("Error listing user achievements in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("User achievements listed successfully", slog.Int("total", response.Stats.TotalCount))
	webutil.RespondWithData(w, http.StatusOK, response, logger)
}

// VerifyAchievements は実績評価を同期実行し、新規解除分を返すハンドラ
func (h *AchievementHandler) VerifyAchievements(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "VerifyAchievements"))

	var req model.VerifyAchievementsRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	if validateRequest(w, logger, req) {
		return
	}
	logger = logger.With(slog.String("user_document", req.UserDocument))

	unlocked, err := h.service.VerifyUser(r.Context(), req.UserDocument)
	if err != nil {
		logger.Error("Error verifying achievements in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Achievements verified successfully", slog.Int("newly_unlocked", len(unlocked)))
	webutil.RespondWithData(w, http.StatusOK, model.VerifyAchievementsResponse{NewlyUnlocked: unlocked}, logger)
}

// GetUnlockHistory は解除済み実績の履歴を新しい順で返すハンドラ
func (h *AchievementHandler) GetUnlockHistory(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetUnlockHistory"))

	userDocument := chi.URLParam(r, "user_document")
	if userDocument == "" {
		appErr := model.NewAppError("INVALID_URL_PARAM", "user_documentを指定してください。", "user_document", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	entries, err := h.service.GetUnlockHistory(r.Context(), userDocument)
	if err != nil {
		logger.Error("Error listing achievement history in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Achievement history listed successfully", slog.Int("count", len(entries)))
	webutil.RespondWithData(w, http.StatusOK, entries, logger)
}
