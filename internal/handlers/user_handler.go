// internal/handlers/user_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"fintrax_backend/internal/model"
	"fintrax_backend/internal/service"
	"fintrax_backend/internal/webutil"
)

type UserHandler struct {
	service service.UserService
	logger  *slog.Logger
}

func NewUserHandler(s service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		service: s,
		logger:  logger,
	}
}

// Register は新規ユーザーを登録するハンドラ
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Register"))

	var req model.RegisterRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	if validateRequest(w, logger, req) {
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		logger.Error("Error registering user in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	response := model.UserResponse{
		Document:  user.Document,
		Name:      user.Name,
		Email:     user.Email,
		XP:        user.XP,
		CreatedAt: user.CreatedAt,
	}
	logger.Info("User registered successfully", slog.String("user_document", user.Document))
	webutil.RespondWithData(w, http.StatusCreated, response, logger)
}

// Login は認証してアクセストークンを返すハンドラ
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Login"))

	var req model.LoginRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	if validateRequest(w, logger, req) {
		return
	}

	token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		logger.Warn("Login failed", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("User logged in successfully")
	webutil.RespondWithData(w, http.StatusOK, model.LoginResponse{AccessToken: token}, logger)
}

// GetProfile はログイン中ユーザーの情報を返すハンドラ
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetProfile"))

	userDocument, ok := requireUserDocument(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	user, err := h.service.GetProfile(r.Context(), userDocument)
	if err != nil {
		logger.Error("Error getting user profile in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	response := model.UserResponse{
		Document:  user.Document,
		Name:      user.Name,
		Email:     user.Email,
		XP:        user.XP,
		CreatedAt: user.CreatedAt,
	}
	webutil.RespondWithData(w, http.StatusOK, response, logger)
}
