// internal/handlers/transaction_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"fintrax_backend/internal/middleware"
	"fintrax_backend/internal/model"
	"fintrax_backend/internal/service"
	"fintrax_backend/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type TransactionHandler struct {
	service service.TransactionService
	logger  *slog.Logger
}

func NewTransactionHandler(s service.TransactionService, logger *slog.Logger) *TransactionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionHandler{
		service: s,
		logger:  logger,
	}
}

// requireUserDocument は認証コンテキストからユーザーの書類番号を取り出します
func requireUserDocument(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	userDocument, err := middleware.GetUserDocumentFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return "", false
	}
	return userDocument, true
}

func (h *TransactionHandler) PostTransaction(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostTransaction"))

	userDocument, ok := requireUserDocument(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	var req model.CreateTransactionRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	if validateRequest(w, logger, req) {
		return
	}

	transaction, err := h.service.CreateTransaction(r.Context(), userDocument, &req)
	if err != nil {
		logger.Error("Error creating transaction in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Transaction created successfully", slog.String("transaction_id", transaction.TransactionID.String()))
	webutil.RespondWithData(w, http.StatusCreated, transaction, logger)
}

func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetTransactions"))

	userDocument, ok := requireUserDocument(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	transactions, err := h.service.ListTransactions(r.Context(), userDocument)
	if err != nil {
		logger.Error("Error listing transactions in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Transactions listed successfully", slog.Int("count", len(transactions)))
	webutil.RespondWithData(w, http.StatusOK, transactions, logger)
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetTransaction"))

	userDocument, ok := requireUserDocument(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	transactionID, ok := parseTransactionID(w, r, logger)
	if !ok {
		return
	}

	transaction, err := h.service.GetTransaction(r.Context(), userDocument, transactionID)
	if err != nil {
		logger.Error("Error getting transaction in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithData(w, http.StatusOK, transaction, logger)
}

func (h *TransactionHandler) PutTransaction(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutTransaction"))

	userDocument, ok := requireUserDocument(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	transactionID, ok := parseTransactionID(w, r, logger)
	if !ok {
		return
	}

	var req model.UpdateTransactionRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	if validateRequest(w, logger, req) {
		return
	}

	transaction, err := h.service.UpdateTransaction(r.Context(), userDocument, transactionID, &req)
	if err != nil {
		logger.Error("Error updating transaction in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Transaction updated successfully", slog.String("transaction_id", transactionID.String()))
	webutil.RespondWithData(w, http.StatusOK, transaction, logger)
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteTransaction"))

	userDocument, ok := requireUserDocument(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_document", userDocument))

	transactionID, ok := parseTransactionID(w, r, logger)
	if !ok {
		return
	}

	if err := h.service.DeleteTransaction(r.Context(), userDocument, transactionID); err != nil {
		logger.Error("Error deleting transaction in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Transaction deleted successfully", slog.String("transaction_id", transactionID.String()))
	webutil.RespondWithData(w, http.StatusOK, map[string]string{"transaction_id": transactionID.String()}, logger)
}

func parseTransactionID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "transaction_id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		logger.Warn("Invalid transaction ID format in URL", slog.String("transaction_id_str", idStr), slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_URL_PARAM", "transaction_idの形式が正しくありません。", "transaction_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return uuid.Nil, false
	}
	return id, true
}
