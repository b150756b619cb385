// internal/handlers/validation.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"fintrax_backend/internal/model"
	"fintrax_backend/internal/webutil"

	"github.com/go-playground/validator/v10"
)

// validateRequest はリクエストDTOを検証し、エラーがあればレスポンスまで書いて true を返します。
// 最初のバリデーションエラーを日本語に翻訳して代表として返す。
func validateRequest(w http.ResponseWriter, logger *slog.Logger, req interface{}) bool {
	err := webutil.Validator.Struct(req)
	if err == nil {
		return false
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		logger.Warn("Validation failed", slog.String("errors", validationErrors.Error()))

		firstErr := validationErrors[0]
		translatedMsg := firstErr.Translate(webutil.Trans)

		appErr := model.NewAppError(
			"VALIDATION_ERROR",
			translatedMsg,
			firstErr.Field(),
			model.ErrInvalidInput,
		)
		webutil.HandleError(w, logger, appErr)
	} else {
		logger.Error("Unexpected error during validation", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
	}
	return true
}
