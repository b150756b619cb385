// internal/middleware/achievement_trigger.go
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// UnlockEnqueuer は実績検証をバックグラウンドに依頼するためのインターフェース。
// service.UnlockQueue が実装する。
type UnlockEnqueuer interface {
	Enqueue(userDocument string) bool
}

// AchievementTrigger はドメインの書き込みハンドラをラップし、成功レスポンス
// ({"success": true, ...}) を検知したら対象ユーザーの実績検証をキューに積みます。
// 元のレスポンスを遅延・変更することはなく、検証の失敗が呼び出し元に伝わることもありません。
func AchievementTrigger(queue UnlockEnqueuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			// ユーザー特定にリクエストボディが必要なため、読み取ってから復元する
			var reqBodyBytes []byte
			if r.Body != nil {
				reqBodyBytes, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewBuffer(reqBodyBytes))
			}

			rl := newResponseLogger(w)
			next.ServeHTTP(rl, r)

			// 書き込みが成功した場合のみ検証する
			var respPayload map[string]interface{}
			if err := json.Unmarshal(rl.body.Bytes(), &respPayload); err != nil {
				return
			}
			if success, ok := respPayload["success"].(bool); !ok || !success {
				return
			}

			document := extractUserDocument(r, reqBodyBytes, respPayload)
			if document == "" {
				logger.Warn("Achievement trigger skipped: could not determine user document",
					"method", r.Method,
					"path", r.URL.Path,
				)
				return
			}

			if !queue.Enqueue(document) {
				logger.Warn("Achievement trigger dropped: unlock queue is full", "user_document", document)
			}
		})
	}
}

// extractUserDocument はユーザー書類番号を優先順に各ソースから探します:
// リクエストボディ (usuario_documento → usuarioDocumento → user_document) →
// 認証済みプリンシパル → ルートパラメータ → レスポンスペイロード。
func extractUserDocument(r *http.Request, reqBody []byte, respPayload map[string]interface{}) string {
	if len(reqBody) > 0 {
		var body map[string]interface{}
		if err := json.Unmarshal(reqBody, &body); err == nil {
			// 旧クライアントのフィールド名を先に見る
			for _, key := range []string{"usuario_documento", "usuarioDocumento", "user_document"} {
				if doc, ok := body[key].(string); ok && doc != "" {
					return doc
				}
			}
		}
	}

	if doc, err := GetUserDocumentFromContext(r.Context()); err == nil {
		return doc
	}

	if doc := chi.URLParam(r, "user_document"); doc != "" {
		return doc
	}

	if data, ok := respPayload["data"].(map[string]interface{}); ok {
		for _, key := range []string{"user_document", "usuario_documento"} {
			if doc, ok := data[key].(string); ok && doc != "" {
				return doc
			}
		}
	}

	return ""
}
