// internal/middleware/achievement_trigger_test.go
package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrax_backend/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQueue はEnqueue呼び出しを記録するテスト用実装
type fakeQueue struct {
	enqueued []string
	full     bool
}

func (q *fakeQueue) Enqueue(userDocument string) bool {
	if q.full {
		return false
	}
	q.enqueued = append(q.enqueued, userDocument)
	return true
}

func successHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}

func Test_AchievementTrigger_ExtractPrecedence(t *testing.T) {
	tests := []struct {
		name         string
		requestBody  string
		contextDoc   string
		routeParam   string
		responseBody string
		wantEnqueued []string
	}{
		{
			name:         "正常系: 旧フィールド名 usuario_documento を最優先で使う",
			requestBody:  `{"usuario_documento":"111","usuarioDocumento":"222","user_document":"333"}`,
			contextDoc:   "444",
			responseBody: `{"success":true,"data":{}}`,
			wantEnqueued: []string{"111"},
		},
		{
			name:         "正常系: usuarioDocumento が次点",
			requestBody:  `{"usuarioDocumento":"222","user_document":"333"}`,
			responseBody: `{"success":true,"data":{}}`,
			wantEnqueued: []string{"222"},
		},
		{
			name:         "正常系: user_document も受け付ける",
			requestBody:  `{"user_document":"333"}`,
			responseBody: `{"success":true,"data":{}}`,
			wantEnqueued: []string{"333"},
		},
		{
			name:         "正常系: ボディになければ認証コンテキストから取る",
			requestBody:  `{"amount":"100"}`,
			contextDoc:   "444",
			responseBody: `{"success":true,"data":{}}`,
			wantEnqueued: []string{"444"},
		},
		{
			name:         "正常系: レスポンスのdataからも取れる",
			requestBody:  `{}`,
			responseBody: `{"success":true,"data":{"user_document":"666"}}`,
			wantEnqueued: []string{"666"},
		},
		{
			name:         "正常系: レスポンスの旧フィールド名も受け付ける",
			requestBody:  `{}`,
			responseBody: `{"success":true,"data":{"usuario_documento":"777"}}`,
			wantEnqueued: []string{"777"},
		},
		{
			name:         "正常系: 失敗レスポンスでは何も積まない",
			requestBody:  `{"user_document":"333"}`,
			responseBody: `{"success":false,"message":"error"}`,
			wantEnqueued: nil,
		},
		{
			name:         "正常系: ユーザーを特定できなければスキップ",
			requestBody:  `{}`,
			responseBody: `{"success":true,"data":{}}`,
			wantEnqueued: nil,
		},
		{
			name:         "正常系: JSONでないレスポンスはスキップ",
			requestBody:  `{"user_document":"333"}`,
			responseBody: `OK`,
			wantEnqueued: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &fakeQueue{}
			handler := AchievementTrigger(queue)(successHandler(tt.responseBody))

			req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(tt.requestBody))
			if tt.contextDoc != "" {
				req = req.WithContext(context.WithValue(req.Context(), model.UserDocumentKey, tt.contextDoc))
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantEnqueued, queue.enqueued)
		})
	}
}

func Test_AchievementTrigger_RouteParamFallback(t *testing.T) {
	queue := &fakeQueue{}

	r := chi.NewRouter()
	r.With(AchievementTrigger(queue)).Post("/users/{user_document}/touch", successHandler(`{"success":true,"data":{}}`))

	req := httptest.NewRequest(http.MethodPost, "/users/55555/touch", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, []string{"55555"}, queue.enqueued)
}

func Test_AchievementTrigger_ResponsePassthrough(t *testing.T) {
	queue := &fakeQueue{}
	responseBody := `{"success":true,"data":{"user_document":"123","amount":"99.50"}}`
	handler := AchievementTrigger(queue)(successHandler(responseBody))

	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(`{"user_document":"123"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// レスポンスは一切変更されない
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, responseBody, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func Test_AchievementTrigger_QueueFull(t *testing.T) {
	queue := &fakeQueue{full: true}
	handler := AchievementTrigger(queue)(successHandler(`{"success":true,"data":{}}`))

	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(`{"user_document":"123"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// キューが一杯でもリクエスト自体は成功のまま
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, queue.enqueued)
}

func Test_AchievementTrigger_RequestBodyRestored(t *testing.T) {
	queue := &fakeQueue{}
	var receivedBody string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := make([]byte, 1024)
		n, _ := r.Body.Read(b)
		receivedBody = string(b[:n])
		w.Write([]byte(`{"success":true,"data":{}}`))
	})
	handler := AchievementTrigger(queue)(inner)

	body := `{"usuario_documento":"123","amount":"50"}`
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// ハンドラはボディを通常どおり読める
	assert.Equal(t, body, receivedBody)
	assert.Equal(t, []string{"123"}, queue.enqueued)
}
