package middleware

import (
	"log/slog"
	"mime"
	"net/http"

	"github.com/hitoshi/salesnav/internal/model"
)

// NewJSONOnlyMiddleware は状態変更リクエストに application/json を要求するミドルウェアを返す。
// ブラウザはプリフライト無しにクロスオリジンでJSONを送信できないため、
// ローカルAPIに対する偽装リクエストを防ぐ。
// 安全なメソッド（GET, HEAD, OPTIONS）は検証しない。
func NewJSONOnlyMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				slog.Warn("rejected non-JSON state-changing request",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusUnsupportedMediaType,
					model.NewValidationError("Content-Type must be application/json"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isSafeMethod はHTTPメソッドが安全（状態を変更しない）かどうかを返す。
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
