// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/hitoshi/salesnav/internal/auth"
	"github.com/hitoshi/salesnav/internal/middleware"
	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/session"
)

// maxBodyBytes はリクエストボディの上限サイズ。
const maxBodyBytes = 1 << 20

// SalesService はハンドラーが必要とするセッションコントローラーのインターフェース。
type SalesService interface {
	CurrentUser(ctx context.Context) (*model.User, error)
	View(ctx context.Context) (session.View, error)
	Login(ctx context.Context, email, password string) (auth.LoginResult, session.View, error)
	Logout(ctx context.Context) (session.View, error)

	AddLead(ctx context.Context, lead model.Lead) (*model.Lead, session.View, error)
	UpdateLead(ctx context.Context, id string, patch model.LeadPatch) (*model.Lead, session.View, error)
	AddClient(ctx context.Context, client model.Client) (*model.Client, session.View, error)
	AddEvent(ctx context.Context, event model.Event) (*model.Event, session.View, error)
	AddReferral(ctx context.Context, referral model.Referral) (*model.Referral, session.View, error)
	UpdateReferral(ctx context.Context, id string, patch model.ReferralPatch) (*model.Referral, session.View, error)
}

var _ SalesService = (*session.Controller)(nil)

// errInvalidBody はリクエストボディの解析失敗を表す。
var errInvalidBody = errors.New("invalid request body")

// decodeJSON はリクエストボディを未知フィールドを拒否してデコードする。
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeInvalidBody は解析できないリクエストボディに対する400レスポンスを書き込む。
func writeInvalidBody(w http.ResponseWriter) {
	middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// ParseDateTime はRFC3339形式または日付のみ（2006-01-02）の文字列を解析する。
// 日付のみの場合はlocの0時とする。
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, model.NewValidationError("date must be RFC3339 or YYYY-MM-DD")
	}
	return t, nil
}
