package handler

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/salesnav/internal/middleware"
	"github.com/hitoshi/salesnav/internal/model"
)

// AuthHandler はログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service SalesService
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service SalesService) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user"`
}

// Login はメールアドレスとパスワードで認証する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	result, _, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if !result.OK {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Success: true, User: result.User})
}

// Logout はこのデバイスのセッションを破棄する。
// 匿名状態でも成功を返す。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Logout(r.Context()); err != nil {
		slog.Error("failed to logout", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me は現在ログインしているユーザーを返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if user == nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}
	writeJSON(w, http.StatusOK, user)
}
