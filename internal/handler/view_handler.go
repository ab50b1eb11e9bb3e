package handler

import (
	"net/http"
	"time"

	"github.com/hitoshi/salesnav/internal/dashboard"
	"github.com/hitoshi/salesnav/internal/middleware"
	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/notify"
)

// ViewHandler はビュー・通知・ダッシュボードの読み取り用HTTPハンドラー。
type ViewHandler struct {
	service SalesService
	now     func() time.Time
}

// NewViewHandler はViewHandlerを生成する。
func NewViewHandler(service SalesService, now func() time.Time) *ViewHandler {
	if now == nil {
		now = time.Now
	}
	return &ViewHandler{service: service, now: now}
}

// GetView は現在のビュー全体を返す。
// GET /api/view
func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListNotifications は通知を優先度の高い順に返す。
// GET /api/notifications
func (h *ViewHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notify.SortByPriority(view.Notifications))
}

type dashboardResponse struct {
	Stats      dashboard.Stats      `json:"stats"`
	Activity   []dashboard.Activity `json:"activity"`
	Badges     dashboard.Badges     `json:"badges"`
	Navigation []dashboard.NavItem  `json:"navigation"`
}

// GetDashboard は期間指定の指標、最近の活動、ナビゲーションを返す。
// GET /api/dashboard?timeframe=week|month|year
func (h *ViewHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	tf, err := dashboard.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}

	view, err := h.service.View(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	role := model.RoleSales
	if view.User != nil {
		role = view.User.Role
	}
	badges := dashboard.ComputeBadges(view.Leads, view.Clients, view.Events, view.Referrals, view.Notifications)

	writeJSON(w, http.StatusOK, dashboardResponse{
		Stats:      dashboard.Compute(view.Leads, view.Clients, view.Events, tf, h.now()),
		Activity:   dashboard.RecentActivity(view.Leads, view.Clients, view.Events, dashboard.DefaultActivityLimit),
		Badges:     badges,
		Navigation: dashboard.Navigation(role, badges),
	})
}
