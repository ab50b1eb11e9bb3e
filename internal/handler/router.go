package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/salesnav/internal/metrics"
	"github.com/hitoshi/salesnav/internal/middleware"
	"github.com/hitoshi/salesnav/internal/security"
)

// HealthChecker はヘルスチェック時に依存先の疎通を確認するインターフェース。
// *sql.DB が満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Service SalesService

	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector

	// Gatherer が設定されている場合は /metrics を公開する。
	Gatherer prometheus.Gatherer
	// HealthChecker が設定されている場合は /health で疎通を確認する。
	HealthChecker HealthChecker

	Sanitizer security.TextSanitizer
	Location  *time.Location
	Now       func() time.Time
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RealIP → Logging → SecurityHeaders → CORS → JSONOnly → Session → RateLimit(General)
//
// 認証ルート（/auth/*）、/health、/metrics はセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(chimw.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger, deps.Metrics))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewJSONOnlyMiddleware())

	authHandler := NewAuthHandler(deps.Service)
	viewHandler := NewViewHandler(deps.Service, deps.Now)
	recordHandler := NewRecordHandler(deps.Service, deps.Sanitizer, deps.Location)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.Service))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/view", viewHandler.GetView)
		r.Get("/api/notifications", viewHandler.ListNotifications)
		r.Get("/api/dashboard", viewHandler.GetDashboard)

		r.Route("/api/leads", func(r chi.Router) {
			r.Get("/", recordHandler.ListLeads)
			r.Post("/", recordHandler.CreateLead)
			r.Patch("/{id}", recordHandler.UpdateLead)
		})

		r.Route("/api/clients", func(r chi.Router) {
			r.Get("/", recordHandler.ListClients)
			r.Post("/", recordHandler.CreateClient)
		})

		r.Route("/api/events", func(r chi.Router) {
			r.Get("/", recordHandler.ListEvents)
			r.Post("/", recordHandler.CreateEvent)
		})

		r.Route("/api/referrals", func(r chi.Router) {
			r.Get("/", recordHandler.ListReferrals)
			r.Post("/", recordHandler.CreateReferral)
			r.Patch("/{id}", recordHandler.UpdateReferral)
		})
	})

	return r
}

// healthHandler はプロセスと依存先の稼働状態を返す。
// GET /health
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
