// Package app はCLIとAPIサーバーの起動処理と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/salesnav/internal/auth"
	"github.com/hitoshi/salesnav/internal/config"
	"github.com/hitoshi/salesnav/internal/database"
	"github.com/hitoshi/salesnav/internal/handler"
	"github.com/hitoshi/salesnav/internal/logger"
	"github.com/hitoshi/salesnav/internal/metrics"
	"github.com/hitoshi/salesnav/internal/middleware"
	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/repository"
	"github.com/hitoshi/salesnav/internal/security"
	"github.com/hitoshi/salesnav/internal/seed"
	"github.com/hitoshi/salesnav/internal/session"
	"github.com/hitoshi/salesnav/internal/store"
)

// Init はアプリケーションの初期化を行う。
// .envファイルと環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// ログはwに出力する。
func Init(w io.Writer, envFile string) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, "info")

	// 2. .envファイルと環境変数から設定を読み込む
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたレベルでログを再セットアップする
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Runtime はワイヤリング済みの依存関係を保持する。
type Runtime struct {
	Config     *config.Config
	DB         *sql.DB
	Store      store.Store
	Controller *session.Controller
	Registry   *prometheus.Registry
	Metrics    *metrics.Collector
	Sanitizer  security.TextSanitizer
}

// Close はDB接続を閉じる。
func (rt *Runtime) Close() error {
	if rt.DB == nil {
		return nil
	}
	return rt.DB.Close()
}

// Bootstrap はストア、リポジトリ、認証サービス、コントローラーを構築し、
// 初期データの投入と保存済みセッションの解決まで行う。
// ephemeralがtrueの場合はSQLiteを使わずメモリ上のストアで動作する。
func Bootstrap(ctx context.Context, cfg *config.Config, ephemeral bool) (*Runtime, error) {
	rt := &Runtime{
		Config:    cfg,
		Registry:  prometheus.NewRegistry(),
		Sanitizer: security.NewTextSanitizer(),
	}
	rt.Metrics = metrics.NewCollector(rt.Registry)

	// 1. ストア
	if ephemeral {
		rt.Store = store.NewMemoryStore()
	} else {
		if err := database.RunMigrations(cfg.DBPath); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		db, err := database.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		rt.DB = db
		rt.Store = store.NewSQLiteStore(db)
		slog.Debug("database connection established", slog.String("path", cfg.DBPath))
	}

	// 2. 初期データ
	defaults, err := seedDefaults(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}

	// 3. リポジトリと認証サービス
	authService := auth.NewService(
		repository.NewStoreUserRepo(rt.Store, rt.Metrics),
		repository.NewStoreSessionRepo(rt.Store, rt.Metrics),
		auth.NewTokenIssuer(cfg.TokenSecret),
		rt.Metrics,
	)

	// 4. コントローラー
	rt.Controller = session.NewController(session.Deps{
		Store:     rt.Store,
		Auth:      authService,
		Leads:     repository.NewStoreLeadRepo(rt.Store, rt.Metrics),
		Clients:   repository.NewStoreClientRepo(rt.Store, rt.Metrics),
		Events:    repository.NewStoreEventRepo(rt.Store, rt.Metrics),
		Referrals: repository.NewStoreReferralRepo(rt.Store, rt.Metrics),
		Seed:      defaults,
		Policy:    cfg.FollowUpPolicy,
		Metrics:   rt.Metrics,
	})
	if _, err := rt.Controller.Start(ctx); err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	return rt, nil
}

// seedDefaults は初期ユーザー（組み込みまたはYAMLファイル）から初期値を構築する。
func seedDefaults(cfg *config.Config) (map[string][]byte, error) {
	users := seed.DefaultUsers()
	if cfg.SeedUsersFile != "" {
		loaded, err := seed.LoadUsersFile(cfg.SeedUsersFile)
		if err != nil {
			return nil, err
		}
		users = loaded
	}
	if cfg.SeedHashPasswords {
		hashed, err := seed.HashPasswords(users, bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		users = hashed
	}
	return seed.Defaults(users)
}

// newRouter はRuntimeからAPIルーターを構築する。
func newRouter(rt *Runtime, rl *middleware.RateLimiter) http.Handler {
	deps := &handler.RouterDeps{
		Service:           rt.Controller,
		CORSAllowedOrigin: rt.Config.CORSAllowedOrigin,
		RateLimiter:       rl,
		Logger:            slog.Default(),
		Metrics:           rt.Metrics,
		Gatherer:          rt.Registry,
		Sanitizer:         rt.Sanitizer,
		Location:          rt.Config.Timezone,
	}
	if rt.DB != nil {
		deps.HealthChecker = rt.DB
	}
	return handler.NewRouter(deps)
}

// runServe はAPIサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(rt *Runtime) error {
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(rt.Config.LoginRatePerMin))
	defer rl.Stop()

	server := &http.Server{
		Addr:         ":" + rt.Config.ServerPort,
		Handler:      newRouter(rt, rl),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), rt.Config.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// downがtrueの場合はすべてのマイグレーションをロールバックする。
func runMigrate(cfg *config.Config, down bool) error {
	slog.Info("running database migrations",
		slog.String("db_path", cfg.DBPath),
		slog.Bool("down", down),
	)

	if down {
		if err := database.RollbackMigrations(cfg.DBPath); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		slog.Info("database migrations rolled back")
		return nil
	}

	if err := database.RunMigrations(cfg.DBPath); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// baseURLの /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(baseURL string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// asAPIError はエラーが*model.APIErrorであればそれを返す。
func asAPIError(err error) (*model.APIError, bool) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
