// Package auth はログイン・ログアウトとこのデバイスのセッション管理を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/salesnav/internal/metrics"
	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/repository"
)

// LoginResult はログイン試行の結果を表す。
// 認証失敗はエラーではなく OK=false と汎用的な理由で返す。
type LoginResult struct {
	OK     bool
	User   *model.User
	Reason string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	tokens      *TokenIssuer
	metrics     metrics.MetricsCollector
	now         func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	tokens *TokenIssuer,
	m metrics.MetricsCollector,
) *Service {
	if m == nil {
		m = metrics.NopCollector{}
	}
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		metrics:     m,
		now:         time.Now,
	}
}

// Login はメールアドレスとパスワードを初期投入済みユーザー一覧と照合する。
// 一致した場合はセッショントークンと資格情報を除いたユーザーを保存する。
// エラーはストレージ障害などのシステムエラーの場合のみ返す。
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !MatchCredential(user.Password, password) {
		s.metrics.RecordLogin(metrics.LoginResultFailure)
		slog.Warn("login failed", slog.String("email", email))
		return LoginResult{OK: false, Reason: model.InvalidCredentialsReason}, nil
	}

	token, err := s.tokens.Issue(user.ID, s.now())
	if err != nil {
		return LoginResult{}, err
	}

	public := user.Public()
	if err := s.sessionRepo.Save(ctx, token, public); err != nil {
		return LoginResult{}, fmt.Errorf("failed to save session: %w", err)
	}

	s.metrics.RecordLogin(metrics.LoginResultSuccess)
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return LoginResult{OK: true, User: &public}, nil
}

// Logout はトークンとキャッシュ済みユーザーを無条件に削除する。冪等。
func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessionRepo.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// CurrentUser はキャッシュ済みユーザーを再検証せずに返す。存在しない場合はnilを返す。
func (s *Service) CurrentUser(ctx context.Context) (*model.User, error) {
	_, user, err := s.sessionRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return user, nil
}

// IsAuthenticated はトークンの有無のみで認証状態を判定する。
// 署名や有効期限は検証しない。
func (s *Service) IsAuthenticated(ctx context.Context) (bool, error) {
	token, _, err := s.sessionRepo.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load session: %w", err)
	}
	return token != "", nil
}

// Session はトークンをデコードしてセッション情報を返す。
// トークンが存在しない、または検証できない場合はnilを返す。
func (s *Service) Session(ctx context.Context) (*model.Session, error) {
	token, _, err := s.sessionRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if token == "" {
		return nil, nil
	}

	session, err := s.tokens.Parse(token)
	if errors.Is(err, ErrInvalidToken) {
		slog.Warn("stored session token rejected", slog.String("error", err.Error()))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ResolveSession は有効なセッションのユーザーを返す。
// トークンとキャッシュ済みユーザーが揃い、トークンのユーザーIDと一致する場合のみ有効とし、
// それ以外はnilを返す。
func (s *Service) ResolveSession(ctx context.Context) (*model.User, error) {
	session, err := s.Session(ctx)
	if err != nil || session == nil {
		return nil, err
	}

	user, err := s.CurrentUser(ctx)
	if err != nil || user == nil {
		return nil, err
	}

	if user.ID != session.UserID {
		slog.Warn("session token does not match cached user",
			slog.String("token_user_id", session.UserID),
			slog.String("cached_user_id", user.ID),
		)
		return nil, nil
	}
	return user, nil
}
