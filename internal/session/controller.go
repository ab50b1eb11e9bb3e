// Package session はセッション状態とレコード・通知のビューを管理するコントローラーを提供する。
// すべての操作はミューテックスで直列化される。
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/salesnav/internal/auth"
	"github.com/hitoshi/salesnav/internal/metrics"
	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/notify"
	"github.com/hitoshi/salesnav/internal/repository"
	"github.com/hitoshi/salesnav/internal/store"
)

// State はコントローラーのセッション状態。
type State int

const (
	StateUnresolved State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unresolved"
}

// Authenticator はコントローラーが利用する認証操作のインターフェース。
type Authenticator interface {
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
	Logout(ctx context.Context) error
	ResolveSession(ctx context.Context) (*model.User, error)
}

// View は表示層に渡す読み取り専用のビューモデル。
type View struct {
	Authenticated bool                 `json:"authenticated"`
	User          *model.User          `json:"user"`
	Leads         []model.Lead         `json:"leads"`
	Clients       []model.Client       `json:"clients"`
	Events        []model.Event        `json:"events"`
	Referrals     []model.Referral     `json:"referrals"`
	Notifications []model.Notification `json:"notifications"`
}

// Deps はControllerの依存関係。
type Deps struct {
	Store     store.Store
	Auth      Authenticator
	Leads     repository.LeadRepository
	Clients   repository.ClientRepository
	Events    repository.EventRepository
	Referrals repository.ReferralRepository

	// Seed は初回起動時にストアへ投入する初期値。
	Seed map[string][]byte

	Policy  notify.FollowUpPolicy
	Metrics metrics.MetricsCollector
	Now     func() time.Time
}

// Controller は初期投入、セッション解決、変更後の再読み込みと通知の再計算を統括する。
type Controller struct {
	mu   sync.Mutex
	deps Deps

	state State
	view  View
}

// NewController はControllerを生成する。
func NewController(deps Deps) *Controller {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NopCollector{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Policy == "" {
		deps.Policy = notify.PolicyStoppedBy
	}
	return &Controller{deps: deps, state: StateUnresolved, view: emptyView()}
}

// Start は初期値を投入し、保存済みセッションを解決する。
// 有効なセッションがあれば全コレクションを読み込んで通知を導出する。
func (c *Controller) Start(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.startLocked(ctx); err != nil {
		return View{}, err
	}
	return c.snapshot(), nil
}

// State は現在のセッション状態を返す。
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentUser はストアのセッションを確認し直して認証済みユーザーを返す。
// 匿名の場合はnilを返す。
func (c *Controller) CurrentUser(ctx context.Context) (*model.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.syncSession(ctx); err != nil {
		return nil, err
	}
	if c.state != StateAuthenticated || c.view.User == nil {
		return nil, nil
	}
	u := *c.view.User
	return &u, nil
}

// View はストアのセッションを確認し直し、認証済みであれば全コレクションを
// 読み込み直してからビューを返す。
func (c *Controller) View(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.syncSession(ctx); err != nil {
		return View{}, err
	}
	if c.state == StateAuthenticated {
		if err := c.reloadLocked(ctx); err != nil {
			return View{}, err
		}
	}
	return c.snapshot(), nil
}

// Login は認証を行い、成功した場合は認証済み状態に遷移してデータを読み込む。
// 失敗した場合は状態を変えずに結果を返す。
func (c *Controller) Login(ctx context.Context, email, password string) (auth.LoginResult, View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureResolved(ctx); err != nil {
		return auth.LoginResult{}, View{}, err
	}

	result, err := c.deps.Auth.Login(ctx, email, password)
	if err != nil {
		return auth.LoginResult{}, View{}, err
	}
	if !result.OK {
		return result, c.snapshot(), nil
	}

	if err := c.enterAuthenticated(ctx, result.User); err != nil {
		return auth.LoginResult{}, View{}, err
	}
	return result, c.snapshot(), nil
}

// Logout はセッションを破棄し、キャッシュしたコレクションと通知を捨てて匿名状態に遷移する。
func (c *Controller) Logout(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.deps.Auth.Logout(ctx); err != nil {
		return View{}, err
	}
	c.enterAnonymous()
	return c.snapshot(), nil
}

// Reload は全コレクションを読み込み直して通知を再計算する。
func (c *Controller) Reload(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireAuthenticated(ctx); err != nil {
		return View{}, err
	}
	if err := c.reloadLocked(ctx); err != nil {
		return View{}, err
	}
	return c.snapshot(), nil
}

// AddLead はリードを追加し、再読み込み後のビューとともに返す。
func (c *Controller) AddLead(ctx context.Context, lead model.Lead) (*model.Lead, View, error) {
	if err := lead.Validate(); err != nil {
		return nil, View{}, err
	}
	return mutate(c, ctx, func(ctx context.Context) (*model.Lead, error) {
		return c.deps.Leads.Create(ctx, lead)
	})
}

// UpdateLead はリードにパッチを適用する。見つからない場合はリード未検出エラーを返す。
func (c *Controller) UpdateLead(ctx context.Context, id string, patch model.LeadPatch) (*model.Lead, View, error) {
	return mutate(c, ctx, func(ctx context.Context) (*model.Lead, error) {
		lead, err := c.deps.Leads.Update(ctx, id, patch)
		if err != nil {
			return nil, err
		}
		if lead == nil {
			return nil, model.NewLeadNotFoundError(id)
		}
		return lead, nil
	})
}

// AddClient は顧客を追加する。
func (c *Controller) AddClient(ctx context.Context, client model.Client) (*model.Client, View, error) {
	if err := client.Validate(); err != nil {
		return nil, View{}, err
	}
	return mutate(c, ctx, func(ctx context.Context) (*model.Client, error) {
		return c.deps.Clients.Create(ctx, client)
	})
}

// AddEvent はカレンダーイベントを追加する。
func (c *Controller) AddEvent(ctx context.Context, event model.Event) (*model.Event, View, error) {
	if err := event.Validate(); err != nil {
		return nil, View{}, err
	}
	return mutate(c, ctx, func(ctx context.Context) (*model.Event, error) {
		return c.deps.Events.Create(ctx, event)
	})
}

// AddReferral は紹介を追加する。ステータスは pending で作成される。
func (c *Controller) AddReferral(ctx context.Context, referral model.Referral) (*model.Referral, View, error) {
	if err := referral.Validate(); err != nil {
		return nil, View{}, err
	}
	return mutate(c, ctx, func(ctx context.Context) (*model.Referral, error) {
		return c.deps.Referrals.Create(ctx, referral)
	})
}

// UpdateReferral は紹介にパッチを適用する。見つからない場合は紹介未検出エラーを返す。
func (c *Controller) UpdateReferral(ctx context.Context, id string, patch model.ReferralPatch) (*model.Referral, View, error) {
	if err := patch.Validate(); err != nil {
		return nil, View{}, err
	}
	return mutate(c, ctx, func(ctx context.Context) (*model.Referral, error) {
		ref, err := c.deps.Referrals.Update(ctx, id, patch)
		if err != nil {
			return nil, err
		}
		if ref == nil {
			return nil, model.NewReferralNotFoundError(id)
		}
		return ref, nil
	})
}

// mutate は認証済みであることを確認して変更を実行し、成功後に全コレクションを再読み込みする。
func mutate[T any](c *Controller, ctx context.Context, fn func(context.Context) (*T, error)) (*T, View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireAuthenticated(ctx); err != nil {
		return nil, View{}, err
	}

	record, err := fn(ctx)
	if err != nil {
		return nil, c.snapshot(), err
	}

	if err := c.reloadLocked(ctx); err != nil {
		return nil, View{}, err
	}
	return record, c.snapshot(), nil
}

func (c *Controller) startLocked(ctx context.Context) error {
	if len(c.deps.Seed) > 0 {
		if err := c.deps.Store.SeedIfEmpty(ctx, c.deps.Seed); err != nil {
			return fmt.Errorf("failed to seed store: %w", err)
		}
	}

	user, err := c.deps.Auth.ResolveSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve session: %w", err)
	}
	if user == nil {
		c.enterAnonymous()
		return nil
	}
	return c.enterAuthenticated(ctx, user)
}

func (c *Controller) ensureResolved(ctx context.Context) error {
	if c.state != StateUnresolved {
		return nil
	}
	return c.startLocked(ctx)
}

// syncSession はストアに保存されたセッションを読み直して状態を合わせる。
// 別プロセスがログアウトやログインをした場合もここで追従する。
func (c *Controller) syncSession(ctx context.Context) error {
	if c.state == StateUnresolved {
		return c.startLocked(ctx)
	}

	user, err := c.deps.Auth.ResolveSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve session: %w", err)
	}
	if user == nil {
		if c.state == StateAuthenticated {
			slog.Info("stored session is gone, switching to anonymous")
		}
		c.enterAnonymous()
		return nil
	}
	if c.state == StateAuthenticated && c.view.User != nil && c.view.User.ID == user.ID {
		return nil
	}
	return c.enterAuthenticated(ctx, user)
}

func (c *Controller) requireAuthenticated(ctx context.Context) error {
	if err := c.syncSession(ctx); err != nil {
		return err
	}
	if c.state != StateAuthenticated {
		return model.NewUnauthenticatedError()
	}
	return nil
}

func (c *Controller) enterAuthenticated(ctx context.Context, user *model.User) error {
	u := user.Public()
	c.state = StateAuthenticated
	c.view = emptyView()
	c.view.Authenticated = true
	c.view.User = &u

	if err := c.reloadLocked(ctx); err != nil {
		return err
	}
	slog.Info("session authenticated", slog.String("user_id", u.ID))
	return nil
}

func (c *Controller) enterAnonymous() {
	c.state = StateAnonymous
	c.view = emptyView()
}

// reloadLocked は4つのコレクションを読み込み、通知を導出する。
func (c *Controller) reloadLocked(ctx context.Context) error {
	leads, err := c.deps.Leads.List(ctx)
	if err != nil {
		return err
	}
	clients, err := c.deps.Clients.List(ctx)
	if err != nil {
		return err
	}
	events, err := c.deps.Events.List(ctx)
	if err != nil {
		return err
	}
	referrals, err := c.deps.Referrals.List(ctx)
	if err != nil {
		return err
	}

	notifications := notify.Derive(leads, events, c.deps.Now(), c.deps.Policy)
	for kind, n := range notify.CountByKind(notifications) {
		c.deps.Metrics.SetNotifications(string(kind), n)
	}

	c.view.Leads = leads
	c.view.Clients = clients
	c.view.Events = events
	c.view.Referrals = referrals
	c.view.Notifications = notifications
	return nil
}

// snapshot は呼び出し元がキャッシュを変更できないようにビューを複製して返す。
func (c *Controller) snapshot() View {
	v := View{
		Authenticated: c.view.Authenticated,
		Leads:         append([]model.Lead{}, c.view.Leads...),
		Clients:       append([]model.Client{}, c.view.Clients...),
		Events:        append([]model.Event{}, c.view.Events...),
		Referrals:     append([]model.Referral{}, c.view.Referrals...),
		Notifications: append([]model.Notification{}, c.view.Notifications...),
	}
	if c.view.User != nil {
		u := *c.view.User
		v.User = &u
	}
	return v
}

func emptyView() View {
	return View{
		Leads:         []model.Lead{},
		Clients:       []model.Client{},
		Events:        []model.Event{},
		Referrals:     []model.Referral{},
		Notifications: []model.Notification{},
	}
}
