package app

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hitoshi/salesnav/internal/dashboard"
	"github.com/hitoshi/salesnav/internal/handler"
	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/notify"
	"github.com/hitoshi/salesnav/internal/printer"
)

// globalOptions はすべてのサブコマンドで共有するフラグ。
type globalOptions struct {
	envFile   string
	ephemeral bool
	noColor   bool
	jsonOut   bool
	logOut    io.Writer
}

// cli はサブコマンドの実行に必要な状態を保持する。
type cli struct {
	opts *globalOptions
}

// Run はコマンドライン引数を解析してサブコマンドを実行する。
// argsにはos.Args[1:]を渡す。出力はstdout、ログとエラーはstderrに書き込む。
func Run(stdout, stderr io.Writer, args []string) error {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.Execute()
}

// NewRootCommand はsalesnavのルートコマンドを生成する。
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{logOut: stderr}
	c := &cli{opts: opts}

	root := &cobra.Command{
		Use:   "salesnav",
		Short: "Salesnav - field sales lead tracker",
		Long: `Salesnav tracks leads, clients, calendar events and candidate referrals
for a field sales team, and derives follow-up and appointment reminders.

Data is stored in a local SQLite database (DB_PATH). Run "salesnav serve"
to expose the same operations over a JSON API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file to load before reading the environment")
	pf.BoolVar(&opts.ephemeral, "ephemeral", false, "Use an in-memory store instead of the SQLite database")
	pf.BoolVar(&opts.noColor, "no-color", os.Getenv("NO_COLOR") != "", "Disable colored output")
	pf.BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")

	root.AddCommand(
		c.serveCommand(),
		c.migrateCommand(),
		c.healthcheckCommand(),
		c.loginCommand(),
		c.logoutCommand(),
		c.whoamiCommand(),
		c.leadsCommand(),
		c.clientsCommand(),
		c.eventsCommand(),
		c.referralsCommand(),
		c.notificationsCommand(),
		c.dashboardCommand(),
	)
	return root
}

func (c *cli) printer(cmd *cobra.Command) *printer.Printer {
	return printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), c.opts.noColor)
}

// withRuntime は設定を読み込んでRuntimeを構築し、fnを実行する。
// ドメインエラーはプリンターで整形して返す。
func (c *cli) withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *Runtime, p *printer.Printer) error) error {
	p := c.printer(cmd)
	cfg, err := Init(c.opts.logOut, c.opts.envFile)
	if err != nil {
		return p.Error("Configuration error", err.Error(), []string{"Set TOKEN_SECRET in the environment or in .env"})
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := Bootstrap(ctx, cfg, c.opts.ephemeral)
	if err != nil {
		return p.Error("Startup failed", err.Error(), nil)
	}
	defer rt.Close()

	if err := fn(ctx, rt, p); err != nil {
		if apiErr, ok := asAPIError(err); ok {
			return p.APIError(apiErr)
		}
		return err
	}
	return nil
}

// emit は--json指定時にvをJSONで出力し、それ以外はtableを呼ぶ。
func (c *cli) emit(cmd *cobra.Command, v any, table func()) error {
	if !c.opts.jsonOut {
		table()
		return nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- サーバー・運用 ---

func (c *cli) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				return runServe(rt)
			})
		},
	}
}

func (c *cli) migrateCommand() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply (or roll back) database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := c.printer(cmd)
			cfg, err := Init(c.opts.logOut, c.opts.envFile)
			if err != nil {
				return p.Error("Configuration error", err.Error(), nil)
			}
			if err := runMigrate(cfg, down); err != nil {
				return p.Error("Migration failed", err.Error(), nil)
			}
			p.Success("Migrations applied to %s", cfg.DBPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "Roll back all migrations")
	return cmd
}

func (c *cli) healthcheckCommand() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check that a running server answers /health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				port := os.Getenv("SERVER_PORT")
				if port == "" {
					port = "8080"
				}
				url = "http://localhost:" + port
			}
			return runHealthcheck(url)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Base URL of the server (default http://localhost:$SERVER_PORT)")
	return cmd
}

// --- セッション ---

func (c *cli) loginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				result, _, err := rt.Controller.Login(ctx, email, password)
				if err != nil {
					return err
				}
				if !result.OK {
					return model.NewInvalidCredentialsError()
				}
				return c.emit(cmd, result.User, func() {
					p.Success("Logged in as %s (%s)", result.User.Name, result.User.Role)
				})
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				if _, err := rt.Controller.Logout(ctx); err != nil {
					return err
				}
				p.Success("Logged out")
				return nil
			})
		},
	}
}

func (c *cli) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				user, err := rt.Controller.CurrentUser(ctx)
				if err != nil {
					return err
				}
				if user == nil {
					return model.NewUnauthenticatedError()
				}
				return c.emit(cmd, user, func() { p.User(user) })
			})
		},
	}
}

// --- 通知・ダッシュボード ---

func (c *cli) notificationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "notifications",
		Short: "List follow-up and appointment reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				view, err := rt.Controller.Reload(ctx)
				if err != nil {
					return err
				}
				sorted := notify.SortByPriority(view.Notifications)
				return c.emit(cmd, sorted, func() { p.Notifications(sorted) })
			})
		},
	}
}

func (c *cli) dashboardCommand() *cobra.Command {
	var timeframe string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show sales metrics, recent activity and navigation badges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := dashboard.ParseTimeframe(timeframe)
			if err != nil {
				return c.printer(cmd).Error("Invalid timeframe", err.Error(), []string{"Use week, month or year"})
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				view, err := rt.Controller.Reload(ctx)
				if err != nil {
					return err
				}
				stats := dashboard.Compute(view.Leads, view.Clients, view.Events, tf, time.Now())
				activity := dashboard.RecentActivity(view.Leads, view.Clients, view.Events, dashboard.DefaultActivityLimit)
				badges := dashboard.ComputeBadges(view.Leads, view.Clients, view.Events, view.Referrals, view.Notifications)
				nav := dashboard.Navigation(view.User.Role, badges)

				out := map[string]any{"stats": stats, "activity": activity, "badges": badges, "navigation": nav}
				return c.emit(cmd, out, func() { p.Dashboard(stats, activity, nav) })
			})
		},
	}
	cmd.Flags().StringVar(&timeframe, "timeframe", "week", "Timeframe: week, month or year")
	return cmd
}

// parseDate はCLIの日付入力をTIMEZONEで解釈する。
func parseDate(rt *Runtime, s string) (time.Time, error) {
	return handler.ParseDateTime(s, rt.Config.Timezone)
}

// boolFlag はフラグが明示された場合のみ値へのポインタを返す。
func boolFlag(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}
