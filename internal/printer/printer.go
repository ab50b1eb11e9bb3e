// Package printer はCLI向けに色付きメッセージと一覧表を出力する。
package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/hitoshi/salesnav/internal/dashboard"
	"github.com/hitoshi/salesnav/internal/model"
)

// Printer は出力先と配色を保持する。
type Printer struct {
	w      io.Writer
	errW   io.Writer
	green  *color.Color
	yellow *color.Color
	red    *color.Color
	cyan   *color.Color
	bold   *color.Color
}

// New はwへ出力し、エラーをerrWへ出力するPrinterを生成する。
// noColorがtrueの場合は装飾しない。
func New(w, errW io.Writer, noColor bool) *Printer {
	p := &Printer{
		w:      w,
		errW:   errW,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed, color.Bold),
		cyan:   color.New(color.FgCyan),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.green, p.yellow, p.red, p.cyan, p.bold} {
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}
	return p
}

// Success は緑色のチェックマーク付きメッセージを出力する。
func (p *Printer) Success(format string, a ...any) {
	p.green.Fprintf(p.w, "✓ %s\n", fmt.Sprintf(format, a...))
}

// Warning は黄色の警告メッセージを出力する。
func (p *Printer) Warning(format string, a ...any) {
	p.yellow.Fprintf(p.w, "! %s\n", fmt.Sprintf(format, a...))
}

// Info は装飾なしのメッセージを出力する。
func (p *Printer) Info(format string, a ...any) {
	fmt.Fprintf(p.w, format+"\n", a...)
}

// Error はタイトル、説明、対処方法を出力し、cobraに返すための簡潔なエラーを返す。
func (p *Printer) Error(title, explanation string, suggestions []string) error {
	p.red.Fprintf(p.errW, "%s\n", title)
	if explanation != "" {
		fmt.Fprintf(p.errW, "\n%s\n", explanation)
	}
	if len(suggestions) > 0 {
		fmt.Fprintln(p.errW)
		for _, s := range suggestions {
			fmt.Fprintf(p.errW, "  - %s\n", s)
		}
	}
	return fmt.Errorf("%s", title)
}

// APIError はmodel.APIErrorをError形式で出力する。
func (p *Printer) APIError(err *model.APIError) error {
	return p.Error(err.Message, "", []string{err.Action})
}

// User はログイン中のユーザーを出力する。
func (p *Printer) User(u *model.User) {
	p.bold.Fprintf(p.w, "%s", u.Name)
	fmt.Fprintf(p.w, " <%s> %s / %s\n", u.Email, u.Role, u.Team)
}

// Leads はリード一覧を表形式で出力する。
func (p *Printer) Leads(leads []model.Lead) {
	if len(leads) == 0 {
		p.Info("No leads yet.")
		return
	}
	tw := p.table("ID", "BUSINESS", "CITY", "STOPPED BY", "FOLLOWED UP", "CONVERTED", "APPOINTMENT")
	for _, l := range leads {
		appt := "-"
		if l.AppointmentDateTime != nil {
			appt = l.AppointmentDateTime.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.BusinessName, dash(l.City), yesNo(l.StoppedBy), yesNo(l.FollowedUp), yesNo(l.Converted), appt)
	}
	tw.Flush()
}

// Clients は顧客一覧を表形式で出力する。
func (p *Printer) Clients(clients []model.Client) {
	if len(clients) == 0 {
		p.Info("No clients yet.")
		return
	}
	tw := p.table("ID", "COMPANY", "TYPE", "PACKAGE", "START")
	for _, c := range clients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.CompanyName, dash(c.CompanyType), money(c.PackageValue), dash(c.StartDate))
	}
	tw.Flush()
}

// Events はイベント一覧を表形式で出力する。
func (p *Printer) Events(events []model.Event) {
	if len(events) == 0 {
		p.Info("No events scheduled.")
		return
	}
	tw := p.table("ID", "TITLE", "DATE", "TIME", "TYPE", "CONTACT")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Title, e.Date.Format("2006-01-02"), dash(e.Time), dash(e.Type), dash(e.Contact))
	}
	tw.Flush()
}

// Referrals は紹介一覧を表形式で出力する。
func (p *Printer) Referrals(referrals []model.Referral) {
	if len(referrals) == 0 {
		p.Info("No referrals yet.")
		return
	}
	tw := p.table("ID", "CANDIDATE", "EMAIL", "STATUS", "REWARD PAID")
	for _, r := range referrals {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Candidate, dash(r.Email), r.Status, yesNo(r.RewardPaid))
	}
	tw.Flush()
}

// Notifications は通知を優先度に応じた色で出力する。
func (p *Printer) Notifications(notifications []model.Notification) {
	if len(notifications) == 0 {
		p.Success("No notifications")
		return
	}
	for _, n := range notifications {
		c := p.cyan
		switch n.Priority {
		case model.PriorityUrgent:
			c = p.red
		case model.PriorityHigh:
			c = p.yellow
		}
		c.Fprintf(p.w, "[%s]", strings.ToUpper(string(n.Priority)))
		fmt.Fprintf(p.w, " %s\n", n.Message)
	}
}

// Dashboard は指標、最近の活動、ナビゲーションのバッジを出力する。
func (p *Printer) Dashboard(stats dashboard.Stats, activity []dashboard.Activity, nav []dashboard.NavItem) {
	p.bold.Fprintf(p.w, "Dashboard (%s)\n", stats.Timeframe)

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total leads\t%d\n", stats.TotalLeads)
	fmt.Fprintf(tw, "Active leads\t%d\n", stats.ActiveLeads)
	fmt.Fprintf(tw, "Conversions\t%d\n", stats.Conversions)
	fmt.Fprintf(tw, "Revenue\t%s\n", money(stats.Revenue))
	fmt.Fprintf(tw, "Appointments\t%d\n", stats.Appointments)
	fmt.Fprintf(tw, "Weekly goal\t%.0f%%\n", stats.WeeklyGoalProgress)
	tw.Flush()

	if len(activity) > 0 {
		fmt.Fprintln(p.w)
		p.bold.Fprintln(p.w, "Recent activity")
		for _, a := range activity {
			fmt.Fprintf(p.w, "  %s  %s\n", a.Date.Format(time.DateOnly), a.Title)
		}
	}

	fmt.Fprintln(p.w)
	parts := make([]string, 0, len(nav))
	for _, item := range nav {
		if item.Badge > 0 {
			parts = append(parts, fmt.Sprintf("%s (%d)", item.Name, item.Badge))
		} else {
			parts = append(parts, item.Name)
		}
	}
	p.cyan.Fprintf(p.w, "%s\n", strings.Join(parts, " | "))
}

func (p *Printer) table(headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return tw
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
