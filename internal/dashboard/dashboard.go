// Package dashboard はダッシュボード表示用の集計値を導出する。
package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/hitoshi/salesnav/internal/model"
)

// Timeframe は集計対象期間を表す。
type Timeframe string

const (
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

// weeklyLeadGoal は週あたりの目標リード数。
const weeklyLeadGoal = 10

// DefaultActivityLimit は最近のアクティビティの既定表示件数。
const DefaultActivityLimit = 10

// ParseTimeframe は文字列をTimeframeに変換する。空文字列は week とする。
func ParseTimeframe(s string) (Timeframe, error) {
	switch t := Timeframe(s); t {
	case "":
		return TimeframeWeek, nil
	case TimeframeWeek, TimeframeMonth, TimeframeYear:
		return t, nil
	}
	return "", fmt.Errorf("unknown timeframe %q", s)
}

// Days は期間の日数を返す。
func (t Timeframe) Days() int {
	switch t {
	case TimeframeMonth:
		return 30
	case TimeframeYear:
		return 365
	}
	return 7
}

// Stats は期間内の営業指標。
type Stats struct {
	Timeframe          Timeframe `json:"timeframe"`
	TotalLeads         int       `json:"totalLeads"`
	ActiveLeads        int       `json:"activeLeads"`
	Conversions        int       `json:"conversions"`
	Revenue            float64   `json:"revenue"`
	Appointments       int       `json:"appointments"`
	WeeklyGoalProgress float64   `json:"weeklyGoalProgress"`
}

// Compute は期間内に作成されたレコードから指標を計算する。
// イベントは作成日時ではなく予定日時で期間を判定する。
func Compute(leads []model.Lead, clients []model.Client, events []model.Event, tf Timeframe, now time.Time) Stats {
	start := now.AddDate(0, 0, -tf.Days())
	inRange := func(t time.Time) bool { return !t.Before(start) }

	stats := Stats{Timeframe: tf}
	for _, l := range leads {
		if !inRange(l.CreatedAt) {
			continue
		}
		stats.TotalLeads++
		if !l.Converted {
			stats.ActiveLeads++
		}
	}
	for _, c := range clients {
		if !inRange(c.CreatedAt) {
			continue
		}
		stats.Conversions++
		stats.Revenue += c.PackageValue
	}
	for _, e := range events {
		if inRange(e.Date) && e.Type == model.EventTypeMeeting {
			stats.Appointments++
		}
	}
	stats.WeeklyGoalProgress = float64(stats.TotalLeads) * 100 / weeklyLeadGoal

	return stats
}

// ActivityType はアクティビティの種類。
type ActivityType string

const (
	ActivityLead        ActivityType = "lead"
	ActivityConversion  ActivityType = "conversion"
	ActivityAppointment ActivityType = "appointment"
)

// Activity は最近のアクティビティ1件。
type Activity struct {
	ID    string       `json:"id"`
	Type  ActivityType `json:"type"`
	Title string       `json:"title"`
	Date  time.Time    `json:"date"`
}

// RecentActivity はリード・顧客・イベントを日時の降順に並べ、先頭limit件を返す。
// limitが0以下の場合はDefaultActivityLimitを使う。
func RecentActivity(leads []model.Lead, clients []model.Client, events []model.Event, limit int) []Activity {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	all := make([]Activity, 0, len(leads)+len(clients)+len(events))
	for _, l := range leads {
		all = append(all, Activity{
			ID:    "lead-" + l.ID,
			Type:  ActivityLead,
			Title: "New lead: " + l.BusinessName,
			Date:  l.CreatedAt,
		})
	}
	for _, c := range clients {
		all = append(all, Activity{
			ID:    "client-" + c.ID,
			Type:  ActivityConversion,
			Title: "New client: " + c.CompanyName,
			Date:  c.CreatedAt,
		})
	}
	for _, e := range events {
		all = append(all, Activity{
			ID:    "event-" + e.ID,
			Type:  ActivityAppointment,
			Title: e.Title,
			Date:  e.Date,
		})
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })

	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

// Badges はナビゲーションに表示する件数バッジ。
type Badges struct {
	Dashboard int `json:"dashboard"`
	Calendar  int `json:"calendar"`
	Leads     int `json:"leads"`
	Clients   int `json:"clients"`
	Referrals int `json:"referrals"`
}

// ComputeBadges はバッジの件数を計算する。
// Dashboardは通知数、Leadsは未成約リード数、Referralsは pending の紹介数。
func ComputeBadges(
	leads []model.Lead,
	clients []model.Client,
	events []model.Event,
	referrals []model.Referral,
	notifications []model.Notification,
) Badges {
	b := Badges{
		Dashboard: len(notifications),
		Calendar:  len(events),
		Clients:   len(clients),
	}
	for _, l := range leads {
		if !l.Converted {
			b.Leads++
		}
	}
	for _, r := range referrals {
		if r.Status == model.ReferralStatusPending {
			b.Referrals++
		}
	}
	return b
}

// NavItem はナビゲーションの1項目。
type NavItem struct {
	Name  string `json:"name"`
	View  string `json:"view"`
	Badge int    `json:"badge,omitempty"`
}

// Navigation はロールに応じたナビゲーション項目を返す。
// 設定画面は管理者のみに表示する。
func Navigation(role model.Role, b Badges) []NavItem {
	items := []NavItem{
		{Name: "Dashboard", View: "dashboard", Badge: b.Dashboard},
		{Name: "Calendar", View: "calendar", Badge: b.Calendar},
		{Name: "Leads", View: "leads", Badge: b.Leads},
		{Name: "Clients", View: "clients", Badge: b.Clients},
		{Name: "Referrals", View: "referrals", Badge: b.Referrals},
	}
	if role == model.RoleAdmin {
		items = append(items, NavItem{Name: "Settings", View: "settings"})
	}
	return items
}
