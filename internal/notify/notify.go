// Package notify はリードとイベントのスナップショットから通知一覧を導出する。
// ストアには触れず、入力も変更しない。
package notify

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hitoshi/salesnav/internal/model"
)

// FollowUpPolicy はフォローアップ通知の対象となるリードの条件を表す。
type FollowUpPolicy string

const (
	// PolicyStoppedBy は訪問済みかつ未フォローのリードを対象とする。
	PolicyStoppedBy FollowUpPolicy = "stopped-by"
	// PolicyAllOpen は未フォローのリードをすべて対象とする。
	PolicyAllOpen FollowUpPolicy = "all-open"
)

// ParsePolicy は設定値をFollowUpPolicyに変換する。
func ParsePolicy(s string) (FollowUpPolicy, error) {
	switch p := FollowUpPolicy(s); p {
	case PolicyStoppedBy, PolicyAllOpen:
		return p, nil
	}
	return "", fmt.Errorf("unknown follow-up policy %q", s)
}

// appointmentWindowDays は予定通知を出す残り日数の上限。
const appointmentWindowDays = 2

// Derive は通知一覧を導出する。
// フォローアップ通知を先に、予定通知を後に、それぞれ入力順で並べる。
func Derive(leads []model.Lead, events []model.Event, now time.Time, policy FollowUpPolicy) []model.Notification {
	out := make([]model.Notification, 0)

	for _, lead := range leads {
		if !needsFollowUp(lead, policy) {
			continue
		}
		out = append(out, model.Notification{
			ID:       "followup-" + lead.ID,
			Kind:     model.NotificationKindFollowUp,
			SourceID: lead.ID,
			Message:  fmt.Sprintf("Follow up needed for %s", lead.BusinessName),
			Priority: model.PriorityHigh,
		})
	}

	for _, event := range events {
		days := DaysUntil(event.Date, now)
		if days < 0 || days > appointmentWindowDays {
			continue
		}
		priority := model.PriorityMedium
		if days == 0 {
			priority = model.PriorityUrgent
		}
		out = append(out, model.Notification{
			ID:       "event-" + event.ID,
			Kind:     model.NotificationKindAppointment,
			SourceID: event.ID,
			Message:  appointmentMessage(event.Title, days),
			Priority: priority,
		})
	}

	return out
}

func needsFollowUp(lead model.Lead, policy FollowUpPolicy) bool {
	if lead.FollowedUp {
		return false
	}
	if policy == PolicyAllOpen {
		return true
	}
	return lead.StoppedBy
}

// DaysUntil は now から date までの日数を24時間単位で切り上げて返す。
// 24時間未満前に過ぎた予定は0になる。
func DaysUntil(date, now time.Time) int {
	d := math.Ceil(date.Sub(now).Hours() / 24)
	if d == 0 {
		// -0 を 0 に正規化する
		return 0
	}
	return int(d)
}

func appointmentMessage(title string, days int) string {
	switch days {
	case 0:
		return fmt.Sprintf("Upcoming appointment with %s today", title)
	case 1:
		return fmt.Sprintf("Upcoming appointment with %s in 1 day", title)
	}
	return fmt.Sprintf("Upcoming appointment with %s in %d days", title, days)
}

// SortByPriority は優先度の高い順に並べ替えたコピーを返す。
// 同じ優先度の通知は元の順序を保つ。
func SortByPriority(notifications []model.Notification) []model.Notification {
	out := make([]model.Notification, len(notifications))
	copy(out, notifications)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() > out[j].Priority.Rank()
	})
	return out
}

// CountByKind は種別ごとの通知数を返す。
func CountByKind(notifications []model.Notification) map[model.NotificationKind]int {
	counts := map[model.NotificationKind]int{
		model.NotificationKindFollowUp:    0,
		model.NotificationKindAppointment: 0,
	}
	for _, n := range notifications {
		counts[n.Kind]++
	}
	return counts
}
