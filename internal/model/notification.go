package model

// NotificationKind は通知の発生元ルールを表す。
type NotificationKind string

const (
	NotificationKindFollowUp    NotificationKind = "follow-up"
	NotificationKindAppointment NotificationKind = "appointment"
)

// Priority は通知の優先度を表す。
type Priority string

const (
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank は優先度の並び順を返す。大きいほど緊急。
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	}
	return 0
}

// Notification は読み込みのたびに再計算される一時的なアラート。
// 永続化しない。IDは発生元レコードIDと種別から決定的に導出される。
type Notification struct {
	ID       string           `json:"id"`
	Kind     NotificationKind `json:"kind"`
	SourceID string           `json:"sourceId"`
	Message  string           `json:"message"`
	Priority Priority         `json:"priority"`
}
