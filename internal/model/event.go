package model

import "time"

// EventTypeMeeting はダッシュボードでアポイント件数として数えるイベント種別。
const EventTypeMeeting = "meeting"

// Event はカレンダー上の予定を表す。
// Date は予定日時、Time は表示用の時刻文字列（例: "10:00 AM"）。
type Event struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Time  string    `json:"time"`
	Type  string    `json:"type"`

	Address string `json:"address,omitempty"`
	Contact string `json:"contact,omitempty"`
	Phone   string `json:"phone,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}
