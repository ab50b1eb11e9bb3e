// Package model はドメインモデルを定義する。
package model

import "time"

// Lead は訪問・接触した見込み客の記録を表す。
// FollowedUp と Converted 以外のフィールドは作成後に変更しない。
type Lead struct {
	ID                  string     `json:"id"`
	BusinessName        string     `json:"businessName"`
	City                string     `json:"city"`
	Address             string     `json:"address"`
	Phone               string     `json:"phone"`
	StoppedBy           bool       `json:"stoppedBy"`
	FollowedUp          bool       `json:"followedUp"`
	ContactedLeadership bool       `json:"contactedLeadership"`
	AppointmentSet      bool       `json:"appointmentSet"`
	AppointmentDateTime *time.Time `json:"appointmentDateTime,omitempty"`
	Converted           bool       `json:"converted"`

	DecisionMaker     string `json:"decisionMaker,omitempty"`
	BestTimeToContact string `json:"bestTimeToContact,omitempty"`
	CompetitorInfo    string `json:"competitorInfo,omitempty"`
	MarketingStrategy string `json:"marketingStrategy,omitempty"`
	ExtraDetails      string `json:"extraDetails,omitempty"`
	WeekNumber        string `json:"weekNumber,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// LeadPatch はLeadの部分更新内容を表す。
// nilフィールドは変更せず、既存の値を維持する。
type LeadPatch struct {
	FollowedUp *bool `json:"followedUp,omitempty"`
	Converted  *bool `json:"converted,omitempty"`
}

// IsEmpty は更新対象のフィールドが1つも指定されていないかを返す。
func (p LeadPatch) IsEmpty() bool {
	return p.FollowedUp == nil && p.Converted == nil
}

// Apply はパッチをLeadにマージした結果を返す。元のLeadは変更しない。
func (p LeadPatch) Apply(l Lead) Lead {
	if p.FollowedUp != nil {
		l.FollowedUp = *p.FollowedUp
	}
	if p.Converted != nil {
		l.Converted = *p.Converted
	}
	return l
}
