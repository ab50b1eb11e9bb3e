package model

import "time"

// ReferralStatus は紹介候補者の選考状況を表す。
type ReferralStatus string

const (
	ReferralStatusPending        ReferralStatus = "pending"
	ReferralStatusApplied        ReferralStatus = "Applied"
	ReferralStatusInterviewing   ReferralStatus = "Interviewing"
	ReferralStatusHired          ReferralStatus = "Hired"
	ReferralStatusContractSigned ReferralStatus = "Contract Signed"
)

// Valid は定義済みのステータスかどうかを返す。
func (s ReferralStatus) Valid() bool {
	switch s {
	case ReferralStatusPending, ReferralStatusApplied, ReferralStatusInterviewing,
		ReferralStatusHired, ReferralStatusContractSigned:
		return true
	}
	return false
}

// Referral は営業メンバーの紹介で応募した候補者を表す。
// 作成時のステータスは常に pending。
type Referral struct {
	ID         string         `json:"id"`
	Candidate  string         `json:"candidate"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone"`
	Status     ReferralStatus `json:"status"`
	RewardPaid bool           `json:"rewardPaid"`

	ReferredBy string `json:"referredBy,omitempty"`
	Background string `json:"background,omitempty"`
	Notes      string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// ReferralPatch はReferralの部分更新内容を表す。
type ReferralPatch struct {
	Status     *ReferralStatus `json:"status,omitempty"`
	RewardPaid *bool           `json:"rewardPaid,omitempty"`
}

// IsEmpty は更新対象のフィールドが1つも指定されていないかを返す。
func (p ReferralPatch) IsEmpty() bool {
	return p.Status == nil && p.RewardPaid == nil
}

// Apply はパッチをReferralにマージした結果を返す。
func (p ReferralPatch) Apply(r Referral) Referral {
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.RewardPaid != nil {
		r.RewardPaid = *p.RewardPaid
	}
	return r
}
