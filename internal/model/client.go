package model

import "time"

// Client は承認済みオンボーディングから作成された顧客を表す。
// Leadとのリンクは持たない。
type Client struct {
	ID           string  `json:"id"`
	CompanyName  string  `json:"companyName"`
	PackageValue float64 `json:"packageValue"`

	CompanyType      string  `json:"companyType,omitempty"`
	StartDate        string  `json:"startDate,omitempty"`
	AdsSpendBudget   float64 `json:"adsSpendBudget,omitempty"`
	VideosPerMonth   int     `json:"videosPerMonth,omitempty"`
	RecordingPerson  string  `json:"recordingPerson,omitempty"`
	NeedVideographer bool    `json:"needVideographer,omitempty"`
	ExtraDetails     string  `json:"extraDetails,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}
