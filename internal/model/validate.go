package model

import "strings"

// Validate は新規リードの必須項目を検証する。
func (l Lead) Validate() error {
	if strings.TrimSpace(l.BusinessName) == "" {
		return NewValidationError("businessName is required")
	}
	return nil
}

// Validate は新規顧客の必須項目を検証する。
func (c Client) Validate() error {
	if strings.TrimSpace(c.CompanyName) == "" {
		return NewValidationError("companyName is required")
	}
	if c.PackageValue < 0 {
		return NewValidationError("packageValue must not be negative")
	}
	if c.AdsSpendBudget < 0 {
		return NewValidationError("adsSpendBudget must not be negative")
	}
	if c.VideosPerMonth < 0 {
		return NewValidationError("videosPerMonth must not be negative")
	}
	return nil
}

// Validate は新規イベントの必須項目を検証する。
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return NewValidationError("title is required")
	}
	if e.Date.IsZero() {
		return NewValidationError("date is required")
	}
	return nil
}

// Validate は新規紹介の必須項目を検証する。
func (r Referral) Validate() error {
	if strings.TrimSpace(r.Candidate) == "" {
		return NewValidationError("candidate is required")
	}
	return nil
}

// Validate はパッチのステータスが定義済みの値かどうかを検証する。
func (p ReferralPatch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return NewInvalidReferralStatusError(string(*p.Status))
	}
	return nil
}
