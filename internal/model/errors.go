// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// 呼び出し元に表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, record, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	ErrCodeUnauthenticated       = "UNAUTHENTICATED"
	ErrCodeLeadNotFound          = "LEAD_NOT_FOUND"
	ErrCodeReferralNotFound      = "REFERRAL_NOT_FOUND"
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeInvalidReferralStatus = "INVALID_REFERRAL_STATUS"
)

// InvalidCredentialsReason はログイン失敗時に返す汎用理由。
// どちらの入力が誤っているかは区別しない。
const InvalidCredentialsReason = "invalid credentials"

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  InvalidCredentialsReason,
		Category: "auth",
		Action:   "メールアドレスとパスワードを確認してください。",
	}
}

// NewUnauthenticatedError は未ログイン状態での操作エラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "ログインが必要です。",
		Category: "auth",
		Action:   "ログインしてから再度お試しください。",
	}
}

// NewLeadNotFoundError はリード未検出エラーを生成する。
func NewLeadNotFoundError(leadID string) *APIError {
	return &APIError{
		Code:     ErrCodeLeadNotFound,
		Message:  fmt.Sprintf("指定されたリードが見つかりません: %s", leadID),
		Category: "record",
		Action:   "リードIDを確認してください。",
	}
}

// NewReferralNotFoundError は紹介未検出エラーを生成する。
func NewReferralNotFoundError(referralID string) *APIError {
	return &APIError{
		Code:     ErrCodeReferralNotFound,
		Message:  fmt.Sprintf("指定された紹介が見つかりません: %s", referralID),
		Category: "record",
		Action:   "紹介IDを確認してください。",
	}
}

// NewValidationError は入力値の検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容が正しくありません: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidReferralStatusError は未定義の紹介ステータスエラーを生成する。
func NewInvalidReferralStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidReferralStatus,
		Message:  fmt.Sprintf("無効な紹介ステータスです: %s", status),
		Category: "validation",
		Action:   "ステータスには pending、Applied、Interviewing、Hired、Contract Signed のいずれかを指定してください。",
	}
}
