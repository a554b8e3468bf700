// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// バックエンド呼び出しの失敗は必ずこの閉じたカテゴリ集合に写像し、
// 内部の生エラーテキストをそのままユーザーに見せない。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, backend, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeDuplicateAccount   = "DUPLICATE_ACCOUNT"
	ErrCodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	ErrCodeInvalidEmail       = "INVALID_EMAIL"
	ErrCodeWeakPassword       = "WEAK_PASSWORD"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewDuplicateAccountError は登録済みメールアドレスでのサインアップエラーを生成する。
func NewDuplicateAccountError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateAccount,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "サインインするか、パスワードリセットをお試しください。",
	}
}

// NewEmailNotVerifiedError はメール未確認のままサインインした場合のエラーを生成する。
func NewEmailNotVerifiedError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailNotVerified,
		Message:  "メールアドレスの確認が完了していません。",
		Category: "auth",
		Action:   "受信した確認メールのリンクをクリックしてから、再度サインインしてください。",
	}
}

// NewInvalidEmailError はメールアドレス形式不正エラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "メールアドレスの形式が正しくありません。",
		Category: "validation",
		Action:   "正しいメールアドレスを入力してください。",
	}
}

// NewWeakPasswordError はパスワード強度不足エラーを生成する。
func NewWeakPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWeakPassword,
		Message:  "パスワードが要件を満たしていません。",
		Category: "validation",
		Action:   "より長いパスワードを設定してください（最低6文字）。",
	}
}

// NewUnauthorizedError は認証が必要な操作への未認証アクセスエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "サインインしてください。",
	}
}

// NewBackendUnavailableError はバックエンドサービスへの到達失敗エラーを生成する。
func NewBackendUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeBackendUnavailable,
		Message:  "バックエンドサービスに接続できませんでした。",
		Category: "backend",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
