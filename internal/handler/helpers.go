package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/careerfolio/internal/middleware"
	"github.com/hitoshi/careerfolio/internal/model"
)

// pageData は全ページテンプレート共通の表示データ。
type pageData struct {
	Title string
	Flash string
	Error string
}

// mapAPIErrorToHTTPStatus はAPIErrorのコードをHTTPステータスに対応付ける。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeDuplicateAccount:
		return http.StatusConflict
	case model.ErrCodeEmailNotVerified:
		return http.StatusForbidden
	case model.ErrCodeInvalidEmail, model.ErrCodeWeakPassword:
		return http.StatusBadRequest
	case model.ErrCodeBackendUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// asAPIError はサービス層のエラーをAPIErrorとして取り出す。
// 想定外の型は内部エラーに落とす。
func asAPIError(err error) *model.APIError {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	slog.Error("unexpected error type from service", slog.String("error", err.Error()))
	return model.NewInternalError()
}

// writeJSONError はJSONエンドポイント向けにサービスエラーを書き込む。
func writeJSONError(w http.ResponseWriter, err error) {
	apiErr := asAPIError(err)
	middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
}
