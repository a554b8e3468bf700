package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/careerfolio/internal/middleware"
	"github.com/hitoshi/careerfolio/internal/model"
	"github.com/hitoshi/careerfolio/internal/profile"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	Get(ctx context.Context, session *model.Session) (*model.Profile, error)
	Save(ctx context.Context, session *model.Session, input profile.FormInput) (*model.Profile, error)
	Delete(ctx context.Context, session *model.Session) error
}

// ProfileHandler はプロフィールCRUDのHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

type profileFormData struct {
	pageData
	CSRFToken string
	Profile   model.Profile
}

// Show はプロフィールフォームを表示する。
// プロフィール未作成の場合は空のフォームを表示する。
// GET /profile
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}

	p, err := h.service.Get(r.Context(), session)
	if err != nil {
		apiErr := asAPIError(err)
		renderPage(w, mapAPIErrorToHTTPStatus(apiErr), "profile", profileFormData{
			pageData:  pageData{Title: "プロフィール", Error: apiErr.Message},
			CSRFToken: middleware.CSRFTokenFromRequest(r),
		})
		return
	}

	data := profileFormData{
		pageData:  pageData{Title: "プロフィール"},
		CSRFToken: middleware.CSRFTokenFromRequest(r),
	}
	if p != nil {
		data.Profile = *p
	}
	renderPage(w, http.StatusOK, "profile", data)
}

// Upsert はプロフィールフォームの送信を処理する。
// 既存プロフィールの有無に関わらず1回の保存操作として扱い、
// 成功時はフォームへリダイレクトする。
// POST /profile
func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}

	input := profile.FormInput{
		Name:                r.PostFormValue("name"),
		Email:               r.PostFormValue("email"),
		Phone:               r.PostFormValue("phone"),
		LinkedIn:            r.PostFormValue("linkedin"),
		GitHub:              r.PostFormValue("github"),
		Portfolio:           r.PostFormValue("portfolio"),
		ProfessionalSummary: r.PostFormValue("professional_summary"),
	}

	if _, err := h.service.Save(r.Context(), session, input); err != nil {
		apiErr := asAPIError(err)
		renderPage(w, mapAPIErrorToHTTPStatus(apiErr), "profile", profileFormData{
			pageData: pageData{Title: "プロフィール", Error: apiErr.Message},
			CSRFToken: middleware.CSRFTokenFromRequest(r),
			Profile: model.Profile{
				UserID:              session.User.ID,
				Name:                input.Name,
				Email:               input.Email,
				Phone:               input.Phone,
				LinkedIn:            input.LinkedIn,
				GitHub:              input.GitHub,
				Portfolio:           input.Portfolio,
				ProfessionalSummary: input.ProfessionalSummary,
			},
		})
		return
	}

	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// Delete はプロフィールを削除し、結果をJSONで返す。
// 行が存在しない場合も成功として扱う。
// DELETE /profile
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), session); err != nil {
		writeJSONError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

// DeleteForm はフォームからのプロフィール削除を処理する。
// 成功時は空になったフォームへリダイレクトする。
// POST /delete_profile
func (h *ProfileHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}

	if err := h.service.Delete(r.Context(), session); err != nil {
		apiErr := asAPIError(err)
		renderPage(w, mapAPIErrorToHTTPStatus(apiErr), "profile", profileFormData{
			pageData:  pageData{Title: "プロフィール", Error: apiErr.Message},
			CSRFToken: middleware.CSRFTokenFromRequest(r),
		})
		return
	}

	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
