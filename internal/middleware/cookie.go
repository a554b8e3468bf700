package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// SessionCookieName はセッションIDを保持するCookieの名前。
const SessionCookieName = "careerfolio_session"

// EncodeSessionCookie はセッションIDをHMAC-SHA256で署名したCookie値に変換する。
// 形式は "<セッションID>.<署名のhex>"。
// Cookie値の改ざんでセッションストアを探られることを防ぐ。
func EncodeSessionCookie(sessionID string, secret []byte) string {
	return sessionID + "." + signSessionID(sessionID, secret)
}

// DecodeSessionCookie は署名付きCookie値を検証し、セッションIDを取り出す。
// 署名が一致しない・形式が不正な場合はエラーを返す。
func DecodeSessionCookie(value string, secret []byte) (string, error) {
	sessionID, signature, ok := strings.Cut(value, ".")
	if !ok || sessionID == "" || signature == "" {
		return "", fmt.Errorf("session cookie has invalid format")
	}

	expected := signSessionID(sessionID, secret)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", fmt.Errorf("session cookie signature mismatch")
	}
	return sessionID, nil
}

// SessionCookieConfig はセッションCookieの属性設定。
type SessionCookieConfig struct {
	Secret       []byte
	MaxAge       int // 秒
	CookieSecure bool
	CookieDomain string
}

// SetSessionCookie は署名付きセッションCookieをレスポンスに設定する。
func SetSessionCookie(w http.ResponseWriter, sessionID string, config SessionCookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    EncodeSessionCookie(sessionID, config.Secret),
		Path:     "/",
		Domain:   config.CookieDomain,
		MaxAge:   config.MaxAge,
		HttpOnly: true,
		Secure:   config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie はセッションCookieを破棄する。
func ClearSessionCookie(w http.ResponseWriter, config SessionCookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func signSessionID(sessionID string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}
