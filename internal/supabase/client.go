// Package supabase はホスト型認証・データベースサービスとの連携機能を提供する。
// GoTrue互換の認証API（/auth/v1）とPostgREST互換のテーブルAPI（/rest/v1）の
// 呼び出しを含む。パスワードハッシュ・トークン発行・行ストレージは全て
// バックエンド側の責務であり、このパッケージは保存済みトークンの再提示と
// リクエスト・レスポンスの変換のみを行う。
package supabase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"context"

	"github.com/hitoshi/careerfolio/internal/metrics"
	"github.com/hitoshi/careerfolio/internal/model"
)

const (
	authBasePath = "/auth/v1"
	restBasePath = "/rest/v1"
)

// Error はバックエンドがエラーステータスを返した場合のエラーを表す。
// Messageはバックエンドの生エラーテキストであり、ログにのみ出力して
// ユーザーへはそのまま表示しない。
type Error struct {
	StatusCode int
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	return fmt.Sprintf("バックエンドがステータス %d を返しました: %s", e.StatusCode, e.Message)
}

// Client はバックエンドサービスのクライアント。
// プロセス全体で1つ生成し、リクエスト間で共有する。イミュータブルであり
// セッショントークンを保持しない（トークンはWithSessionで都度渡す）。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	recorder   metrics.Recorder
	baseURL    string
	apiKey     string
}

// NewClient はClientの新しいインスタンスを生成する。
// baseURLはバックエンドサービスのベースURL、apiKeyは公開APIキー。
func NewClient(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger, recorder metrics.Recorder) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		recorder:   recorder,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// RequestClient はリクエストスコープの認証済みハンドル。
// セッションに保存されたトークンペアを保持し、テーブルAPI呼び出しに再提示する。
// リクエスト間で共有してはならない。
type RequestClient struct {
	client *Client
	tokens model.TokenPair
}

// WithSession は保存済みトークンペアを束ねたリクエストスコープのハンドルを返す。
// トークンの有効性検証は行わない（必要であればVerifyを呼ぶ）。
func (c *Client) WithSession(tokens model.TokenPair) *RequestClient {
	return &RequestClient{
		client: c,
		tokens: tokens,
	}
}

// Verify は保持しているアクセストークンをバックエンドに再提示し、
// 現在のユーザー識別情報を取得する。トークンが無効な場合はエラーを返す。
// 失敗は回復可能なエラー値として呼び出し側が判断する（握りつぶさない）。
func (rc *RequestClient) Verify(ctx context.Context) (*model.User, error) {
	return rc.client.GetUser(ctx, rc.tokens.AccessToken)
}

// backendError はバックエンドのエラーレスポンスJSONを表す。
// GoTrueとPostgRESTでフィールド名が異なるため複数の候補を受ける。
type backendError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error"`
}

// text はエラーレスポンスから最初に見つかったメッセージを返す。
func (e *backendError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.ErrorCode} {
		if s != "" {
			return s
		}
	}
	return ""
}

// do はバックエンドへのHTTPリクエストを1回実行する。
// labelはメトリクスのエンドポイントラベル。accessTokenが空の場合は
// 公開APIキーをベアラーとして使用する（匿名アクセス）。
// 2xx以外のステータスは*Errorとして返す。リトライは行わない。
func (c *Client) do(
	ctx context.Context,
	label, method, path string,
	query url.Values,
	accessToken string,
	headers map[string]string,
	body, dest any,
) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのエンコードに失敗しました: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	bearer := accessToken
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recorder.RecordBackendRequest(label, 0, time.Since(start))
		c.logger.Error("backend request failed",
			slog.String("endpoint", label),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("バックエンドへのリクエストに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	c.recorder.RecordBackendRequest(label, resp.StatusCode, time.Since(start))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var be backendError
		// エラーボディがJSONでない場合もあるためデコード失敗は無視する
		_ = json.Unmarshal(respBody, &be)
		msg := be.text()
		if msg == "" {
			msg = strings.TrimSpace(string(respBody))
		}
		c.logger.Error("backend returned error status",
			slog.String("endpoint", label),
			slog.Int("http_status", resp.StatusCode),
			slog.String("backend_message", msg),
		)
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}

	if dest != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, dest); err != nil {
			return fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
		}
	}

	return nil
}
