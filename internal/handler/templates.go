package handler

import (
	"html/template"
	"log/slog"
	"net/http"
)

// pageTemplates はサーバーレンダリングする全ページのテンプレート。
// ページ数が少ないためファイル分割せず、ここで一括定義する。
var pageTemplates = template.Must(template.New("layout").Parse(`
{{define "header"}}<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} - CareerFolio</title>
</head>
<body>
<header>
<h1><a href="/">CareerFolio</a></h1>
</header>
<main>
{{if .Flash}}<p class="flash">{{.Flash}}</p>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{end}}

{{define "footer"}}</main>
</body>
</html>{{end}}

{{define "home"}}{{template "header" .}}
<p>こんにちは。CareerFolioはあなたの職務プロフィールを1か所にまとめるサービスです。</p>
<nav>
<a href="/signup">新規登録</a>
<a href="/signin">ログイン</a>
</nav>
{{template "footer" .}}{{end}}

{{define "signup"}}{{template "header" .}}
<h2>新規登録</h2>
<form method="post" action="/signup">
<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
<label>メールアドレス <input type="email" name="email" value="{{.Email}}" required></label>
<label>パスワード <input type="password" name="password" required></label>
<button type="submit">登録する</button>
</form>
<p><a href="/signin">アカウントをお持ちの方はログイン</a></p>
{{template "footer" .}}{{end}}

{{define "signin"}}{{template "header" .}}
<h2>ログイン</h2>
<form method="post" action="/signin">
<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
<label>メールアドレス <input type="email" name="email" value="{{.Email}}" required></label>
<label>パスワード <input type="password" name="password" required></label>
<button type="submit">ログイン</button>
</form>
<p><a href="/password-reset">パスワードをお忘れの方</a></p>
<p><a href="/signup">アカウントの新規登録</a></p>
{{template "footer" .}}{{end}}

{{define "verify"}}{{template "header" .}}
<h2>確認メールを送信しました</h2>
<p>登録したメールアドレス宛に確認メールを送信しました。メール内のリンクを開いて登録を完了してください。</p>
<p><a href="/signin">ログイン画面へ</a></p>
{{template "footer" .}}{{end}}

{{define "password_reset"}}{{template "header" .}}
<h2>パスワード再設定</h2>
<form method="post" action="/password-reset">
<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
<label>メールアドレス <input type="email" name="email" required></label>
<button type="submit">再設定メールを送る</button>
</form>
{{template "footer" .}}{{end}}

{{define "password_reset_sent"}}{{template "header" .}}
<h2>パスワード再設定</h2>
<p>入力されたメールアドレスが登録されている場合、再設定メールを送信しました。メールをご確認ください。</p>
<p><a href="/signin">ログイン画面へ</a></p>
{{template "footer" .}}{{end}}

{{define "dashboard"}}{{template "header" .}}
<h2>ダッシュボード</h2>
<p>{{.UserEmail}} さん、ようこそ。</p>
<nav>
<a href="/profile">プロフィールを編集</a>
<a href="/logout">ログアウト</a>
</nav>
{{template "footer" .}}{{end}}

{{define "profile"}}{{template "header" .}}
<h2>プロフィール</h2>
<form method="post" action="/profile">
<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
<label>氏名 <input type="text" name="name" value="{{.Profile.Name}}"></label>
<label>メールアドレス <input type="text" name="email" value="{{.Profile.Email}}"></label>
<label>電話番号 <input type="text" name="phone" value="{{.Profile.Phone}}"></label>
<label>LinkedIn <input type="text" name="linkedin" value="{{.Profile.LinkedIn}}"></label>
<label>GitHub <input type="text" name="github" value="{{.Profile.GitHub}}"></label>
<label>ポートフォリオ <input type="text" name="portfolio" value="{{.Profile.Portfolio}}"></label>
<label>職務要約 <textarea name="professional_summary">{{.Profile.ProfessionalSummary}}</textarea></label>
<button type="submit">保存する</button>
</form>
<form method="post" action="/delete_profile">
<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
<button type="submit">プロフィールを削除する</button>
</form>
<p><a href="/dashboard">ダッシュボードへ戻る</a></p>
{{template "footer" .}}{{end}}

{{define "error_page"}}{{template "header" .}}
<h2>エラー</h2>
<p>{{.Message}}</p>
<p>{{.Action}}</p>
<p><a href="/">トップへ戻る</a></p>
{{template "footer" .}}{{end}}
`))

// renderPage は指定テンプレートをレンダリングする。
// レンダリング失敗時は500を返す。
func renderPage(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
	}
}
