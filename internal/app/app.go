// Package app はアプリケーションの初期化と起動を行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/hitoshi/careerfolio/internal/auth"
	"github.com/hitoshi/careerfolio/internal/config"
	"github.com/hitoshi/careerfolio/internal/handler"
	"github.com/hitoshi/careerfolio/internal/logger"
	"github.com/hitoshi/careerfolio/internal/metrics"
	"github.com/hitoshi/careerfolio/internal/middleware"
	"github.com/hitoshi/careerfolio/internal/profile"
	"github.com/hitoshi/careerfolio/internal/repository"
	"github.com/hitoshi/careerfolio/internal/security"
	"github.com/hitoshi/careerfolio/internal/supabase"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	return runServe(cfg)
}

// runServe はWebサーバーモードで起動する。
// Redis接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// メトリクスとヘルスチェックは別リスナーで公開する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. Redis接続（セッションストア）
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("redis connection established")

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. リポジトリの初期化
	sessionRepo := repository.NewRedisSessionRepository(redisClient)

	// 4. バックエンドAPIクライアントの初期化
	backendClient := supabase.NewClient(
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		&http.Client{Timeout: cfg.BackendTimeout},
		slog.Default(),
		collector,
	)

	// 5. ドメインサービスの初期化
	authService := auth.NewService(
		backendClient, sessionRepo, collector,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	sanitizer := security.NewFieldSanitizer()
	profileStore := supabase.NewProfileStore(backendClient)
	profileService := profile.NewService(profileStore, sanitizer, collector)

	// 6. ルーターの構築
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	// configの値はreq/min単位なのでreq/secに変換する
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.AuthRate = rate.Limit(float64(cfg.RateLimitAuth) / 60.0)
	rateLimiterCfg.AuthBurst = cfg.RateLimitAuth
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	cookieConfig := middleware.SessionCookieConfig{
		Secret:       []byte(cfg.SessionSecret),
		MaxAge:       cfg.SessionMaxAge,
		CookieSecure: cfg.CookieSecure,
		CookieDomain: cfg.CookieDomain,
	}

	router := handler.NewRouter(&handler.RouterDeps{
		SessionFinder: sessionRepo,
		CookieConfig:  cookieConfig,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter: rateLimiter,
		Logger:      slog.Default(),

		AuthService:    authService,
		ProfileService: profileService,
	})

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// メトリクス・ヘルスチェック用の別リスナー
	metricsServer := &http.Server{
		Addr:         cfg.MetricsAddr,
		Handler:      metrics.SetupMetricsRoute(registry),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("metrics server starting", slog.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server listen error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		slog.Info("web server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down web server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
