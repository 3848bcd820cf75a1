package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"metagen/internal/api"
	"metagen/internal/config"
	"metagen/internal/generator"
	"metagen/internal/model"
	"metagen/internal/service"
	"metagen/internal/storage"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	issueToken := flag.String("issue-token", "", "签发访问令牌给指定主体后退出")
	tokenScopes := flag.String("scopes", "", "令牌权限，逗号分隔，留空表示全部权限")
	flag.Parse()

	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		os.Exit(1)
	}

	// 初始化logger
	closeLog, err := setupLogger(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise logger")
		os.Exit(1)
	}
	defer closeLog()

	if *issueToken != "" {
		if err := printToken(cfg, *issueToken, *tokenScopes); err != nil {
			logrus.WithError(err).Error("failed to issue token")
			os.Exit(1)
		}
		return
	}

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		os.Exit(1)
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise storage")
		os.Exit(1)
	}

	registry := generator.Default()
	processor := service.NewTaskProcessor(
		repo,
		registry,
		store,
		service.NewProcessorConfig(cfg),
		service.WithClientFactory(service.NewClientFactory(cfg)),
	)

	httpHandler, err := api.NewHTTPHandler(cfg, repo, store, registry, processor)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		os.Exit(1)
	}
	if httpHandler.AuthManager() == nil {
		logrus.Warn("AUTH_SECRET is empty, endpoints are not protected")
	}

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// 添加中间件
	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	httpHandler.RegisterRoutes(r)

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  300 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logrus.WithField("host", serverHost).Info("服务器启动")
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("服务器启动失败")
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	logrus.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("server shutdown failed")
	}
	if err := processor.Wait(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("tasks still running at shutdown")
	}
	logrus.Info("server_stopped")
}

func printToken(cfg config.Config, subject, scopes string) error {
	handler, err := api.NewHTTPHandler(cfg, nil, nil, nil, nil)
	if err != nil {
		return err
	}
	manager := handler.AuthManager()
	if manager == nil {
		return errors.New("AUTH_SECRET is required to issue tokens")
	}

	var list []string
	for _, scope := range strings.Split(scopes, ",") {
		if scope = strings.TrimSpace(scope); scope != "" {
			list = append(list, scope)
		}
	}
	token, expiresAt, err := manager.IssueToken(subject, list...)
	if err != nil {
		return err
	}
	fmt.Println(token)
	logrus.WithFields(logrus.Fields{
		"subject":    subject,
		"scopes":     list,
		"expires_at": expiresAt,
	}).Info("token_issued")
	return nil
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware 日志记录中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  time.Since(start).String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}
