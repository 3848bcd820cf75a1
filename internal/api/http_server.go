package api

import (
	"metagen/internal/auth"
	"metagen/internal/config"
	"metagen/internal/entity"
	"metagen/internal/generator"
	"metagen/internal/model"
	"metagen/internal/service"
	"metagen/internal/storage"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// TaskRunner 启动后台任务处理
type TaskRunner interface {
	ProcessTaskAsync(req entity.ProcessTaskRequest) (<-chan service.TaskSummary, error)
}

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg         config.Config
	repo        model.Repository
	storage     storage.Storage
	registry    *generator.Registry
	runner      TaskRunner
	authManager *auth.Manager
}

// NewHTTPHandler 创建 HTTP 处理器实例。AUTH_SECRET 为空时不启用鉴权。
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage, registry *generator.Registry, runner TaskRunner) (*HTTPHandler, error) {
	var authManager *auth.Manager
	if strings.TrimSpace(cfg.AuthSecret) != "" {
		manager, err := auth.NewManager(cfg.AuthSecret, cfg.AuthIssuer, 0)
		if err != nil {
			return nil, err
		}
		authManager = manager
	}
	if registry == nil {
		registry = generator.Default()
	}

	return &HTTPHandler{
		cfg:         cfg,
		repo:        repo,
		storage:     store,
		registry:    registry,
		runner:      runner,
		authManager: authManager,
	}, nil
}

// AuthManager 返回鉴权管理器，未启用时为 nil
func (h *HTTPHandler) AuthManager() *auth.Manager {
	return h.authManager
}

// RegisterRoutes 注册全部路由
func (h *HTTPHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.POST("/process", h.AuthMiddleware(auth.ScopeProcess), h.ProcessTask)

	apiGroup := r.Group("/api")
	apiGroup.Use(h.AuthMiddleware(auth.ScopeRead))
	apiGroup.GET("/generators", h.ListGenerators)
	apiGroup.GET("/tasks/:id", h.GetTask)
	apiGroup.GET("/tasks/:id/export", h.DownloadExport)
	apiGroup.GET("/credits/:userId", h.GetCredits)
}

// Health 存活检查
func (h *HTTPHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

const repoTimeout = 10 * time.Second
