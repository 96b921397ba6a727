package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/response"
)

// slowRequest 超过该耗时的请求日志记为warn
const slowRequest = time.Second

// Handlers 全部HTTP处理器
type Handlers struct {
	Auth  *handler.AuthHandler
	Book  *handler.BookHandler
	Genre *handler.GenreHandler
	Order *handler.OrderHandler
}

// New 创建Gin引擎并注册路由
//
// 中间件顺序：
//  1. RequestID、Logger最先执行，后面的中间件和Handler都能拿到带request_id的logger
//  2. Tracing在Metrics之前，指标和日志可以关联trace_id
//  3. Recovery在业务Handler外层，panic转为500统一响应
//  4. RateLimit放在最后，被限流的请求也会记录日志和指标
func New(
	cfg *config.Config,
	log zerolog.Logger,
	m *metrics.Metrics,
	auth *middleware.AuthMiddleware,
	h Handlers,
) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(log, slowRequest),
		middleware.Tracing(),
		middleware.Metrics(m),
		middleware.Recovery(),
	)
	if cfg.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TTL).Middleware())
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "healthy"})
	})
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}
	// 访问 /swagger/index.html 查看API文档，生产环境建议关闭
	if cfg.Server.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	// 公开接口
	public := v1.Group("/auth")
	{
		public.POST("/register", h.Auth.Register)
		public.POST("/login", h.Auth.Login)
		public.POST("/refresh", h.Auth.Refresh)
	}

	// 需要登录
	authorized := v1.Group("")
	authorized.Use(auth.RequireAuth())
	{
		authorized.GET("/auth/me", h.Auth.Me)
		authorized.POST("/auth/logout", h.Auth.Logout)

		books := authorized.Group("/books")
		books.GET("", h.Book.List)
		books.POST("", h.Book.Create)
		books.GET("/genre/:genre_id", h.Book.ListByGenre)
		books.GET("/:id", h.Book.Get)
		books.PATCH("/:id", h.Book.Update)
		books.DELETE("/:id", h.Book.Delete)

		genres := authorized.Group("/genres")
		genres.GET("", h.Genre.List)
		genres.POST("", h.Genre.Create)
		genres.GET("/:id", h.Genre.Get)
		genres.PATCH("/:id", h.Genre.Update)
		genres.DELETE("/:id", h.Genre.Delete)

		orders := authorized.Group("/orders")
		orders.POST("", h.Order.Create)
		orders.GET("", h.Order.List)
		orders.GET("/statistics", h.Order.Statistics)
		orders.GET("/:id", h.Order.Get)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperrors.ErrNotFound.WithMessage("接口不存在"))
	})
	return r
}
