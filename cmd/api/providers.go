package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	apporder "github.com/xiebiao/bookshop/internal/application/order"
	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/messaging"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// App 组装完成的应用
type App struct {
	Engine *gin.Engine
}

// sessionBackend 会话存储同时服务于登录用例和认证中间件
type sessionBackend interface {
	appuser.SessionStore
	middleware.TokenChecker
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func providePasswordHasher() *user.PasswordHasher {
	return user.NewPasswordHasher(bcrypt.DefaultCost)
}

// provideMetrics 独立Registry，额外注册Go运行时和进程指标
func provideMetrics(cfg *config.Config) (*metrics.Metrics, error) {
	reg := prometheus.NewRegistry()
	if err := metrics.RegisterRuntimeCollectors(reg); err != nil {
		return nil, err
	}
	return metrics.New(cfg.Metrics.Namespace, reg), nil
}

// provideSessionBackend 未启用Redis时登出只删除客户端Token，服务端不做黑名单
func provideSessionBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (sessionBackend, func(), error) {
	if !cfg.Redis.Enabled {
		log.Warn().Msg("Redis未启用，会话和Token黑名单不生效")
		return redis.NopSessionStore{}, func() {}, nil
	}
	client, cleanup, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, nil, err
	}
	return redis.NewSessionStore(client), cleanup, nil
}

func provideSessionStore(b sessionBackend) appuser.SessionStore { return b }

func provideTokenChecker(b sessionBackend) middleware.TokenChecker { return b }

// provideEventPublisher 启用MQ时连接RabbitMQ，发布失败由熔断器兜底
func provideEventPublisher(cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) (apporder.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return messaging.NopPublisher{}, func() {}, nil
	}
	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := pub.Close(); err != nil {
			log.Error().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	events := messaging.NewOrderEventPublisher(pub, m, log, messaging.Options{
		BreakerFailures:    cfg.MQ.BreakerFailures,
		BreakerOpenTimeout: cfg.MQ.BreakerOpenTimeout,
		PublishTimeout:     cfg.MQ.PublishTimeout,
	})
	return events, cleanup, nil
}
