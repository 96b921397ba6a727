//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 修改Provider后执行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	apporder "github.com/xiebiao/bookshop/internal/application/order"
	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/internal/interface/http/router"
)

// infrastructureSet 数据库、Redis、MQ、指标
var infrastructureSet = wire.NewSet(
	rdb.NewDB,
	provideMetrics,
	provideSessionBackend,
	provideSessionStore,
	provideTokenChecker,
	provideEventPublisher,
)

// repositorySet 仓储和事务管理器
var repositorySet = wire.NewSet(
	rdb.NewUserRepository,
	rdb.NewGenreRepository,
	rdb.NewBookRepository,
	rdb.NewOrderRepository,
	rdb.NewTxManager,
	wire.Bind(new(apporder.TxManager), new(*rdb.TxManager)),
	wire.Bind(new(appbook.TxManager), new(*rdb.TxManager)),
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	provideJWTManager,
	providePasswordHasher,
	appuser.NewAuthUseCases,
	appbook.NewGenreUseCases,
	appbook.NewBookUseCases,
	apporder.NewCreateOrderUseCase,
	apporder.NewListOrdersUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewStatisticsUseCase,
)

// interfaceSet 中间件、Handler、路由
var interfaceSet = wire.NewSet(
	middleware.NewAuthMiddleware,
	handler.NewAuthHandler,
	handler.NewGenreHandler,
	handler.NewBookHandler,
	handler.NewOrderHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp 组装整个应用
// 返回的cleanup按创建顺序的逆序释放资源
func InitializeApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		interfaceSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
