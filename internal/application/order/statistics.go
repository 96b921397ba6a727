package order

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// StatisticsUseCase 订单统计
// 聚合由数据库完成（COUNT / SUM / GROUP BY），领域层只处理几行结果
// 并发写入时读到的是某一时刻的快照，不加锁
type StatisticsUseCase struct {
	orderRepo order.Repository
	log       zerolog.Logger
}

// NewStatisticsUseCase 创建统计用例
func NewStatisticsUseCase(orderRepo order.Repository, log zerolog.Logger) *StatisticsUseCase {
	return &StatisticsUseCase{orderRepo: orderRepo, log: log}
}

// StatisticsResponse 统计结果（字段名沿用对外接口的驼峰格式）
type StatisticsResponse struct {
	TotalTransactions       int64  `json:"totalTransactions"`
	AverageTransactionValue int64  `json:"averageTransactionValue"`
	MostGenre               string `json:"mostGenre"`
	LeastGenre              string `json:"leastGenre"`
}

// Execute 计算统计数据
func (uc *StatisticsUseCase) Execute(ctx context.Context) (*StatisticsResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "GetStatistics")
	defer span.End()

	summary, err := uc.orderRepo.SalesSummary(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		logger.FromContext(ctx, uc.log).Error().Err(err).Msg("订单统计失败")
		return nil, err
	}

	stats := order.ComputeStatistics(*summary)
	return &StatisticsResponse{
		TotalTransactions:       stats.TotalTransactions,
		AverageTransactionValue: stats.AverageTransactionValue,
		MostGenre:               stats.MostGenre,
		LeastGenre:              stats.LeastGenre,
	}, nil
}
