package order

import (
	"math"
)

// NoGenre 没有任何销量时mostGenre/leastGenre的取值
const NoGenre = "N/A"

// GenreSales 某个分类的销量(册数)
type GenreSales struct {
	GenreID   uint
	GenreName string
	Quantity  int64
}

// SalesSummary 仓储层聚合出的原始数据
type SalesSummary struct {
	TotalTransactions int64        // 订单数
	TotalRevenue      int64        // Σ quantity × book.price
	Genres            []GenreSales // 每个分类的销量
}

// Statistics 订单统计结果
type Statistics struct {
	TotalTransactions       int64
	AverageTransactionValue int64
	MostGenre               string
	LeastGenre              string
}

// ComputeStatistics 由聚合数据计算统计结果
// 规则:
// 1. 平均订单金额四舍五入取整，没有订单时为0
// 2. 销量相同的分类取ID最小的，最多和最少都按这个规则
// 3. 销量为0的分类不参与比较；全部为0时返回N/A
func ComputeStatistics(s SalesSummary) Statistics {
	stats := Statistics{
		TotalTransactions: s.TotalTransactions,
		MostGenre:         NoGenre,
		LeastGenre:        NoGenre,
	}
	if s.TotalTransactions > 0 {
		stats.AverageTransactionValue = int64(math.Round(float64(s.TotalRevenue) / float64(s.TotalTransactions)))
	}

	var most, least *GenreSales
	for i := range s.Genres {
		g := &s.Genres[i]
		if g.Quantity <= 0 {
			continue
		}
		if most == nil || g.Quantity > most.Quantity || (g.Quantity == most.Quantity && g.GenreID < most.GenreID) {
			most = g
		}
		if least == nil || g.Quantity < least.Quantity || (g.Quantity == least.Quantity && g.GenreID < least.GenreID) {
			least = g
		}
	}
	if most != nil {
		stats.MostGenre = most.GenreName
		stats.LeastGenre = least.GenreName
	}
	return stats
}
