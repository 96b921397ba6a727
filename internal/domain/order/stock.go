package order

import (
	"fmt"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

// CheckStock 在任何写操作之前校验库存(领域服务)
// books是同一事务内批量读到的图书；按BookIDs顺序检查，保证错误信息稳定
// 校验通过后给每条明细填上下单时的书名和单价
func CheckStock(o *Order, books []*book.Book) error {
	byID := make(map[uint]*book.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	demand := o.Demand()
	for _, id := range o.BookIDs() {
		b, ok := byID[id]
		if !ok {
			return book.ErrBookNotFound.WithMessage(fmt.Sprintf("图书不存在: id=%d", id))
		}
		if !b.HasStock(demand[id]) {
			return book.ErrInsufficientStock.WithMessage(
				fmt.Sprintf("《%s》库存不足: 剩余%d, 需要%d", b.Title, b.StockQuantity, demand[id]))
		}
	}

	for i := range o.Items {
		b := byID[o.Items[i].BookID]
		o.Items[i].BookTitle = b.Title
		o.Items[i].UnitPrice = b.Price
	}
	return nil
}
